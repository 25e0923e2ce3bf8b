package internal

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is a server-side login record keyed by its opaque token.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Identity is the authenticated principal as seen by a client.
type Identity struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type BabyProfile struct {
	OwnerID    string    `json:"owner_id"`
	Name       string    `json:"name" validate:"required"`
	WeightKg   float64   `json:"weight_kg" validate:"required,gt=0"`
	LengthCm   float64   `json:"length_cm" validate:"required,gt=0"`
	BirthDate  string    `json:"birth_date" validate:"required,datetime=2006-01-02"`
	Conditions []string  `json:"conditions"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Normalize trims the profile, deduplicates conditions and checks required fields.
func (p BabyProfile) Normalize() (BabyProfile, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.BirthDate = strings.TrimSpace(p.BirthDate)
	conditions := make([]string, 0, len(p.Conditions))
	for _, c := range p.Conditions {
		if c = strings.TrimSpace(c); c != "" {
			conditions = append(conditions, c)
		}
	}
	slices.Sort(conditions)
	p.Conditions = slices.Compact(conditions)
	if err := validateStruct(&p); err != nil {
		return p, err
	}
	return p, nil
}

// Dashboard is the per-user summary shown on the home screen.
type Dashboard struct {
	DiaperCount       int `json:"diaper_count"`
	FeedingCount      int `json:"feeding_count"`
	SleepCount        int `json:"sleep_count"`
	TotalSleepMinutes int `json:"total_sleep_minutes"`
}

type EntryKind string

const (
	KindDiaper  EntryKind = "diaper"
	KindSleep   EntryKind = "sleep"
	KindFeeding EntryKind = "feeding"
)

// Payload is the kind-specific part of an Entry. The set of implementations is closed.
type Payload interface {
	Kind() EntryKind
	// Normalize checks required fields and fills derived values.
	Normalize() (Payload, error)
	isPayload()
}

const (
	DiaperClean       = "clean"
	DiaperDirty       = "dirty"
	DiaperNeedsChange = "needs-change"
)

type Diaper struct {
	Status string `json:"status" validate:"required,oneof=clean dirty needs-change"`
}

func (Diaper) Kind() EntryKind { return KindDiaper }
func (Diaper) isPayload()      {}

func (d Diaper) Normalize() (Payload, error) {
	d.Status = strings.ToLower(strings.TrimSpace(d.Status))
	if err := validateStruct(&d); err != nil {
		return nil, err
	}
	return d, nil
}

type Sleep struct {
	Start           string `json:"start" validate:"required"`
	End             string `json:"end" validate:"required"`
	DurationMinutes int    `json:"duration_minutes"`
}

func (Sleep) Kind() EntryKind { return KindSleep }
func (Sleep) isPayload()      {}

func (s Sleep) Normalize() (Payload, error) {
	s.Start = strings.TrimSpace(s.Start)
	s.End = strings.TrimSpace(s.End)
	if err := validateStruct(&s); err != nil {
		return nil, err
	}
	minutes, err := SleepDuration(s.Start, s.End)
	if err != nil {
		return nil, err
	}
	s.DurationMinutes = minutes
	return s, nil
}

const minutesPerDay = 24 * 60

// SleepDuration returns the minutes between two HH:MM times of day. An end at or
// before the start is read as the next day, so 22:00 to 06:00 is 480 minutes.
// Equal times give zero, which is rejected.
func SleepDuration(start, end string) (int, error) {
	s, err := time.Parse("15:04", start)
	if err != nil {
		return 0, NewValidationError("start must be HH:MM", "start")
	}
	e, err := time.Parse("15:04", end)
	if err != nil {
		return 0, NewValidationError("end must be HH:MM", "end")
	}
	minutes := int(e.Sub(s).Minutes())
	minutes = ((minutes % minutesPerDay) + minutesPerDay) % minutesPerDay
	if minutes <= 0 {
		return 0, NewValidationError("sleep duration must be positive", "start", "end")
	}
	return minutes, nil
}

const (
	FeedingBreast = "breast"
	FeedingBottle = "bottle"
	FeedingSolids = "solids"
	FeedingPuree  = "puree"
	FeedingOther  = "other"
)

type Feeding struct {
	Method string `json:"method" validate:"required,oneof=breast bottle solids puree other"`
}

func (Feeding) Kind() EntryKind { return KindFeeding }
func (Feeding) isPayload()      {}

func (f Feeding) Normalize() (Payload, error) {
	f.Method = strings.ToLower(strings.TrimSpace(f.Method))
	if f.Method == "purée" {
		f.Method = FeedingPuree
	}
	if err := validateStruct(&f); err != nil {
		return nil, err
	}
	return f, nil
}

// DecodePayload builds the payload for kind from its JSON data.
func DecodePayload(kind EntryKind, data []byte) (Payload, error) {
	var (
		p   Payload
		err error
	)
	switch kind {
	case KindDiaper:
		var d Diaper
		err = json.Unmarshal(data, &d)
		p = d
	case KindSleep:
		var s Sleep
		err = json.Unmarshal(data, &s)
		p = s
	case KindFeeding:
		var f Feeding
		err = json.Unmarshal(data, &f)
		p = f
	default:
		return nil, NewValidationError(fmt.Sprintf("unknown entry kind %q", kind), "kind")
	}
	if err != nil {
		return nil, NewValidationError("malformed "+string(kind)+" data: "+err.Error(), "data")
	}
	return p, nil
}

// Entry is one recorded care event. ID, OwnerID and CreatedAt are assigned by the store.
type Entry struct {
	ID          string
	OwnerID     string
	CreatedAt   time.Time
	Observation string
	Payload     Payload
}

func (e Entry) Kind() EntryKind {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.Kind()
}

type entryJSON struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"owner_id"`
	CreatedAt   time.Time       `json:"created_at"`
	Observation string          `json:"observation,omitempty"`
	Kind        EntryKind       `json:"kind"`
	Data        json.RawMessage `json:"data"`
}

func (e Entry) MarshalJSON() ([]byte, error) {
	if e.Payload == nil {
		return nil, fmt.Errorf("entry %s has no payload", e.ID)
	}
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(entryJSON{
		ID:          e.ID,
		OwnerID:     e.OwnerID,
		CreatedAt:   e.CreatedAt,
		Observation: e.Observation,
		Kind:        e.Payload.Kind(),
		Data:        data,
	})
}

func (e *Entry) UnmarshalJSON(b []byte) error {
	var raw entryJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	p, err := DecodePayload(raw.Kind, raw.Data)
	if err != nil {
		return err
	}
	*e = Entry{
		ID:          raw.ID,
		OwnerID:     raw.OwnerID,
		CreatedAt:   raw.CreatedAt,
		Observation: raw.Observation,
		Payload:     p,
	}
	return nil
}

// EntryChanges describes an edit. A nil field keeps the current value.
type EntryChanges struct {
	Observation *string
	Payload     Payload
}

type entryChangesJSON struct {
	Observation *string         `json:"observation,omitempty"`
	Kind        EntryKind       `json:"kind,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
}

func (c EntryChanges) MarshalJSON() ([]byte, error) {
	raw := entryChangesJSON{Observation: c.Observation}
	if c.Payload != nil {
		data, err := json.Marshal(c.Payload)
		if err != nil {
			return nil, err
		}
		raw.Kind = c.Payload.Kind()
		raw.Data = data
	}
	return json.Marshal(raw)
}

func (c *EntryChanges) UnmarshalJSON(b []byte) error {
	var raw entryChangesJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	c.Observation = raw.Observation
	c.Payload = nil
	if len(raw.Data) > 0 {
		p, err := DecodePayload(raw.Kind, raw.Data)
		if err != nil {
			return err
		}
		c.Payload = p
	}
	return nil
}

// Apply returns a copy of e with the changes applied. Identity, owner, creation
// time and kind never change.
func (e Entry) Apply(c EntryChanges) (Entry, error) {
	if c.Observation != nil {
		e.Observation = *c.Observation
	}
	if c.Payload != nil {
		if c.Payload.Kind() != e.Kind() {
			return e, NewValidationError(fmt.Sprintf("entry kind %s cannot change to %s", e.Kind(), c.Payload.Kind()), "kind")
		}
		p, err := c.Payload.Normalize()
		if err != nil {
			return e, err
		}
		e.Payload = p
	}
	return e, nil
}

// SortEntries orders entries newest first.
func SortEntries(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}
