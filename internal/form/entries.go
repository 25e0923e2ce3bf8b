package form

import (
	"context"
	"strings"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
)

// Adder is satisfied by the entry manager.
type Adder interface {
	Add(ctx context.Context, observation string, payload internal.Payload) (internal.Entry, error)
}

// Updater is satisfied by the entry manager.
type Updater interface {
	Update(ctx context.Context, id string, changes internal.EntryChanges) (internal.Entry, error)
}

func filled(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// addPayload validates before handing off so bad input never reaches the manager.
func addPayload(ctx context.Context, adder Adder, observation string, p internal.Payload) error {
	if _, err := p.Normalize(); err != nil {
		return err
	}
	_, err := adder.Add(ctx, strings.TrimSpace(observation), p)
	return err
}

type DiaperFields struct {
	Status      string
	Observation string
}

type DiaperForm = Form[DiaperFields]

func NewDiaperForm(adder Adder) *DiaperForm {
	return newForm(DiaperFields{},
		func(f DiaperFields) bool { return filled(f.Status) },
		func(ctx context.Context, f DiaperFields) error {
			return addPayload(ctx, adder, f.Observation, internal.Diaper{Status: f.Status})
		})
}

type SleepFields struct {
	Start       string
	End         string
	Observation string
}

type SleepForm = Form[SleepFields]

func NewSleepForm(adder Adder) *SleepForm {
	return newForm(SleepFields{},
		func(f SleepFields) bool { return filled(f.Start, f.End) },
		func(ctx context.Context, f SleepFields) error {
			return addPayload(ctx, adder, f.Observation, internal.Sleep{Start: f.Start, End: f.End})
		})
}

type FeedingFields struct {
	Method      string
	Observation string
}

type FeedingForm = Form[FeedingFields]

func NewFeedingForm(adder Adder) *FeedingForm {
	return newForm(FeedingFields{},
		func(f FeedingFields) bool { return filled(f.Method) },
		func(ctx context.Context, f FeedingFields) error {
			return addPayload(ctx, adder, f.Observation, internal.Feeding{Method: f.Method})
		})
}

// EditFields carries every kind's fields; only those of the entry's kind are used.
type EditFields struct {
	Observation string
	Status      string
	Start       string
	End         string
	Method      string
}

type EditForm = Form[EditFields]

// NewEditForm is prefilled from entry. Its kind cannot change.
func NewEditForm(updater Updater, entry internal.Entry) *EditForm {
	initial := EditFields{Observation: entry.Observation}
	switch p := entry.Payload.(type) {
	case internal.Diaper:
		initial.Status = p.Status
	case internal.Sleep:
		initial.Start, initial.End = p.Start, p.End
	case internal.Feeding:
		initial.Method = p.Method
	}

	payload := func(f EditFields) internal.Payload {
		switch entry.Kind() {
		case internal.KindDiaper:
			return internal.Diaper{Status: f.Status}
		case internal.KindSleep:
			return internal.Sleep{Start: f.Start, End: f.End}
		default:
			return internal.Feeding{Method: f.Method}
		}
	}

	form := newForm(initial,
		func(f EditFields) bool {
			switch entry.Kind() {
			case internal.KindDiaper:
				return filled(f.Status)
			case internal.KindSleep:
				return filled(f.Start, f.End)
			default:
				return filled(f.Method)
			}
		},
		func(ctx context.Context, f EditFields) error {
			p, err := payload(f).Normalize()
			if err != nil {
				return err
			}
			observation := strings.TrimSpace(f.Observation)
			_, err = updater.Update(ctx, entry.ID, internal.EntryChanges{Observation: &observation, Payload: p})
			return err
		})
	form.reset = func(f EditFields) EditFields { return f }
	return form
}
