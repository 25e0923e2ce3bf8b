package internal

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSleepDuration(t *testing.T) {
	cases := []struct {
		start, end string
		want       int
	}{
		{"22:00", "06:00", 480},
		{"13:15", "14:45", 90},
		{"23:59", "00:00", 1},
		{"00:00", "23:59", 1439},
	}
	for _, tc := range cases {
		got, err := SleepDuration(tc.start, tc.end)
		require.NoError(t, err, tc.start+"-"+tc.end)
		assert.Equal(t, tc.want, got, tc.start+"-"+tc.end)
	}

	_, err := SleepDuration("08:00", "08:00")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = SleepDuration("8pm", "06:00")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPayloadNormalize(t *testing.T) {
	p, err := Feeding{Method: " Purée "}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, Feeding{Method: FeedingPuree}, p)

	_, err = Feeding{Method: "juice"}.Normalize()
	assert.ErrorIs(t, err, ErrValidation)

	p, err = Diaper{Status: "DIRTY"}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, Diaper{Status: DiaperDirty}, p)

	p, err = Sleep{Start: "22:00", End: "06:00", DurationMinutes: 5}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, 480, p.(Sleep).DurationMinutes)

	_, err = Sleep{Start: "22:00"}.Normalize()
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBabyProfileNormalize(t *testing.T) {
	p, err := BabyProfile{
		Name: " Ana ", WeightKg: 3.2, LengthCm: 49, BirthDate: "2026-02-01",
		Conditions: []string{" reflux", "", "colic", "reflux"},
	}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "Ana", p.Name)
	assert.Equal(t, []string{"colic", "reflux"}, p.Conditions)

	_, err = BabyProfile{Name: "Ana", WeightKg: 3, LengthCm: 49, BirthDate: "01/02/2026"}.Normalize()
	assert.ErrorIs(t, err, ErrValidation)
	_, err = BabyProfile{Name: "Ana", LengthCm: 49, BirthDate: "2026-02-01"}.Normalize()
	assert.ErrorIs(t, err, ErrValidation)
}

func TestEntryJSON(t *testing.T) {
	in := Entry{
		ID: "e1", OwnerID: "u1", CreatedAt: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC),
		Observation: "fussy", Payload: Sleep{Start: "22:00", End: "06:00", DurationMinutes: 480},
	}
	b, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"e1","owner_id":"u1","created_at":"2026-05-01T08:00:00Z","observation":"fussy",
		"kind":"sleep","data":{"start":"22:00","end":"06:00","duration_minutes":480}}`, string(b))

	var out Entry
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, in, out)

	err = json.Unmarshal([]byte(`{"id":"e2","kind":"bath","data":{}}`), &out)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestEntryApply(t *testing.T) {
	e := Entry{ID: "e1", OwnerID: "u1", Payload: Diaper{Status: DiaperClean}}
	note := "changed at night"

	got, err := e.Apply(EntryChanges{Observation: &note, Payload: Diaper{Status: "Dirty"}})
	require.NoError(t, err)
	assert.Equal(t, note, got.Observation)
	assert.Equal(t, Diaper{Status: DiaperDirty}, got.Payload)
	assert.Equal(t, "e1", got.ID)

	_, err = e.Apply(EntryChanges{Payload: Feeding{Method: FeedingBottle}})
	assert.ErrorIs(t, err, ErrValidation)

	same, err := e.Apply(EntryChanges{})
	require.NoError(t, err)
	assert.Equal(t, e, same)
}

func TestEntryChangesJSON(t *testing.T) {
	var c EntryChanges
	require.NoError(t, json.Unmarshal([]byte(`{"observation":"x"}`), &c))
	require.NotNil(t, c.Observation)
	assert.Nil(t, c.Payload)

	require.NoError(t, json.Unmarshal([]byte(`{"kind":"feeding","data":{"method":"breast"}}`), &c))
	assert.Nil(t, c.Observation)
	assert.Equal(t, Feeding{Method: FeedingBreast}, c.Payload)
}

func TestSortEntriesNewestFirst(t *testing.T) {
	base := time.Now()
	entries := []Entry{
		{ID: "old", CreatedAt: base.Add(-time.Hour)},
		{ID: "new", CreatedAt: base},
		{ID: "mid", CreatedAt: base.Add(-time.Minute)},
	}
	SortEntries(entries)
	assert.Equal(t, "new", entries[0].ID)
	assert.Equal(t, "mid", entries[1].ID)
	assert.Equal(t, "old", entries[2].ID)
}

func TestAsStoreError(t *testing.T) {
	nf := &NotFoundError{Resource: "entry", ID: "e1"}
	assert.Same(t, nf, AsStoreError("get", nf))
	assert.ErrorIs(t, AsStoreError("get", assert.AnError), ErrStore)
	assert.NoError(t, AsStoreError("get", nil))
}
