package form

import (
	"context"
	"strconv"
	"strings"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
)

// ProfileStore is satisfied by the remote store client.
type ProfileStore interface {
	UpsertBabyProfile(ctx context.Context, profile internal.BabyProfile) (*internal.BabyProfile, error)
}

// ProfileFields are raw text inputs. Conditions is a comma separated list.
type ProfileFields struct {
	Name       string
	WeightKg   string
	LengthCm   string
	BirthDate  string
	Conditions string
}

type ProfileForm = Form[ProfileFields]

// FieldsFromProfile prefills a profile form.
func FieldsFromProfile(p *internal.BabyProfile) ProfileFields {
	if p == nil {
		return ProfileFields{}
	}
	return ProfileFields{
		Name:       p.Name,
		WeightKg:   strconv.FormatFloat(p.WeightKg, 'f', -1, 64),
		LengthCm:   strconv.FormatFloat(p.LengthCm, 'f', -1, 64),
		BirthDate:  p.BirthDate,
		Conditions: strings.Join(p.Conditions, ", "),
	}
}

// Profile parses the text inputs.
func (f ProfileFields) Profile() (internal.BabyProfile, error) {
	var invalid []string
	weight, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(f.WeightKg, ",", ".")), 64)
	if err != nil {
		invalid = append(invalid, "weight_kg")
	}
	length, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(f.LengthCm, ",", ".")), 64)
	if err != nil {
		invalid = append(invalid, "length_cm")
	}
	if len(invalid) > 0 {
		return internal.BabyProfile{}, internal.NewValidationError("not a number", invalid...)
	}
	p := internal.BabyProfile{
		Name:       f.Name,
		WeightKg:   weight,
		LengthCm:   length,
		BirthDate:  f.BirthDate,
		Conditions: strings.Split(f.Conditions, ","),
	}
	return p.Normalize()
}

// NewProfileForm saves through store and passes the stored profile to onSaved.
// The form keeps showing the saved values.
func NewProfileForm(store ProfileStore, initial *internal.BabyProfile, onSaved func(*internal.BabyProfile)) *ProfileForm {
	form := newForm(FieldsFromProfile(initial),
		func(f ProfileFields) bool { return filled(f.Name, f.WeightKg, f.LengthCm, f.BirthDate) },
		func(ctx context.Context, f ProfileFields) error {
			p, err := f.Profile()
			if err != nil {
				return err
			}
			saved, err := store.UpsertBabyProfile(ctx, p)
			if err != nil {
				return err
			}
			if onSaved != nil {
				onSaved(saved)
			}
			return nil
		})
	form.reset = func(f ProfileFields) ProfileFields { return f }
	return form
}
