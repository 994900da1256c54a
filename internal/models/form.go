package models

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/amaumene/repertoire/internal/duration"
	"github.com/go-playground/validator/v10"
)

// hoursMinutes matches HH:MM[:SS] read as hours and minutes. Seconds, when
// given, are dropped.
var hoursMinutes = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return hoursMinutes.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	_ = v.RegisterValidation("kind", func(fl validator.FieldLevel) bool {
		return Kind(fl.Field().String()).Valid()
	})
	return v
}

// EntryForm is the edit model for creating or updating an entry. Nil fields
// are left untouched on update.
type EntryForm struct {
	Name     *string `validate:"omitempty,max=100"`
	Date     *string `validate:"omitempty,datetime=2006-01-02"`
	Rating   *int    `validate:"omitempty,min=0,max=5"`
	Review   *string `validate:"omitempty,max=500"`
	Kind     *Kind   `validate:"omitempty,kind"`
	Duration *string `validate:"omitempty,hhmm"` // HH:MM, hours and minutes
	Season   *int    `validate:"omitempty,min=1"`

	ClearDuration bool
	ClearSeason   bool
}

// required on create, mirroring the non-blank model fields
type createFields struct {
	Name   *string `validate:"required"`
	Date   *string `validate:"required"`
	Rating *int    `validate:"required"`
	Review *string `validate:"required"`
}

// FormError lists the fields that failed validation
type FormError struct {
	Fields map[string]string
}

func (e *FormError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, name := range []string{"Name", "Date", "Rating", "Review", "Kind", "Duration", "Season"} {
		if tag, ok := e.Fields[name]; ok {
			parts = append(parts, fmt.Sprintf("%s (%s)", strings.ToLower(name), tag))
		}
	}
	return "invalid fields: " + strings.Join(parts, ", ")
}

// Validate checks the fields that are set
func (f *EntryForm) Validate() error {
	return toFormError(validate.Struct(f))
}

// ValidateCreate additionally requires the fields the API needs for a new entry
func (f *EntryForm) ValidateCreate() error {
	if err := toFormError(validate.Struct(createFields{
		Name:   f.Name,
		Date:   f.Date,
		Rating: f.Rating,
		Review: f.Review,
	})); err != nil {
		return err
	}
	return f.Validate()
}

func toFormError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate form: %w", err)
	}
	fe := &FormError{Fields: make(map[string]string, len(verrs))}
	for _, v := range verrs {
		fe.Fields[v.Field()] = v.Tag()
	}
	return fe
}

// ParseHoursMinutes reads an HH:MM[:SS] form value as hours and minutes.
func ParseHoursMinutes(s string) (duration.Value, error) {
	m := hoursMinutes.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return duration.Value{}, fmt.Errorf("invalid duration %q, use HH:MM", s)
	}
	h, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	return duration.FromClock(h, mins, 0), nil
}

// Body builds the JSON payload for the set fields. Call Validate first.
func (f *EntryForm) Body() (map[string]any, error) {
	body := make(map[string]any)
	if f.Name != nil {
		body["nome"] = *f.Name
	}
	if f.Date != nil {
		body["data"] = *f.Date
	}
	if f.Rating != nil {
		body["estrela"] = *f.Rating
	}
	if f.Review != nil {
		body["resenha"] = *f.Review
	}
	if f.Kind != nil {
		body["tipo"] = string(*f.Kind)
	}

	switch {
	case f.ClearDuration:
		body["duracao"] = nil
	case f.Duration != nil:
		d, err := ParseHoursMinutes(*f.Duration)
		if err != nil {
			return nil, err
		}
		body["duracao"] = d.ClockString()
	}

	switch {
	case f.ClearSeason:
		body["temporada"] = nil
	case f.Season != nil:
		body["temporada"] = *f.Season
	}

	return body, nil
}

// FormFromEntry prefills a form with every field of e
func FormFromEntry(e *Entry) *EntryForm {
	f := &EntryForm{
		Name:   &e.Name,
		Date:   &e.Date,
		Rating: &e.Rating,
		Review: &e.Review,
		Kind:   &e.Kind,
		Season: e.Season,
	}
	if total, ok := e.Duration.TotalSeconds(); ok {
		s := fmt.Sprintf("%02d:%02d", total/3600, (total%3600)/60)
		f.Duration = &s
	}
	return f
}
