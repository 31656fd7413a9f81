package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNameEmpty   = errors.New("observation name cannot be empty")
	ErrNameTooLong = errors.New("observation name is too long (max 100 chars)")
	ErrInvalidDate = errors.New("invalid observation date (must be DD-MM-YYYY)")
)

const (
	// DateLayout is the fixed display format of observation dates.
	// Zero-padded day-month-year, no time-of-day component.
	DateLayout = "02-01-2006"

	MaxNameLen = 100
)

type Observation struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	ObservationDate string  `json:"observationDate"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	ImageURI        string  `json:"imageUri,omitempty"`
}

type CreateObservationInput struct {
	Name            string
	ObservationDate string
	Latitude        float64
	Longitude       float64
	ImageURI        string
}

// UpdateObservationInput is a partial patch: nil fields are left untouched.
// Coordinates are deliberately absent; a pin does not move after creation.
type UpdateObservationInput struct {
	Name            *string
	ObservationDate *string
	ImageURI        *string
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate accepts only the canonical zero-padded form, so "5-6-2024"
// is rejected even though time.Parse would take it.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil || FormatDate(t) != s {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

func validateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrNameEmpty
	}
	if len(trimmed) > MaxNameLen {
		return "", ErrNameTooLong
	}
	return trimmed, nil
}

func NewObservation(id string, input CreateObservationInput) (*Observation, error) {
	name, err := validateName(input.Name)
	if err != nil {
		return nil, err
	}

	if _, err := ParseDate(input.ObservationDate); err != nil {
		return nil, err
	}

	return &Observation{
		ID:              id,
		Name:            name,
		ObservationDate: input.ObservationDate,
		Latitude:        input.Latitude,
		Longitude:       input.Longitude,
		ImageURI:        input.ImageURI,
	}, nil
}

// Apply overwrites only the fields present in the patch. An empty
// ImageURI pointer detaches the photo.
func (o *Observation) Apply(patch UpdateObservationInput) error {
	if patch.Name != nil {
		name, err := validateName(*patch.Name)
		if err != nil {
			return err
		}
		o.Name = name
	}

	if patch.ObservationDate != nil {
		if _, err := ParseDate(*patch.ObservationDate); err != nil {
			return err
		}
		o.ObservationDate = *patch.ObservationDate
	}

	if patch.ImageURI != nil {
		o.ImageURI = *patch.ImageURI
	}

	return nil
}
