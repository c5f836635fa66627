package http

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/teamup-app/teamup-backend/internal/domain"
)

var clockTime = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

type locationRequest struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

func (l locationRequest) Validate() error {
	return validation.ValidateStruct(
		&l,
		validation.Field(&l.Address, validation.Required, validation.Length(2, 200)),
		validation.Field(&l.Lat, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&l.Lng, validation.Min(-180.0), validation.Max(180.0)),
	)
}

type createEventRequest struct {
	Name            string          `json:"name"`
	Type            string          `json:"type"`
	Description     string          `json:"description"`
	Date            string          `json:"date"`
	Time            string          `json:"time"`
	Location        locationRequest `json:"location"`
	MaxParticipants int             `json:"maxParticipants"`
}

func (r *createEventRequest) Validate() error {
	return validation.ValidateStruct(
		r,
		validation.Field(&r.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&r.Type, validation.Required, validation.Length(2, 50)),
		validation.Field(&r.Description, validation.Length(0, 1000)),
		validation.Field(&r.Date, validation.Required, validation.Date("2006-01-02")),
		validation.Field(&r.Time, validation.Required, validation.Match(clockTime)),
		validation.Field(&r.Location),
		validation.Field(&r.MaxParticipants, validation.Min(0), validation.Max(10000)),
	)
}

func (r *createEventRequest) location() domain.Location {
	return domain.Location{
		Address: r.Location.Address,
		Lat:     r.Location.Lat,
		Lng:     r.Location.Lng,
	}
}
