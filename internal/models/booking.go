package models

import (
	"strings"
	"time"

	"bus-fleet/internal/apperr"

	"github.com/uptrace/bun"
)

type Gender string

const (
	GenderMale   Gender = "Masculino"
	GenderFemale Gender = "Femenino"
	GenderOther  Gender = "Otro"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

type PassengerInfo struct {
	Name        string `bun:"name,notnull" json:"name"`
	Age         int    `bun:"age,notnull" json:"age"`
	Gender      Gender `bun:"gender,notnull" json:"gender"`
	ContactInfo string `bun:"contact_info,notnull" json:"contact_info"`
}

func (p PassengerInfo) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return apperr.Validation("passenger_info.name", "must not be empty")
	}
	if p.Age < 1 {
		return apperr.Validation("passenger_info.age", "must be at least 1")
	}
	if !p.Gender.Valid() {
		return apperr.Validation("passenger_info.gender", "must be one of Masculino, Femenino, Otro")
	}
	if strings.TrimSpace(p.ContactInfo) == "" {
		return apperr.Validation("passenger_info.contact_info", "must not be empty")
	}
	return nil
}

// Booking is unique per (schedule_id, seat_number); the composite unique
// constraint is what settles concurrent reservations of the same seat.
type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	ID         string        `bun:"id,pk" json:"id"`
	ScheduleID string        `bun:"schedule_id,notnull,unique:bookings_schedule_seat" json:"schedule_id"`
	SeatNumber int           `bun:"seat_number,notnull,unique:bookings_schedule_seat" json:"seat_number"`
	Passenger  PassengerInfo `bun:"embed:passenger_" json:"passenger_info"`
	CreatedAt  time.Time     `bun:"created_at,notnull" json:"created_at"`
}

type BookingRequest struct {
	PassengerInfo PassengerInfo `json:"passenger_info"`
}
