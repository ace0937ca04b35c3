package models

import (
	"strings"
	"time"

	"bus-fleet/internal/apperr"

	"github.com/uptrace/bun"
)

// DateLayout is the calendar date format stored on a schedule.
const DateLayout = "2006-01-02"

type Schedule struct {
	bun.BaseModel `bun:"table:schedules"`

	ID            string    `bun:"id,pk" json:"id"`
	BusID         string    `bun:"bus_id,notnull" json:"bus_id"`
	DepartureTime string    `bun:"departure_time,notnull" json:"departure_time"`
	ArrivalTime   string    `bun:"arrival_time,notnull" json:"arrival_time"`
	Date          string    `bun:"date,notnull" json:"date"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"created_at"`
}

type ScheduleRequest struct {
	DepartureTime string `json:"departure_time"`
	ArrivalTime   string `json:"arrival_time"`
	Date          string `json:"date"`
}

// ValidateSchedule only checks that the times are present; their format is
// left to the caller. The date must be a real calendar date.
func ValidateSchedule(departure, arrival, date string) error {
	if strings.TrimSpace(departure) == "" {
		return apperr.Validation("departure_time", "must not be empty")
	}
	if strings.TrimSpace(arrival) == "" {
		return apperr.Validation("arrival_time", "must not be empty")
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return apperr.Validation("date", "must be a date in YYYY-MM-DD format")
	}
	return nil
}
