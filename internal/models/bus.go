package models

import (
	"strings"
	"time"

	"bus-fleet/internal/apperr"

	"github.com/uptrace/bun"
)

type Bus struct {
	bun.BaseModel `bun:"table:buses"`

	ID        string    `bun:"id,pk" json:"id"`
	BusNumber string    `bun:"bus_number,notnull" json:"bus_number"`
	Capacity  int       `bun:"capacity,notnull" json:"capacity"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
}

type BusRequest struct {
	BusNumber string `json:"bus_number"`
	Capacity  int    `json:"capacity"`
}

// ValidateBus checks the operator-supplied fields of a bus.
func ValidateBus(busNumber string, capacity int) error {
	if strings.TrimSpace(busNumber) == "" {
		return apperr.Validation("bus_number", "must not be empty")
	}
	if capacity < 1 {
		return apperr.Validation("capacity", "must be at least 1")
	}
	return nil
}
