// Package store defines the repository the fleet services persist through.
//
// Implementations live in the bunstore (PostgreSQL / SQLite) and memstore
// (in-process maps) subpackages. Both must reject a second booking for the
// same (schedule_id, seat_number) pair with ErrDuplicateSeat.
package store

import (
	"context"
	"errors"

	"bus-fleet/internal/models"
)

var (
	ErrNotFound      = errors.New("store: record not found")
	ErrDuplicateSeat = errors.New("store: seat already booked for schedule")
)

type BusStore interface {
	CreateBus(ctx context.Context, bus *models.Bus) error
	GetBus(ctx context.Context, id string) (*models.Bus, error)
	ListBuses(ctx context.Context) ([]models.Bus, error)
	UpdateBus(ctx context.Context, bus models.Bus) error
	DeleteBus(ctx context.Context, id string) error
}

type ScheduleStore interface {
	CreateSchedule(ctx context.Context, schedule *models.Schedule) error
	GetSchedule(ctx context.Context, id string) (*models.Schedule, error)
	ListSchedulesByBus(ctx context.Context, busID string) ([]models.Schedule, error)
	UpdateSchedule(ctx context.Context, schedule models.Schedule) error
	DeleteSchedule(ctx context.Context, id string) error
	DeleteSchedulesByBus(ctx context.Context, busID string) error
}

type BookingStore interface {
	// CreateBooking returns ErrDuplicateSeat when the seat is taken.
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBookingBySeat(ctx context.Context, scheduleID string, seatNumber int) (*models.Booking, error)
	ListBookingsBySchedule(ctx context.Context, scheduleID string) ([]models.Booking, error)
	ListBookingsBySchedules(ctx context.Context, scheduleIDs []string) ([]models.Booking, error)
	// DeleteBookingBySeat reports whether a booking was removed.
	DeleteBookingBySeat(ctx context.Context, scheduleID string, seatNumber int) (bool, error)
	DeleteBookingsBySchedules(ctx context.Context, scheduleIDs []string) error
}

type Store interface {
	BusStore
	ScheduleStore
	BookingStore

	// RunInTx runs fn against a Store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
