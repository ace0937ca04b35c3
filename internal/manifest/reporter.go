// Package manifest builds passenger lists by joining bookings with the
// schedule they belong to. It never writes.
package manifest

import (
	"context"
	"errors"
	"fmt"
	"io"

	"bus-fleet/internal/apperr"
	"bus-fleet/internal/logger"
	"bus-fleet/internal/models"
	"bus-fleet/internal/store"
)

type options struct {
	requireExisting bool
}

type Option func(*options)

// RequireExisting makes unknown bus or schedule ids a NotFound error instead
// of an empty manifest.
func RequireExisting() Option {
	return func(o *options) { o.requireExisting = true }
}

type Reporter struct {
	Store  store.Store
	Logger *logger.Logger
}

func NewReporter(s store.Store, log *logger.Logger) *Reporter {
	if log == nil {
		log = logger.NewConsoleLogger(io.Discard)
	}
	return &Reporter{Store: s, Logger: log}
}

// ListPassengers returns the manifest of one schedule of the bus, or of all
// its schedules when scheduleID is empty. Rows follow schedule order (date,
// departure) and then seat number.
func (r *Reporter) ListPassengers(ctx context.Context, busID, scheduleID string, opts ...Option) ([]models.PassengerRow, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.requireExisting {
		if _, err := r.Store.GetBus(ctx, busID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, apperr.NotFound("bus", busID)
			}
			return nil, apperr.Storage("get bus", err)
		}
	}

	schedules, err := r.schedulesFor(ctx, busID, scheduleID, o)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(schedules))
	for _, sc := range schedules {
		ids = append(ids, sc.ID)
	}
	bookings, err := r.Store.ListBookingsBySchedules(ctx, ids)
	if err != nil {
		return nil, apperr.Storage("list bookings", err)
	}

	bySchedule := make(map[string][]models.Booking, len(schedules))
	for _, b := range bookings {
		bySchedule[b.ScheduleID] = append(bySchedule[b.ScheduleID], b)
	}

	rows := make([]models.PassengerRow, 0, len(bookings))
	for _, sc := range schedules {
		for _, b := range bySchedule[sc.ID] {
			rows = append(rows, models.NewPassengerRow(sc, b))
		}
	}

	r.Logger.Debug("MANIFEST", fmt.Sprintf("bus %s: %d passengers over %d schedules", busID, len(rows), len(schedules)))
	return rows, nil
}

func (r *Reporter) schedulesFor(ctx context.Context, busID, scheduleID string, o options) ([]models.Schedule, error) {
	if scheduleID == "" {
		schedules, err := r.Store.ListSchedulesByBus(ctx, busID)
		if err != nil {
			return nil, apperr.Storage("list schedules", err)
		}
		return schedules, nil
	}

	schedule, err := r.Store.GetSchedule(ctx, scheduleID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Storage("get schedule", err)
	}
	if err != nil || schedule.BusID != busID {
		if o.requireExisting {
			return nil, apperr.NotFound("schedule", scheduleID)
		}
		return nil, nil
	}
	return []models.Schedule{*schedule}, nil
}
