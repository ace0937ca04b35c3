package schedules

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"bus-fleet/internal/apperr"
	"bus-fleet/internal/logger"
	"bus-fleet/internal/models"
	"bus-fleet/internal/store"
)

// ScheduleService keeps schedules tied to an existing bus. Overlapping or
// duplicate schedules on one bus are allowed.
type ScheduleService struct {
	Store  store.Store
	Logger *logger.Logger
}

func NewScheduleService(s store.Store, log *logger.Logger) *ScheduleService {
	if log == nil {
		log = logger.NewConsoleLogger(io.Discard)
	}
	return &ScheduleService{Store: s, Logger: log}
}

func (s *ScheduleService) ListSchedules(ctx context.Context, busID string) ([]models.Schedule, error) {
	schedules, err := s.Store.ListSchedulesByBus(ctx, busID)
	if err != nil {
		return nil, apperr.Storage("list schedules", err)
	}
	return schedules, nil
}

func (s *ScheduleService) GetSchedule(ctx context.Context, id string) (*models.Schedule, error) {
	schedule, err := s.Store.GetSchedule(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("schedule", id)
	}
	if err != nil {
		return nil, apperr.Storage("get schedule", err)
	}
	return schedule, nil
}

func (s *ScheduleService) AddSchedule(ctx context.Context, busID, departure, arrival, date string) (*models.Schedule, error) {
	if err := models.ValidateSchedule(departure, arrival, date); err != nil {
		return nil, err
	}

	schedule := &models.Schedule{
		BusID:         busID,
		DepartureTime: strings.TrimSpace(departure),
		ArrivalTime:   strings.TrimSpace(arrival),
		Date:          date,
	}
	err := s.Store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		if _, err := tx.GetBus(ctx, busID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.NotFound("bus", busID)
			}
			return err
		}
		return tx.CreateSchedule(ctx, schedule)
	})
	if err != nil {
		return nil, apperr.Wrap("create schedule", err)
	}

	s.Logger.LogFleet("ADD_SCHEDULE", schedule.ID, fmt.Sprintf("bus %s on %s %s-%s", busID, date, schedule.DepartureTime, schedule.ArrivalTime))
	return schedule, nil
}

func (s *ScheduleService) UpdateSchedule(ctx context.Context, id, departure, arrival, date string) (*models.Schedule, error) {
	if err := models.ValidateSchedule(departure, arrival, date); err != nil {
		return nil, err
	}

	var updated models.Schedule
	err := s.Store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		schedule, err := tx.GetSchedule(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("schedule", id)
		}
		if err != nil {
			return err
		}

		schedule.DepartureTime = strings.TrimSpace(departure)
		schedule.ArrivalTime = strings.TrimSpace(arrival)
		schedule.Date = date
		if err := tx.UpdateSchedule(ctx, *schedule); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.NotFound("schedule", id)
			}
			return err
		}
		updated = *schedule
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap("update schedule", err)
	}

	s.Logger.LogFleet("UPDATE_SCHEDULE", id, fmt.Sprintf("%s %s-%s", updated.Date, updated.DepartureTime, updated.ArrivalTime))
	return &updated, nil
}

// DeleteSchedule removes the schedule together with its bookings. An unknown
// id is a silent success.
func (s *ScheduleService) DeleteSchedule(ctx context.Context, id string) error {
	err := s.Store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		if err := tx.DeleteBookingsBySchedules(ctx, []string{id}); err != nil {
			return err
		}
		return tx.DeleteSchedule(ctx, id)
	})
	if err != nil {
		return apperr.Wrap("delete schedule", err)
	}

	s.Logger.LogFleet("DELETE_SCHEDULE", id, "removed with its bookings")
	return nil
}
