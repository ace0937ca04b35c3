package buses

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

type BusService struct {
	Store  store.Store
	Logger *logger.Logger
}

func NewBusService(s store.Store, log *logger.Logger) *BusService {
	if log == nil {
		log = logger.NewConsoleLogger(io.Discard)
	}
	return &BusService{Store: s, Logger: log}
}

func (s *BusService) ListBuses(ctx context.Context) ([]models.Bus, error) {
	buses, err := s.Store.ListBuses(ctx)
	if err != nil {
		return nil, apperr.Storage("list buses", err)
	}
	return buses, nil
}

func (s *BusService) GetBus(ctx context.Context, id string) (*models.Bus, error) {
	bus, err := s.Store.GetBus(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("bus", id)
	}
	if err != nil {
		return nil, apperr.Storage("get bus", err)
	}
	return bus, nil
}

func (s *BusService) AddBus(ctx context.Context, busNumber string, capacity int) (*models.Bus, error) {
	if err := models.ValidateBus(busNumber, capacity); err != nil {
		return nil, err
	}

	bus := &models.Bus{BusNumber: strings.TrimSpace(busNumber), Capacity: capacity}
	if err := s.Store.CreateBus(ctx, bus); err != nil {
		return nil, apperr.Storage("create bus", err)
	}

	s.Logger.LogFleet("ADD_BUS", bus.ID, fmt.Sprintf("bus %s with %d seats", bus.BusNumber, bus.Capacity))
	return bus, nil
}

// UpdateBus refuses a capacity below the highest seat already booked on any
// schedule of the bus, so no booking is left outside 1..capacity.
func (s *BusService) UpdateBus(ctx context.Context, id, busNumber string, capacity int) (*models.Bus, error) {
	if err := models.ValidateBus(busNumber, capacity); err != nil {
		return nil, err
	}

	var updated models.Bus
	err := s.Store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		bus, err := tx.GetBus(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("bus", id)
		}
		if err != nil {
			return err
		}

		if capacity < bus.Capacity {
			highest, err := highestBookedSeat(ctx, tx, id)
			if err != nil {
				return err
			}
			if capacity < highest {
				return apperr.Validation("capacity", fmt.Sprintf("seat %d is booked, capacity must be at least %d", highest, highest))
			}
		}

		bus.BusNumber = strings.TrimSpace(busNumber)
		bus.Capacity = capacity
		if err := tx.UpdateBus(ctx, *bus); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.NotFound("bus", id)
			}
			return err
		}
		updated = *bus
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap("update bus", err)
	}

	s.Logger.LogFleet("UPDATE_BUS", id, fmt.Sprintf("bus %s with %d seats", updated.BusNumber, updated.Capacity))
	return &updated, nil
}

// DeleteBus removes the bus with its schedules and their bookings. The
// schedule ids are captured before the schedules go away. An unknown id is
// a silent success.
func (s *BusService) DeleteBus(ctx context.Context, id string) error {
	var removedBookings int
	err := s.Store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		schedules, err := tx.ListSchedulesByBus(ctx, id)
		if err != nil {
			return err
		}
		scheduleIDs := make([]string, 0, len(schedules))
		for _, sc := range schedules {
			scheduleIDs = append(scheduleIDs, sc.ID)
		}

		bookings, err := tx.ListBookingsBySchedules(ctx, scheduleIDs)
		if err != nil {
			return err
		}
		removedBookings = len(bookings)

		if err := tx.DeleteBookingsBySchedules(ctx, scheduleIDs); err != nil {
			return err
		}
		if err := tx.DeleteSchedulesByBus(ctx, id); err != nil {
			return err
		}
		return tx.DeleteBus(ctx, id)
	})
	if err != nil {
		return apperr.Wrap("delete bus", err)
	}

	s.Logger.LogFleet("DELETE_BUS", id, fmt.Sprintf("removed with %d bookings", removedBookings))
	return nil
}

func highestBookedSeat(ctx context.Context, tx store.Store, busID string) (int, error) {
	schedules, err := tx.ListSchedulesByBus(ctx, busID)
	if err != nil {
		return 0, err
	}
	ids := make([]string, 0, len(schedules))
	for _, sc := range schedules {
		ids = append(ids, sc.ID)
	}
	bookings, err := tx.ListBookingsBySchedules(ctx, ids)
	if err != nil {
		return 0, err
	}

	highest := 0
	for _, b := range bookings {
		if b.SeatNumber > highest {
			highest = b.SeatNumber
		}
	}
	return highest, nil
}
