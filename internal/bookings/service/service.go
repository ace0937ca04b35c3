package bookings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"bus-fleet/internal/apperr"
	"bus-fleet/internal/logger"
	"bus-fleet/internal/models"
	"bus-fleet/internal/store"

	"github.com/google/uuid"
)

// SeatLocker holds a seat for the duration of one booking attempt. A hold is
// released only by the token that took it.
type SeatLocker interface {
	LockSeat(ctx context.Context, scheduleID string, seatNumber int, token string) (bool, error)
	UnlockSeat(ctx context.Context, scheduleID string, seatNumber int, token string) error
}

type EventPublisher interface {
	PublishSeatStatus(ctx context.Context, event models.SeatStatusChangeEvent) error
}

// Publishers sends every event to each of its publishers, even when an
// earlier one fails.
type Publishers []EventPublisher

func (p Publishers) PublishSeatStatus(ctx context.Context, event models.SeatStatusChangeEvent) error {
	var errs []error
	for _, pub := range p {
		if err := pub.PublishSeatStatus(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BookingService is the seat ledger. Locker and Events are optional; the
// store's uniqueness guarantee on (schedule, seat) is what prevents double
// booking.
type BookingService struct {
	Store  store.Store
	Locker SeatLocker
	Events EventPublisher
	Logger *logger.Logger
}

func NewBookingService(s store.Store, locker SeatLocker, events EventPublisher, log *logger.Logger) *BookingService {
	if log == nil {
		log = logger.NewConsoleLogger(io.Discard)
	}
	return &BookingService{Store: s, Locker: locker, Events: events, Logger: log}
}

func (s *BookingService) GetBookings(ctx context.Context, scheduleID string) ([]models.Booking, error) {
	bookings, err := s.Store.ListBookingsBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, apperr.Storage("list bookings", err)
	}
	return bookings, nil
}

func (s *BookingService) GetBooking(ctx context.Context, scheduleID string, seatNumber int) (*models.Booking, error) {
	booking, err := s.Store.GetBookingBySeat(ctx, scheduleID, seatNumber)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("booking", fmt.Sprintf("%s#%d", scheduleID, seatNumber))
	}
	if err != nil {
		return nil, apperr.Storage("get booking", err)
	}
	return booking, nil
}

// SeatState derives the status of seats 1..capacity from the current
// bookings of the schedule. Nothing is persisted.
func (s *BookingService) SeatState(ctx context.Context, scheduleID string, capacity int) (map[int]models.SeatStatus, error) {
	if capacity < 1 {
		return nil, apperr.Validation("capacity", "must be at least 1")
	}
	bookings, err := s.GetBookings(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	state := make(map[int]models.SeatStatus, capacity)
	for seat := 1; seat <= capacity; seat++ {
		state[seat] = models.SeatFree
	}
	for _, b := range bookings {
		if _, ok := state[b.SeatNumber]; ok {
			state[b.SeatNumber] = models.SeatBooked
		}
	}
	return state, nil
}

// SeatMap is SeatState with the capacity taken from the schedule's bus.
func (s *BookingService) SeatMap(ctx context.Context, scheduleID string) (map[int]models.SeatStatus, error) {
	_, bus, err := s.scheduleWithBus(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	return s.SeatState(ctx, scheduleID, bus.Capacity)
}

func (s *BookingService) AvailableSeats(ctx context.Context, scheduleID string) ([]int, error) {
	state, err := s.SeatMap(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	return FreeSeats(state), nil
}

// FreeSeats lists the free seat numbers of a seat state in ascending order.
func FreeSeats(state map[int]models.SeatStatus) []int {
	free := []int{}
	for seat, status := range state {
		if status == models.SeatFree {
			free = append(free, seat)
		}
	}
	sort.Ints(free)
	return free
}

func (s *BookingService) BookSeat(ctx context.Context, scheduleID string, seatNumber int, passenger models.PassengerInfo) (*models.Booking, error) {
	if err := passenger.Validate(); err != nil {
		return nil, err
	}

	_, bus, err := s.scheduleWithBus(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if seatNumber < 1 || seatNumber > bus.Capacity {
		return nil, apperr.Validation("seat_number", fmt.Sprintf("must be between 1 and %d", bus.Capacity))
	}

	if s.Locker != nil {
		token := uuid.NewString()
		held, err := s.Locker.LockSeat(ctx, scheduleID, seatNumber, token)
		switch {
		case err != nil:
			s.Logger.Warn("REDIS", fmt.Sprintf("seat hold unavailable for %s#%d, relying on store: %v", scheduleID, seatNumber, err))
		case !held:
			s.Logger.LogBooking("HELD", scheduleID, seatNumber, "another booking attempt holds the seat")
			return nil, apperr.SeatUnavailable(scheduleID, seatNumber)
		default:
			defer func() {
				if err := s.Locker.UnlockSeat(context.WithoutCancel(ctx), scheduleID, seatNumber, token); err != nil {
					s.Logger.Warn("REDIS", fmt.Sprintf("failed to release hold on %s#%d: %v", scheduleID, seatNumber, err))
				}
			}()
		}
	}

	booking := &models.Booking{ScheduleID: scheduleID, SeatNumber: seatNumber, Passenger: passenger}
	if err := s.Store.CreateBooking(ctx, booking); err != nil {
		if errors.Is(err, store.ErrDuplicateSeat) {
			s.Logger.LogBooking("CONFLICT", scheduleID, seatNumber, "seat already booked")
			return nil, apperr.SeatUnavailable(scheduleID, seatNumber)
		}
		return nil, apperr.Storage("create booking", err)
	}

	s.Logger.LogBooking("BOOK", scheduleID, seatNumber, passenger.Name)
	s.publish(ctx, models.NewSeatStatusChangeEvent(scheduleID, []int{seatNumber}, models.SeatBooked))
	return booking, nil
}

// CancelSeat frees a seat. Cancelling a seat that is not booked is a no-op.
func (s *BookingService) CancelSeat(ctx context.Context, scheduleID string, seatNumber int) error {
	removed, err := s.Store.DeleteBookingBySeat(ctx, scheduleID, seatNumber)
	if err != nil {
		return apperr.Storage("delete booking", err)
	}
	if !removed {
		s.Logger.Debug("BOOKING", fmt.Sprintf("cancel on free seat %s#%d ignored", scheduleID, seatNumber))
		return nil
	}

	s.Logger.LogBooking("CANCEL", scheduleID, seatNumber, "seat released")
	s.publish(ctx, models.NewSeatStatusChangeEvent(scheduleID, []int{seatNumber}, models.SeatFree))
	return nil
}

// BoardingPass gathers what is printed on a booked seat's pass.
func (s *BookingService) BoardingPass(ctx context.Context, scheduleID string, seatNumber int) (*models.BoardingPass, error) {
	schedule, bus, err := s.scheduleWithBus(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	booking, err := s.GetBooking(ctx, scheduleID, seatNumber)
	if err != nil {
		return nil, err
	}
	return &models.BoardingPass{
		BookingID:     booking.ID,
		ScheduleID:    schedule.ID,
		BusNumber:     bus.BusNumber,
		Date:          schedule.Date,
		DepartureTime: schedule.DepartureTime,
		SeatNumber:    booking.SeatNumber,
		PassengerName: booking.Passenger.Name,
	}, nil
}

func (s *BookingService) scheduleWithBus(ctx context.Context, scheduleID string) (*models.Schedule, *models.Bus, error) {
	schedule, err := s.Store.GetSchedule(ctx, scheduleID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, apperr.NotFound("schedule", scheduleID)
	}
	if err != nil {
		return nil, nil, apperr.Storage("get schedule", err)
	}

	bus, err := s.Store.GetBus(ctx, schedule.BusID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, apperr.NotFound("bus", schedule.BusID)
	}
	if err != nil {
		return nil, nil, apperr.Storage("get bus", err)
	}
	return schedule, bus, nil
}

func (s *BookingService) publish(ctx context.Context, event models.SeatStatusChangeEvent) {
	if s.Events == nil {
		return
	}
	if err := s.Events.PublishSeatStatus(ctx, event); err != nil {
		s.Logger.Error("EVENTS", fmt.Sprintf("seat status event for %s not published: %v", event.ScheduleID, err))
	}
}
