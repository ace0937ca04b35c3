// Package analytics aggregates seat occupancy per schedule, per bus and for
// the whole fleet. Figures are computed from the current bookings on every
// call.
package analytics

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

// ScheduleOccupancy is the load of a single departure.
type ScheduleOccupancy struct {
	ScheduleID    string  `json:"schedule_id"`
	Date          string  `json:"date"`
	DepartureTime string  `json:"departure_time"`
	BookedSeats   int     `json:"booked_seats"`
	Capacity      int     `json:"capacity"`
	LoadFactor    float64 `json:"load_factor"`
}

// DailyOccupancy sums the departures of one calendar date.
type DailyOccupancy struct {
	Date         string `json:"date"`
	Schedules    int    `json:"schedules"`
	BookedSeats  int    `json:"booked_seats"`
	SeatsOffered int    `json:"seats_offered"`
}

type BusOccupancy struct {
	BusID          string              `json:"bus_id"`
	BusNumber      string              `json:"bus_number"`
	Capacity       int                 `json:"capacity"`
	TotalSchedules int                 `json:"total_schedules"`
	BookedSeats    int                 `json:"booked_seats"`
	SeatsOffered   int                 `json:"seats_offered"`
	LoadFactor     float64             `json:"load_factor"`
	Daily          []DailyOccupancy    `json:"daily"`
	Schedules      []ScheduleOccupancy `json:"schedules"`
}

type FleetOccupancy struct {
	TotalBuses     int            `json:"total_buses"`
	TotalSchedules int            `json:"total_schedules"`
	BookedSeats    int            `json:"booked_seats"`
	SeatsOffered   int            `json:"seats_offered"`
	LoadFactor     float64        `json:"load_factor"`
	Buses          []BusOccupancy `json:"buses"`
}

type Service struct {
	Store  store.Store
	Logger *logger.Logger
}

func NewService(s store.Store, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewConsoleLogger(io.Discard)
	}
	return &Service{Store: s, Logger: log}
}

// BusOccupancy reports the load of every schedule of the bus.
func (s *Service) BusOccupancy(ctx context.Context, busID string) (*BusOccupancy, error) {
	bus, err := s.Store.GetBus(ctx, busID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("bus", busID)
	}
	if err != nil {
		return nil, apperr.Storage("get bus", err)
	}
	return s.busOccupancy(ctx, *bus)
}

// FleetOccupancy reports every bus, in registry order, plus fleet totals.
func (s *Service) FleetOccupancy(ctx context.Context) (*FleetOccupancy, error) {
	buses, err := s.Store.ListBuses(ctx)
	if err != nil {
		return nil, apperr.Storage("list buses", err)
	}

	fleet := &FleetOccupancy{TotalBuses: len(buses), Buses: make([]BusOccupancy, 0, len(buses))}
	for _, bus := range buses {
		occupancy, err := s.busOccupancy(ctx, bus)
		if err != nil {
			return nil, err
		}
		fleet.Buses = append(fleet.Buses, *occupancy)
		fleet.TotalSchedules += occupancy.TotalSchedules
		fleet.BookedSeats += occupancy.BookedSeats
		fleet.SeatsOffered += occupancy.SeatsOffered
	}
	fleet.LoadFactor = loadFactor(fleet.BookedSeats, fleet.SeatsOffered)

	s.Logger.Debug("ANALYTICS", fmt.Sprintf("fleet occupancy: %d/%d seats over %d schedules",
		fleet.BookedSeats, fleet.SeatsOffered, fleet.TotalSchedules))
	return fleet, nil
}

func (s *Service) busOccupancy(ctx context.Context, bus models.Bus) (*BusOccupancy, error) {
	schedules, err := s.Store.ListSchedulesByBus(ctx, bus.ID)
	if err != nil {
		return nil, apperr.Storage("list schedules", err)
	}

	ids := make([]string, len(schedules))
	for i, schedule := range schedules {
		ids[i] = schedule.ID
	}
	bookings, err := s.Store.ListBookingsBySchedules(ctx, ids)
	if err != nil {
		return nil, apperr.Storage("list bookings", err)
	}
	booked := make(map[string]int, len(schedules))
	for _, b := range bookings {
		booked[b.ScheduleID]++
	}

	result := &BusOccupancy{
		BusID:          bus.ID,
		BusNumber:      bus.BusNumber,
		Capacity:       bus.Capacity,
		TotalSchedules: len(schedules),
		Daily:          []DailyOccupancy{},
		Schedules:      make([]ScheduleOccupancy, 0, len(schedules)),
	}

	// schedules arrive ordered by date, so each day is one contiguous run
	for _, schedule := range schedules {
		n := booked[schedule.ID]
		result.Schedules = append(result.Schedules, ScheduleOccupancy{
			ScheduleID:    schedule.ID,
			Date:          schedule.Date,
			DepartureTime: schedule.DepartureTime,
			BookedSeats:   n,
			Capacity:      bus.Capacity,
			LoadFactor:    loadFactor(n, bus.Capacity),
		})
		result.BookedSeats += n
		result.SeatsOffered += bus.Capacity

		last := len(result.Daily) - 1
		if last < 0 || result.Daily[last].Date != schedule.Date {
			result.Daily = append(result.Daily, DailyOccupancy{Date: schedule.Date})
			last++
		}
		result.Daily[last].Schedules++
		result.Daily[last].BookedSeats += n
		result.Daily[last].SeatsOffered += bus.Capacity
	}
	result.LoadFactor = loadFactor(result.BookedSeats, result.SeatsOffered)
	return result, nil
}

func loadFactor(booked, offered int) float64 {
	if offered == 0 {
		return 0
	}
	return float64(booked) / float64(offered)
}
