package analytics_test

import (
	"context"
	"testing"

	"bus-fleet/internal/analytics"
	"bus-fleet/internal/apperr"
	"bus-fleet/internal/models"
	"bus-fleet/internal/store/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rider = models.PassengerInfo{Name: "Ana", Age: 30, Gender: models.GenderFemale, ContactInfo: "x"}

func addSchedule(t *testing.T, s *memstore.Store, busID, date, departure string, seats ...int) *models.Schedule {
	t.Helper()
	ctx := context.Background()
	schedule := &models.Schedule{BusID: busID, DepartureTime: departure, ArrivalTime: "23:00", Date: date}
	require.NoError(t, s.CreateSchedule(ctx, schedule))
	for _, seat := range seats {
		require.NoError(t, s.CreateBooking(ctx, &models.Booking{ScheduleID: schedule.ID, SeatNumber: seat, Passenger: rider}))
	}
	return schedule
}

func TestBusOccupancy(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	bus := &models.Bus{BusNumber: "B1", Capacity: 4}
	require.NoError(t, s.CreateBus(ctx, bus))

	addSchedule(t, s, bus.ID, "2024-01-02", "09:00")
	morning := addSchedule(t, s, bus.ID, "2024-01-01", "08:00", 1, 2, 3)
	addSchedule(t, s, bus.ID, "2024-01-01", "18:00", 4)

	report, err := analytics.NewService(s, nil).BusOccupancy(ctx, bus.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalSchedules)
	assert.Equal(t, 4, report.BookedSeats)
	assert.Equal(t, 12, report.SeatsOffered)
	assert.InDelta(t, 4.0/12.0, report.LoadFactor, 1e-9)

	require.Len(t, report.Schedules, 3)
	assert.Equal(t, morning.ID, report.Schedules[0].ScheduleID)
	assert.InDelta(t, 0.75, report.Schedules[0].LoadFactor, 1e-9)

	require.Len(t, report.Daily, 2)
	assert.Equal(t, analytics.DailyOccupancy{Date: "2024-01-01", Schedules: 2, BookedSeats: 4, SeatsOffered: 8}, report.Daily[0])
	assert.Equal(t, analytics.DailyOccupancy{Date: "2024-01-02", Schedules: 1, BookedSeats: 0, SeatsOffered: 4}, report.Daily[1])
}

func TestBusOccupancyUnknownBus(t *testing.T) {
	_, err := analytics.NewService(memstore.New(), nil).BusOccupancy(context.Background(), "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestFleetOccupancy(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	big := &models.Bus{BusNumber: "B1", Capacity: 10}
	small := &models.Bus{BusNumber: "B2", Capacity: 2}
	idle := &models.Bus{BusNumber: "B3", Capacity: 5}
	require.NoError(t, s.CreateBus(ctx, big))
	require.NoError(t, s.CreateBus(ctx, small))
	require.NoError(t, s.CreateBus(ctx, idle))

	addSchedule(t, s, big.ID, "2024-01-01", "08:00", 1, 2)
	addSchedule(t, s, small.ID, "2024-01-01", "08:00", 1, 2)

	fleet, err := analytics.NewService(s, nil).FleetOccupancy(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, fleet.TotalBuses)
	assert.Equal(t, 2, fleet.TotalSchedules)
	assert.Equal(t, 4, fleet.BookedSeats)
	assert.Equal(t, 12, fleet.SeatsOffered)
	require.Len(t, fleet.Buses, 3)

	for _, bus := range fleet.Buses {
		if bus.BusID == idle.ID {
			assert.Zero(t, bus.LoadFactor, "a bus without schedules offers no seats")
			assert.Empty(t, bus.Daily)
		}
	}
}

func TestFleetOccupancyEmpty(t *testing.T) {
	fleet, err := analytics.NewService(memstore.New(), nil).FleetOccupancy(context.Background())
	require.NoError(t, err)
	assert.Zero(t, fleet.TotalBuses)
	assert.Empty(t, fleet.Buses)
	assert.Zero(t, fleet.LoadFactor)
}
