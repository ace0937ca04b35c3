package manifest_test

import (
	"context"
	"testing"

	"bus-fleet/internal/apperr"
	"bus-fleet/internal/manifest"
	"bus-fleet/internal/models"
	"bus-fleet/internal/store/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store     *memstore.Store
	bus       *models.Bus
	otherBus  *models.Bus
	schedules []*models.Schedule
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	s := memstore.New()

	bus := &models.Bus{BusNumber: "B1", Capacity: 4}
	require.NoError(t, s.CreateBus(ctx, bus))
	other := &models.Bus{BusNumber: "B2", Capacity: 4}
	require.NoError(t, s.CreateBus(ctx, other))

	f := fixture{store: s, bus: bus, otherBus: other}
	for _, sc := range []models.Schedule{
		{BusID: bus.ID, DepartureTime: "14:00", ArrivalTime: "16:00", Date: "2024-01-01"},
		{BusID: bus.ID, DepartureTime: "08:00", ArrivalTime: "10:00", Date: "2024-01-01"},
		{BusID: bus.ID, DepartureTime: "08:00", ArrivalTime: "10:00", Date: "2024-01-02"},
	} {
		sc := sc
		require.NoError(t, s.CreateSchedule(ctx, &sc))
		f.schedules = append(f.schedules, &sc)
	}

	book := func(scheduleID string, seat int, name string) {
		p := models.PassengerInfo{Name: name, Age: 20 + seat, Gender: models.GenderOther, ContactInfo: name + "@mail"}
		require.NoError(t, s.CreateBooking(ctx, &models.Booking{ScheduleID: scheduleID, SeatNumber: seat, Passenger: p}))
	}
	book(f.schedules[0].ID, 3, "Luis")
	book(f.schedules[0].ID, 1, "Ana")
	book(f.schedules[1].ID, 2, "Marta")
	// schedules[2] stays empty

	otherSchedule := &models.Schedule{BusID: other.ID, DepartureTime: "07:00", ArrivalTime: "09:00", Date: "2024-01-01"}
	require.NoError(t, s.CreateSchedule(ctx, otherSchedule))
	book(otherSchedule.ID, 1, "Pedro")

	return f
}

func TestListPassengersForSchedule(t *testing.T) {
	f := newFixture(t)
	r := manifest.NewReporter(f.store, nil)

	rows, err := r.ListPassengers(context.Background(), f.bus.ID, f.schedules[0].ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, models.PassengerRow{
		ScheduleID:    f.schedules[0].ID,
		ScheduleDate:  "2024-01-01",
		DepartureTime: "14:00",
		SeatNumber:    1,
		Name:          "Ana",
		Age:           21,
		Gender:        models.GenderOther,
		ContactInfo:   "Ana@mail",
	}, rows[0])
	assert.Equal(t, "Luis", rows[1].Name)
}

func TestListPassengersForBusIsUnionOfSchedules(t *testing.T) {
	f := newFixture(t)
	r := manifest.NewReporter(f.store, nil)
	ctx := context.Background()

	all, err := r.ListPassengers(ctx, f.bus.ID, "")
	require.NoError(t, err)

	var union []models.PassengerRow
	for _, sc := range f.schedules {
		rows, err := r.ListPassengers(ctx, f.bus.ID, sc.ID)
		require.NoError(t, err)
		union = append(union, rows...)
	}
	assert.ElementsMatch(t, union, all)

	seen := map[string]bool{}
	for _, row := range all {
		key := row.ScheduleID + "/" + row.Name
		assert.False(t, seen[key], "duplicate row %s", key)
		seen[key] = true
	}

	require.Len(t, all, 3)
	assert.Equal(t, "Marta", all[0].Name, "08:00 departs before 14:00")
	assert.Equal(t, "Ana", all[1].Name)
	assert.Equal(t, "Luis", all[2].Name)
}

func TestListPassengersUnknownIdsAreEmpty(t *testing.T) {
	f := newFixture(t)
	r := manifest.NewReporter(f.store, nil)
	ctx := context.Background()

	rows, err := r.ListPassengers(ctx, "missing", "")
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = r.ListPassengers(ctx, f.bus.ID, "missing")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestListPassengersScheduleOfAnotherBus(t *testing.T) {
	f := newFixture(t)
	r := manifest.NewReporter(f.store, nil)
	ctx := context.Background()

	foreign, err := f.store.ListSchedulesByBus(ctx, f.otherBus.ID)
	require.NoError(t, err)
	require.Len(t, foreign, 1)

	rows, err := r.ListPassengers(ctx, f.bus.ID, foreign[0].ID)
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = r.ListPassengers(ctx, f.bus.ID, foreign[0].ID, manifest.RequireExisting())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListPassengersRequireExisting(t *testing.T) {
	f := newFixture(t)
	r := manifest.NewReporter(f.store, nil)
	ctx := context.Background()

	_, err := r.ListPassengers(ctx, "missing", "", manifest.RequireExisting())
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = r.ListPassengers(ctx, f.bus.ID, "missing", manifest.RequireExisting())
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	rows, err := r.ListPassengers(ctx, f.bus.ID, f.schedules[2].ID, manifest.RequireExisting())
	require.NoError(t, err)
	assert.Empty(t, rows)
}
