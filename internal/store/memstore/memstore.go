// Package memstore is an in-process implementation of store.Store. It keeps
// no data across restarts and is meant for tests and local demos.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"bus-fleet/internal/models"
	"bus-fleet/internal/store"

	"github.com/google/uuid"
)

type seatKey struct {
	scheduleID string
	seat       int
}

type data struct {
	buses     map[string]models.Bus
	schedules map[string]models.Schedule
	bookings  map[seatKey]models.Booking
}

func (d *data) clone() *data {
	c := &data{
		buses:     make(map[string]models.Bus, len(d.buses)),
		schedules: make(map[string]models.Schedule, len(d.schedules)),
		bookings:  make(map[seatKey]models.Booking, len(d.bookings)),
	}
	for k, v := range d.buses {
		c.buses[k] = v
	}
	for k, v := range d.schedules {
		c.schedules[k] = v
	}
	for k, v := range d.bookings {
		c.bookings[k] = v
	}
	return c
}

// Store guards its data with a single RWMutex. Uniqueness of a
// (schedule, seat) pair is checked and written under the write lock.
type Store struct {
	mu   sync.RWMutex
	data *data
}

func New() *Store {
	return &Store{data: &data{
		buses:     make(map[string]models.Bus),
		schedules: make(map[string]models.Schedule),
		bookings:  make(map[seatKey]models.Booking),
	}}
}

func (s *Store) read(fn func(d *data)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.data)
}

func (s *Store) write(fn func(d *data) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// RunInTx holds the write lock for the whole of fn and works on a copy of
// the data, which replaces the live data only if fn succeeds.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &txStore{data: s.data.clone()}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	s.data = tx.data
	return nil
}

// ---------------- BUSES ----------------

func (s *Store) CreateBus(_ context.Context, bus *models.Bus) error {
	return s.write(func(d *data) error { return createBus(d, bus) })
}

func (s *Store) GetBus(_ context.Context, id string) (*models.Bus, error) {
	var (
		bus *models.Bus
		err error
	)
	s.read(func(d *data) { bus, err = getBus(d, id) })
	return bus, err
}

func (s *Store) ListBuses(_ context.Context) ([]models.Bus, error) {
	var buses []models.Bus
	s.read(func(d *data) { buses = listBuses(d) })
	return buses, nil
}

func (s *Store) UpdateBus(_ context.Context, bus models.Bus) error {
	return s.write(func(d *data) error { return updateBus(d, bus) })
}

func (s *Store) DeleteBus(_ context.Context, id string) error {
	return s.write(func(d *data) error {
		delete(d.buses, id)
		return nil
	})
}

// ---------------- SCHEDULES ----------------

func (s *Store) CreateSchedule(_ context.Context, schedule *models.Schedule) error {
	return s.write(func(d *data) error { return createSchedule(d, schedule) })
}

func (s *Store) GetSchedule(_ context.Context, id string) (*models.Schedule, error) {
	var (
		schedule *models.Schedule
		err      error
	)
	s.read(func(d *data) { schedule, err = getSchedule(d, id) })
	return schedule, err
}

func (s *Store) ListSchedulesByBus(_ context.Context, busID string) ([]models.Schedule, error) {
	var schedules []models.Schedule
	s.read(func(d *data) { schedules = listSchedulesByBus(d, busID) })
	return schedules, nil
}

func (s *Store) UpdateSchedule(_ context.Context, schedule models.Schedule) error {
	return s.write(func(d *data) error { return updateSchedule(d, schedule) })
}

func (s *Store) DeleteSchedule(_ context.Context, id string) error {
	return s.write(func(d *data) error {
		delete(d.schedules, id)
		return nil
	})
}

func (s *Store) DeleteSchedulesByBus(_ context.Context, busID string) error {
	return s.write(func(d *data) error {
		deleteSchedulesByBus(d, busID)
		return nil
	})
}

// ---------------- BOOKINGS ----------------

func (s *Store) CreateBooking(_ context.Context, booking *models.Booking) error {
	return s.write(func(d *data) error { return createBooking(d, booking) })
}

func (s *Store) GetBookingBySeat(_ context.Context, scheduleID string, seatNumber int) (*models.Booking, error) {
	var (
		booking *models.Booking
		err     error
	)
	s.read(func(d *data) { booking, err = getBookingBySeat(d, scheduleID, seatNumber) })
	return booking, err
}

func (s *Store) ListBookingsBySchedule(_ context.Context, scheduleID string) ([]models.Booking, error) {
	var bookings []models.Booking
	s.read(func(d *data) { bookings = listBookings(d, []string{scheduleID}) })
	return bookings, nil
}

func (s *Store) ListBookingsBySchedules(_ context.Context, scheduleIDs []string) ([]models.Booking, error) {
	var bookings []models.Booking
	s.read(func(d *data) { bookings = listBookings(d, scheduleIDs) })
	return bookings, nil
}

func (s *Store) DeleteBookingBySeat(_ context.Context, scheduleID string, seatNumber int) (bool, error) {
	var deleted bool
	err := s.write(func(d *data) error {
		deleted = deleteBookingBySeat(d, scheduleID, seatNumber)
		return nil
	})
	return deleted, err
}

func (s *Store) DeleteBookingsBySchedules(_ context.Context, scheduleIDs []string) error {
	return s.write(func(d *data) error {
		deleteBookingsBySchedules(d, scheduleIDs)
		return nil
	})
}

// ---------------- OPERATIONS ON DATA ----------------

func createBus(d *data, bus *models.Bus) error {
	if bus.ID == "" {
		bus.ID = uuid.NewString()
	}
	if bus.CreatedAt.IsZero() {
		bus.CreatedAt = time.Now().UTC()
	}
	d.buses[bus.ID] = *bus
	return nil
}

func getBus(d *data, id string) (*models.Bus, error) {
	bus, ok := d.buses[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &bus, nil
}

func listBuses(d *data) []models.Bus {
	buses := make([]models.Bus, 0, len(d.buses))
	for _, bus := range d.buses {
		buses = append(buses, bus)
	}
	sort.Slice(buses, func(i, j int) bool {
		if buses[i].BusNumber != buses[j].BusNumber {
			return buses[i].BusNumber < buses[j].BusNumber
		}
		return buses[i].ID < buses[j].ID
	})
	return buses
}

func updateBus(d *data, bus models.Bus) error {
	existing, ok := d.buses[bus.ID]
	if !ok {
		return store.ErrNotFound
	}
	existing.BusNumber = bus.BusNumber
	existing.Capacity = bus.Capacity
	d.buses[bus.ID] = existing
	return nil
}

func createSchedule(d *data, schedule *models.Schedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = time.Now().UTC()
	}
	d.schedules[schedule.ID] = *schedule
	return nil
}

func getSchedule(d *data, id string) (*models.Schedule, error) {
	schedule, ok := d.schedules[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &schedule, nil
}

func listSchedulesByBus(d *data, busID string) []models.Schedule {
	schedules := []models.Schedule{}
	for _, schedule := range d.schedules {
		if schedule.BusID == busID {
			schedules = append(schedules, schedule)
		}
	}
	sort.Slice(schedules, func(i, j int) bool {
		a, b := schedules[i], schedules[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.DepartureTime != b.DepartureTime {
			return a.DepartureTime < b.DepartureTime
		}
		return a.ID < b.ID
	})
	return schedules
}

func updateSchedule(d *data, schedule models.Schedule) error {
	existing, ok := d.schedules[schedule.ID]
	if !ok {
		return store.ErrNotFound
	}
	existing.DepartureTime = schedule.DepartureTime
	existing.ArrivalTime = schedule.ArrivalTime
	existing.Date = schedule.Date
	d.schedules[schedule.ID] = existing
	return nil
}

func deleteSchedulesByBus(d *data, busID string) {
	for id, schedule := range d.schedules {
		if schedule.BusID == busID {
			delete(d.schedules, id)
		}
	}
}

func createBooking(d *data, booking *models.Booking) error {
	key := seatKey{booking.ScheduleID, booking.SeatNumber}
	if _, taken := d.bookings[key]; taken {
		return store.ErrDuplicateSeat
	}
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now().UTC()
	}
	d.bookings[key] = *booking
	return nil
}

func getBookingBySeat(d *data, scheduleID string, seatNumber int) (*models.Booking, error) {
	booking, ok := d.bookings[seatKey{scheduleID, seatNumber}]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &booking, nil
}

func listBookings(d *data, scheduleIDs []string) []models.Booking {
	wanted := make(map[string]struct{}, len(scheduleIDs))
	for _, id := range scheduleIDs {
		wanted[id] = struct{}{}
	}
	bookings := []models.Booking{}
	for key, booking := range d.bookings {
		if _, ok := wanted[key.scheduleID]; ok {
			bookings = append(bookings, booking)
		}
	}
	sort.Slice(bookings, func(i, j int) bool {
		if bookings[i].ScheduleID != bookings[j].ScheduleID {
			return bookings[i].ScheduleID < bookings[j].ScheduleID
		}
		return bookings[i].SeatNumber < bookings[j].SeatNumber
	})
	return bookings
}

func deleteBookingBySeat(d *data, scheduleID string, seatNumber int) bool {
	key := seatKey{scheduleID, seatNumber}
	if _, ok := d.bookings[key]; !ok {
		return false
	}
	delete(d.bookings, key)
	return true
}

func deleteBookingsBySchedules(d *data, scheduleIDs []string) {
	for _, id := range scheduleIDs {
		for key := range d.bookings {
			if key.scheduleID == id {
				delete(d.bookings, key)
			}
		}
	}
}
