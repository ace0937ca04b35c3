package memstore

import (
	"context"

	"bus-fleet/internal/models"
	"bus-fleet/internal/store"
)

// txStore works on a private copy of the data while the parent Store holds
// its write lock, so it needs no locking of its own.
type txStore struct {
	data *data
}

func (t *txStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	return fn(ctx, t)
}

func (t *txStore) CreateBus(_ context.Context, bus *models.Bus) error {
	return createBus(t.data, bus)
}

func (t *txStore) GetBus(_ context.Context, id string) (*models.Bus, error) {
	return getBus(t.data, id)
}

func (t *txStore) ListBuses(_ context.Context) ([]models.Bus, error) {
	return listBuses(t.data), nil
}

func (t *txStore) UpdateBus(_ context.Context, bus models.Bus) error {
	return updateBus(t.data, bus)
}

func (t *txStore) DeleteBus(_ context.Context, id string) error {
	delete(t.data.buses, id)
	return nil
}

func (t *txStore) CreateSchedule(_ context.Context, schedule *models.Schedule) error {
	return createSchedule(t.data, schedule)
}

func (t *txStore) GetSchedule(_ context.Context, id string) (*models.Schedule, error) {
	return getSchedule(t.data, id)
}

func (t *txStore) ListSchedulesByBus(_ context.Context, busID string) ([]models.Schedule, error) {
	return listSchedulesByBus(t.data, busID), nil
}

func (t *txStore) UpdateSchedule(_ context.Context, schedule models.Schedule) error {
	return updateSchedule(t.data, schedule)
}

func (t *txStore) DeleteSchedule(_ context.Context, id string) error {
	delete(t.data.schedules, id)
	return nil
}

func (t *txStore) DeleteSchedulesByBus(_ context.Context, busID string) error {
	deleteSchedulesByBus(t.data, busID)
	return nil
}

func (t *txStore) CreateBooking(_ context.Context, booking *models.Booking) error {
	return createBooking(t.data, booking)
}

func (t *txStore) GetBookingBySeat(_ context.Context, scheduleID string, seatNumber int) (*models.Booking, error) {
	return getBookingBySeat(t.data, scheduleID, seatNumber)
}

func (t *txStore) ListBookingsBySchedule(_ context.Context, scheduleID string) ([]models.Booking, error) {
	return listBookings(t.data, []string{scheduleID}), nil
}

func (t *txStore) ListBookingsBySchedules(_ context.Context, scheduleIDs []string) ([]models.Booking, error) {
	return listBookings(t.data, scheduleIDs), nil
}

func (t *txStore) DeleteBookingBySeat(_ context.Context, scheduleID string, seatNumber int) (bool, error) {
	return deleteBookingBySeat(t.data, scheduleID, seatNumber), nil
}

func (t *txStore) DeleteBookingsBySchedules(_ context.Context, scheduleIDs []string) error {
	deleteBookingsBySchedules(t.data, scheduleIDs)
	return nil
}

var (
	_ store.Store = (*Store)(nil)
	_ store.Store = (*txStore)(nil)
)
