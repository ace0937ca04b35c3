package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"bus-fleet/internal/models"
	"bus-fleet/internal/store"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/uptrace/bun"
)

// DB is the bun-backed store. Bun is either the root *bun.DB or a bun.Tx
// when the value was handed out by RunInTx.
type DB struct {
	Bun  bun.IDB
	root *bun.DB
}

func New(db *bun.DB) *DB {
	return &DB{Bun: db, root: db}
}

func (d *DB) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	if d.root == nil {
		// already inside a transaction
		return fn(ctx, d)
	}
	return d.root.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &DB{Bun: tx})
	})
}

// ---------------- BUSES ----------------

func (d *DB) CreateBus(ctx context.Context, bus *models.Bus) error {
	if bus.ID == "" {
		bus.ID = uuid.NewString()
	}
	if bus.CreatedAt.IsZero() {
		bus.CreatedAt = time.Now().UTC()
	}
	_, err := d.Bun.NewInsert().Model(bus).Exec(ctx)
	return err
}

func (d *DB) GetBus(ctx context.Context, id string) (*models.Bus, error) {
	var bus models.Bus
	err := d.Bun.NewSelect().
		Model(&bus).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &bus, nil
}

func (d *DB) ListBuses(ctx context.Context) ([]models.Bus, error) {
	buses := []models.Bus{}
	err := d.Bun.NewSelect().
		Model(&buses).
		Order("bus_number ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return buses, nil
}

// UpdateBus → update bus_number and capacity only
func (d *DB) UpdateBus(ctx context.Context, bus models.Bus) error {
	res, err := d.Bun.NewUpdate().
		Model(&bus).
		Column("bus_number", "capacity").
		Where("id = ?", bus.ID).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (d *DB) DeleteBus(ctx context.Context, id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Bus)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// ---------------- SCHEDULES ----------------

func (d *DB) CreateSchedule(ctx context.Context, schedule *models.Schedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = time.Now().UTC()
	}
	_, err := d.Bun.NewInsert().Model(schedule).Exec(ctx)
	return err
}

func (d *DB) GetSchedule(ctx context.Context, id string) (*models.Schedule, error) {
	var schedule models.Schedule
	err := d.Bun.NewSelect().
		Model(&schedule).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &schedule, nil
}

func (d *DB) ListSchedulesByBus(ctx context.Context, busID string) ([]models.Schedule, error) {
	schedules := []models.Schedule{}
	err := d.Bun.NewSelect().
		Model(&schedules).
		Where("bus_id = ?", busID).
		Order("date ASC", "departure_time ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return schedules, nil
}

func (d *DB) UpdateSchedule(ctx context.Context, schedule models.Schedule) error {
	res, err := d.Bun.NewUpdate().
		Model(&schedule).
		Column("departure_time", "arrival_time", "date").
		Where("id = ?", schedule.ID).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (d *DB) DeleteSchedule(ctx context.Context, id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Schedule)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (d *DB) DeleteSchedulesByBus(ctx context.Context, busID string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Schedule)(nil)).
		Where("bus_id = ?", busID).
		Exec(ctx)
	return err
}

// ---------------- BOOKINGS ----------------

// CreateBooking relies on the unique (schedule_id, seat_number) constraint
// instead of a prior lookup, so two racing inserts cannot both succeed.
func (d *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now().UTC()
	}
	_, err := d.Bun.NewInsert().Model(booking).Exec(ctx)
	if isUniqueViolation(err) {
		return store.ErrDuplicateSeat
	}
	return err
}

func (d *DB) GetBookingBySeat(ctx context.Context, scheduleID string, seatNumber int) (*models.Booking, error) {
	var booking models.Booking
	err := d.Bun.NewSelect().
		Model(&booking).
		Where("schedule_id = ?", scheduleID).
		Where("seat_number = ?", seatNumber).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &booking, nil
}

func (d *DB) ListBookingsBySchedule(ctx context.Context, scheduleID string) ([]models.Booking, error) {
	bookings := []models.Booking{}
	err := d.Bun.NewSelect().
		Model(&bookings).
		Where("schedule_id = ?", scheduleID).
		Order("seat_number ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (d *DB) ListBookingsBySchedules(ctx context.Context, scheduleIDs []string) ([]models.Booking, error) {
	bookings := []models.Booking{}
	if len(scheduleIDs) == 0 {
		return bookings, nil
	}
	err := d.Bun.NewSelect().
		Model(&bookings).
		Where("schedule_id IN (?)", bun.In(scheduleIDs)).
		Order("schedule_id ASC", "seat_number ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (d *DB) DeleteBookingBySeat(ctx context.Context, scheduleID string, seatNumber int) (bool, error) {
	res, err := d.Bun.NewDelete().
		Model((*models.Booking)(nil)).
		Where("schedule_id = ?", scheduleID).
		Where("seat_number = ?", seatNumber).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d *DB) DeleteBookingsBySchedules(ctx context.Context, scheduleIDs []string) error {
	if len(scheduleIDs) == 0 {
		return nil
	}
	_, err := d.Bun.NewDelete().
		Model((*models.Booking)(nil)).
		Where("schedule_id IN (?)", bun.In(scheduleIDs)).
		Exec(ctx)
	return err
}

// ---------------- HELPERS ----------------

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// isUniqueViolation recognises PostgreSQL's unique_violation (23505),
// MySQL's duplicate entry (1062) and SQLite's UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
