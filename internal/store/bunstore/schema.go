package bunstore

import (
	"context"
	"errors"
	"fmt"

	"bus-fleet/internal/models"

	"github.com/go-sql-driver/mysql"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// CreateSchema creates the fleet tables from the bun models. It is used for
// SQLite and MySQL deployments and tests; PostgreSQL goes through the SQL
// migrations.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	tables := []interface{}{(*models.Bus)(nil), (*models.Schedule)(nil), (*models.Booking)(nil)}
	for _, m := range tables {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", m, err)
		}
	}

	indexes := []struct {
		model  interface{}
		name   string
		column string
	}{
		{(*models.Schedule)(nil), "idx_schedules_bus_id", "bus_id"},
		{(*models.Booking)(nil), "idx_bookings_schedule_id", "schedule_id"},
	}
	// MySQL has no CREATE INDEX IF NOT EXISTS, an existing index is 1061 there
	mysqlDialect := db.Dialect().Name() == dialect.MySQL
	for _, idx := range indexes {
		q := db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			Column(idx.column)
		if !mysqlDialect {
			q = q.IfNotExists()
		}
		if _, err := q.Exec(ctx); err != nil && !isDuplicateIndex(err) {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
	}
	return nil
}

func isDuplicateIndex(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1061
}

// DropSchema drops the fleet tables in reverse dependency order.
func DropSchema(ctx context.Context, db *bun.DB) error {
	tables := []interface{}{(*models.Booking)(nil), (*models.Schedule)(nil), (*models.Bus)(nil)}
	for _, m := range tables {
		if _, err := db.NewDropTable().Model(m).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("drop table for %T: %w", m, err)
		}
	}
	return nil
}
