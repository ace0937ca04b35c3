// migrate applies the embedded PostgreSQL migrations of the bus fleet
// service, optionally with sample data, or rolls them all back.
package main

import (
	"database/sql"
	"fmt"
	"os"

	"bus-fleet/internal/config"
	"bus-fleet/internal/database/migrations"
	"bus-fleet/internal/logger"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	_ = godotenv.Load()
	cfg := config.Load()

	var (
		dsn         string
		down        bool
		seed        bool
		showVersion bool
	)
	flagSet := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	flagSet.StringVar(&dsn, "dsn", cfg.Database.DSN, "PostgreSQL connection string")
	flagSet.BoolVar(&down, "down", false, "roll back every migration")
	flagSet.BoolVar(&seed, "seed", false, "also insert the sample fleet")
	flagSet.BoolVar(&showVersion, "version", false, "print the applied schema version and exit")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if down && seed {
		return fmt.Errorf("--down and --seed are mutually exclusive")
	}

	log := logger.NewConsoleLogger(os.Stdout)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("connect to database: %w", err)
	}

	runner := migrations.NewRunner(db, migrations.MigrateOptions{SeedData: seed}, log)
	defer runner.Close()

	switch {
	case showVersion:
		version, dirty, err := runner.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version %d (dirty: %t)\n", version, dirty)
		return nil
	case down:
		if err := runner.MigrateDown(); err != nil {
			return err
		}
		log.Info("DATABASE", "All migrations rolled back")
		return nil
	default:
		if err := runner.RunMigrations(); err != nil {
			return err
		}
		log.Info("DATABASE", "Migrations applied")
		return nil
	}
}
