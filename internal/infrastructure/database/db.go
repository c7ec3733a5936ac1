package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/Khin-96/pochi-sub000/pkg/config"
	"github.com/Khin-96/pochi-sub000/pkg/db"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so repositories can run
// inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type DBManager struct {
	Db     *sql.DB
	logger zerolog.Logger
}

func New(cfg *config.DatabaseConfig, logger zerolog.Logger) (*DBManager, error) {
	return NewWithDSN(db.GetDBDSN(cfg), cfg, logger)
}

// NewWithDSN connects to dsn, taking only pool and retry settings from cfg.
func NewWithDSN(DBDSN string, cfg *config.DatabaseConfig, logger zerolog.Logger) (*DBManager, error) {
	Db, err := sql.Open("postgres", DBDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	Db.SetMaxOpenConns(cfg.MaxOpenConns)
	Db.SetMaxIdleConns(cfg.MaxIdleConns)
	Db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	retries := cfg.ConnectRetries
	if retries < 1 {
		retries = 1
	}
	for i := 0; i < retries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = Db.PingContext(ctx)
		cancel()
		if err == nil {
			break
		}
		logger.Warn().Err(err).Int("attempt", i+1).Int("max_attempts", retries).Msg("Waiting for database")
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		Db.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	logger.Info().Str("host", cfg.Host).Str("database", cfg.DBName).Msg("Connected to database")

	return &DBManager{
		Db:     Db,
		logger: logger,
	}, nil
}

func (dm *DBManager) Ping(ctx context.Context) error {
	return dm.Db.PingContext(ctx)
}

// Migrate applies the embedded migrations. steps > 0 migrates up that many
// versions, steps < 0 down, and 0 means all the way up.
func (dm *DBManager) Migrate(migrationsFS fs.FS, steps int) error {
	driver, err := postgres.WithInstance(dm.Db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to set up migrate driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrationsFS, ".")
	if err != nil {
		return fmt.Errorf("failed to create iofs source driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to set up migrate instance: %w", err)
	}

	if steps == 0 {
		err = m.Up()
	} else {
		err = m.Steps(steps)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, verr := m.Version()
	if verr == nil {
		dm.logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("Database migrations applied")
	}
	return nil
}

func (dm *DBManager) ShutDown() {
	if dm.Db != nil {
		if err := dm.Db.Close(); err != nil {
			dm.logger.Error().Err(err).Msg("Failed to close database")
		}
	}
}

const (
	pqUniqueViolation = "23505"
	pqCheckViolation  = "23514"
)

func IsUniqueViolation(err error) bool {
	return hasCode(err, pqUniqueViolation)
}

func IsCheckViolation(err error) bool {
	return hasCode(err, pqCheckViolation)
}

func hasCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}
