package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/inovacc/fleetroster/internal/model"
	"github.com/inovacc/fleetroster/internal/store/sqldb"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown store driver")

// Store defines the persistence operations used by fleet sessions, the
// HTTP API and the CLI. Implementations are safe for concurrent use.
//
//nolint:interfacebloat // all methods are required by the persistence contract
type Store interface {
	Ping(ctx context.Context) error

	// Per-user configuration
	LoadConfig(ctx context.Context, user string) (*model.FleetConfig, error)
	SaveConfig(ctx context.Context, user string, cfg *model.FleetConfig) error
	LoadRanges(ctx context.Context, user string) ([]model.Range, error)
	SaveRanges(ctx context.Context, user string, ranges []model.Range) error

	// Repair set, independent of days
	LoadRepairSet(ctx context.Context, user string) ([]int, error)
	SaveRepairSet(ctx context.Context, user string, units []int) error

	// Day records
	LoadDay(ctx context.Context, user string, date time.Time) (*model.DayRecord, error)
	SaveDay(ctx context.Context, day *model.DayRecord) error
	DeleteDay(ctx context.Context, user string, date time.Time) error
	ListDays(ctx context.Context, user string, from, to time.Time) ([]model.DayRecord, error)

	Close() error
}

// Config selects and locates a backend.
type Config struct {
	// Driver is one of sqlite, postgres or bolt
	Driver string `yaml:"driver"`

	// Path is the database file for sqlite and bolt
	Path string `yaml:"path"`

	// DSN is the connection string for postgres
	DSN string `yaml:"dsn"`
}

// Open opens the backend named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverSQLite:
		return sqldb.OpenSQLite(ctx, cfg.Path)
	case DriverPostgres:
		return sqldb.OpenPostgres(ctx, cfg.DSN)
	case DriverBolt:
		return NewBolt(cfg.Path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
