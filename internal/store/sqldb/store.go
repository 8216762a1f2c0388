// Package sqldb provides the SQL backends of the fleetroster store: SQLite
// through modernc.org/sqlite and PostgreSQL through lib/pq. Both share the
// same queries, rebound to the dialect's placeholder style.
package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/inovacc/fleetroster/internal/model"
)

// Store implements store.Store over database/sql.
type Store struct {
	db      *sql.DB
	dialect Dialect
	mu      sync.RWMutex
	now     func() time.Time
}

// New wraps an open database. The schema must already be migrated; see
// NewMigrator. It is exported for tests that supply their own *sql.DB.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect, now: time.Now}
}

// Dialect returns the SQL dialect of the store.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks if the database is accessible.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) q(query string) string {
	return s.dialect.Rebind(query)
}

func (s *Store) stamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

// ============================================================================
// Configuration
// ============================================================================

func (s *Store) LoadConfig(ctx context.Context, user string) (*model.FleetConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return loadConfig(ctx, s.db, s.q, model.NormalizeUser(user))
}

func (s *Store) SaveConfig(ctx context.Context, user string, cfg *model.FleetConfig) error {
	if cfg == nil {
		return errors.New("config is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveConfig(ctx, s.db, model.NormalizeUser(user), cfg)
}

// LoadRanges returns the stored ranges, or nil when the user has no config.
func (s *Store) LoadRanges(ctx context.Context, user string) ([]model.Range, error) {
	cfg, err := s.LoadConfig(ctx, user)
	if err != nil || cfg == nil {
		return nil, err
	}

	return cfg.Ranges, nil
}

// SaveRanges replaces the ranges of the user's config in one transaction,
// creating a default config when none exists.
func (s *Store) SaveRanges(ctx context.Context, user string, ranges []model.Range) (err error) {
	user = model.NormalizeUser(user)

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	cfg, err := loadConfig(ctx, tx, s.q, user)
	if err != nil {
		return err
	}

	if cfg == nil {
		def := model.DefaultFleetConfig()
		cfg = &def
	}

	cfg.Ranges = slices.Clone(ranges)
	if cfg.Ranges == nil {
		cfg.Ranges = []model.Range{}
	}

	if err = s.saveConfig(ctx, tx, user, cfg); err != nil {
		return err
	}

	return tx.Commit()
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func loadConfig(ctx context.Context, db queryer, rebind func(string) string, user string) (*model.FleetConfig, error) {
	var data []byte

	err := db.QueryRowContext(ctx, rebind(`SELECT data FROM fleet_configs WHERE user_name = ?`), user).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	var cfg model.FleetConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	return &cfg, nil
}

func (s *Store) saveConfig(ctx context.Context, db queryer, user string, cfg *model.FleetConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, s.q(`
		INSERT INTO fleet_configs (user_name, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (user_name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`),
		user, string(data), s.stamp())
	if err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	return nil
}

// ============================================================================
// Repair set
// ============================================================================

func (s *Store) LoadRepairSet(ctx context.Context, user string) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data []byte

	err := s.db.QueryRowContext(ctx, s.q(`SELECT units FROM repair_sets WHERE user_name = ?`),
		model.NormalizeUser(user)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return []int{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("loading repair set: %w", err)
	}

	units := []int{}
	if err := json.Unmarshal(data, &units); err != nil {
		return nil, fmt.Errorf("decoding repair set: %w", err)
	}

	return units, nil
}

func (s *Store) SaveRepairSet(ctx context.Context, user string, units []int) error {
	sorted := slices.Clone(units)
	if sorted == nil {
		sorted = []int{}
	}

	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	data, err := json.Marshal(sorted)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO repair_sets (user_name, units, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (user_name) DO UPDATE SET units = excluded.units, updated_at = excluded.updated_at`),
		model.NormalizeUser(user), string(data), s.stamp())
	if err != nil {
		return fmt.Errorf("saving repair set: %w", err)
	}

	return nil
}

// ============================================================================
// Day records
// ============================================================================

func (s *Store) LoadDay(ctx context.Context, user string, date time.Time) (*model.DayRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data []byte

	err := s.db.QueryRowContext(ctx, s.q(`SELECT data FROM day_records WHERE user_name = ? AND day = ?`),
		model.NormalizeUser(user), model.DateKey(date)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("loading day: %w", err)
	}

	var day model.DayRecord
	if err := json.Unmarshal(data, &day); err != nil {
		return nil, fmt.Errorf("decoding day: %w", err)
	}

	return &day, nil
}

// SaveDay writes the record for (user, date). An earlier record for the same
// key is overwritten, keeping its CreatedAt.
func (s *Store) SaveDay(ctx context.Context, day *model.DayRecord) (err error) {
	if day == nil {
		return errors.New("day record is required")
	}

	rec := *day
	rec.User = model.NormalizeUser(rec.User)
	rec.Date = model.Day(rec.Date)

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var created string

	err = tx.QueryRowContext(ctx, s.q(`SELECT created_at FROM day_records WHERE user_name = ? AND day = ?`),
		rec.User, rec.Key()).Scan(&created)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = nil
	case err != nil:
		return fmt.Errorf("reading existing day: %w", err)
	default:
		t, perr := time.Parse(time.RFC3339Nano, created)
		if perr != nil {
			return fmt.Errorf("parsing created_at %q: %w", created, perr)
		}

		rec.CreatedAt = t
	}

	rec.Stamp(s.now())

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, s.q(`
		INSERT INTO day_records (user_name, day, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_name, day) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`),
		rec.User, rec.Key(), string(data),
		rec.CreatedAt.UTC().Format(time.RFC3339Nano), rec.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving day: %w", err)
	}

	return tx.Commit()
}

func (s *Store) DeleteDay(ctx context.Context, user string, date time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, s.q(`DELETE FROM day_records WHERE user_name = ? AND day = ?`),
		model.NormalizeUser(user), model.DateKey(date))
	if err != nil {
		return fmt.Errorf("deleting day: %w", err)
	}

	return nil
}

// ListDays returns the user's records with from <= date <= to, oldest first.
func (s *Store) ListDays(ctx context.Context, user string, from, to time.Time) ([]model.DayRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT data FROM day_records
		WHERE user_name = ? AND day >= ? AND day <= ?
		ORDER BY day ASC`),
		model.NormalizeUser(user), model.DateKey(from), model.DateKey(to))
	if err != nil {
		return nil, fmt.Errorf("listing days: %w", err)
	}
	defer rows.Close()

	var days []model.DayRecord

	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning day: %w", err)
		}

		var day model.DayRecord
		if err := json.Unmarshal(data, &day); err != nil {
			return nil, fmt.Errorf("decoding day: %w", err)
		}

		days = append(days, day)
	}

	return days, rows.Err()
}
