package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/inovacc/fleetroster/internal/model"
	"go.etcd.io/bbolt"
)

const (
	boltBucketConfigs = "configs" // key: user -> FleetConfig JSON
	boltBucketRepairs = "repairs" // key: user -> []int JSON
	boltBucketDays    = "days"    // nested bucket per user; key: YYYY-MM-DD -> DayRecord JSON
)

var errConfigRequired = errors.New("config is required")

// Bolt is a Store backed by a BoltDB file.
type Bolt struct {
	storage *bbolt.DB
	now     func() time.Time
}

// NewBolt opens (or creates) a Bolt database at path.
func NewBolt(path string) (*Bolt, error) {
	if path == "" {
		return nil, errors.New("bolt: database path is required")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	instance, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	if err := instance.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{boltBucketConfigs, boltBucketRepairs, boltBucketDays} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}

		return nil
	}); err != nil {
		_ = instance.Close()

		return nil, err
	}

	return &Bolt{storage: instance, now: time.Now}, nil
}

// Close closes the database.
func (b *Bolt) Close() error {
	return b.storage.Close()
}

// Ping checks that the database file is still open.
func (b *Bolt) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return b.storage.View(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(boltBucketConfigs)) == nil {
			return errors.New("bolt: configs bucket missing")
		}

		return nil
	})
}

func (b *Bolt) LoadConfig(ctx context.Context, user string) (*model.FleetConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var cfg *model.FleetConfig

	err := b.storage.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(boltBucketConfigs)).Get([]byte(model.NormalizeUser(user)))
		if v == nil {
			return nil
		}

		var c model.FleetConfig
		if err := json.Unmarshal(v, &c); err != nil {
			return err
		}

		cfg = &c

		return nil
	})

	return cfg, err
}

func (b *Bolt) SaveConfig(ctx context.Context, user string, cfg *model.FleetConfig) error {
	if cfg == nil {
		return errConfigRequired
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}

	return b.storage.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(boltBucketConfigs)).Put([]byte(model.NormalizeUser(user)), data)
	})
}

// LoadRanges returns the stored ranges, or nil when the user has no config.
func (b *Bolt) LoadRanges(ctx context.Context, user string) ([]model.Range, error) {
	cfg, err := b.LoadConfig(ctx, user)
	if err != nil || cfg == nil {
		return nil, err
	}

	return cfg.Ranges, nil
}

// SaveRanges replaces the ranges of the user's config, creating a default
// config when none exists.
func (b *Bolt) SaveRanges(ctx context.Context, user string, ranges []model.Range) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(model.NormalizeUser(user))

	return b.storage.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(boltBucketConfigs))

		cfg := model.DefaultFleetConfig()
		if v := bucket.Get(key); v != nil {
			if err := json.Unmarshal(v, &cfg); err != nil {
				return err
			}
		}

		cfg.Ranges = slices.Clone(ranges)
		if cfg.Ranges == nil {
			cfg.Ranges = []model.Range{}
		}

		data, err := json.Marshal(cfg)
		if err != nil {
			return err
		}

		return bucket.Put(key, data)
	})
}

func (b *Bolt) LoadRepairSet(ctx context.Context, user string) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	units := []int{}

	err := b.storage.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(boltBucketRepairs)).Get([]byte(model.NormalizeUser(user)))
		if v == nil {
			return nil
		}

		return json.Unmarshal(v, &units)
	})

	return units, err
}

func (b *Bolt) SaveRepairSet(ctx context.Context, user string, units []int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

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

	return b.storage.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(boltBucketRepairs)).Put([]byte(model.NormalizeUser(user)), data)
	})
}

func (b *Bolt) LoadDay(ctx context.Context, user string, date time.Time) (*model.DayRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var day *model.DayRecord

	err := b.storage.View(func(tx *bbolt.Tx) error {
		days := tx.Bucket([]byte(boltBucketDays)).Bucket([]byte(model.NormalizeUser(user)))
		if days == nil {
			return nil
		}

		v := days.Get([]byte(model.DateKey(date)))
		if v == nil {
			return nil
		}

		var d model.DayRecord
		if err := json.Unmarshal(v, &d); err != nil {
			return err
		}

		day = &d

		return nil
	})

	return day, err
}

// SaveDay writes the record for (user, date). An earlier record for the same
// key is overwritten, keeping its CreatedAt.
func (b *Bolt) SaveDay(ctx context.Context, day *model.DayRecord) error {
	if day == nil {
		return errors.New("day record is required")
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	rec := *day
	rec.User = model.NormalizeUser(rec.User)
	rec.Date = model.Day(rec.Date)
	key := []byte(rec.Key())

	return b.storage.Update(func(tx *bbolt.Tx) error {
		days, err := tx.Bucket([]byte(boltBucketDays)).CreateBucketIfNotExists([]byte(rec.User))
		if err != nil {
			return err
		}

		if v := days.Get(key); v != nil {
			var prev model.DayRecord
			if err := json.Unmarshal(v, &prev); err != nil {
				return err
			}

			rec.CreatedAt = prev.CreatedAt
		}

		rec.Stamp(b.now())

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}

		return days.Put(key, data)
	})
}

func (b *Bolt) DeleteDay(ctx context.Context, user string, date time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return b.storage.Update(func(tx *bbolt.Tx) error {
		days := tx.Bucket([]byte(boltBucketDays)).Bucket([]byte(model.NormalizeUser(user)))
		if days == nil {
			return nil
		}

		return days.Delete([]byte(model.DateKey(date)))
	})
}

// ListDays returns the user's records with from <= date <= to, oldest first.
func (b *Bolt) ListDays(ctx context.Context, user string, from, to time.Time) ([]model.DayRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []model.DayRecord

	lo, hi := []byte(model.DateKey(from)), []byte(model.DateKey(to))

	err := b.storage.View(func(tx *bbolt.Tx) error {
		days := tx.Bucket([]byte(boltBucketDays)).Bucket([]byte(model.NormalizeUser(user)))
		if days == nil {
			return nil
		}

		c := days.Cursor()
		for k, v := c.Seek(lo); k != nil && string(k) <= string(hi); k, v = c.Next() {
			var d model.DayRecord
			if err := json.Unmarshal(v, &d); err != nil {
				return fmt.Errorf("decoding day %s: %w", k, err)
			}

			out = append(out, d)
		}

		return nil
	})

	return out, err
}
