package fleet

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/inovacc/fleetroster/internal/model"
)

// Persistence is the storage contract a Session needs. Every call may fail;
// failures are reported as errors, never as panics.
type Persistence interface {
	LoadConfig(ctx context.Context, user string) (*model.FleetConfig, error)
	SaveConfig(ctx context.Context, user string, cfg *model.FleetConfig) error
	LoadRepairSet(ctx context.Context, user string) ([]int, error)
	SaveRepairSet(ctx context.Context, user string, units []int) error
	LoadDay(ctx context.Context, user string, date time.Time) (*model.DayRecord, error)
	SaveDay(ctx context.Context, day *model.DayRecord) error
}

// Snapshot is the read-only view of a day handed to report renderers.
type Snapshot struct {
	Date        time.Time
	Caption     string
	Assignments []model.Assignment
	Appearance  model.Appearance
}

// Session is the editing context for one user and one date. It replaces
// ambient session state: everything an operation needs is reachable from it.
type Session struct {
	User    string
	Date    time.Time
	Config  model.FleetConfig
	Repairs *RepairSet
	Ledger  *Ledger
	Caption string

	store     Persistence
	createdAt time.Time
	now       func() time.Time
}

// OpenSession loads the configuration, the repair set and the day record for
// (user, date). A day never saved starts with an empty ledger.
func OpenSession(ctx context.Context, store Persistence, user string, date time.Time) (*Session, error) {
	s := &Session{
		User:  model.NormalizeUser(user),
		Date:  model.Day(date),
		store: store,
		now:   time.Now,
	}

	if err := s.load(ctx); err != nil {
		return nil, err
	}

	return s, nil
}

// Reload discards unsaved changes and reloads everything from the store.
func (s *Session) Reload(ctx context.Context) error {
	return s.load(ctx)
}

func (s *Session) load(ctx context.Context) error {
	cfg, repairs, err := s.loadShared(ctx)
	if err != nil {
		return err
	}

	day, err := s.store.LoadDay(ctx, s.User, s.Date)
	if err != nil {
		return fmt.Errorf("loading day %s for %s: %w", model.DateKey(s.Date), s.User, err)
	}

	s.Caption = ""
	s.createdAt = time.Time{}

	var records []model.Assignment
	if day != nil {
		records = day.Assignments
		s.Caption = day.Caption
		s.createdAt = day.CreatedAt
	}

	s.apply(cfg, repairs, records)

	return nil
}

// ReloadShared reloads the user's configuration and repair set, which are
// shared by every date, while keeping the day's unsaved records and caption.
func (s *Session) ReloadShared(ctx context.Context) error {
	cfg, repairs, err := s.loadShared(ctx)
	if err != nil {
		return err
	}

	s.apply(cfg, repairs, s.Ledger.Records())

	return nil
}

func (s *Session) loadShared(ctx context.Context) (model.FleetConfig, []int, error) {
	cfg, err := s.store.LoadConfig(ctx, s.User)
	if err != nil {
		return model.FleetConfig{}, nil, fmt.Errorf("loading config for %s: %w", s.User, err)
	}

	if cfg == nil {
		def := model.DefaultFleetConfig()
		cfg = &def
	}

	cfg.Normalize()

	repairs, err := s.store.LoadRepairSet(ctx, s.User)
	if err != nil {
		return model.FleetConfig{}, nil, fmt.Errorf("loading repair set for %s: %w", s.User, err)
	}

	return cfg.Clone(), repairs, nil
}

func (s *Session) apply(cfg model.FleetConfig, repairs []int, records []model.Assignment) {
	s.Config = cfg
	s.Repairs = NewRepairSet(repairs...)
	s.Ledger = NewLedger(NewPool(s.Config.Ranges), s.Repairs, records)
	s.Ledger.SetStations(s.Config.Stations)
}

// DefaultCaption is the caption used when none was entered: the configured ranges.
func (s *Session) DefaultCaption() string {
	return FormatRanges(s.Config.Ranges)
}

// Snapshot returns the read-only view of the day for renderers.
func (s *Session) Snapshot() Snapshot {
	caption := s.Caption
	if caption == "" {
		caption = s.DefaultCaption()
	}

	appearance := s.Config.Appearance
	appearance.Palette = slices.Clone(appearance.Palette)

	return Snapshot{
		Date:        s.Date,
		Caption:     caption,
		Assignments: s.Ledger.Records(),
		Appearance:  appearance,
	}
}

// Save writes the day to the store, overwriting any earlier save for the same
// (user, date). On failure the in-memory ledger is left as is.
func (s *Session) Save(ctx context.Context) error {
	now := s.now().UTC()

	created := s.createdAt
	if created.IsZero() {
		created = now
	}

	day := &model.DayRecord{
		User:        s.User,
		Date:        s.Date,
		Assignments: s.Ledger.Records(),
		Caption:     s.Caption,
		CreatedAt:   created,
		UpdatedAt:   now,
	}

	if err := s.store.SaveDay(ctx, day); err != nil {
		return &PersistenceError{Op: "save day " + model.DateKey(s.Date), Err: err}
	}

	s.createdAt = created

	slog.Debug("day saved", "user", s.User, "date", model.DateKey(s.Date), "assignments", len(day.Assignments))

	return nil
}

// SetCaption sets the free text printed under the report.
func (s *Session) SetCaption(caption string) {
	s.Caption = strings.TrimSpace(caption)
}

// AddRange validates and adds a unit range, then persists the config.
func (s *Session) AddRange(ctx context.Context, r Range) error {
	ranges, err := AddRange(s.Config.Ranges, r)
	if err != nil {
		return err
	}

	s.Config.Ranges = ranges
	s.Ledger.SetPool(NewPool(ranges))

	return s.saveConfig(ctx, "add range")
}

// RemoveRange removes the range at index, then persists the config.
func (s *Session) RemoveRange(ctx context.Context, index int) error {
	ranges, err := RemoveRange(s.Config.Ranges, index)
	if err != nil {
		return err
	}

	s.Config.Ranges = ranges
	s.Ledger.SetPool(NewPool(ranges))

	return s.saveConfig(ctx, "remove range")
}

// AddStation registers a station name. Names are unique regardless of case.
func (s *Session) AddStation(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &StationUnavailableError{Reason: StationMissing}
	}

	if containsFold(s.Config.Stations, name) {
		return fmt.Errorf("%w: %q", ErrDuplicateStation, name)
	}

	s.Config.Stations = append(s.Config.Stations, name)
	s.Ledger.SetStations(s.Config.Stations)

	return s.saveConfig(ctx, "add station")
}

// RemoveStations removes the named stations and returns how many were removed.
// Existing assignments for those stations are kept.
func (s *Session) RemoveStations(ctx context.Context, names ...string) (int, error) {
	before := len(s.Config.Stations)

	s.Config.Stations = slices.DeleteFunc(s.Config.Stations, func(st string) bool {
		return containsFold(names, strings.TrimSpace(st))
	})

	removed := before - len(s.Config.Stations)
	if removed == 0 {
		return 0, nil
	}

	s.Ledger.SetStations(s.Config.Stations)

	return removed, s.saveConfig(ctx, "remove stations")
}

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ValidateAppearance checks the bounds of display preferences.
func ValidateAppearance(a model.Appearance) error {
	if a.FontSize < model.MinFontSize || a.FontSize > model.MaxFontSize {
		return fmt.Errorf("%w: font size %d outside %d-%d", ErrInvalidAppearance, a.FontSize, model.MinFontSize, model.MaxFontSize)
	}

	if a.Width < model.MinWidth || a.Width > model.MaxWidth {
		return fmt.Errorf("%w: width %d outside %d-%d", ErrInvalidAppearance, a.Width, model.MinWidth, model.MaxWidth)
	}

	if len(a.Palette) == 0 {
		return fmt.Errorf("%w: palette is empty", ErrInvalidAppearance)
	}

	colors := append([]string{a.Background, a.TextColor}, a.Palette...)
	for _, c := range colors {
		if !hexColor.MatchString(c) {
			return fmt.Errorf("%w: color %q", ErrInvalidAppearance, c)
		}
	}

	return nil
}

// SetAppearance validates and stores new display preferences.
func (s *Session) SetAppearance(ctx context.Context, a model.Appearance) error {
	if err := ValidateAppearance(a); err != nil {
		return err
	}

	a.Palette = slices.Clone(a.Palette)
	s.Config.Appearance = a

	return s.saveConfig(ctx, "set appearance")
}

// ReportUnits sends units to the workshop. Every unit must belong to the
// pool; otherwise nothing changes. It returns how many units changed state.
func (s *Session) ReportUnits(ctx context.Context, units ...int) (int, error) {
	if err := s.checkKnown(units); err != nil {
		return 0, err
	}

	if len(units) == 0 {
		return 0, &EmptySelectionError{Op: "report units"}
	}

	n := s.Repairs.ReportMany(units...)
	if n == 0 {
		return 0, nil
	}

	return n, s.saveRepairs(ctx, "report units")
}

// RepairUnits returns units to service and returns how many changed state.
func (s *Session) RepairUnits(ctx context.Context, units ...int) (int, error) {
	if len(units) == 0 {
		return 0, &EmptySelectionError{Op: "repair units"}
	}

	n := s.Repairs.RepairMany(units...)
	if n == 0 {
		return 0, nil
	}

	return n, s.saveRepairs(ctx, "repair units")
}

func (s *Session) checkKnown(units []int) error {
	pool := s.Ledger.Pool()
	for _, u := range units {
		if !pool.Contains(u) {
			return &UnknownUnitError{Unit: u}
		}
	}

	return nil
}

func (s *Session) saveConfig(ctx context.Context, op string) error {
	cfg := s.Config.Clone()
	if err := s.store.SaveConfig(ctx, s.User, &cfg); err != nil {
		return &PersistenceError{Op: op, Err: err}
	}

	return nil
}

func (s *Session) saveRepairs(ctx context.Context, op string) error {
	if err := s.store.SaveRepairSet(ctx, s.User, s.Repairs.Units()); err != nil {
		return &PersistenceError{Op: op, Err: err}
	}

	return nil
}
