package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/inovacc/fleetroster/internal/model"
	"github.com/inovacc/fleetroster/internal/store/sqldb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backend struct {
	name string
	open func(t *testing.T) Store
}

func backends() []backend {
	return []backend{
		{
			name: DriverBolt,
			open: func(t *testing.T) Store {
				st, err := Open(context.Background(), Config{Driver: DriverBolt, Path: filepath.Join(t.TempDir(), "fleet.bolt")})
				require.NoError(t, err)
				return st
			},
		},
		{
			name: DriverSQLite,
			open: func(t *testing.T) Store {
				st, err := Open(context.Background(), Config{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "fleet.db")})
				require.NoError(t, err)
				return st
			},
		},
	}
}

func forEachBackend(t *testing.T, fn func(t *testing.T, st Store)) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			st := b.open(t)
			t.Cleanup(func() { _ = st.Close() })

			fn(t, st)
		})
	}
}

func date(s string) time.Time {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}

	return d
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "mysql"})
	require.ErrorIs(t, err, ErrUnknownDriver)
}

func TestOpen_DefaultsToSQLite(t *testing.T) {
	st, err := Open(context.Background(), Config{Path: filepath.Join(t.TempDir(), "x.db")})
	require.NoError(t, err)
	defer st.Close()

	_, ok := st.(*sqldb.Store)
	assert.True(t, ok)
}

func TestStore_Ping(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st Store) {
		assert.NoError(t, st.Ping(context.Background()))
	})
}

func TestStore_Config(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st Store) {
		ctx := context.Background()

		cfg, err := st.LoadConfig(ctx, "maria")
		require.NoError(t, err)
		assert.Nil(t, cfg, "absent config")

		want := model.DefaultFleetConfig()
		want.Stations = []string{"North", "South"}
		want.Appearance.FontSize = 30

		require.NoError(t, st.SaveConfig(ctx, "Maria", &want))

		got, err := st.LoadConfig(ctx, " maria")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, want, *got)

		other, err := st.LoadConfig(ctx, "joao")
		require.NoError(t, err)
		assert.Nil(t, other, "configs are per user")
	})
}

func TestStore_Ranges(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st Store) {
		ctx := context.Background()

		ranges, err := st.LoadRanges(ctx, "maria")
		require.NoError(t, err)
		assert.Nil(t, ranges)

		want := []model.Range{{Min: 1, Max: 50}, {Min: 51, Max: 100}}
		require.NoError(t, st.SaveRanges(ctx, "maria", want))

		ranges, err = st.LoadRanges(ctx, "maria")
		require.NoError(t, err)
		assert.Equal(t, want, ranges)

		cfg, err := st.LoadConfig(ctx, "maria")
		require.NoError(t, err)
		assert.Equal(t, model.DefaultAppearance(), cfg.Appearance, "other fields default")

		require.NoError(t, st.SaveRanges(ctx, "maria", nil))

		ranges, err = st.LoadRanges(ctx, "maria")
		require.NoError(t, err)
		assert.Empty(t, ranges)
		assert.NotNil(t, ranges, "an emptied list stays distinct from an absent config")
	})
}

func TestStore_RepairSet(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st Store) {
		ctx := context.Background()

		units, err := st.LoadRepairSet(ctx, "maria")
		require.NoError(t, err)
		assert.Empty(t, units)

		require.NoError(t, st.SaveRepairSet(ctx, "maria", []int{9, 3, 3, 5}))

		units, err = st.LoadRepairSet(ctx, "maria")
		require.NoError(t, err)
		assert.Equal(t, []int{3, 5, 9}, units)

		require.NoError(t, st.SaveRepairSet(ctx, "maria", nil))

		units, err = st.LoadRepairSet(ctx, "maria")
		require.NoError(t, err)
		assert.Empty(t, units)
	})
}

func TestStore_SaveDayOverwriteKeepsCreatedAt(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		created := time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)

		day, err := st.LoadDay(ctx, "maria", date("2024-05-06"))
		require.NoError(t, err)
		assert.Nil(t, day)

		first := &model.DayRecord{
			User: "maria",
			Date: date("2024-05-06"),
			Assignments: []model.Assignment{
				{ID: "a", Station: "North", Units: []int{1, 2}},
			},
			CreatedAt: created,
			UpdatedAt: created,
		}
		require.NoError(t, st.SaveDay(ctx, first))

		second := &model.DayRecord{
			User: "Maria",
			Date: time.Date(2024, 5, 6, 17, 0, 0, 0, time.UTC),
			Assignments: []model.Assignment{
				{ID: "a", Station: "North", Units: []int{1, 2}},
				{ID: "b", Station: "South", Window: model.TimeWindow{Open: "9 AM", Close: "2 PM"}, Units: []int{7}},
			},
			Caption:   "route 7",
			CreatedAt: created.Add(5 * time.Hour),
			UpdatedAt: created.Add(5 * time.Hour),
		}
		require.NoError(t, st.SaveDay(ctx, second))

		got, err := st.LoadDay(ctx, "maria", date("2024-05-06"))
		require.NoError(t, err)
		require.NotNil(t, got)

		assert.True(t, got.CreatedAt.Equal(created), "created_at %v preserved", got.CreatedAt)
		assert.True(t, got.UpdatedAt.Equal(created.Add(5*time.Hour)))
		assert.Equal(t, "route 7", got.Caption)
		assert.Equal(t, second.Assignments, got.Assignments)

		days, err := st.ListDays(ctx, "maria", date("2024-01-01"), date("2024-12-31"))
		require.NoError(t, err)
		assert.Len(t, days, 1, "one record per (user, date)")
	})
}

func TestStore_ListAndDeleteDays(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st Store) {
		ctx := context.Background()

		for _, d := range []string{"2024-05-10", "2024-05-01", "2024-05-06", "2024-06-01"} {
			require.NoError(t, st.SaveDay(ctx, &model.DayRecord{User: "maria", Date: date(d)}))
		}

		require.NoError(t, st.SaveDay(ctx, &model.DayRecord{User: "joao", Date: date("2024-05-06")}))

		days, err := st.ListDays(ctx, "maria", date("2024-05-01"), date("2024-05-10"))
		require.NoError(t, err)

		var keys []string
		for _, d := range days {
			keys = append(keys, d.Key())
			assert.NotNil(t, d.Assignments)
			assert.False(t, d.CreatedAt.IsZero())
		}

		assert.Equal(t, []string{"2024-05-01", "2024-05-06", "2024-05-10"}, keys)

		require.NoError(t, st.DeleteDay(ctx, "maria", date("2024-05-06")))
		require.NoError(t, st.DeleteDay(ctx, "maria", date("2023-01-01")), "deleting a missing day is not an error")

		day, err := st.LoadDay(ctx, "maria", date("2024-05-06"))
		require.NoError(t, err)
		assert.Nil(t, day)

		day, err = st.LoadDay(ctx, "joao", date("2024-05-06"))
		require.NoError(t, err)
		assert.NotNil(t, day, "other users untouched")

		days, err = st.ListDays(ctx, "nobody", date("2024-01-01"), date("2024-12-31"))
		require.NoError(t, err)
		assert.Empty(t, days)
	})
}

func TestStore_CanceledContext(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st Store) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.Error(t, st.SaveRepairSet(ctx, "maria", []int{1}))
	})
}
