package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/inovacc/fleetroster/internal/model"
	"github.com/inovacc/fleetroster/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cliDate = "2024-05-06"

type cliEnv struct {
	config string
	db     string
	dir    string
}

func newCLIEnv(t *testing.T) cliEnv {
	t.Helper()

	dir := t.TempDir()
	db := filepath.Join(dir, "fleet.bolt")
	config := filepath.Join(dir, "config.yaml")

	yaml := "store:\n  driver: bolt\n  path: " + db + "\nlog:\n  level: error\ndefault_user: ana\n"
	require.NoError(t, os.WriteFile(config, []byte(yaml), 0600))

	return cliEnv{config: config, db: db, dir: dir}
}

// run executes the root command with args and returns its output.
func (e cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// Flag variables outlive a single execution.
	userFlag, assignWindow, assignJSON, historyJSON = "", "", false, false
	reportFormat, reportOutput, reportDate = "text", "", ""
	assignDate, dayDate, stationListDate = "", "", ""
	historyFrom, historyTo, historyOutput = "", "", "history.xlsx"

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", e.config}, args...))

	err := rootCmd.ExecuteContext(context.Background())

	return out.String(), err
}

func (e cliEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()

	out, err := e.run(t, args...)
	require.NoError(t, err, out)

	return out
}

func (e cliEnv) loadDay(t *testing.T) *model.DayRecord {
	t.Helper()

	st, err := store.NewBolt(e.db)
	require.NoError(t, err)
	defer func() { _ = st.Close() }()

	date, err := model.ParseDate(cliDate)
	require.NoError(t, err)

	day, err := st.LoadDay(context.Background(), "ana", date)
	require.NoError(t, err)

	return day
}

func TestCommands_RangesAndStations(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun(t, "range", "list")
	assert.Contains(t, out, "1-500")

	env.mustRun(t, "range", "remove", "1")
	env.mustRun(t, "range", "add", "1", "120")

	_, err := env.run(t, "range", "add", "100", "130")
	assert.Error(t, err)

	out = env.mustRun(t, "range", "list")
	assert.Contains(t, out, "Total: 120 units")

	env.mustRun(t, "station", "add", "North")
	_, err = env.run(t, "station", "add", "north")
	assert.Error(t, err)

	out = env.mustRun(t, "station", "list")
	assert.Contains(t, out, "North")
	assert.Contains(t, out, "available")
}

func TestCommands_AssignFlow(t *testing.T) {
	env := newCLIEnv(t)

	env.mustRun(t, "station", "add", "North")
	env.mustRun(t, "station", "add", "South")
	env.mustRun(t, "repair", "report", "9")

	out := env.mustRun(t, "assign", "create", "North", "3,1", "2", "--window", "9 AM - 2 PM", "--date", cliDate)
	assert.Contains(t, out, "Assigned 3 unit(s) to North")

	_, err := env.run(t, "assign", "create", "South", "3", "--date", cliDate)
	assert.Error(t, err, "unit 3 is already assigned")

	_, err = env.run(t, "assign", "create", "South", "9", "--date", cliDate)
	assert.Error(t, err, "unit 9 is in repair")

	_, err = env.run(t, "assign", "create", "West", "4", "--date", cliDate)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "station add")

	env.mustRun(t, "assign", "add", "1", "4-5", "--date", cliDate)
	env.mustRun(t, "assign", "remove", "1", "1", "--date", cliDate)
	env.mustRun(t, "assign", "window", "1", "10 AM - 4 PM", "--date", cliDate)
	env.mustRun(t, "day", "caption", "Morning", "shift", "--date", cliDate)

	day := env.loadDay(t)
	require.NotNil(t, day)
	require.Len(t, day.Assignments, 1)
	assert.Equal(t, []int{3, 2, 4, 5}, day.Assignments[0].Units)
	assert.Equal(t, "10 AM", day.Assignments[0].Window.Open)
	assert.Equal(t, "Morning shift", day.Caption)

	out = env.mustRun(t, "assign", "show", "--date", cliDate)
	assert.Contains(t, out, "North (10 AM - 4 PM)")
	assert.Contains(t, out, "in repair 1")

	out = env.mustRun(t, "report", "render", "--date", cliDate)
	assert.Contains(t, out, "NORTH")

	xlsx := filepath.Join(env.dir, "report.xlsx")
	env.mustRun(t, "report", "render", "--date", cliDate, "--format", "xlsx", "-o", xlsx)
	assert.FileExists(t, xlsx)

	out = env.mustRun(t, "history", "list", "--from", "2024-05-01", "--to", "2024-05-31")
	assert.Contains(t, out, cliDate)

	export := filepath.Join(env.dir, "history.xlsx")
	out = env.mustRun(t, "history", "export", "--from", "2024-05-01", "--to", "2024-05-31", "-o", export)
	assert.Contains(t, out, "Exported 1 day(s)")

	env.mustRun(t, "assign", "delete", "1", "--date", cliDate)
	assert.Empty(t, env.loadDay(t).Assignments)

	env.mustRun(t, "day", "reset", "--date", cliDate)
	assert.Nil(t, env.loadDay(t))
}

func TestCommands_Repairs(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "repair", "report", "900")
	assert.Error(t, err)

	env.mustRun(t, "repair", "report", "10-12", "150")

	out := env.mustRun(t, "repair", "list")
	assert.Contains(t, out, "1-100     10 11 12")
	assert.Contains(t, out, "101-200   150")

	out = env.mustRun(t, "repair", "fix", "11")
	assert.Contains(t, out, "3 still in the workshop")
}
