package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/inovacc/fleetroster/internal/model"
	"github.com/inovacc/fleetroster/internal/report"
	"github.com/inovacc/fleetroster/internal/store"
	"github.com/spf13/cobra"
)

// defaultHistoryDays is how far back history looks without --from.
const defaultHistoryDays = 30

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse saved days",
}

var historyListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List saved days",
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	RunE:    runHistoryList,
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export saved days to a spreadsheet",
	Long: `Export saved days to an xlsx workbook with one row per assignment.

Examples:
  fleetroster history export --from 2024-05-01 --to 2024-05-31 -o may.xlsx`,
	Args: cobra.NoArgs,
	RunE: runHistoryExport,
}

var (
	historyFrom   string
	historyTo     string
	historyJSON   bool
	historyOutput string
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyExportCmd)

	historyCmd.PersistentFlags().StringVar(&historyFrom, "from", "", "First day (YYYY-MM-DD, default 30 days before --to)")
	historyCmd.PersistentFlags().StringVar(&historyTo, "to", "", "Last day (YYYY-MM-DD, default today)")
	historyListCmd.Flags().BoolVar(&historyJSON, "json", false, "Output as JSON")
	historyExportCmd.Flags().StringVarP(&historyOutput, "output", "o", "history.xlsx", "Workbook to write")
}

func historySpan() (time.Time, time.Time, error) {
	to, err := parseDay(historyTo)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	from := to.AddDate(0, 0, -defaultHistoryDays)
	if historyFrom != "" {
		if from, err = parseDay(historyFrom); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	if from.After(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("--from %s is after --to %s", model.DateKey(from), model.DateKey(to))
	}

	return from, to, nil
}

func loadHistory(cmd *cobra.Command) ([]model.DayRecord, error) {
	from, to, err := historySpan()
	if err != nil {
		return nil, err
	}

	var days []model.DayRecord

	err = withStore(cmd, func(ctx context.Context, st store.Store) error {
		days, err = st.ListDays(ctx, currentUser(), from, to)
		return err
	})

	return days, err
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	days, err := loadHistory(cmd)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()

	if historyJSON {
		if days == nil {
			days = []model.DayRecord{}
		}

		return printJSON(w, days)
	}

	if len(days) == 0 {
		_, _ = fmt.Fprintln(w, "No saved days in this period.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "DATE\tDAY\tSTATIONS\tUNITS\tUPDATED")

	for _, d := range days {
		units := 0
		for _, a := range d.Assignments {
			units += len(a.Units)
		}

		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n",
			d.Key(), d.Date.Weekday().String()[:3], len(d.Assignments), units,
			d.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}

	return tw.Flush()
}

func runHistoryExport(cmd *cobra.Command, _ []string) error {
	days, err := loadHistory(cmd)
	if err != nil {
		return err
	}

	body, err := report.HistoryWorkbook(days)
	if err != nil {
		return fmt.Errorf("failed to build workbook: %w", err)
	}

	if err := os.WriteFile(historyOutput, body, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", historyOutput, err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d day(s) to %s\n", len(days), historyOutput)

	return nil
}
