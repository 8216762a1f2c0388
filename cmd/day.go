package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/inovacc/fleetroster/internal/fleet"
	"github.com/inovacc/fleetroster/internal/model"
	"github.com/inovacc/fleetroster/internal/store"
	"github.com/spf13/cobra"
)

var dayCmd = &cobra.Command{
	Use:   "day",
	Short: "Save, caption or reset a day",
}

var daySaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the day as it is",
	Long: `Save the day as it is. This records an empty day too, so that it shows up
in the history.`,
	Args: cobra.NoArgs,
	RunE: runDaySave,
}

var dayCaptionCmd = &cobra.Command{
	Use:   "caption [text]",
	Short: "Set the caption printed under the report",
	Long: `Set the caption printed under the report. Without text the caption is
cleared and the report shows the configured unit ranges instead.`,
	RunE: runDayCaption,
}

var dayResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the saved day",
	Args:  cobra.NoArgs,
	RunE:  runDayReset,
}

var dayDate string

func init() {
	rootCmd.AddCommand(dayCmd)
	dayCmd.AddCommand(daySaveCmd)
	dayCmd.AddCommand(dayCaptionCmd)
	dayCmd.AddCommand(dayResetCmd)

	dayCmd.PersistentFlags().StringVarP(&dayDate, "date", "d", "", "Day (YYYY-MM-DD, default today)")
}

func runDaySave(cmd *cobra.Command, _ []string) error {
	return editDay(cmd, dayDate, func(_ context.Context, s *fleet.Session) error {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved %s with %d assignment(s)\n", model.DateKey(s.Date), s.Ledger.Len())
		return nil
	})
}

func runDayCaption(cmd *cobra.Command, args []string) error {
	return editDay(cmd, dayDate, func(_ context.Context, s *fleet.Session) error {
		s.SetCaption(strings.Join(args, " "))

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Caption: %s\n", s.Snapshot().Caption)

		return nil
	})
}

func runDayReset(cmd *cobra.Command, _ []string) error {
	date, err := parseDay(dayDate)
	if err != nil {
		return err
	}

	return withStore(cmd, func(ctx context.Context, st store.Store) error {
		if err := st.DeleteDay(ctx, currentUser(), date); err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", model.DateKey(date))

		return nil
	})
}
