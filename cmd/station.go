package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/inovacc/fleetroster/internal/fleet"
	"github.com/spf13/cobra"
)

var stationCmd = &cobra.Command{
	Use:   "station",
	Short: "Manage service stations",
}

var stationAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a service station",
	Long: `Add a service station. Names are unique regardless of case.

Examples:
  fleetroster station add "North Terminal"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runStationAdd,
}

var stationRemoveCmd = &cobra.Command{
	Use:   "remove <name>...",
	Short: "Remove service stations",
	Long: `Remove one or more stations. Assignments already recorded for them are kept.

Examples:
  fleetroster station remove North South`,
	Aliases: []string{"rm"},
	Args:    cobra.MinimumNArgs(1),
	RunE:    runStationRemove,
}

var stationListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List service stations and their state for a day",
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	RunE:    runStationList,
}

var stationListDate string

func init() {
	rootCmd.AddCommand(stationCmd)
	stationCmd.AddCommand(stationAddCmd)
	stationCmd.AddCommand(stationRemoveCmd)
	stationCmd.AddCommand(stationListCmd)

	stationListCmd.Flags().StringVarP(&stationListDate, "date", "d", "", "Day to check (YYYY-MM-DD, default today)")
}

func runStationAdd(cmd *cobra.Command, args []string) error {
	name := strings.Join(args, " ")

	return withSession(cmd, "", func(ctx context.Context, s *fleet.Session) error {
		if err := s.AddStation(ctx, name); err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added station %s\n", strings.TrimSpace(name))

		return nil
	})
}

func runStationRemove(cmd *cobra.Command, args []string) error {
	return withSession(cmd, "", func(ctx context.Context, s *fleet.Session) error {
		n, err := s.RemoveStations(ctx, args...)
		if err != nil {
			return err
		}

		if n == 0 {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No matching stations.")
			return nil
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d station(s)\n", n)

		return nil
	})
}

func runStationList(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, stationListDate, func(_ context.Context, s *fleet.Session) error {
		w := cmd.OutOrStdout()

		if len(s.Config.Stations) == 0 {
			_, _ = fmt.Fprintln(w, "No stations configured.")
			_, _ = fmt.Fprintln(w, "\nCreate one with: fleetroster station add <name>")

			return nil
		}

		free := s.Ledger.AvailableStations(s.Config.Stations)

		for i, name := range s.Config.Stations {
			state := "assigned"
			if containsName(free, name) {
				state = "available"
			}

			_, _ = fmt.Fprintf(w, "%d. %-24s %s\n", i+1, name, state)
		}

		return nil
	})
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return true
		}
	}

	return false
}
