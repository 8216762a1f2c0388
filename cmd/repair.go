package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/inovacc/fleetroster/internal/cli"
	"github.com/inovacc/fleetroster/internal/fleet"
	"github.com/spf13/cobra"
)

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Track units in the workshop",
	Long: `Units in the workshop cannot be assigned to a station. The workshop list
is shared by every day until the unit is returned to service.`,
}

var repairReportCmd = &cobra.Command{
	Use:   "report <units>...",
	Short: "Send units to the workshop",
	Long: `Send units to the workshop. Units may be given as numbers, comma lists
or spans.

Examples:
  fleetroster repair report 12 15
  fleetroster repair report 101-105,110`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRepairReport,
}

var repairFixCmd = &cobra.Command{
	Use:   "fix <units>...",
	Short: "Return units to service",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRepairFix,
}

var repairListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List units in the workshop",
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	RunE:    runRepairList,
}

var repairBoardCmd = &cobra.Command{
	Use:   "board",
	Short: "Open the interactive workshop board",
	Long: `Open a grid of the fleet where units are marked with space and sent to
or returned from the workshop with enter.`,
	Args: cobra.NoArgs,
	RunE: runRepairBoard,
}

var repairBoardDate string

func init() {
	rootCmd.AddCommand(repairCmd)
	repairCmd.AddCommand(repairReportCmd)
	repairCmd.AddCommand(repairFixCmd)
	repairCmd.AddCommand(repairListCmd)
	repairCmd.AddCommand(repairBoardCmd)

	repairBoardCmd.Flags().StringVarP(&repairBoardDate, "date", "d", "", "Day whose assignments are shown (YYYY-MM-DD, default today)")
}

func runRepairReport(cmd *cobra.Command, args []string) error {
	units, err := parseUnits(args)
	if err != nil {
		return err
	}

	return withSession(cmd, "", func(ctx context.Context, s *fleet.Session) error {
		n, err := s.ReportUnits(ctx, units...)
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d unit(s) sent to the workshop, %d in total\n", n, s.Repairs.Len())

		return nil
	})
}

func runRepairFix(cmd *cobra.Command, args []string) error {
	units, err := parseUnits(args)
	if err != nil {
		return err
	}

	return withSession(cmd, "", func(ctx context.Context, s *fleet.Session) error {
		n, err := s.RepairUnits(ctx, units...)
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d unit(s) returned to service, %d still in the workshop\n", n, s.Repairs.Len())

		return nil
	})
}

func runRepairList(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, "", func(_ context.Context, s *fleet.Session) error {
		w := cmd.OutOrStdout()
		units := s.Repairs.Units()

		if len(units) == 0 {
			_, _ = fmt.Fprintln(w, "No units in the workshop.")
			return nil
		}

		_, _ = fmt.Fprintf(w, "Units in the workshop (%d):\n", len(units))
		_, _ = fmt.Fprint(w, formatGroups(units))

		return nil
	})
}

func runRepairBoard(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, repairBoardDate, func(ctx context.Context, s *fleet.Session) error {
		p := tea.NewProgram(cli.NewBoard(ctx, s), tea.WithAltScreen())

		_, err := p.Run()

		return err
	})
}
