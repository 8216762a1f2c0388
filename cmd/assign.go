package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/inovacc/fleetroster/internal/fleet"
	"github.com/inovacc/fleetroster/internal/model"
	"github.com/spf13/cobra"
)

var assignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Edit the station assignments of a day",
	Long: `Assign units to service stations for a day. Every command loads the saved
day, applies one change and saves it again. A unit can be assigned to only
one station per day, and each station has at most one assignment.`,
}

var assignCreateCmd = &cobra.Command{
	Use:   "create <station> <units>...",
	Short: "Create the assignment of a station",
	Long: `Create the assignment of a station with its first units.

Examples:
  fleetroster assign create North 12 15 101-103
  fleetroster assign create North 12 --window "9 AM - 2 PM" --date 2024-05-06`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAssignCreate,
}

var assignAddCmd = &cobra.Command{
	Use:   "add <position> <units>...",
	Short: "Add units to an assignment",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runAssignAdd,
}

var assignRemoveCmd = &cobra.Command{
	Use:     "remove <position> <units>...",
	Short:   "Remove units from an assignment",
	Long:    `Remove units from an assignment. The assignment is kept even when it becomes empty.`,
	Aliases: []string{"rm"},
	Args:    cobra.MinimumNArgs(2),
	RunE:    runAssignRemove,
}

var assignDeleteCmd = &cobra.Command{
	Use:   "delete <position>",
	Short: "Delete an assignment and free its units",
	Args:  cobra.ExactArgs(1),
	RunE:  runAssignDelete,
}

var assignWindowCmd = &cobra.Command{
	Use:   "window <position> [\"<open> - <close>\"]",
	Short: "Set or clear the opening hours of an assignment",
	Long: `Set the opening hours of an assignment. Hours use labels from "12 AM" to
"11 PM". Without hours the window is cleared.

Examples:
  fleetroster assign window 1 "9 AM - 2 PM"
  fleetroster assign window 1`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runAssignWindow,
}

var assignShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the assignments of a day",
	Args:  cobra.NoArgs,
	RunE:  runAssignShow,
}

var (
	assignDate   string
	assignWindow string
	assignJSON   bool
)

func init() {
	rootCmd.AddCommand(assignCmd)
	assignCmd.AddCommand(assignCreateCmd)
	assignCmd.AddCommand(assignAddCmd)
	assignCmd.AddCommand(assignRemoveCmd)
	assignCmd.AddCommand(assignDeleteCmd)
	assignCmd.AddCommand(assignWindowCmd)
	assignCmd.AddCommand(assignShowCmd)

	assignCmd.PersistentFlags().StringVarP(&assignDate, "date", "d", "", "Day to edit (YYYY-MM-DD, default today)")
	assignCreateCmd.Flags().StringVarP(&assignWindow, "window", "w", "", `Opening hours, e.g. "9 AM - 2 PM"`)
	assignShowCmd.Flags().BoolVar(&assignJSON, "json", false, "Output as JSON")
}

func runAssignCreate(cmd *cobra.Command, args []string) error {
	units, err := parseUnits(args[1:])
	if err != nil {
		return err
	}

	window, err := fleet.ParseWindow(assignWindow)
	if err != nil {
		return err
	}

	return editDay(cmd, assignDate, func(_ context.Context, s *fleet.Session) error {
		rec, err := s.Ledger.CreateAssignment(args[0], window, units)
		if err != nil {
			return explain(err)
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Assigned %d unit(s) to %s\n", len(rec.Units), rec.Station)

		return nil
	})
}

func runAssignAdd(cmd *cobra.Command, args []string) error {
	index, err := parseIndex(args[0])
	if err != nil {
		return err
	}

	units, err := parseUnits(args[1:])
	if err != nil {
		return err
	}

	return editDay(cmd, assignDate, func(_ context.Context, s *fleet.Session) error {
		if err := s.Ledger.AddUnits(index, units); err != nil {
			return err
		}

		rec, _ := s.Ledger.Record(index)
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s now has %d unit(s)\n", rec.Station, len(rec.Units))

		return nil
	})
}

func runAssignRemove(cmd *cobra.Command, args []string) error {
	index, err := parseIndex(args[0])
	if err != nil {
		return err
	}

	units, err := parseUnits(args[1:])
	if err != nil {
		return err
	}

	return editDay(cmd, assignDate, func(_ context.Context, s *fleet.Session) error {
		n, err := s.Ledger.RemoveUnits(index, units)
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d unit(s)\n", n)

		return nil
	})
}

func runAssignDelete(cmd *cobra.Command, args []string) error {
	index, err := parseIndex(args[0])
	if err != nil {
		return err
	}

	return editDay(cmd, assignDate, func(_ context.Context, s *fleet.Session) error {
		rec, err := s.Ledger.DeleteAssignment(index)
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted assignment of %s, %d unit(s) freed\n", rec.Station, len(rec.Units))

		return nil
	})
}

func runAssignWindow(cmd *cobra.Command, args []string) error {
	index, err := parseIndex(args[0])
	if err != nil {
		return err
	}

	var window model.TimeWindow
	if len(args) == 2 {
		if window, err = fleet.ParseWindow(args[1]); err != nil {
			return err
		}
	}

	return editDay(cmd, assignDate, func(_ context.Context, s *fleet.Session) error {
		if err := s.Ledger.EditTimeWindow(index, window); err != nil {
			return err
		}

		if window.IsZero() {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Opening hours cleared")
		} else {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Opening hours set to %s\n", window)
		}

		return nil
	})
}

// dayOutput is the JSON form of assign show.
type dayOutput struct {
	Date        string             `json:"date"`
	Caption     string             `json:"caption"`
	Assignments []model.Assignment `json:"assignments"`
	Counts      fleet.Counts       `json:"counts"`
	Available   []int              `json:"available"`
}

func runAssignShow(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, assignDate, func(_ context.Context, s *fleet.Session) error {
		w := cmd.OutOrStdout()
		snap := s.Snapshot()
		counts := s.Ledger.Counts()

		if assignJSON {
			return printJSON(w, dayOutput{
				Date:        model.DateKey(s.Date),
				Caption:     snap.Caption,
				Assignments: snap.Assignments,
				Counts:      counts,
				Available:   s.Ledger.Available(),
			})
		}

		_, _ = fmt.Fprintf(w, "%s  %s\n\n", model.DateKey(s.Date), strings.ToUpper(s.Date.Weekday().String()))

		if len(snap.Assignments) == 0 {
			_, _ = fmt.Fprintln(w, "No assignments.")
		}

		for i, rec := range snap.Assignments {
			heading := rec.Station
			if !rec.Window.IsZero() {
				heading += " (" + rec.Window.String() + ")"
			}

			_, _ = fmt.Fprintf(w, "%d. %s\n   %s\n", i+1, heading, formatUnits(rec.Units))
		}

		_, _ = fmt.Fprintf(w, "\nTotal %d  in repair %d  assigned %d  free %d\n",
			counts.Total, counts.InRepair, counts.Assigned, counts.Free)
		_, _ = fmt.Fprintf(w, "Caption: %s\n", snap.Caption)

		return nil
	})
}
