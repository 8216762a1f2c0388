package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/inovacc/fleetroster/internal/fleet"
	"github.com/inovacc/fleetroster/internal/model"
	"github.com/inovacc/fleetroster/internal/store"
	"github.com/spf13/cobra"
)

var rangeCmd = &cobra.Command{
	Use:   "range",
	Short: "Manage the unit ranges of the fleet",
	Long: `Unit ranges define the fleet: every unit number inside a configured
range belongs to the pool. Ranges never overlap.`,
}

var rangeAddCmd = &cobra.Command{
	Use:   "add <min> <max>",
	Short: "Add a unit range",
	Long: `Add an inclusive range of unit numbers to the fleet.

Examples:
  fleetroster range add 1 250
  fleetroster range add 301 320`,
	Args: cobra.ExactArgs(2),
	RunE: runRangeAdd,
}

var rangeRemoveCmd = &cobra.Command{
	Use:     "remove <position>",
	Short:   "Remove a unit range",
	Long:    `Remove the range at the position shown by 'fleetroster range list'.`,
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE:    runRangeRemove,
}

var rangeListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List unit ranges",
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	RunE:    runRangeList,
}

func init() {
	rootCmd.AddCommand(rangeCmd)
	rangeCmd.AddCommand(rangeAddCmd)
	rangeCmd.AddCommand(rangeRemoveCmd)
	rangeCmd.AddCommand(rangeListCmd)
}

func runRangeAdd(cmd *cobra.Command, args []string) error {
	lo, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid minimum %q", args[0])
	}

	hi, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid maximum %q", args[1])
	}

	r := model.Range{Min: lo, Max: hi}

	return withSession(cmd, "", func(ctx context.Context, s *fleet.Session) error {
		if err := s.AddRange(ctx, r); err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added range %s (%d units in the fleet)\n", r, s.Ledger.Pool().Len())

		return nil
	})
}

func runRangeRemove(cmd *cobra.Command, args []string) error {
	index, err := parseIndex(args[0])
	if err != nil {
		return err
	}

	return withSession(cmd, "", func(ctx context.Context, s *fleet.Session) error {
		var removed model.Range
		if index < len(s.Config.Ranges) {
			removed = s.Config.Ranges[index]
		}

		if err := s.RemoveRange(ctx, index); err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed range %s\n", removed)

		return nil
	})
}

func runRangeList(cmd *cobra.Command, _ []string) error {
	return withStore(cmd, func(ctx context.Context, st store.Store) error {
		ranges, err := st.LoadRanges(ctx, currentUser())
		if err != nil {
			return err
		}

		if ranges == nil {
			ranges = model.DefaultFleetConfig().Ranges
		}

		w := cmd.OutOrStdout()

		if len(ranges) == 0 {
			_, _ = fmt.Fprintln(w, "No ranges configured.")
			_, _ = fmt.Fprintln(w, "\nAdd one with: fleetroster range add <min> <max>")

			return nil
		}

		total := 0
		for i, r := range ranges {
			total += r.Len()
			_, _ = fmt.Fprintf(w, "%d. %-12s %d units\n", i+1, r, r.Len())
		}

		_, _ = fmt.Fprintf(w, "\nTotal: %d units\n", total)

		return nil
	})
}
