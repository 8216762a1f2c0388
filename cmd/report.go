package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/inovacc/fleetroster/internal/fleet"
	"github.com/inovacc/fleetroster/internal/report"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render day reports",
}

var reportRenderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the report of a day",
	Long: `Render the report of a day: its title, one block per station with the
opening hours and units, and the caption.

Text goes to standard output unless --output is given; xlsx needs --output.

Examples:
  fleetroster report render
  fleetroster report render --date 2024-05-06 --format xlsx -o report.xlsx`,
	Args: cobra.NoArgs,
	RunE: runReportRender,
}

var (
	reportDate   string
	reportFormat string
	reportOutput string
)

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportRenderCmd)

	reportRenderCmd.Flags().StringVarP(&reportDate, "date", "d", "", "Day (YYYY-MM-DD, default today)")
	reportRenderCmd.Flags().StringVarP(&reportFormat, "format", "f", string(report.FormatText), "Output format: text or xlsx")
	reportRenderCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Write to file instead of standard output")
}

func runReportRender(cmd *cobra.Command, _ []string) error {
	renderer, err := report.ForFormat(report.Format(reportFormat))
	if err != nil {
		return err
	}

	if report.Format(reportFormat) == report.FormatXLSX && reportOutput == "" {
		return fmt.Errorf("xlsx output needs --output")
	}

	return withSession(cmd, reportDate, func(_ context.Context, s *fleet.Session) error {
		body, err := renderer.Render(s.Snapshot())
		if err != nil {
			return fmt.Errorf("failed to render report: %w", err)
		}

		if reportOutput == "" {
			_, err = cmd.OutOrStdout().Write(body)
			return err
		}

		if err := os.WriteFile(reportOutput, body, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", reportOutput, err)
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", reportOutput)

		return nil
	})
}
