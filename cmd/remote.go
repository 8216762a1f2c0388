package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/inovacc/fleetroster/internal/client"
	grpcserver "github.com/inovacc/fleetroster/internal/server/grpc"
	"github.com/inovacc/fleetroster/internal/model"
	"github.com/spf13/cobra"
)

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Query a running fleetroster server",
}

var remoteStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the health of a running server",
	Args:  cobra.NoArgs,
	RunE:  runRemoteStatus,
}

var remoteShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a day as the server sees it, including unsaved changes",
	Args:  cobra.NoArgs,
	RunE:  runRemoteShow,
}

var (
	remoteURL  string
	remoteGRPC string
	remoteDate string
	remoteJSON bool
)

func init() {
	rootCmd.AddCommand(remoteCmd)
	remoteCmd.AddCommand(remoteStatusCmd)
	remoteCmd.AddCommand(remoteShowCmd)

	remoteCmd.PersistentFlags().StringVar(&remoteURL, "url", "", "Server base URL (default: config client.base_url)")
	remoteStatusCmd.Flags().StringVar(&remoteGRPC, "grpc", "", "Also check the gRPC health endpoint at this address")
	remoteShowCmd.Flags().StringVarP(&remoteDate, "date", "d", "", "Day (YYYY-MM-DD, default today)")
	remoteShowCmd.Flags().BoolVar(&remoteJSON, "json", false, "Output as JSON")
}

func newRemoteClient() *client.Client {
	url := cfg.Client.BaseURL
	if remoteURL != "" {
		url = remoteURL
	}

	return client.New(url, cfg.Client.Timeout)
}

func runRemoteStatus(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	w := cmd.OutOrStdout()

	if err := newRemoteClient().Health(ctx); err != nil {
		_, _ = fmt.Fprintln(w, "HTTP: unavailable")
		return err
	}

	_, _ = fmt.Fprintln(w, "HTTP: ok")

	if remoteGRPC == "" {
		return nil
	}

	st, err := client.CheckGRPC(ctx, remoteGRPC, grpcserver.ServiceName)
	if err != nil {
		_, _ = fmt.Fprintln(w, "gRPC: unavailable")
		return err
	}

	_, _ = fmt.Fprintf(w, "gRPC: %s\n", st)

	return nil
}

func runRemoteShow(cmd *cobra.Command, _ []string) error {
	date, err := parseDay(remoteDate)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Client.Timeout)
	defer cancel()

	day, err := newRemoteClient().Day(ctx, currentUser(), date)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()

	if remoteJSON {
		return printJSON(w, day)
	}

	_, _ = fmt.Fprintf(w, "%s (%s)\n\n", day.Date, model.NormalizeUser(currentUser()))

	for i, rec := range day.Assignments {
		_, _ = fmt.Fprintf(w, "%d. %s %s\n   %s\n", i+1, rec.Station, rec.Window, formatUnits(rec.Units))
	}

	_, _ = fmt.Fprintf(w, "\nTotal %d  in repair %d  assigned %d  free %d\n",
		day.Counts.Total, day.Counts.InRepair, day.Counts.Assigned, day.Counts.Free)

	if len(day.AvailableStations) > 0 {
		_, _ = fmt.Fprintf(w, "Stations without assignment: %v\n", day.AvailableStations)
	}

	return nil
}
