package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/inovacc/fleetroster/internal/application"
	"github.com/inovacc/fleetroster/internal/config"
	"github.com/inovacc/fleetroster/internal/store"
	"github.com/spf13/cobra"
)

var (
	configPath string
	userFlag   string

	// cfg is loaded once per invocation in PersistentPreRunE
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   application.AppName,
	Short: "Daily roster of service stations and fleet units",
	Long: `Fleetroster keeps the daily roster of a vehicle fleet: which units are
assigned to which service station, which are in the workshop, and which
are still free. Each day can be saved, reported and browsed later.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}

		cfg = loaded
		cfg.SetupLogging(cmd.ErrOrStderr())

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetRootCmd returns the root command for introspection purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $FLEETROSTER_CONFIG or the application directory's config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "Account whose fleet is edited (default: config default_user)")
}

// currentUser returns the --user flag or the configured default user.
func currentUser() string {
	if userFlag != "" {
		return userFlag
	}

	return cfg.DefaultUser
}

// withStore opens the configured store for the duration of fn.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, st store.Store) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	defer func() { _ = st.Close() }()

	return fn(ctx, st)
}
