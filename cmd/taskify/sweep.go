package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ankitsingh4634/taskify/internal/config"
	"github.com/ankitsingh4634/taskify/internal/dav"
	"github.com/ankitsingh4634/taskify/internal/outbox"
	"github.com/ankitsingh4634/taskify/internal/store"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a single outbox reconciliation pass and exit",
	Long: `Reconcile pending sync intents against the DAV server once, then
exit. Useful for cron-style operation or for draining the outbox after
a remote outage.`,
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = st.Close() }()

	client, err := dav.NewClient(dav.Config{
		BaseURL:               cfg.DAV.BaseURL,
		Username:              cfg.DAV.Username,
		Password:              cfg.DAV.Password,
		CalendarCollection:    cfg.DAV.CalendarCollection,
		AddressBookCollection: cfg.DAV.AddressBookCollection,
		Timeout:               cfg.DAV.Timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create DAV client: %w", err)
	}

	sweeper := outbox.New(st, client, outbox.Config{
		GracePeriod: cfg.Sweeper.GracePeriod,
		BatchSize:   cfg.Sweeper.BatchSize,
		MaxAttempts: cfg.Sweeper.MaxAttempts,
	}, newLogger(cfg, "[sweep] "))

	n, err := sweeper.RunOnce(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("Reconciled %d pending intents\n", n)
	return nil
}
