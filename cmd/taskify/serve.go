package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ankitsingh4634/taskify/internal/analytics"
	"github.com/ankitsingh4634/taskify/internal/auth"
	"github.com/ankitsingh4634/taskify/internal/config"
	"github.com/ankitsingh4634/taskify/internal/dav"
	"github.com/ankitsingh4634/taskify/internal/orchestrator"
	"github.com/ankitsingh4634/taskify/internal/outbox"
	"github.com/ankitsingh4634/taskify/internal/server"
	"github.com/ankitsingh4634/taskify/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and the outbox sweeper",
	Long: `Start the HTTP API server, the WebSocket event feed, and the
background outbox sweeper that reconciles failed DAV syncs.

Example usage:
  taskify serve                          # Defaults plus ./taskify.yaml
  taskify serve --config /etc/taskify.yaml
  TASKIFY_SERVER_PORT=9000 taskify serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	logger := newLogger(cfg, "[taskify] ")

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = st.Close() }()

	if err := st.InitSchema(); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	client, err := dav.NewClient(dav.Config{
		BaseURL:               cfg.DAV.BaseURL,
		Username:              cfg.DAV.Username,
		Password:              cfg.DAV.Password,
		CalendarCollection:    cfg.DAV.CalendarCollection,
		AddressBookCollection: cfg.DAV.AddressBookCollection,
		Timeout:               cfg.DAV.Timeout,
		Logger:                newLogger(cfg, "[dav] "),
	})
	if err != nil {
		return fmt.Errorf("failed to create DAV client: %w", err)
	}

	if configFile != "" {
		err := config.Watch(configFile, logger, func(fresh *config.Config) {
			client.SetCredentials(fresh.DAV.Username, fresh.DAV.Password)
		})
		if err != nil {
			logger.Printf("config watching disabled: %v", err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.DAV.VerifyOnStart {
		if err := client.VerifyCollections(ctx); err != nil {
			logger.Printf("DAV collection verification failed: %v", err)
		}
	}

	srv := server.New(
		&server.Config{Port: cfg.Server.Port, Logger: logger},
		orchestrator.NewTasks(st, st, client, newLogger(cfg, "[tasks] ")),
		orchestrator.NewContacts(st, st, client, newLogger(cfg, "[contacts] ")),
		analytics.New(st),
		auth.New(st, cfg.Auth.SessionTTL),
	)
	if err := srv.Start(); err != nil {
		return err
	}

	sweeper := outbox.New(st, client, outbox.Config{
		Interval:    cfg.Sweeper.Interval,
		GracePeriod: cfg.Sweeper.GracePeriod,
		BatchSize:   cfg.Sweeper.BatchSize,
		MaxAttempts: cfg.Sweeper.MaxAttempts,
	}, newLogger(cfg, "[sweeper] "))
	go sweeper.Start(ctx)

	fmt.Printf("Taskify listening on http://localhost:%d\n", cfg.Server.Port)
	fmt.Printf("WebSocket endpoint: ws://localhost:%d/ws\n", cfg.Server.Port)
	fmt.Println("\nPress Ctrl+C to stop...")

	<-ctx.Done()

	fmt.Println("\nShutting down...")
	if err := srv.Stop(); err != nil {
		return err
	}
	return nil
}

// newLogger builds a prefixed logger, rotating through lumberjack when
// a log file is configured.
func newLogger(cfg *config.Config, prefix string) *log.Logger {
	var out io.Writer = os.Stderr
	if cfg.Log.File != "" {
		out = &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAgeDays,
		}
	}
	return log.New(out, prefix, log.LstdFlags)
}
