package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ankitsingh4634/taskify/internal/config"
	"github.com/ankitsingh4634/taskify/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}

		st, err := store.Open(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer func() { _ = st.Close() }()

		if err := st.InitSchemaContext(cmd.Context()); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
		fmt.Printf("Schema ready at %s\n", cfg.Database.Path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
