package main

import (
	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "taskify",
	Short: "Task and address-book backend with CalDAV/CardDAV sync",
	Long: `Taskify is a personal productivity backend: tasks and contacts are
stored locally in SQLite and mirrored to a CalDAV/CardDAV server, with
dashboard analytics and a WebSocket feed of entity changes.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./taskify.yaml)")
}
