// Copyright (c) 2025 MC Youniverse
//
// This file is part of the attendance service.
//
// attendance is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@mcyouniverse.com for commercial licensing options.

// Package cli implements the attendance command-line interface.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcyouniverse/attendance/internal/config"
)

var configPath string

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Passkey-gated employee attendance service",
	Long: `attendance runs the employee check-in/check-out service: WebAuthn
passkey ceremonies at the gate, attendance records in postgres, and
daily/history/report queries over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (environment variables with ATTENDANCE_ prefix override)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(employeeCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the configuration from the --config file and environment.
func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// newLogger builds the process logger from the logging configuration.
func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
