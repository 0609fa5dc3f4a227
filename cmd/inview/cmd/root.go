// Package cmd implements the inview CLI commands.
package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/go-drift/inview/pkg/errors"
	"github.com/go-drift/inview/pkg/logging"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "inview",
		Short: "inview - element visibility sessions, replayed",
		Long: `inview drives the visibility session manager against an in-process
scene. Scenarios describe targets, observation options and a script of
scroll, resize and mount steps; every published visibility vector is printed.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	root.AddCommand(newSimulateCmd(), newVersionCmd())
	return root
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

// setupLogging builds the logger from the --log-level flag and routes
// reported library errors to it.
func setupLogging(cmd *cobra.Command) (*slog.Logger, error) {
	raw, _ := cmd.Flags().GetString("log-level")
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", raw)
	}
	logger := logging.NewWithWriter(cmd.ErrOrStderr(), level)
	errors.SetHandler(&errors.LogHandler{Logger: logger})
	return logger, nil
}
