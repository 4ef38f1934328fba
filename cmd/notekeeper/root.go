package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kuitang/notekeeper/internal/config"
	"github.com/kuitang/notekeeper/internal/errs"
	"github.com/kuitang/notekeeper/internal/obs"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "notekeeper",
	Short: "An in-memory notebook with users and permissions",
	Long: `notekeeper keeps memos with space-separated tags and finds them by substring.
It also registers users, logs them in, and checks named permissions.
Nothing is persisted; use a YAML seed file to start from a known state.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit status.
func Execute() int {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		return errs.ExitCode(errs.CodeOf(err))
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level regardless of LOG_LEVEL")
	rootCmd.AddCommand(shellCmd, demoCmd)
}

// loadConfig reads the environment, applies --verbose, and starts logging.
func loadConfig(seedFlag string) (*config.Config, error) {
	cfg, err := config.LoadConfig(seedFlag)
	if err != nil {
		var validationErr *config.ValidationError
		if errors.As(err, &validationErr) {
			return nil, errs.Wrap(errs.InvalidArgument, validationErr.Error(), err)
		}
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	obs.Init(cfg.ObsOptions())
	return cfg, nil
}
