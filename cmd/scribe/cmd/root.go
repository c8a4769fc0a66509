// Package cmd implements the scribe command line interface.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/scribe-stack/scribe-machine/internal/config"
	"github.com/scribe-stack/scribe-machine/internal/logging"
)

var (
	// Version is set at build time via ldflags
	Version = "dev"

	// Global flags
	verbose bool
	noColor bool
	workDir string
)

var rootCmd = &cobra.Command{
	Use:   "scribe",
	Short: "Scribe - LLM-backed content generation workflows",
	Long: `Scribe orchestrates multi-step content generation workflows.

Each workflow type bakes a template of agent tasks into a dependency
graph and executes it task by task, with LLM agents that can call
tools (web search, knowledge base lookup) inline during generation.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVarP(&workDir, "workdir", "C", "", "working directory (default: current)")

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("scribe {{.Version}}\n")
}

// getWorkDir returns the effective working directory.
func getWorkDir() (string, error) {
	if workDir != "" {
		return workDir, nil
	}
	return os.Getwd()
}

// loadConfig loads layered configuration and the .env file for the
// working directory.
func loadConfig() (*config.Config, string, error) {
	dir, err := getWorkDir()
	if err != nil {
		return nil, "", fmt.Errorf("getting working directory: %w", err)
	}
	config.LoadEnv(dir)

	cfg, err := config.LoadFromDir(dir)
	if err != nil {
		return nil, "", err
	}
	if verbose {
		cfg.Logging.Level = config.LogLevelDebug
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid config: %w", err)
	}
	return cfg, dir, nil
}

// newLogger builds the logger for a command run. The returned closer
// is non-nil when file logging is enabled.
func newLogger(cfg *config.Config, dir string) (*slog.Logger, io.Closer, error) {
	logger, closer, err := logging.NewFromConfig(cfg, dir)
	if err != nil {
		return nil, nil, fmt.Errorf("setting up logging: %w", err)
	}
	return logger, closer, nil
}

func closeLogger(closer io.Closer) {
	if closer != nil {
		closer.Close()
	}
}
