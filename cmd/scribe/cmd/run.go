package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scribe-stack/scribe-machine/internal/status"
	"github.com/scribe-stack/scribe-machine/internal/types"
)

var runCmd = &cobra.Command{
	Use:   "run <workflow-type>",
	Short: "Run a content generation workflow",
	Long: `Run a workflow of the given type with variables supplied via --var.

Example:
  scribe run enhanced_article --var topic="EV supply chains" --var client_name=acme
  scribe run premium_newsletter --var newsletter_topic="Fintech weekly" \
    --var client_name=acme --var premium_sources="https://example.com/markets" \
    --var target_audience="retail investors"`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

var (
	runVars    []string
	runPolicy  string
	runOutput  string
	runNoSave  bool
	runShowAll bool
)

func init() {
	runCmd.Flags().StringArrayVar(&runVars, "var", nil, "variable values (format: name=value)")
	runCmd.Flags().StringVar(&runPolicy, "failure-policy", "", "task failure policy: fallback or propagate (default: from config)")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "write final content to file instead of stdout")
	runCmd.Flags().BoolVar(&runNoSave, "no-save", false, "do not persist the run record")
	runCmd.Flags().BoolVar(&runShowAll, "all-outputs", false, "print every task output, not just the final one")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	workflowType := args[0]

	cfg, dir, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closer, err := newLogger(cfg, dir)
	if err != nil {
		return err
	}
	defer closeLogger(closer)

	rt, err := buildRuntime(cfg, dir, runPolicy, logger)
	if err != nil {
		return err
	}

	ec := types.NewExecutionContext()
	for _, v := range runVars {
		parts := strings.SplitN(v, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid variable format: %s (expected name=value)", v)
		}
		ec.Set(parts[0], parts[1])
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, execErr := rt.Registry.Execute(ctx, workflowType, ec)
	if res != nil {
		if !runNoSave {
			if err := rt.Runs.SaveResult(res); err != nil {
				logger.Error("failed to save run", "error", err)
			}
		}

		fmt.Fprintln(os.Stderr, status.FormatResult(res, status.FormatOptions{NoColor: noColor}))

		if runShowAll {
			for _, id := range sortedTaskIDs(res) {
				fmt.Printf("=== %s ===\n%s\n\n", id, res.TaskOutputs[id])
			}
		}
		if res.FinalOutput != "" {
			if runOutput != "" {
				if err := os.WriteFile(runOutput, []byte(res.FinalOutput), 0644); err != nil {
					return fmt.Errorf("writing output file: %w", err)
				}
				fmt.Fprintf(os.Stderr, "Final content written to %s\n", runOutput)
			} else if !runShowAll {
				fmt.Println(res.FinalOutput)
			}
		}
	}
	return execErr
}

func sortedTaskIDs(res *types.WorkflowResult) []string {
	ids := make([]string, 0, len(res.TaskOutputs))
	for id := range res.TaskOutputs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
