package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scribe-stack/scribe-machine/internal/status"
	"github.com/scribe-stack/scribe-machine/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List saved workflow runs",
	RunE:  runRuns,
}

var showCmd = &cobra.Command{
	Use:   "show <workflow-id>",
	Short: "Show the final content of a saved run",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(showCmd)
}

func openRunStore() (*store.RunStore, error) {
	cfg, dir, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return store.NewRunStore(cfg.RunsDir(dir))
}

func runRuns(cmd *cobra.Command, args []string) error {
	runs, err := openRunStore()
	if err != nil {
		return err
	}
	records, err := runs.List()
	if err != nil {
		return err
	}
	fmt.Print(status.FormatRunList(records, status.FormatOptions{NoColor: noColor}))
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	runs, err := openRunStore()
	if err != nil {
		return err
	}
	content, err := runs.Content(args[0])
	if err != nil {
		return err
	}
	fmt.Println(content)
	return nil
}
