package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List available agent tools",
	RunE:  runTools,
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}

func runTools(cmd *cobra.Command, args []string) error {
	cfg, dir, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closer, err := newLogger(cfg, dir)
	if err != nil {
		return err
	}
	defer closeLogger(closer)

	reg, err := buildToolRegistry(cfg, dir, logger)
	if err != nil {
		return err
	}

	for _, tool := range reg.List() {
		fmt.Printf("%s\n  %s\n\n", tool.Name, tool.Description)
	}
	return nil
}
