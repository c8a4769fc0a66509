package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scribe-stack/scribe-machine/internal/store"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List configured agents",
	RunE:  runAgents,
}

func init() {
	rootCmd.AddCommand(agentsCmd)
}

func runAgents(cmd *cobra.Command, args []string) error {
	cfg, dir, err := loadConfig()
	if err != nil {
		return err
	}

	agents, err := store.LoadAgentStore(cfg.AgentsFile(dir))
	if err != nil {
		return err
	}

	for _, a := range agents.List() {
		fmt.Printf("%s\n", a.Role)
		fmt.Printf("  Goal: %s\n", a.Goal)
		if len(a.Tools) > 0 {
			fmt.Printf("  Tools: %s\n", strings.Join(a.Tools, ", "))
		}
		if a.Model != "" {
			fmt.Printf("  Model: %s\n", a.Model)
		}
		fmt.Println()
	}
	return nil
}
