package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scribe-stack/scribe-machine/internal/workflows"
)

var workflowsCmd = &cobra.Command{
	Use:   "workflows",
	Short: "List available workflow types",
	RunE:  runWorkflows,
}

func init() {
	rootCmd.AddCommand(workflowsCmd)
}

func runWorkflows(cmd *cobra.Command, args []string) error {
	cfg, dir, err := loadConfig()
	if err != nil {
		return err
	}

	templateDir := cfg.TemplateDir(dir)
	for _, name := range workflows.BuiltinTemplateNames() {
		tpl, err := workflows.LoadTemplate(name, templateDir)
		if err != nil {
			return err
		}
		fmt.Printf("%s\n", tpl.Name)
		if tpl.Description != "" {
			fmt.Printf("  %s\n", tpl.Description)
		}
		fmt.Printf("  Tasks: %d\n", len(tpl.Tasks))
		if required := tpl.RequiredVars(); len(required) > 0 {
			fmt.Printf("  Required variables: %v\n", required)
		}
		fmt.Println()
	}
	return nil
}
