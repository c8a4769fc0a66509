package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scribe-stack/scribe-machine/internal/workflows"
)

var validateCmd = &cobra.Command{
	Use:   "validate <template-file>",
	Short: "Validate a workflow template file",
	Long: `Parse and validate a workflow template YAML file: task IDs must be
unique, dependencies must reference declared tasks, and the dependency
graph must be acyclic.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	tpl, err := workflows.LoadTemplateFile(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Template %s is valid.\n", tpl.Name)
	fmt.Printf("  Tasks: %d\n", len(tpl.Tasks))
	for _, task := range tpl.Tasks {
		if len(task.Dependencies) > 0 {
			fmt.Printf("  %s [%s] needs %v\n", task.ID, task.Agent, task.Dependencies)
		} else {
			fmt.Printf("  %s [%s]\n", task.ID, task.Agent)
		}
	}
	return nil
}
