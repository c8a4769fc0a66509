package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/scribe-stack/scribe-machine/internal/config"
	"github.com/scribe-stack/scribe-machine/internal/store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a scribe project in the current directory",
	Long: `Create the .scribe directory layout with a default config file and
the builtin agent set, ready for customization.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := getWorkDir()
	if err != nil {
		return err
	}

	cfg := config.Default()
	for _, sub := range []string{
		cfg.TemplateDir(dir),
		cfg.RunsDir(dir),
		cfg.KnowledgeDir(dir),
		filepath.Join(dir, cfg.Paths.LogsDir),
	} {
		if err := os.MkdirAll(sub, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", sub, err)
		}
	}

	configPath := filepath.Join(dir, ".scribe", "config.toml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		f, err := os.Create(configPath)
		if err != nil {
			return fmt.Errorf("creating config: %w", err)
		}
		if err := toml.NewEncoder(f).Encode(cfg); err != nil {
			f.Close()
			return fmt.Errorf("writing config: %w", err)
		}
		f.Close()
		fmt.Printf("Created %s\n", configPath)
	}

	agentsPath := cfg.AgentsFile(dir)
	if _, err := os.Stat(agentsPath); os.IsNotExist(err) {
		if err := store.NewAgentStore().Save(agentsPath); err != nil {
			return fmt.Errorf("writing agents file: %w", err)
		}
		fmt.Printf("Created %s\n", agentsPath)
	}

	fmt.Println("Scribe project initialized.")
	fmt.Println("Set OPENAI_API_KEY (or ANTHROPIC_API_KEY / DEEPSEEK_API_KEY) and SERPER_API_KEY in .env to enable providers and web search.")
	return nil
}
