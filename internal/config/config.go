// Package config loads scribe configuration from TOML files and the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// LogLevel specifies the logging verbosity.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat specifies the log output format.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// PathsConfig holds path configuration.
type PathsConfig struct {
	TemplateDir  string `toml:"template_dir"`
	AgentsFile   string `toml:"agents_file"`
	RunsDir      string `toml:"runs_dir"`
	KnowledgeDir string `toml:"knowledge_dir"`
	LogsDir      string `toml:"logs_dir"`
}

// ProviderConfig holds LLM provider settings. API keys come from the
// environment, never from config files.
type ProviderConfig struct {
	Name        string  `toml:"name"`
	Model       string  `toml:"model"`
	Temperature float64 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
}

// OrchestratorConfig holds executor settings.
type OrchestratorConfig struct {
	FailurePolicy string `toml:"failure_policy"` // fallback | propagate
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  LogLevel  `toml:"level"`
	Format LogFormat `toml:"format"`
	File   string    `toml:"file"`
}

// Config is the main configuration struct for scribe.
type Config struct {
	Version      string             `toml:"version"`
	Paths        PathsConfig        `toml:"paths"`
	Provider     ProviderConfig     `toml:"provider"`
	Orchestrator OrchestratorConfig `toml:"orchestrator"`
	Logging      LoggingConfig      `toml:"logging"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Version: "1",
		Paths: PathsConfig{
			TemplateDir:  ".scribe/templates",
			AgentsFile:   ".scribe/agents.yaml",
			RunsDir:      ".scribe/runs",
			KnowledgeDir: ".scribe/knowledge",
			LogsDir:      ".scribe/logs",
		},
		Provider: ProviderConfig{
			Name:        "openai",
			Temperature: 0.7,
			MaxTokens:   4096,
		},
		Orchestrator: OrchestratorConfig{
			FailurePolicy: "fallback",
		},
		Logging: LoggingConfig{
			Level:  LogLevelInfo,
			Format: LogFormatJSON,
			File:   "",
		},
	}
}

// Load loads configuration from file, merging with defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if no config file
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadFromDir loads configuration from the standard locations.
// Applies in order: defaults -> ~/.scribe/config.toml -> .scribe/config.toml.
// Later configs override earlier ones.
func LoadFromDir(dir string) (*Config, error) {
	cfg := Default()

	home, err := os.UserHomeDir()
	if err == nil {
		globalConfig := filepath.Join(home, ".scribe", "config.toml")
		if data, err := os.ReadFile(globalConfig); err == nil {
			if _, err := toml.Decode(string(data), cfg); err != nil {
				return nil, fmt.Errorf("parsing global config: %w", err)
			}
		}
	}

	projectConfig := filepath.Join(dir, ".scribe", "config.toml")
	if data, err := os.ReadFile(projectConfig); err == nil {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parsing project config: %w", err)
		}
	}

	return cfg, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Version == "" {
		return fmt.Errorf("config version is required")
	}
	if c.Paths.RunsDir == "" {
		return fmt.Errorf("runs_dir is required")
	}
	if c.Provider.Name == "" {
		return fmt.Errorf("provider name is required")
	}
	switch c.Orchestrator.FailurePolicy {
	case "", "fallback", "propagate":
	default:
		return fmt.Errorf("failure_policy must be fallback or propagate")
	}
	return nil
}

// LoadEnv loads a .env file from the directory, if present, into the
// process environment. Existing variables are not overridden.
func LoadEnv(dir string) {
	_ = godotenv.Load(filepath.Join(dir, ".env"))
}

// ProviderAPIKey returns the API key for the named provider from the
// environment.
func ProviderAPIKey(provider string) string {
	switch provider {
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "deepseek":
		return os.Getenv("DEEPSEEK_API_KEY")
	default:
		return os.Getenv("OPENAI_API_KEY")
	}
}

// SerperAPIKey returns the web-search API key from the environment.
func SerperAPIKey() string {
	return os.Getenv("SERPER_API_KEY")
}

// TemplateDir returns the absolute template directory path.
func (c *Config) TemplateDir(baseDir string) string {
	return c.absPath(baseDir, c.Paths.TemplateDir)
}

// AgentsFile returns the absolute agents file path.
func (c *Config) AgentsFile(baseDir string) string {
	return c.absPath(baseDir, c.Paths.AgentsFile)
}

// RunsDir returns the absolute runs directory path.
func (c *Config) RunsDir(baseDir string) string {
	return c.absPath(baseDir, c.Paths.RunsDir)
}

// KnowledgeDir returns the absolute knowledge base directory path.
func (c *Config) KnowledgeDir(baseDir string) string {
	return c.absPath(baseDir, c.Paths.KnowledgeDir)
}

// LogFile returns the absolute log file path, or empty when file
// logging is disabled.
func (c *Config) LogFile(baseDir string) string {
	if c.Logging.File == "" {
		return ""
	}
	return c.absPath(baseDir, filepath.Join(c.Paths.LogsDir, c.Logging.File))
}

func (c *Config) absPath(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
