package types

import "fmt"

// Agent describes an LLM-backed worker: its role, objective, persona,
// and the tools it may call during task execution.
type Agent struct {
	Role          string   `yaml:"role"`
	Goal          string   `yaml:"goal"`
	Backstory     string   `yaml:"backstory,omitempty"`
	SystemMessage string   `yaml:"system_message,omitempty"` // Overrides the role-derived message when set
	Tools         []string `yaml:"tools,omitempty"`          // Tool names from the registry
	Provider      string   `yaml:"provider,omitempty"`       // Overrides the configured default provider
	Model         string   `yaml:"model,omitempty"`          // Overrides the provider default model
}

// Validate checks the agent is well-formed.
func (a *Agent) Validate() error {
	if a.Role == "" {
		return fmt.Errorf("agent role is required")
	}
	if a.Goal == "" {
		return fmt.Errorf("agent %s: goal is required", a.Role)
	}
	return nil
}

// HasTool returns true if the agent declares the named tool.
func (a *Agent) HasTool(name string) bool {
	for _, t := range a.Tools {
		if t == name {
			return true
		}
	}
	return false
}
