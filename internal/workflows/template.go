package workflows

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/scribe-stack/scribe-machine/internal/errors"
)

// VariableDef declares a template input variable.
type VariableDef struct {
	Name     string `yaml:"name"`
	Required bool   `yaml:"required"`
}

// TaskDef declares one task in a workflow template. The description
// template is substituted against the execution context at run time.
type TaskDef struct {
	ID                  string   `yaml:"id"`
	Name                string   `yaml:"name"`
	DescriptionTemplate string   `yaml:"description_template"`
	Agent               string   `yaml:"agent"`
	Dependencies        []string `yaml:"dependencies,omitempty"`
}

// Template is the immutable declarative descriptor for a workflow type.
type Template struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description,omitempty"`
	Version     string        `yaml:"version,omitempty"`
	Variables   []VariableDef `yaml:"variables,omitempty"`
	Tasks       []TaskDef     `yaml:"tasks"`
}

// ParseTemplate unmarshals and validates a YAML descriptor.
func ParseTemplate(name string, data []byte) (*Template, error) {
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, errors.TemplateParse(name, err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks the descriptor is well-formed: named, at least one
// task, unique task IDs, resolvable dependencies, and an acyclic graph.
func (t *Template) Validate() error {
	if t.Name == "" {
		return errors.TemplateInvalid("", "template name is required")
	}
	if len(t.Tasks) == 0 {
		return errors.TemplateInvalid(t.Name, "template must declare at least one task")
	}

	ids := make(map[string]bool, len(t.Tasks))
	for _, task := range t.Tasks {
		if task.ID == "" {
			return errors.TemplateInvalid(t.Name, "task ID is required")
		}
		if ids[task.ID] {
			return errors.TemplateInvalid(t.Name, fmt.Sprintf("duplicate task ID: %s", task.ID))
		}
		ids[task.ID] = true
	}
	for _, task := range t.Tasks {
		for _, dep := range task.Dependencies {
			if dep == task.ID {
				return errors.TemplateInvalid(t.Name, fmt.Sprintf("task %s depends on itself", task.ID))
			}
			if !ids[dep] {
				return errors.TemplateInvalid(t.Name, fmt.Sprintf("task %s depends on unknown task %s", task.ID, dep))
			}
		}
	}

	// Kahn elimination over the declared graph.
	remaining := make(map[string][]string, len(t.Tasks))
	for _, task := range t.Tasks {
		remaining[task.ID] = task.Dependencies
	}
	for len(remaining) > 0 {
		progressed := false
		for id, deps := range remaining {
			resolved := true
			for _, dep := range deps {
				if _, pending := remaining[dep]; pending {
					resolved = false
					break
				}
			}
			if resolved {
				delete(remaining, id)
				progressed = true
			}
		}
		if !progressed {
			return errors.TemplateInvalid(t.Name, "circular dependency between tasks")
		}
	}
	return nil
}

// RequiredVars returns the names of the required variables.
func (t *Template) RequiredVars() []string {
	var required []string
	for _, v := range t.Variables {
		if v.Required {
			required = append(required, v.Name)
		}
	}
	return required
}
