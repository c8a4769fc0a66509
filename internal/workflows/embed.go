package workflows

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed templates/*.yaml
var builtinTemplates embed.FS

// LoadBuiltinTemplate parses the embedded descriptor for a workflow type.
func LoadBuiltinTemplate(workflowType string) (*Template, error) {
	data, err := builtinTemplates.ReadFile("templates/" + workflowType + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("no builtin template for workflow type %s", workflowType)
	}
	return ParseTemplate(workflowType, data)
}

// BuiltinTemplateNames lists the embedded workflow types.
func BuiltinTemplateNames() []string {
	entries, err := builtinTemplates.ReadDir("templates")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// LoadTemplate loads a descriptor for a workflow type, preferring an
// on-disk override in templateDir over the embedded default.
func LoadTemplate(workflowType, templateDir string) (*Template, error) {
	if templateDir != "" {
		path := filepath.Join(templateDir, workflowType+".yaml")
		if data, err := os.ReadFile(path); err == nil {
			return ParseTemplate(workflowType, data)
		}
	}
	return LoadBuiltinTemplate(workflowType)
}

// LoadTemplateFile parses a descriptor from an explicit path.
func LoadTemplateFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ParseTemplate(name, data)
}
