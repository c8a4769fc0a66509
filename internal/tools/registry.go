// Package tools provides the named tool registry and builtin tools
// available to agents during task execution.
package tools

import (
	"context"
	"sort"
	"sync"

	"github.com/scribe-stack/scribe-machine/internal/errors"
)

// Func is a tool invocation: plain-text input in, plain-text output out.
type Func func(ctx context.Context, input string) (string, error)

// Tool pairs a registered function with its description for prompts.
type Tool struct {
	Name        string
	Description string
	Run         Func
}

// Registry maps tool names to functions. Registration happens at
// startup; Seal freezes the set before execution begins.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]*Tool
	sealed bool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]*Tool),
	}
}

// Register adds a tool. Registering a duplicate name replaces the
// earlier entry; registering after Seal fails.
func (r *Registry) Register(name, description string, fn Func) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return errors.ToolRegistrySealed(name)
	}
	r.tools[name] = &Tool{Name: name, Description: description, Run: fn}
	return nil
}

// Seal freezes the registry. Further Register calls fail.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (*Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Invoke runs the named tool. A missing name returns a ToolNotFound
// error; a tool failure is wrapped with the tool name.
func (r *Registry) Invoke(ctx context.Context, name, input string) (string, error) {
	tool, ok := r.Get(name)
	if !ok {
		return "", errors.ToolNotFound(name)
	}
	out, err := tool.Run(ctx, input)
	if err != nil {
		return "", errors.ToolFailed(name, err)
	}
	return out, nil
}

// List returns the registered tools sorted by name.
func (r *Registry) List() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*Tool, 0, len(r.tools))
	for _, t := range r.tools {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// Names returns the registered tool names sorted.
func (r *Registry) Names() []string {
	list := r.List()
	names := make([]string, len(list))
	for i, t := range list {
		names[i] = t.Name
	}
	return names
}
