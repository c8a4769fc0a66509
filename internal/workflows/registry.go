package workflows

import (
	"context"
	"sort"
	"sync"

	"github.com/scribe-stack/scribe-machine/internal/errors"
	"github.com/scribe-stack/scribe-machine/internal/types"
)

// Registry maps workflow type identifiers to handlers. Handlers are
// registered explicitly at startup; Seal freezes the set before any
// execution begins.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	sealed   bool
}

// NewRegistry creates an empty workflow registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

// Register adds a handler under its type. Registering a duplicate type
// replaces the earlier entry; registering after Seal fails.
func (r *Registry) Register(h Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return errors.RegistrySealed(h.Type())
	}
	r.handlers[h.Type()] = h
	return nil
}

// Seal freezes the registry. Further Register calls fail.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Handler retrieves the handler for a workflow type.
func (r *Registry) Handler(workflowType string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[workflowType]
	if !ok {
		return nil, errors.UnknownWorkflowType(workflowType, r.typesLocked())
	}
	return h, nil
}

// Execute runs the named workflow type against the execution context.
func (r *Registry) Execute(ctx context.Context, workflowType string, ec *types.ExecutionContext) (*types.WorkflowResult, error) {
	h, err := r.Handler(workflowType)
	if err != nil {
		return nil, err
	}
	return h.Execute(ctx, ec)
}

// Types returns the registered workflow types sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.typesLocked()
}

func (r *Registry) typesLocked() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns the registered handlers sorted by type.
func (r *Registry) List() []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]Handler, 0, len(r.handlers))
	for _, name := range r.typesLocked() {
		list = append(list, r.handlers[name])
	}
	return list
}
