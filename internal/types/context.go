package types

import (
	"fmt"
	"sort"
	"strconv"
)

// Reserved context keys. These map to the typed ExecutionContext fields
// and may not be shadowed through Vars.
const (
	KeyTopic           = "topic"
	KeyClientName      = "client_name"
	KeyTargetAudience  = "target_audience"
	KeyTone            = "tone"
	KeyTargetWordCount = "target_word_count"
	KeyWorkflowID      = "workflow_id"
	KeyWorkflowName    = "workflow_name"
)

// ExecutionContext carries the variables, intermediate outputs, and
// summary of a single workflow run. Well-known inputs live in typed
// fields; handler-specific extensions go through Vars.
type ExecutionContext struct {
	Topic           string
	ClientName      string
	TargetAudience  string
	Tone            string
	TargetWordCount int
	WorkflowID      string
	WorkflowName    string

	// Vars holds handler-specific values that have no typed field.
	Vars map[string]any

	// Outputs holds completed task outputs keyed by task ID.
	Outputs map[string]string

	// Summary is set by workflow post-processing.
	Summary string
}

// NewExecutionContext creates an empty execution context.
func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{
		Vars:    make(map[string]any),
		Outputs: make(map[string]string),
	}
}

// Set stores a value under key, routing reserved keys to typed fields.
func (ec *ExecutionContext) Set(key string, value any) {
	switch key {
	case KeyTopic:
		ec.Topic = toString(value)
	case KeyClientName:
		ec.ClientName = toString(value)
	case KeyTargetAudience:
		ec.TargetAudience = toString(value)
	case KeyTone:
		ec.Tone = toString(value)
	case KeyTargetWordCount:
		ec.TargetWordCount = toInt(value)
	case KeyWorkflowID:
		ec.WorkflowID = toString(value)
	case KeyWorkflowName:
		ec.WorkflowName = toString(value)
	default:
		if ec.Vars == nil {
			ec.Vars = make(map[string]any)
		}
		ec.Vars[key] = value
	}
}

// Get retrieves a value by key, checking typed fields first.
func (ec *ExecutionContext) Get(key string) (any, bool) {
	switch key {
	case KeyTopic:
		return ec.Topic, ec.Topic != ""
	case KeyClientName:
		return ec.ClientName, ec.ClientName != ""
	case KeyTargetAudience:
		return ec.TargetAudience, ec.TargetAudience != ""
	case KeyTone:
		return ec.Tone, ec.Tone != ""
	case KeyTargetWordCount:
		return ec.TargetWordCount, ec.TargetWordCount != 0
	case KeyWorkflowID:
		return ec.WorkflowID, ec.WorkflowID != ""
	case KeyWorkflowName:
		return ec.WorkflowName, ec.WorkflowName != ""
	}
	v, ok := ec.Vars[key]
	return v, ok
}

// GetString retrieves a string value, or empty string if absent.
func (ec *ExecutionContext) GetString(key string) string {
	v, ok := ec.Get(key)
	if !ok {
		return ""
	}
	return toString(v)
}

// GetInt retrieves an int value, or 0 if absent or not numeric.
func (ec *ExecutionContext) GetInt(key string) int {
	v, ok := ec.Get(key)
	if !ok {
		return 0
	}
	return toInt(v)
}

// GetStrings retrieves a string slice value, converting []any
// elements, or nil if absent.
func (ec *ExecutionContext) GetStrings(key string) []string {
	v, ok := ec.Get(key)
	if !ok {
		return nil
	}
	switch val := v.(type) {
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, toString(item))
		}
		return out
	}
	return nil
}

// GetBool retrieves a bool value, or false if absent or not boolean.
func (ec *ExecutionContext) GetBool(key string) bool {
	v, ok := ec.Get(key)
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// SetOutput records a completed task output under its task ID.
func (ec *ExecutionContext) SetOutput(taskID, output string) {
	if ec.Outputs == nil {
		ec.Outputs = make(map[string]string)
	}
	ec.Outputs[taskID] = output
}

// Output retrieves a task output by task ID.
func (ec *ExecutionContext) Output(taskID string) (string, bool) {
	out, ok := ec.Outputs[taskID]
	return out, ok
}

// Flatten returns a snapshot of all context values for template
// substitution. Task outputs appear under both the task ID and the
// ID with an "_output" suffix.
func (ec *ExecutionContext) Flatten() map[string]any {
	flat := make(map[string]any, len(ec.Vars)+len(ec.Outputs)*2+8)
	for k, v := range ec.Vars {
		flat[k] = v
	}
	if ec.Topic != "" {
		flat[KeyTopic] = ec.Topic
	}
	if ec.ClientName != "" {
		flat[KeyClientName] = ec.ClientName
	}
	if ec.TargetAudience != "" {
		flat[KeyTargetAudience] = ec.TargetAudience
	}
	if ec.Tone != "" {
		flat[KeyTone] = ec.Tone
	}
	if ec.TargetWordCount != 0 {
		flat[KeyTargetWordCount] = ec.TargetWordCount
	}
	if ec.WorkflowID != "" {
		flat[KeyWorkflowID] = ec.WorkflowID
	}
	if ec.WorkflowName != "" {
		flat[KeyWorkflowName] = ec.WorkflowName
	}
	for id, out := range ec.Outputs {
		flat[id] = out
		flat[id+"_output"] = out
	}
	return flat
}

// Keys returns all populated keys in sorted order.
func (ec *ExecutionContext) Keys() []string {
	flat := ec.Flatten()
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}
