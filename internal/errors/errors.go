// Package errors provides structured error types for scribe.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error codes for scribe operations.
const (
	// Validation errors
	CodeValidationMissingVars = "VALIDATE_001" // Missing required variables
	CodeValidationOutOfRange  = "VALIDATE_002" // Value outside accepted bounds
	CodeValidationBadFormat   = "VALIDATE_003" // Malformed value (e.g. URL)

	// Registry errors
	CodeRegistryUnknownType = "REGISTRY_001" // Workflow type not registered
	CodeRegistrySealed      = "REGISTRY_002" // Registration after seal

	// Graph errors
	CodeGraphEmpty    = "GRAPH_001" // Workflow has no tasks
	CodeGraphDangling = "GRAPH_002" // Dependency on unknown task
	CodeGraphCycle    = "GRAPH_003" // Circular dependency

	// Template errors
	CodeTemplateParse   = "TMPL_001" // Descriptor parse error
	CodeTemplateInvalid = "TMPL_002" // Descriptor failed validation

	// Tool errors
	CodeToolNotFound  = "TOOL_001" // Tool not in registry
	CodeToolFailed    = "TOOL_002" // Tool invocation failed
	CodeToolSealed    = "TOOL_003" // Registration after seal

	// Task errors
	CodeTaskTransition = "TASK_001" // Invalid status transition
	CodeTaskFailed     = "TASK_002" // Task execution failed

	// Workflow errors
	CodeWorkflowTransition = "WF_001" // Invalid status transition
	CodeWorkflowFailed     = "WF_002" // Workflow execution failed

	// Provider errors
	CodeProviderRequest = "PROVIDER_001" // Transport or API failure
	CodeProviderAuth    = "PROVIDER_002" // Missing or rejected credentials
	CodeProviderUnknown = "PROVIDER_003" // Unrecognized provider name

	// Store errors
	CodeStoreRead  = "STORE_001" // Failed to read persisted state
	CodeStoreWrite = "STORE_002" // Failed to write persisted state
)

// ScribeError is the structured error type for scribe operations.
type ScribeError struct {
	Code    string         `json:"code"`              // Error code (e.g., "GRAPH_003")
	Message string         `json:"message"`           // Human-readable message
	Details map[string]any `json:"details,omitempty"` // Context (task_id, workflow_type, etc.)
	Cause   error          `json:"-"`                 // Wrapped error (not serialized)
}

// Error implements the error interface.
func (e *ScribeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *ScribeError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error.
func (e *ScribeError) WithDetail(key string, value any) *ScribeError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause wraps an underlying error.
func (e *ScribeError) WithCause(err error) *ScribeError {
	e.Cause = err
	return e
}

// MarshalJSON implements json.Marshaler with cause error message.
func (e *ScribeError) MarshalJSON() ([]byte, error) {
	type alias ScribeError
	aux := struct {
		*alias
		CauseMsg string `json:"cause,omitempty"`
	}{
		alias: (*alias)(e),
	}
	if e.Cause != nil {
		aux.CauseMsg = e.Cause.Error()
	}
	return json.Marshal(aux)
}

// New creates a new ScribeError.
func New(code, message string) *ScribeError {
	return &ScribeError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new ScribeError with formatted message.
func Newf(code, format string, args ...any) *ScribeError {
	return &ScribeError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with a ScribeError.
func Wrap(code, message string, err error) *ScribeError {
	return &ScribeError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with a formatted ScribeError.
func Wrapf(code string, err error, format string, args ...any) *ScribeError {
	return &ScribeError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// --- Validation Errors ---

// ValidationMissingVars creates an error for missing required variables.
func ValidationMissingVars(workflowType string, missing []string) *ScribeError {
	return Newf(CodeValidationMissingVars, "missing required variables: %v", missing).
		WithDetail("workflow_type", workflowType).
		WithDetail("missing", missing)
}

// ValidationOutOfRange creates an error for a value outside accepted bounds.
func ValidationOutOfRange(field string, reason string) *ScribeError {
	return Newf(CodeValidationOutOfRange, "%s: %s", field, reason).
		WithDetail("field", field)
}

// ValidationBadFormat creates an error for a malformed value.
func ValidationBadFormat(field string, value any, reason string) *ScribeError {
	return Newf(CodeValidationBadFormat, "invalid %s: %s", field, reason).
		WithDetail("field", field).
		WithDetail("value", value)
}

// --- Registry Errors ---

// UnknownWorkflowType creates an error for an unregistered workflow type.
func UnknownWorkflowType(workflowType string, available []string) *ScribeError {
	return Newf(CodeRegistryUnknownType, "unknown workflow type: %s (available: %v)", workflowType, available).
		WithDetail("workflow_type", workflowType).
		WithDetail("available", available)
}

// RegistrySealed creates an error for registration after seal.
func RegistrySealed(workflowType string) *ScribeError {
	return Newf(CodeRegistrySealed, "registry is sealed, cannot register workflow type: %s", workflowType).
		WithDetail("workflow_type", workflowType)
}

// --- Graph Errors ---

// GraphEmpty creates an error for a workflow with no tasks.
func GraphEmpty(workflowName string) *ScribeError {
	return Newf(CodeGraphEmpty, "workflow %s must have at least one task", workflowName).
		WithDetail("workflow", workflowName)
}

// DanglingDependency creates an error for a dependency on an unknown task.
func DanglingDependency(taskID, depID string) *ScribeError {
	return Newf(CodeGraphDangling, "task %s depends on unknown task %s", taskID, depID).
		WithDetail("task_id", taskID).
		WithDetail("dependency_id", depID)
}

// CircularDependency creates an error for a cycle in task dependencies.
func CircularDependency(cycle []string) *ScribeError {
	return New(CodeGraphCycle, "circular dependency between tasks").
		WithDetail("cycle", cycle)
}

// --- Template Errors ---

// TemplateParse creates an error for a descriptor parse failure.
func TemplateParse(name string, err error) *ScribeError {
	return Wrap(CodeTemplateParse, "failed to parse workflow template", err).
		WithDetail("template", name)
}

// TemplateInvalid creates an error for a descriptor validation failure.
func TemplateInvalid(name, reason string) *ScribeError {
	return Newf(CodeTemplateInvalid, "invalid workflow template %s: %s", name, reason).
		WithDetail("template", name)
}

// --- Tool Errors ---

// ToolNotFound creates an error for a missing tool.
func ToolNotFound(toolName string) *ScribeError {
	return Newf(CodeToolNotFound, "tool not found: %s", toolName).
		WithDetail("tool", toolName)
}

// ToolFailed creates an error for a failed tool invocation.
func ToolFailed(toolName string, err error) *ScribeError {
	return Wrap(CodeToolFailed, "tool invocation failed", err).
		WithDetail("tool", toolName)
}

// ToolRegistrySealed creates an error for tool registration after seal.
func ToolRegistrySealed(toolName string) *ScribeError {
	return Newf(CodeToolSealed, "tool registry is sealed, cannot register: %s", toolName).
		WithDetail("tool", toolName)
}

// --- Task Errors ---

// TaskTransition creates an error for an invalid task status transition.
func TaskTransition(taskID, from, to string) *ScribeError {
	return Newf(CodeTaskTransition, "invalid status transition for task %s: %s -> %s", taskID, from, to).
		WithDetail("task_id", taskID).
		WithDetail("from", from).
		WithDetail("to", to)
}

// TaskFailed creates an error for a failed task execution.
func TaskFailed(taskID string, err error) *ScribeError {
	return Wrap(CodeTaskFailed, "task execution failed", err).
		WithDetail("task_id", taskID)
}

// --- Workflow Errors ---

// WorkflowTransition creates an error for an invalid workflow status transition.
func WorkflowTransition(workflowID, from, to string) *ScribeError {
	return Newf(CodeWorkflowTransition, "invalid status transition for workflow %s: %s -> %s", workflowID, from, to).
		WithDetail("workflow_id", workflowID).
		WithDetail("from", from).
		WithDetail("to", to)
}

// WorkflowFailed creates an error for a failed workflow execution.
func WorkflowFailed(workflowID string, err error) *ScribeError {
	return Wrap(CodeWorkflowFailed, "workflow execution failed", err).
		WithDetail("workflow_id", workflowID)
}

// --- Provider Errors ---

// ProviderRequest creates an error for a transport or API failure.
func ProviderRequest(provider string, err error) *ScribeError {
	return Wrap(CodeProviderRequest, "provider request failed", err).
		WithDetail("provider", provider)
}

// ProviderAuth creates an error for missing or rejected credentials.
func ProviderAuth(provider string) *ScribeError {
	return Newf(CodeProviderAuth, "missing or invalid API key for provider: %s", provider).
		WithDetail("provider", provider)
}

// ProviderUnknown creates an error for an unrecognized provider name.
func ProviderUnknown(provider string) *ScribeError {
	return Newf(CodeProviderUnknown, "unknown provider: %s", provider).
		WithDetail("provider", provider)
}

// --- Store Errors ---

// StoreRead creates an error for a failed read of persisted state.
func StoreRead(path string, err error) *ScribeError {
	return Wrap(CodeStoreRead, "failed to read store", err).
		WithDetail("path", path)
}

// StoreWrite creates an error for a failed write of persisted state.
func StoreWrite(path string, err error) *ScribeError {
	return Wrap(CodeStoreWrite, "failed to write store", err).
		WithDetail("path", path)
}

// HasCode checks if an error is a ScribeError with the given code.
// It handles wrapped errors by unwrapping to find a ScribeError.
func HasCode(err error, code string) bool {
	var serr *ScribeError
	if errors.As(err, &serr) {
		return serr.Code == code
	}
	return false
}

// Code returns the error code if err is a ScribeError, empty string otherwise.
// It handles wrapped errors by unwrapping to find a ScribeError.
func Code(err error) string {
	var serr *ScribeError
	if errors.As(err, &serr) {
		return serr.Code
	}
	return ""
}
