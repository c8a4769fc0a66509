package types

import "time"

// WorkflowResult is the outcome of a workflow run.
type WorkflowResult struct {
	WorkflowID   string                `yaml:"workflow_id" json:"workflow_id"`
	WorkflowType string                `yaml:"workflow_type" json:"workflow_type"`
	Success      bool                  `yaml:"success" json:"success"`
	FinalOutput  string                `yaml:"final_output,omitempty" json:"final_output,omitempty"`
	TaskOutputs  map[string]string     `yaml:"task_outputs,omitempty" json:"task_outputs,omitempty"`
	TaskStatuses map[string]TaskStatus `yaml:"task_statuses,omitempty" json:"task_statuses,omitempty"`
	Summary      string                `yaml:"summary,omitempty" json:"summary,omitempty"`
	Duration     time.Duration         `yaml:"duration" json:"duration"`
	Error        string                `yaml:"error,omitempty" json:"error,omitempty"`
}

// NewResultFromWorkflow builds a result snapshot from a finished workflow.
func NewResultFromWorkflow(w *Workflow, ec *ExecutionContext) *WorkflowResult {
	outputs := make(map[string]string, len(w.Tasks))
	statuses := make(map[string]TaskStatus, len(w.Tasks))
	for _, t := range w.Tasks {
		if t.Output != "" {
			outputs[t.ID] = t.Output
		}
		statuses[t.ID] = t.Status
	}
	res := &WorkflowResult{
		WorkflowID:   w.ID,
		WorkflowType: w.Type,
		Success:      w.Status == WorkflowStatusCompleted,
		FinalOutput:  w.FinalOutput,
		TaskOutputs:  outputs,
		TaskStatuses: statuses,
		Duration:     w.Duration(),
		Error:        w.ErrorMsg,
	}
	if ec != nil {
		res.Summary = ec.Summary
		// Fallback outputs live only in the context when a task failed.
		for id, out := range ec.Outputs {
			if _, ok := res.TaskOutputs[id]; !ok {
				res.TaskOutputs[id] = out
			}
		}
	}
	return res
}
