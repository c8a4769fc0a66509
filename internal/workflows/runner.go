package workflows

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/scribe-stack/scribe-machine/internal/agent"
	"github.com/scribe-stack/scribe-machine/internal/types"
)

// AgentSource resolves an agent descriptor by role.
type AgentSource interface {
	ByRole(role string) (*types.Agent, bool)
}

// AgentRunner executes tasks by resolving the task's agent role and
// running it through the agent executor.
type AgentRunner struct {
	agents   AgentSource
	executor *agent.Executor
	logger   *slog.Logger
}

// NewAgentRunner creates the task runner used by the orchestrator.
func NewAgentRunner(agents AgentSource, executor *agent.Executor, logger *slog.Logger) *AgentRunner {
	return &AgentRunner{
		agents:   agents,
		executor: executor,
		logger:   logger,
	}
}

// RunTask resolves the agent for the task and executes it. A missing
// agent is an error; the orchestrator's failure policy decides whether
// that propagates or degrades to fallback content.
func (r *AgentRunner) RunTask(ctx context.Context, task *types.Task, ec *types.ExecutionContext) (string, error) {
	ag, ok := r.agents.ByRole(task.AgentRole)
	if !ok {
		return "", fmt.Errorf("no agent found for role %s", task.AgentRole)
	}
	r.logger.Debug("running task with agent", "task_id", task.ID, "agent_role", ag.Role)
	return r.executor.Execute(ctx, ag, task.Description, ec)
}
