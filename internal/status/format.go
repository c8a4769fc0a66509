// Package status renders workflow results and run history for the CLI.
package status

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/scribe-stack/scribe-machine/internal/store"
	"github.com/scribe-stack/scribe-machine/internal/types"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	runningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
)

// FormatOptions controls output formatting.
type FormatOptions struct {
	NoColor bool
	Quiet   bool
}

// FormatResult formats a completed workflow result with full details.
func FormatResult(res *types.WorkflowResult, opts FormatOptions) string {
	var b strings.Builder

	b.WriteString(render(titleStyle, fmt.Sprintf("Workflow: %s", res.WorkflowID), opts))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s\n", render(labelStyle, "Type:    ", opts), res.WorkflowType))
	b.WriteString(fmt.Sprintf("%s %s\n", render(labelStyle, "Status:  ", opts), formatOutcome(res.Success, opts)))
	b.WriteString(fmt.Sprintf("%s %s\n", render(labelStyle, "Duration:", opts), formatDuration(res.Duration)))

	if len(res.TaskStatuses) > 0 {
		b.WriteString("\nTasks:\n")
		ids := make([]string, 0, len(res.TaskStatuses))
		for id := range res.TaskStatuses {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			st := res.TaskStatuses[id]
			b.WriteString(fmt.Sprintf("  %s %s: %s\n", statusIcon(st, opts), id, st))
		}
	}

	if res.Summary != "" && !opts.Quiet {
		b.WriteString("\nSummary:\n")
		for _, line := range strings.Split(strings.TrimSpace(res.Summary), "\n") {
			b.WriteString("  " + line + "\n")
		}
	}

	if res.Error != "" {
		b.WriteString("\n")
		b.WriteString(render(errorStyle, "Error: "+res.Error, opts))
		b.WriteString("\n")
	}

	return b.String()
}

// FormatRunList formats run history, newest first.
func FormatRunList(records []*store.RunRecord, opts FormatOptions) string {
	if len(records) == 0 {
		return "No runs found.\n"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Found %d run(s):\n\n", len(records)))

	for i, rec := range records {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(render(titleStyle, rec.WorkflowID, opts))
		b.WriteString("\n")
		if !opts.Quiet {
			b.WriteString(fmt.Sprintf("  %s %s\n", render(labelStyle, "Type:    ", opts), rec.WorkflowType))
			b.WriteString(fmt.Sprintf("  %s %s\n", render(labelStyle, "Status:  ", opts), formatOutcome(rec.Success, opts)))
			b.WriteString(fmt.Sprintf("  %s %s\n", render(labelStyle, "Saved:   ", opts), rec.SavedAt.Format("2006-01-02 15:04:05")))
			b.WriteString(fmt.Sprintf("  %s %s\n", render(labelStyle, "Duration:", opts), formatDuration(rec.Duration)))
		}
	}

	return b.String()
}

func formatOutcome(success bool, opts FormatOptions) string {
	if success {
		return render(successStyle, "✓ completed", opts)
	}
	return render(errorStyle, "✗ failed", opts)
}

func statusIcon(st types.TaskStatus, opts FormatOptions) string {
	switch st {
	case types.TaskStatusCompleted:
		return render(successStyle, "✓", opts)
	case types.TaskStatusFailed:
		return render(errorStyle, "✗", opts)
	case types.TaskStatusRunning:
		return render(runningStyle, "●", opts)
	case types.TaskStatusCancelled:
		return render(pendingStyle, "⊘", opts)
	default:
		return render(pendingStyle, "○", opts)
	}
}

func render(style lipgloss.Style, s string, opts FormatOptions) string {
	if opts.NoColor {
		return s
	}
	return style.Render(s)
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
