package agent

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"

	scriberr "github.com/scribe-stack/scribe-machine/internal/errors"
	"github.com/scribe-stack/scribe-machine/internal/tools"
)

// toolCall is a resolved [name]input[/name] span in a response.
type toolCall struct {
	name  string
	input string
	start int // Index of the opening bracket
	end   int // Index just past the closing tag
}

// scanToolCalls finds tool-call spans left to right. Spans never
// overlap: scanning resumes after each resolved span. An opening tag
// with no matching close tag is literal text, as is a close tag with
// no preceding open tag.
func scanToolCalls(s string) []toolCall {
	var calls []toolCall
	pos := 0
	for pos < len(s) {
		open := strings.Index(s[pos:], "[")
		if open < 0 {
			break
		}
		open += pos

		name, nameEnd := scanTagName(s, open+1)
		if name == "" {
			pos = open + 1
			continue
		}

		closeTag := "[/" + name + "]"
		closeIdx := strings.Index(s[nameEnd+1:], closeTag)
		if closeIdx < 0 {
			pos = open + 1
			continue
		}
		closeIdx += nameEnd + 1

		calls = append(calls, toolCall{
			name:  name,
			input: s[nameEnd+1 : closeIdx],
			start: open,
			end:   closeIdx + len(closeTag),
		})
		pos = closeIdx + len(closeTag)
	}
	return calls
}

// scanTagName reads a word-character tag name starting at i and returns
// the name and the index of the closing bracket. Returns "" when the
// text at i is not a [name] tag.
func scanTagName(s string, i int) (string, int) {
	j := i
	for j < len(s) && isWordChar(s[j]) {
		j++
	}
	if j == i || j >= len(s) || s[j] != ']' {
		return "", 0
	}
	return s[i:j], j
}

func isWordChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// processToolCalls replaces each tool-call span in the response with
// the tool's result or an inline error marker. Tool failures never
// propagate; they become part of the response text.
func processToolCalls(ctx context.Context, response string, registry *tools.Registry, logger *slog.Logger) string {
	calls := scanToolCalls(response)
	if len(calls) == 0 {
		return response
	}

	var b strings.Builder
	b.Grow(len(response))
	prev := 0
	for _, call := range calls {
		b.WriteString(response[prev:call.start])
		b.WriteString(renderToolCall(ctx, call, registry, logger))
		prev = call.end
	}
	b.WriteString(response[prev:])
	return b.String()
}

func renderToolCall(ctx context.Context, call toolCall, registry *tools.Registry, logger *slog.Logger) string {
	input := strings.TrimSpace(call.input)

	out, err := registry.Invoke(ctx, call.name, input)
	if err != nil {
		if scriberr.HasCode(err, scriberr.CodeToolNotFound) {
			logger.Warn("tool not found", "tool", call.name)
			return fmt.Sprintf("[%s ERROR] Tool not found [/%s ERROR]", call.name, call.name)
		}

		logger.Warn("tool invocation failed", "tool", call.name, "error", err)
		// Invoke wraps the tool's error; surface the innermost cause.
		msg := err.Error()
		var serr *scriberr.ScribeError
		for stderrors.As(err, &serr) && serr.Cause != nil {
			msg = serr.Cause.Error()
			err = serr.Cause
		}
		return fmt.Sprintf("[%s ERROR] %s [/%s ERROR]", call.name, msg, call.name)
	}

	logger.Debug("tool invocation succeeded", "tool", call.name, "output_length", len(out))
	return fmt.Sprintf("[%s RESULT]\n%s\n[/%s RESULT]", call.name, out, call.name)
}
