package workflows

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/scribe-stack/scribe-machine/internal/errors"
	"github.com/scribe-stack/scribe-machine/internal/orchestrator"
	"github.com/scribe-stack/scribe-machine/internal/types"
)

// TypePremiumNewsletter is the workflow type for newsletter generation.
const TypePremiumNewsletter = "premium_newsletter"

// Section share of the target word count, in newsletter order.
var sectionShares = []struct {
	name  string
	share float64
}{
	{"executive_summary", 0.15},
	{"market_highlights", 0.20},
	{"premium_insights", 0.25},
	{"expert_analysis", 0.15},
	{"recommendations", 0.15},
	{"market_outlook", 0.07},
	{"client_cta", 0.03},
}

// PremiumNewsletter generates a 7-section newsletter from client
// guidelines and a curated list of premium sources.
type PremiumNewsletter struct {
	*Base
	DefaultHooks
	logger *slog.Logger
}

// NewPremiumNewsletter creates the newsletter handler.
func NewPremiumNewsletter(tpl *Template, executor *orchestrator.Executor, logger *slog.Logger) *PremiumNewsletter {
	h := &PremiumNewsletter{logger: logger}
	h.Base = NewBase(TypePremiumNewsletter, tpl, executor, h, logger)
	return h
}

// ValidateInputs enforces newsletter-specific bounds.
func (h *PremiumNewsletter) ValidateInputs(ec *types.ExecutionContext) error {
	topic := ec.GetString("newsletter_topic")
	if len(topic) < 5 {
		return errors.ValidationOutOfRange("newsletter_topic", "must be at least 5 characters")
	}
	if len(topic) > 200 {
		return errors.ValidationOutOfRange("newsletter_topic", "must be less than 200 characters")
	}

	sources := normalizeList(ec, "premium_sources", "\n")
	if len(sources) < 1 {
		return errors.ValidationOutOfRange("premium_sources", "at least one premium source is required")
	}
	if len(sources) > 10 {
		return errors.ValidationOutOfRange("premium_sources", "maximum 10 premium sources allowed")
	}
	for _, src := range sources {
		if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
			return errors.ValidationBadFormat("premium_sources", src, "sources must be http(s) URLs")
		}
	}

	audience := ec.TargetAudience
	if len(audience) < 3 {
		return errors.ValidationOutOfRange("target_audience", "must be at least 3 characters")
	}
	if len(audience) > 500 {
		return errors.ValidationOutOfRange("target_audience", "must be less than 500 characters")
	}

	wc := ec.TargetWordCount
	if wc == 0 {
		wc = 1200
	}
	if wc < 800 || wc > 2500 {
		return errors.ValidationOutOfRange("target_word_count", "must be between 800 and 2500")
	}
	return nil
}

// PrepareContext sets defaults, normalizes list inputs, and computes
// the per-section word budget.
func (h *PremiumNewsletter) PrepareContext(ec *types.ExecutionContext) error {
	if ec.TargetWordCount == 0 {
		ec.TargetWordCount = 1200
	}
	setDefault(ec, "edition_number", 1)
	setDefault(ec, "custom_instructions", "")

	ec.Set("premium_sources", normalizeList(ec, "premium_sources", "\n"))
	ec.Set("exclude_topics", normalizeList(ec, "exclude_topics", ","))
	ec.Set("priority_sections", normalizeList(ec, "priority_sections", ","))

	budgets := make(map[string]int, len(sectionShares))
	for _, s := range sectionShares {
		budgets[s.name] = int(float64(ec.TargetWordCount) * s.share)
	}
	ec.Set("section_word_counts", budgets)

	h.logger.Info("newsletter context prepared",
		"sources", len(ec.GetStrings("premium_sources")),
		"target_word_count", ec.TargetWordCount,
	)
	return nil
}

// PostProcessTask records per-stage metrics.
func (h *PremiumNewsletter) PostProcessTask(taskID, output string, ec *types.ExecutionContext) {
	switch taskID {
	case "task1_enhanced_context":
		ec.Set("brand_guidelines_extracted", true)
	case "task2_premium_analysis":
		ec.Set("premium_sources_analyzed", len(ec.GetStrings("premium_sources")))
	case "task3_newsletter_creation":
		words := len(strings.Fields(output))
		ec.Set("final_word_count", words)
		if ec.TargetWordCount > 0 {
			ec.Set("word_count_accuracy_pct", float64(words)/float64(ec.TargetWordCount)*100)
		}
	}
}

// PostProcessWorkflow writes the run summary with quality indicators.
func (h *PremiumNewsletter) PostProcessWorkflow(ec *types.ExecutionContext) {
	ec.Set("workflow_completed", true)
	accuracy, _ := ec.Get("word_count_accuracy_pct")
	pct, _ := accuracy.(float64)
	targetMet := pct >= 90 && pct <= 110

	ec.Summary = fmt.Sprintf(
		"newsletter_topic: %s\nclient: %s\ntarget_audience: %s\nedition_number: %d\npremium_sources_count: %d\ntarget_word_count: %d\nfinal_word_count: %d\nword_count_accuracy: %.1f%%\nsections_structure: 7-section newsletter\nword_count_target_met: %t\nbrand_integration: %t",
		ec.GetString("newsletter_topic"),
		ec.ClientName,
		ec.TargetAudience,
		ec.GetInt("edition_number"),
		ec.GetInt("premium_sources_analyzed"),
		ec.TargetWordCount,
		ec.GetInt("final_word_count"),
		pct,
		targetMet,
		ec.GetBool("brand_guidelines_extracted"),
	)
}

// FinalTaskID designates the newsletter creation task as the result.
func (h *PremiumNewsletter) FinalTaskID() string { return "task3_newsletter_creation" }

// normalizeList accepts either a delimiter-separated string or a slice
// and returns a trimmed, non-empty string slice.
func normalizeList(ec *types.ExecutionContext, key, sep string) []string {
	v, ok := ec.Get(key)
	if !ok {
		return nil
	}
	switch val := v.(type) {
	case []string:
		return trimNonEmpty(val)
	case []any:
		items := make([]string, 0, len(val))
		for _, item := range val {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return trimNonEmpty(items)
	case string:
		return trimNonEmpty(strings.Split(val, sep))
	}
	return nil
}

func trimNonEmpty(items []string) []string {
	var out []string
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
