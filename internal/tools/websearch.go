package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

const serperURL = "https://google.serper.dev/search"

// WebSearch performs web searches through the Serper API.
type WebSearch struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewWebSearch creates a Serper-backed web search tool.
func NewWebSearch(apiKey string) *WebSearch {
	return &WebSearch{
		apiKey:  apiKey,
		baseURL: serperURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// WithBaseURL overrides the API endpoint, used in tests.
func (w *WebSearch) WithBaseURL(url string) *WebSearch {
	w.baseURL = url
	return w
}

type serperRequest struct {
	Query    string `json:"q"`
	Num      int    `json:"num"`
	Location string `json:"gl"`
	Language string `json:"hl"`
	Type     string `json:"type"`
}

type serperOrganic struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type serperResponse struct {
	SearchParameters map[string]any  `json:"searchParameters"`
	Organic          []serperOrganic `json:"organic"`
	AnswerBox        map[string]any  `json:"answerBox,omitempty"`
	KnowledgeGraph   map[string]any  `json:"knowledgeGraph,omitempty"`
}

// Search runs a query and returns the formatted result set as JSON.
func (w *WebSearch) Search(ctx context.Context, query string, numResults int) (string, error) {
	if w.apiKey == "" {
		return "", fmt.Errorf("SERPER_API_KEY not configured")
	}
	if numResults <= 0 {
		numResults = 10
	}
	if numResults > 100 {
		numResults = 100
	}

	body, err := json.Marshal(serperRequest{
		Query:    query,
		Num:      numResults,
		Location: "us",
		Language: "en",
		Type:     "search",
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("X-API-KEY", w.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("serper request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("serper returned status %d", resp.StatusCode)
	}

	var sr serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", fmt.Errorf("decoding serper response: %w", err)
	}

	formatted := map[string]any{
		"searchParameters": sr.SearchParameters,
		"organic":          sr.Organic,
		"answerBox":        sr.AnswerBox,
		"knowledgeGraph":   sr.KnowledgeGraph,
		"total_results":    len(sr.Organic),
	}
	out, err := json.MarshalIndent(formatted, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// financial search query shapes, topic appended to each
var financialQueries = []string{
	"financial news investment trends this week %s",
	"market analysis earnings reports last 7 days %s",
	"economic indicators policy changes recent %s",
	"IPO acquisitions merger announcements %s",
	"inflation interest rates fed policy this month %s",
}

type rankedItem struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	URL     string `json:"url"`
	Score   int    `json:"relevance_score"`
}

// SearchFinancial runs a set of finance-focused queries on the topic,
// filters excluded subjects, and returns the top results ranked by
// topic-word overlap.
func (w *WebSearch) SearchFinancial(ctx context.Context, topic string, excludeTopics []string) (string, error) {
	if len(excludeTopics) == 0 {
		excludeTopics = []string{"crypto", "day_trading"}
	}
	exclude := make([]string, 0, len(excludeTopics))
	for _, e := range excludeTopics {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			exclude = append(exclude, e)
		}
	}

	topicWords := strings.Fields(strings.ToLower(topic))
	var items []rankedItem

	for _, shape := range financialQueries {
		query := fmt.Sprintf(shape, topic)
		for _, e := range exclude {
			query += " -" + e
		}

		raw, err := w.Search(ctx, query, 5)
		if err != nil {
			continue // Best-effort per query
		}
		var sr serperResponse
		if err := json.Unmarshal([]byte(raw), &sr); err != nil {
			continue
		}

		limit := len(sr.Organic)
		if limit > 3 {
			limit = 3
		}
		for _, res := range sr.Organic[:limit] {
			if res.Title == "" || res.Snippet == "" {
				continue
			}
			text := strings.ToLower(res.Title + " " + res.Snippet)
			excluded := false
			for _, e := range exclude {
				if strings.Contains(text, e) {
					excluded = true
					break
				}
			}
			if excluded {
				continue
			}
			score := 0
			for _, word := range topicWords {
				if strings.Contains(text, word) {
					score++
				}
			}
			items = append(items, rankedItem{
				Title:   res.Title,
				Summary: res.Snippet,
				URL:     res.Link,
				Score:   score,
			})
		}
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Score > items[j].Score })
	if len(items) > 10 {
		items = items[:10]
	}

	if len(items) == 0 {
		return fmt.Sprintf("# Financial Content Analysis\n\nNo recent financial content found for topic: %s", topic), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Financial Content Analysis\n\nTopic: %s\n\n", topic)
	for i, item := range items {
		fmt.Fprintf(&b, "## %d. %s\n%s\nSource: %s\n\n", i+1, item.Title, item.Summary, item.URL)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// RegisterWebSearchTools adds the web search tools to a registry.
func RegisterWebSearchTools(r *Registry, ws *WebSearch) error {
	if err := r.Register("web_search",
		"Search the web. Input is the search query; returns JSON results.",
		func(ctx context.Context, input string) (string, error) {
			return ws.Search(ctx, strings.TrimSpace(input), 10)
		}); err != nil {
		return err
	}
	return r.Register("web_search_financial",
		"Search for recent financial content on a topic. Input is the topic.",
		func(ctx context.Context, input string) (string, error) {
			return ws.SearchFinancial(ctx, strings.TrimSpace(input), nil)
		})
}
