package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newSerperServer(t *testing.T, organic []serperOrganic) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-KEY") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req serperRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(serperResponse{
			SearchParameters: map[string]any{"q": req.Query},
			Organic:          organic,
		})
	}))
}

func TestWebSearch_Search(t *testing.T) {
	srv := newSerperServer(t, []serperOrganic{
		{Title: "EV battery supply chains", Link: "https://example.test/ev", Snippet: "Lithium supply is tightening."},
	})
	defer srv.Close()

	ws := NewWebSearch("test-key").WithBaseURL(srv.URL)
	out, err := ws.Search(context.Background(), "EV batteries", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("expected JSON output, got %v", err)
	}
	if decoded["total_results"] != float64(1) {
		t.Errorf("expected total_results 1, got %v", decoded["total_results"])
	}
	if !strings.Contains(out, "Lithium supply is tightening.") {
		t.Error("expected snippet in output")
	}
}

func TestWebSearch_SearchNoAPIKey(t *testing.T) {
	ws := NewWebSearch("")
	if _, err := ws.Search(context.Background(), "anything", 10); err == nil {
		t.Error("expected error with no API key")
	}
}

func TestWebSearch_SearchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	ws := NewWebSearch("bad-key").WithBaseURL(srv.URL)
	_, err := ws.Search(context.Background(), "anything", 10)
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Errorf("expected status error, got %v", err)
	}
}

func TestWebSearch_SearchFinancial(t *testing.T) {
	t.Run("ranks by topic overlap and filters exclusions", func(t *testing.T) {
		srv := newSerperServer(t, []serperOrganic{
			{Title: "Fintech earnings beat estimates", Link: "https://example.test/1", Snippet: "Strong fintech quarter."},
			{Title: "Crypto rally continues", Link: "https://example.test/2", Snippet: "Bitcoin surges again."},
			{Title: "Rates held steady", Link: "https://example.test/3", Snippet: "Fed leaves rates unchanged."},
		})
		defer srv.Close()

		ws := NewWebSearch("test-key").WithBaseURL(srv.URL)
		out, err := ws.SearchFinancial(context.Background(), "fintech", nil)
		if err != nil {
			t.Fatalf("financial search failed: %v", err)
		}
		if !strings.Contains(out, "# Financial Content Analysis") {
			t.Error("expected markdown header")
		}
		if !strings.Contains(out, "Fintech earnings beat estimates") {
			t.Error("expected fintech result")
		}
		if strings.Contains(out, "Crypto rally continues") {
			t.Error("expected crypto result excluded by default")
		}
		// Topic-matching result ranks above the non-matching one.
		if strings.Index(out, "Fintech earnings") > strings.Index(out, "Rates held steady") {
			t.Error("expected higher-relevance result first")
		}
	})

	t.Run("no results message", func(t *testing.T) {
		srv := newSerperServer(t, nil)
		defer srv.Close()

		ws := NewWebSearch("test-key").WithBaseURL(srv.URL)
		out, err := ws.SearchFinancial(context.Background(), "obscurity", nil)
		if err != nil {
			t.Fatalf("financial search failed: %v", err)
		}
		if !strings.Contains(out, "No recent financial content found") {
			t.Errorf("expected empty-result message, got %q", out)
		}
	})
}

func TestRegisterWebSearchTools(t *testing.T) {
	srv := newSerperServer(t, []serperOrganic{
		{Title: "Result", Link: "https://example.test", Snippet: "Snippet."},
	})
	defer srv.Close()

	reg := NewRegistry()
	if err := RegisterWebSearchTools(reg, NewWebSearch("test-key").WithBaseURL(srv.URL)); err != nil {
		t.Fatalf("registering tools: %v", err)
	}

	for _, name := range []string{"web_search", "web_search_financial"} {
		if _, ok := reg.Get(name); !ok {
			t.Errorf("expected %s registered", name)
		}
	}

	out, err := reg.Invoke(context.Background(), "web_search", "  query  ")
	if err != nil {
		t.Fatalf("invoke failed: %v", err)
	}
	if !strings.Contains(out, "Snippet.") {
		t.Errorf("expected search output, got %q", out)
	}
}
