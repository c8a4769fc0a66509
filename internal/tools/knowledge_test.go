package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeDoc(t *testing.T, dir, client, name, content string) {
	t.Helper()
	clientDir := filepath.Join(dir, client)
	if err := os.MkdirAll(clientDir, 0755); err != nil {
		t.Fatalf("creating client dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(clientDir, name), []byte(content), 0644); err != nil {
		t.Fatalf("writing doc: %v", err)
	}
}

func TestKnowledgeBase_ClientContent(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "acme", "company_profile.md", "Acme makes anvils.")
	writeDoc(t, dir, "acme", "style_guide.md", "Use active voice.")
	writeDoc(t, dir, "acme", "notes.md", "Misc notes.")
	kb := NewKnowledgeBase(dir)

	t.Run("all content grouped by category", func(t *testing.T) {
		out, err := kb.ClientContent("acme", "")
		if err != nil {
			t.Fatalf("ClientContent failed: %v", err)
		}
		if !strings.Contains(out, "# Knowledge Base: acme") {
			t.Errorf("expected header, got %q", out)
		}
		if !strings.Contains(out, "## Company Information") || !strings.Contains(out, "Acme makes anvils.") {
			t.Error("expected company section with profile content")
		}
		if !strings.Contains(out, "## Guidelines") || !strings.Contains(out, "Use active voice.") {
			t.Error("expected guidelines section with style guide")
		}
		if !strings.Contains(out, "## Other Documents") {
			t.Error("expected uncategorized docs under Other Documents")
		}
	})

	t.Run("specific document", func(t *testing.T) {
		out, err := kb.ClientContent("acme", "style_guide")
		if err != nil {
			t.Fatalf("ClientContent failed: %v", err)
		}
		if out != "Use active voice." {
			t.Errorf("expected raw document, got %q", out)
		}
	})

	t.Run("missing document lists available", func(t *testing.T) {
		out, err := kb.ClientContent("acme", "nonexistent")
		if err != nil {
			t.Fatalf("ClientContent failed: %v", err)
		}
		if !strings.Contains(out, "not found") || !strings.Contains(out, "style_guide.md") {
			t.Errorf("expected not-found message with available docs, got %q", out)
		}
	})

	t.Run("unknown client", func(t *testing.T) {
		out, err := kb.ClientContent("ghost", "")
		if err != nil {
			t.Fatalf("ClientContent failed: %v", err)
		}
		if !strings.Contains(out, "Knowledge base not found for client 'ghost'") {
			t.Errorf("expected missing-client message, got %q", out)
		}
	})

	t.Run("empty client is an error", func(t *testing.T) {
		if _, err := kb.ClientContent("", ""); err == nil {
			t.Error("expected error for empty client")
		}
	})
}

func TestKnowledgeBase_SearchContent(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "acme", "company_profile.md", "Acme makes anvils for coyotes.")
	writeDoc(t, dir, "globex", "kb_products.md", "Globex sells turbo encabulators.")
	kb := NewKnowledgeBase(dir)

	t.Run("matches body text", func(t *testing.T) {
		out, err := kb.SearchContent("anvils")
		if err != nil {
			t.Fatalf("SearchContent failed: %v", err)
		}
		if !strings.Contains(out, "acme / company_profile.md") {
			t.Errorf("expected acme match, got %q", out)
		}
		if strings.Contains(out, "globex") {
			t.Errorf("expected no globex match, got %q", out)
		}
	})

	t.Run("matches filename", func(t *testing.T) {
		out, err := kb.SearchContent("products")
		if err != nil {
			t.Fatalf("SearchContent failed: %v", err)
		}
		if !strings.Contains(out, "globex / kb_products.md") {
			t.Errorf("expected filename match, got %q", out)
		}
	})

	t.Run("no matches", func(t *testing.T) {
		out, err := kb.SearchContent("zeppelins")
		if err != nil {
			t.Fatalf("SearchContent failed: %v", err)
		}
		if !strings.Contains(out, "No knowledge base content found") {
			t.Errorf("expected no-match message, got %q", out)
		}
	})

	t.Run("empty query is an error", func(t *testing.T) {
		if _, err := kb.SearchContent("   "); err == nil {
			t.Error("expected error for empty query")
		}
	})
}

func TestRegisterKnowledgeTools(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "acme", "style_guide.md", "Use active voice.")

	reg := NewRegistry()
	if err := RegisterKnowledgeTools(reg, NewKnowledgeBase(dir)); err != nil {
		t.Fatalf("registering tools: %v", err)
	}

	t.Run("client/document input", func(t *testing.T) {
		out, err := reg.Invoke(context.Background(), "kb_get_client_content", "acme/style_guide")
		if err != nil {
			t.Fatalf("invoke failed: %v", err)
		}
		if out != "Use active voice." {
			t.Errorf("expected document content, got %q", out)
		}
	})

	t.Run("search tool", func(t *testing.T) {
		out, err := reg.Invoke(context.Background(), "kb_search_content", "active voice")
		if err != nil {
			t.Fatalf("invoke failed: %v", err)
		}
		if !strings.Contains(out, "acme / style_guide.md") {
			t.Errorf("expected search hit, got %q", out)
		}
	})
}
