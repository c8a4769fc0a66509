package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// KnowledgeBase serves client documents from a flat markdown directory
// tree: <baseDir>/<client>/<doc>.md.
type KnowledgeBase struct {
	baseDir string
}

// NewKnowledgeBase creates a knowledge base rooted at baseDir.
func NewKnowledgeBase(baseDir string) *KnowledgeBase {
	return &KnowledgeBase{baseDir: baseDir}
}

// ClientContent returns all documents for a client, grouped by
// category, or a specific document when docName is non-empty.
func (kb *KnowledgeBase) ClientContent(clientName, docName string) (string, error) {
	if clientName == "" {
		return "", fmt.Errorf("no client specified")
	}
	clientDir := filepath.Join(kb.baseDir, clientName)
	if _, err := os.Stat(clientDir); err != nil {
		return fmt.Sprintf("Knowledge base not found for client '%s'", clientName), nil
	}
	if docName != "" {
		return kb.document(clientDir, docName)
	}
	return kb.allContent(clientDir, clientName)
}

func (kb *KnowledgeBase) document(clientDir, docName string) (string, error) {
	if filepath.Ext(docName) == "" {
		docName += ".md"
	}
	data, err := os.ReadFile(filepath.Join(clientDir, docName))
	if err != nil {
		available := kb.listDocs(clientDir)
		return fmt.Sprintf("Document '%s' not found. Available documents: %v", docName, available), nil
	}
	return string(data), nil
}

func (kb *KnowledgeBase) listDocs(clientDir string) []string {
	entries, err := os.ReadDir(clientDir)
	if err != nil {
		return nil
	}
	var docs []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			docs = append(docs, e.Name())
		}
	}
	sort.Strings(docs)
	return docs
}

// Category keyword lists for document grouping.
var (
	companyTerms   = []string{"company", "about", "profile", "overview", "brand"}
	guidelineTerms = []string{"guideline", "guide", "best_practice", "best-practice", "rule", "instruction", "style"}
	knowledgeTerms = []string{"knowledge", "kb", "reference", "detail", "info"}
)

func (kb *KnowledgeBase) allContent(clientDir, clientName string) (string, error) {
	var company, guidelines, knowledge, other []string

	for _, name := range kb.listDocs(clientDir) {
		data, err := os.ReadFile(filepath.Join(clientDir, name))
		if err != nil {
			continue
		}
		section := fmt.Sprintf("### %s\n%s", name, string(data))
		lower := strings.ToLower(name)
		switch {
		case containsAny(lower, companyTerms):
			company = append(company, section)
		case containsAny(lower, guidelineTerms):
			guidelines = append(guidelines, section)
		case containsAny(lower, knowledgeTerms):
			knowledge = append(knowledge, section)
		default:
			other = append(other, section)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Knowledge Base: %s\n\n", clientName)
	appendGroup(&b, "Company Information", company)
	appendGroup(&b, "Guidelines", guidelines)
	appendGroup(&b, "Knowledge Base", knowledge)
	appendGroup(&b, "Other Documents", other)

	out := strings.TrimRight(b.String(), "\n")
	if len(company)+len(guidelines)+len(knowledge)+len(other) == 0 {
		out = fmt.Sprintf("No documents found for client '%s'", clientName)
	}
	return out, nil
}

func appendGroup(b *strings.Builder, title string, sections []string) {
	if len(sections) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n%s\n\n", title, strings.Join(sections, "\n\n"))
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// SearchContent finds documents across all clients whose name or body
// contains the query, returning matched excerpts.
func (kb *KnowledgeBase) SearchContent(query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("empty search query")
	}
	lower := strings.ToLower(query)

	clients, err := os.ReadDir(kb.baseDir)
	if err != nil {
		return fmt.Sprintf("No knowledge base content found for '%s'", query), nil
	}

	var matches []string
	for _, c := range clients {
		if !c.IsDir() {
			continue
		}
		clientDir := filepath.Join(kb.baseDir, c.Name())
		for _, name := range kb.listDocs(clientDir) {
			data, err := os.ReadFile(filepath.Join(clientDir, name))
			if err != nil {
				continue
			}
			body := string(data)
			if strings.Contains(strings.ToLower(name), lower) || strings.Contains(strings.ToLower(body), lower) {
				matches = append(matches, fmt.Sprintf("## %s / %s\n%s", c.Name(), name, excerpt(body, lower)))
			}
		}
	}

	if len(matches) == 0 {
		return fmt.Sprintf("No knowledge base content found for '%s'", query), nil
	}
	return fmt.Sprintf("# Search Results: %s\n\n%s", query, strings.Join(matches, "\n\n")), nil
}

// excerpt returns a window of text around the first match, or the
// document head when the match is in the filename only.
func excerpt(body, lowerQuery string) string {
	const window = 300
	idx := strings.Index(strings.ToLower(body), lowerQuery)
	if idx < 0 {
		if len(body) > window {
			return body[:window] + "..."
		}
		return body
	}
	start := idx - window/2
	if start < 0 {
		start = 0
	}
	end := idx + len(lowerQuery) + window/2
	if end > len(body) {
		end = len(body)
	}
	out := body[start:end]
	if start > 0 {
		out = "..." + out
	}
	if end < len(body) {
		out += "..."
	}
	return out
}

// RegisterKnowledgeTools adds the knowledge base tools to a registry.
// The kb_get_client_content input is "client" or "client/document".
func RegisterKnowledgeTools(r *Registry, kb *KnowledgeBase) error {
	if err := r.Register("kb_get_client_content",
		"Retrieve client knowledge base content. Input is 'client' or 'client/document'.",
		func(ctx context.Context, input string) (string, error) {
			client, doc := splitClientDoc(input)
			return kb.ClientContent(client, doc)
		}); err != nil {
		return err
	}
	return r.Register("kb_search_content",
		"Search all knowledge base documents. Input is the search query.",
		func(ctx context.Context, input string) (string, error) {
			return kb.SearchContent(strings.TrimSpace(input))
		})
}

func splitClientDoc(input string) (string, string) {
	input = strings.TrimSpace(input)
	if i := strings.Index(input, "/"); i >= 0 {
		return strings.TrimSpace(input[:i]), strings.TrimSpace(input[i+1:])
	}
	return input, ""
}
