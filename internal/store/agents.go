// Package store provides YAML-backed persistence for agent descriptors
// and workflow run records.
package store

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/scribe-stack/scribe-machine/internal/errors"
	"github.com/scribe-stack/scribe-machine/internal/types"
)

// builtinAgents are the default agent set, used for any role not
// overridden by the agents file.
var builtinAgents = []*types.Agent{
	{
		Role:      "rag_specialist",
		Goal:      "Retrieve and analyze relevant information from knowledge bases",
		Backstory: "You have deep familiarity with client knowledge bases and excel at surfacing brand voice, guidelines, and background material.",
		Tools:     []string{"kb_get_client_content", "kb_search_content"},
	},
	{
		Role:      "web_searcher",
		Goal:      "Gather comprehensive and accurate information on given topics",
		Backstory: "You are skilled at finding current, credible information on the web and distilling it into usable research.",
		Tools:     []string{"web_search"},
	},
	{
		Role:      "premium_analyzer",
		Goal:      "Analyze premium sources and financial data",
		Backstory: "You specialize in extracting high-value insights from curated premium sources and financial content.",
		Tools:     []string{"web_search", "web_search_financial"},
	},
	{
		Role:      "copywriter",
		Goal:      "Create engaging and well-structured content",
		Backstory: "You write polished, audience-aware content that follows brand guidelines precisely.",
	},
}

// agentsFile is the on-disk shape of the agents YAML file.
type agentsFile struct {
	Agents []*types.Agent `yaml:"agents"`
}

// AgentStore holds agent descriptors keyed by role. Descriptors from
// the agents file override builtins with the same role.
type AgentStore struct {
	agents map[string]*types.Agent
}

// NewAgentStore creates a store with the builtin agent set.
func NewAgentStore() *AgentStore {
	s := &AgentStore{agents: make(map[string]*types.Agent, len(builtinAgents))}
	for _, a := range builtinAgents {
		s.agents[a.Role] = a
	}
	return s
}

// LoadAgentStore creates a store layering the agents file over the
// builtins. A missing file yields the builtin set.
func LoadAgentStore(path string) (*AgentStore, error) {
	s := NewAgentStore()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, errors.StoreRead(path, err)
	}

	var f agentsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.StoreRead(path, fmt.Errorf("parsing agents file: %w", err))
	}
	for _, a := range f.Agents {
		if err := a.Validate(); err != nil {
			return nil, errors.StoreRead(path, err)
		}
		s.agents[a.Role] = a
	}
	return s, nil
}

// ByRole retrieves the agent for a role.
func (s *AgentStore) ByRole(role string) (*types.Agent, bool) {
	a, ok := s.agents[role]
	return a, ok
}

// List returns all agents sorted by role.
func (s *AgentStore) List() []*types.Agent {
	list := make([]*types.Agent, 0, len(s.agents))
	for _, a := range s.agents {
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Role < list[j].Role })
	return list
}

// Save writes the current agent set to a YAML file.
func (s *AgentStore) Save(path string) error {
	data, err := yaml.Marshal(agentsFile{Agents: s.List()})
	if err != nil {
		return errors.StoreWrite(path, fmt.Errorf("marshaling agents: %w", err))
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return errors.StoreWrite(path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errors.StoreWrite(path, err)
	}
	return nil
}
