package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/scribe-stack/scribe-machine/internal/errors"
	"github.com/scribe-stack/scribe-machine/internal/types"
)

// RunRecord is the persisted snapshot of a workflow run.
type RunRecord struct {
	WorkflowID   string                      `yaml:"workflow_id"`
	WorkflowType string                      `yaml:"workflow_type"`
	Success      bool                        `yaml:"success"`
	TaskStatuses map[string]types.TaskStatus `yaml:"task_statuses,omitempty"`
	Summary      string                      `yaml:"summary,omitempty"`
	Duration     time.Duration               `yaml:"duration"`
	Error        string                      `yaml:"error,omitempty"`
	SavedAt      time.Time                   `yaml:"saved_at"`
}

// RunStore persists run records as YAML and final content as markdown
// under a runs directory. Layout: <dir>/<workflow-id>.yaml and
// <dir>/<workflow-id>.md.
type RunStore struct {
	dir string
}

// NewRunStore creates a run store rooted at dir.
func NewRunStore(dir string) (*RunStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating runs dir: %w", err)
	}
	return &RunStore{dir: dir}, nil
}

// SaveResult persists the run record and, when present, the final
// content document. Writes are atomic (write-then-rename).
func (s *RunStore) SaveResult(res *types.WorkflowResult) error {
	record := RunRecord{
		WorkflowID:   res.WorkflowID,
		WorkflowType: res.WorkflowType,
		Success:      res.Success,
		TaskStatuses: res.TaskStatuses,
		Summary:      res.Summary,
		Duration:     res.Duration,
		Error:        res.Error,
		SavedAt:      time.Now(),
	}

	data, err := yaml.Marshal(&record)
	if err != nil {
		return errors.StoreWrite(filepath.Join(s.dir, res.WorkflowID+".yaml"), fmt.Errorf("marshaling run record: %w", err))
	}
	if err := s.writeAtomic(res.WorkflowID+".yaml", data); err != nil {
		return err
	}

	if res.FinalOutput != "" {
		if err := s.writeAtomic(res.WorkflowID+".md", []byte(res.FinalOutput)); err != nil {
			return err
		}
	}
	return nil
}

// Get retrieves a run record by workflow ID.
func (s *RunStore) Get(workflowID string) (*RunRecord, error) {
	path := filepath.Join(s.dir, workflowID+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("run not found: %s", workflowID)
		}
		return nil, errors.StoreRead(path, err)
	}
	var record RunRecord
	if err := yaml.Unmarshal(data, &record); err != nil {
		return nil, errors.StoreRead(path, fmt.Errorf("parsing run record: %w", err))
	}
	return &record, nil
}

// Content retrieves the final content document for a run.
func (s *RunStore) Content(workflowID string) (string, error) {
	path := filepath.Join(s.dir, workflowID+".md")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("content not found for run: %s", workflowID)
		}
		return "", errors.StoreRead(path, err)
	}
	return string(data), nil
}

// List returns all run records sorted by save time, newest first.
func (s *RunStore) List() ([]*RunRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var records []*RunRecord
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		record, err := s.Get(strings.TrimSuffix(e.Name(), ".yaml"))
		if err != nil {
			continue // Skip unreadable records
		}
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].SavedAt.After(records[j].SavedAt) })
	return records, nil
}

func (s *RunStore) writeAtomic(name string, data []byte) error {
	mainPath := filepath.Join(s.dir, name)
	tmpPath := mainPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return errors.StoreWrite(mainPath, err)
	}
	if err := os.Rename(tmpPath, mainPath); err != nil {
		os.Remove(tmpPath)
		return errors.StoreWrite(mainPath, err)
	}
	return nil
}
