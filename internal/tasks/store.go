package tasks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/promptdeck/promptdeck/backend/internal/infrastructure/logging"
	"github.com/promptdeck/promptdeck/backend/internal/shared/paths"
)

// storeFile is the on-disk document shape.
type storeFile struct {
	TaskGroups []json.RawMessage `json:"taskGroups"`
	UpdatedAt  int64             `json:"updatedAt"`
}

// Store persists task groups as a single JSON document.
type Store struct {
	path string
	log  *logging.Logger
}

// NewStore creates a store at path. An empty path selects the default
// location under the user's home directory, and a leading "~/" expands
// to it.
func NewStore(path string, log *logging.Logger) (*Store, error) {
	if log == nil {
		log = logging.NewNop()
	}

	var err error
	if path == "" {
		path, err = paths.TaskStore()
	} else {
		path, err = paths.Expand(path)
	}
	if err != nil {
		return nil, err
	}

	return &Store{path: path, log: log}, nil
}

// Path returns the store file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads all task groups. A missing store is not an error: it reports
// exists=false with no groups. A document whose taskGroups field is absent
// or not an array loads as empty.
func (s *Store) Load() ([]json.RawMessage, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []json.RawMessage{}, false, nil
		}
		return nil, false, fmt.Errorf("failed to read task store %s: %w", s.path, err)
	}

	var doc struct {
		TaskGroups json.RawMessage `json:"taskGroups"`
	}
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return nil, false, fmt.Errorf("failed to parse task store %s: %w", s.path, err)
	}

	var groups []json.RawMessage
	if len(doc.TaskGroups) > 0 {
		if err := sonic.Unmarshal(doc.TaskGroups, &groups); err != nil {
			// Field present but not an array. Treat as empty rather than
			// failing the load.
			groups = nil
		}
	}
	if groups == nil {
		groups = []json.RawMessage{}
	}
	return groups, true, nil
}

// Save atomically replaces the store contents and stamps updatedAt with
// the current time in milliseconds.
func (s *Store) Save(groups []json.RawMessage) error {
	if groups == nil {
		groups = []json.RawMessage{}
	}
	doc := storeFile{
		TaskGroups: groups,
		UpdatedAt:  time.Now().UnixMilli(),
	}

	data, err := sonic.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode task store: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	// Write-then-rename keeps readers from ever seeing a partial document.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write task store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace task store: %w", err)
	}

	s.log.Debug("task store saved",
		zap.String("path", s.path),
		zap.Int("groups", len(groups)))
	return nil
}
