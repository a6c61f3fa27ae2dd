package workflow

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/5unnykum4r/grip/internal/coreerrors"
)

// Store persists workflow definitions as one JSON file per workflow in a
// directory, writing atomically via a temp file + rename.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir, creating it if necessary.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// ErrInvalidName is returned when a workflow name is not a safe single
// path component (contains "..", a path separator, or a leading dot).
var ErrInvalidName = fmt.Errorf("%w: workflow name is not a safe path component", coreerrors.ErrInvalidConfig)

func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, "/\\") {
		return false
	}
	if strings.HasPrefix(name, ".") {
		return false
	}
	return true
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Save validates wf.Name as a safe path component and writes the
// definition atomically.
func (s *Store) Save(wf *WorkflowDef) error {
	if !validName(wf.Name) {
		return ErrInvalidName
	}

	data, err := json.MarshalIndent(wf, "", "  ")
	if err != nil {
		return err
	}

	final := s.path(wf.Name)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, final)
}

// Load returns the parsed definition, or nil if name is not a safe path
// component, no such workflow exists, or the file fails to parse —
// matching the "load → definition | none" contract; callers that need
// to distinguish those cases should call List or inspect the file
// directly.
func (s *Store) Load(name string) *WorkflowDef {
	if !validName(name) {
		return nil
	}
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return nil
	}
	var wf WorkflowDef
	if err := json.Unmarshal(data, &wf); err != nil {
		slog.Warn("workflow: store file is corrupt, treating as missing",
			"name", name, "error", fmt.Errorf("%w: %v", coreerrors.ErrCorrupt, err))
		return nil
	}
	return &wf
}

// List returns workflow names present in the store, in lexicographic
// order.
func (s *Store) List() []string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".json") {
			names = append(names, strings.TrimSuffix(name, ".json"))
		}
	}
	sort.Strings(names)
	return names
}

// Delete removes the workflow's file. Returns true iff a file was
// removed.
func (s *Store) Delete(name string) bool {
	if !validName(name) {
		return false
	}
	err := os.Remove(s.path(name))
	return err == nil
}
