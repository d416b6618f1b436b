package leadstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"agencyhub/internal/model"
)

// FileMirror keeps a JSON array copy of the leads table on disk. All
// mutations go through one mutex and land via temp file + rename.
type FileMirror struct {
	path string
	mu   sync.Mutex
}

func NewFileMirror(path string) *FileMirror {
	return &FileMirror{path: path}
}

func (m *FileMirror) Path() string {
	return m.path
}

// Load reads every mirrored lead. A missing file is an empty mirror.
func (m *FileMirror) Load() ([]model.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read()
}

// Upsert replaces the lead with the same id or appends it.
func (m *FileMirror) Upsert(lead model.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	leads, err := m.read()
	if err != nil {
		return err
	}
	replaced := false
	for i := range leads {
		if leads[i].ID == lead.ID {
			leads[i] = lead
			replaced = true
			break
		}
	}
	if !replaced {
		leads = append(leads, lead)
	}
	return m.write(leads)
}

// Remove drops the lead with id. Removing an unknown id is not an error.
func (m *FileMirror) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	leads, err := m.read()
	if err != nil {
		return err
	}
	kept := leads[:0]
	for _, l := range leads {
		if l.ID != id {
			kept = append(kept, l)
		}
	}
	if len(kept) == len(leads) {
		return nil
	}
	return m.write(kept)
}

func (m *FileMirror) read() ([]model.Lead, error) {
	data, err := os.ReadFile(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read lead mirror: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var leads []model.Lead
	if err := json.Unmarshal(data, &leads); err != nil {
		return nil, fmt.Errorf("decode lead mirror: %w", err)
	}
	return leads, nil
}

func (m *FileMirror) write(leads []model.Lead) error {
	if leads == nil {
		leads = []model.Lead{}
	}
	data, err := json.MarshalIndent(leads, "", "  ")
	if err != nil {
		return fmt.Errorf("encode lead mirror: %w", err)
	}

	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create mirror dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(m.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create mirror temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write mirror temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close mirror temp file: %w", err)
	}
	if err := os.Rename(tmpName, m.path); err != nil {
		return fmt.Errorf("replace lead mirror: %w", err)
	}
	return nil
}
