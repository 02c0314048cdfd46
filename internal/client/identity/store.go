package identity

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// SavedIdentity is the locally cached record of the last used user. It is
// not authoritative: the id must be revalidated against the server before it
// is reused.
type SavedIdentity struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	LastSeen string `json:"lastSeen"`
}

func (s SavedIdentity) valid() bool {
	return s.ID != "" && s.Name != "" && s.LastSeen != ""
}

// Store persists the saved identity as a single JSON file.
type Store struct {
	path string
}

// NewStore uses path when given, otherwise a file under the user config
// directory.
func NewStore(path string) (*Store, error) {
	if path == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(configDir, "chatspace", "identity.json")
	}
	return &Store{path: path}, nil
}

// Load returns the saved identity, or nil when there is none. A missing
// file, unreadable content, unparsable JSON, or missing fields all count as
// "no saved identity" rather than an error.
func (s *Store) Load() *SavedIdentity {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}

	var saved SavedIdentity
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil
	}
	if !saved.valid() {
		return nil
	}
	return &saved
}

func (s *Store) Save(saved SavedIdentity) error {
	data, err := json.Marshal(saved)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
