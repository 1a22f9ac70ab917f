package expand

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// StateData is the persisted expansion state layout.
type StateData struct {
	ExpandedNodes   []string `json:"expandedNodes"`
	DefaultExpanded bool     `json:"defaultExpanded"`
	MaxDepth        int      `json:"maxDepth"`
}

// Store persists expansion state under caller-supplied keys.
// Load returns (nil, nil) when nothing is stored for the key.
type Store interface {
	Load(key string) (*StateData, error)
	Save(key string, data StateData) error
}

// FileStore keeps one JSON file per key inside a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (fs *FileStore) path(key string) string {
	// Keys may contain path separators; flatten them.
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	return filepath.Join(fs.dir, safe+".json")
}

// Load reads the state stored for key, or (nil, nil) if absent.
func (fs *FileStore) Load(key string) (*StateData, error) {
	raw, err := os.ReadFile(fs.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var data StateData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Save writes the state for key.
func (fs *FileStore) Save(key string, data StateData) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(fs.path(key), raw, 0644)
}

// MemStore is an in-memory Store, mainly for tests.
type MemStore struct {
	m map[string]StateData
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{m: make(map[string]StateData)}
}

// Load returns the stored state, or (nil, nil) if absent.
func (ms *MemStore) Load(key string) (*StateData, error) {
	data, ok := ms.m[key]
	if !ok {
		return nil, nil
	}
	return &data, nil
}

// Save stores state under key.
func (ms *MemStore) Save(key string, data StateData) error {
	ms.m[key] = data
	return nil
}
