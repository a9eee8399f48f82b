package directory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"twinhost/pkg/twin"
)

// FileStore keeps the directory in a single JSON file. Used for local runs
// and tests where SurrealDB isn't available.
type FileStore struct {
	mu   sync.RWMutex
	path string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{
		path: filepath.Join(dir, "twins.json"),
	}
}

func (s *FileStore) Upsert(profile *twin.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	twins, err := s.load()
	if err != nil {
		return err
	}
	twins[profile.Name] = profile
	return s.save(twins)
}

func (s *FileStore) GetByName(name string) (*twin.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	twins, err := s.load()
	if err != nil {
		return nil, err
	}
	profile, ok := twins[name]
	if !ok {
		return nil, &twin.NotFoundError{Kind: "twin", Name: name}
	}
	return profile, nil
}

func (s *FileStore) ListAll() ([]*twin.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	twins, err := s.load()
	if err != nil {
		return nil, err
	}

	profiles := make([]*twin.Profile, 0, len(twins))
	for _, p := range twins {
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Name < profiles[j].Name
	})
	return profiles, nil
}

func (s *FileStore) load() (map[string]*twin.Profile, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]*twin.Profile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read directory file: %w", err)
	}

	twins := map[string]*twin.Profile{}
	if err := json.Unmarshal(data, &twins); err != nil {
		return nil, fmt.Errorf("failed to parse directory file: %w", err)
	}
	return twins, nil
}

func (s *FileStore) save(twins map[string]*twin.Profile) error {
	data, err := json.MarshalIndent(twins, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal directory: %w", err)
	}

	// Write to a temp file then rename so a crash can't truncate the store.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write directory file: %w", err)
	}
	return os.Rename(tmp, s.path)
}
