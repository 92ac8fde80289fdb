package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

type modsFile struct {
	Mods []string `json:"mods"`
}

// FileStore keeps the moderator set in a JSON file. The in-memory set is
// authoritative within a run; every mutation rewrites the file.
type FileStore struct {
	mu   sync.RWMutex
	path string
	set  map[string]struct{}
}

func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, set: make(map[string]struct{})}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read moderators file: %w", err)
	}
	var mf modsFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("parse moderators file: %w", err)
	}
	for _, id := range mf.Mods {
		s.set[id] = struct{}{}
	}
	return s, nil
}

func (s *FileStore) Add(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set[userID] = struct{}{}
	return s.flushLocked()
}

func (s *FileStore) Remove(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.set[userID]; !ok {
		return false, nil
	}
	delete(s.set, userID)
	return true, s.flushLocked()
}

func (s *FileStore) IsModerator(_ context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.set[userID]
	return ok, nil
}

func (s *FileStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.set), nil
}

func (s *FileStore) flushLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create moderators dir: %w", err)
	}
	data, err := json.Marshal(modsFile{Mods: sortedKeys(s.set)})
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write moderators file: %w", err)
	}
	return nil
}
