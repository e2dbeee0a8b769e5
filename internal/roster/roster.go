// Package roster keeps the list of tracked FACEIT nicknames.
package roster

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

// Roster edit errors.
var (
	ErrAlreadyTracked = errors.New("player is already being tracked")
	ErrNotTracked     = errors.New("player not found in the tracking list")
)

// Store persists the roster in order of addition.
type Store interface {
	Load(ctx context.Context) ([]string, error)
	Add(ctx context.Context, nickname string) error
	Remove(ctx context.Context, nickname string) error
}

// document is the on-disk layout of a FileStore.
type document struct {
	Players []string `yaml:"players"`
}

// FileStore keeps the roster in a YAML document. A missing file is an empty
// roster. Edits are read-modify-write under a mutex; concurrent writers in
// other processes are last-writer-wins.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store backed by the YAML document at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the document location.
func (s *FileStore) Path() string { return s.path }

// Load returns the nicknames in the order they were added.
func (s *FileStore) Load(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	return doc.Players, nil
}

// Add appends nickname, or returns ErrAlreadyTracked.
func (s *FileStore) Add(ctx context.Context, nickname string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	if slices.Contains(doc.Players, nickname) {
		return fmt.Errorf("%s: %w", nickname, ErrAlreadyTracked)
	}
	doc.Players = append(doc.Players, nickname)
	return s.write(doc)
}

// Remove deletes nickname, or returns ErrNotTracked.
func (s *FileStore) Remove(ctx context.Context, nickname string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	i := slices.Index(doc.Players, nickname)
	if i < 0 {
		return fmt.Errorf("%s: %w", nickname, ErrNotTracked)
	}
	doc.Players = slices.Delete(doc.Players, i, i+1)
	return s.write(doc)
}

func (s *FileStore) read() (document, error) {
	var doc document
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("reading roster: %w", err)
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("parsing roster: %w", err)
	}
	return doc, nil
}

// write replaces the roster file atomically via a temp file and rename.
func (s *FileStore) write(doc document) error {
	if doc.Players == nil {
		doc.Players = []string{}
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding roster: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create roster dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".roster-*.yml")
	if err != nil {
		return fmt.Errorf("writing roster: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing roster: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing roster: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("writing roster: %w", err)
	}
	return nil
}
