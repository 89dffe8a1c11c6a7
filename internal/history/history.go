// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package history keeps the most recent generated queries in a JSON file
// under the XDG state directory, newest first.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"sqlpilot/cli/internal/xdg"
)

// ErrNotFound is returned by Resolve when no entry matches.
var ErrNotFound = errors.New("no such history entry")

// DefaultLimit is the number of entries kept when none is configured.
const DefaultLimit = 50

// Entry is one recorded request.
type Entry struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	SQL       string    `json:"sql"`
	Timestamp time.Time `json:"timestamp"`
}

// Store is a file-backed history. It is safe for concurrent use within one
// process; the file is rewritten atomically on every change.
type Store struct {
	mu    sync.Mutex
	path  string
	limit int
	now   func() time.Time
}

// Open returns the store at path, keeping at most limit entries.
func Open(path string, limit int) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{path: path, limit: limit, now: time.Now}
}

// OpenDefault opens history.json in the XDG state directory.
func OpenDefault(limit int) (*Store, error) {
	dir, err := xdg.StateDir()
	if err != nil {
		return nil, err
	}
	return Open(filepath.Join(dir, "history.json"), limit), nil
}

// List returns all entries, newest first.
func (s *Store) List() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Add records a query and returns the new entry.
func (s *Store) Add(query, sql string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return Entry{}, err
	}
	e := Entry{ID: uuid.NewString(), Query: query, SQL: sql, Timestamp: s.now().UTC()}
	entries = append([]Entry{e}, entries...)
	if len(entries) > s.limit {
		entries = entries[:s.limit]
	}
	return e, s.save(entries)
}

// Delete removes the entry with id. It reports whether an entry was removed.
func (s *Store) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return false, err
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return false, nil
	}
	return true, s.save(kept)
}

// Resolve expands a unique ID prefix into the full entry ID.
func (s *Store) Resolve(prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", ErrNotFound
	}
	entries, err := s.List()
	if err != nil {
		return "", err
	}
	match := ""
	for _, e := range entries {
		if e.ID == prefix {
			return e.ID, nil
		}
		if strings.HasPrefix(e.ID, prefix) {
			if match != "" {
				return "", fmt.Errorf("history ID prefix %q is ambiguous", prefix)
			}
			match = e.ID
		}
	}
	if match == "" {
		return "", ErrNotFound
	}
	return match, nil
}

func (s *Store) load() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

func (s *Store) save(entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".history-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
