// Package entry persists the configuration entries created by the
// setup wizard.
package entry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/alcortesm/physiofit-radar/app/schedule"
)

// Version of the entry data format.
const Version = 1

var (
	ErrNotFound  = errors.New("entry not found")
	ErrDuplicate = errors.New("entry already exists")
)

// ID identifies an entry.
type ID string

// Entry is a committed configuration.
type Entry struct {
	ID       ID
	UniqueID string
	Title    string
	Version  int
	Created  time.Time
	Schedule schedule.Week
}

type Config struct {
	Path string `default:"physiofit-radar.yaml"`
}

// Store keeps entries in a YAML file. At most one entry per unique ID
// is allowed. It is safe for concurrent use.
type Store struct {
	path      string
	clock     func() time.Time
	mux       sync.Mutex
	entries   []Entry
	listeners []func(Entry)
}

// Open loads the store from the file at path. A missing file is an
// empty store; the file is created on the first commit.
func Open(path string, clock func() time.Time) (*Store, error) {
	s := &Store{
		path:  path,
		clock: clock,
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading entries: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	for i, fe := range f.Entries {
		e, err := fe.entry()
		if err != nil {
			return nil, fmt.Errorf("parsing %s: entry #%d: %w", path, i, err)
		}

		s.entries = append(s.entries, e)
	}

	return s, nil
}

// Exists tells if there is an entry with the given unique ID.
func (s *Store) Exists(_ context.Context, uniqueID string) (bool, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	_, ok := s.find(uniqueID)

	return ok, nil
}

// Get returns the entry with the given unique ID.
func (s *Store) Get(_ context.Context, uniqueID string) (Entry, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	e, ok := s.find(uniqueID)
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, uniqueID)
	}

	return e, nil
}

// Commit creates a new entry and writes it to disk. Listeners are
// called after the file was written.
func (s *Store) Commit(
	_ context.Context,
	uniqueID string,
	title string,
	week schedule.Week,
) (ID, error) {
	s.mux.Lock()

	if _, ok := s.find(uniqueID); ok {
		s.mux.Unlock()
		return "", fmt.Errorf("%w: %s", ErrDuplicate, uniqueID)
	}

	e := Entry{
		ID:       ID(uuid.NewString()),
		UniqueID: uniqueID,
		Title:    title,
		Version:  Version,
		Created:  s.clock(),
		Schedule: week,
	}

	entries := append(s.entries[:len(s.entries):len(s.entries)], e)

	if err := s.write(entries); err != nil {
		s.mux.Unlock()
		return "", err
	}

	s.entries = entries
	listeners := s.listeners

	s.mux.Unlock()

	for _, fn := range listeners {
		fn(e)
	}

	return e.ID, nil
}

// Subscribe registers fn to be called with every new entry.
func (s *Store) Subscribe(fn func(Entry)) {
	s.mux.Lock()
	defer s.mux.Unlock()

	s.listeners = append(s.listeners, fn)
}

// find assumes the mutex is locked.
func (s *Store) find(uniqueID string) (Entry, bool) {
	for _, e := range s.entries {
		if e.UniqueID == uniqueID {
			return e, true
		}
	}

	return Entry{}, false
}

// write replaces the file atomically: it writes a temporary file in
// the same directory and renames it.
func (s *Store) write(entries []Entry) error {
	f := file{Entries: make([]fileEntry, len(entries))}
	for i, e := range entries {
		f.Entries[i] = toFileEntry(e)
	}

	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding entries: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating entries directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}

	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing entries: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temporary file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing entries file: %w", err)
	}

	return nil
}
