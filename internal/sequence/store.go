// Package sequence persists named, ordered effect lists to a TOML file.
// Sequences let callers enqueue a whole pattern (an SOS beacon, a camera
// sync burst) by name instead of posting individual effects.
package sequence

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/smazurov/strobed/internal/strobe"
)

// Sequence is a named, ordered list of effects.
type Sequence struct {
	Name        string          `toml:"name" json:"name"`
	Description string          `toml:"description,omitempty" json:"description,omitempty"`
	Effects     []strobe.Effect `toml:"effects" json:"effects"`
}

// Validate checks the sequence and every effect in it.
func (s Sequence) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("sequence name is required")
	}
	if len(s.Effects) == 0 {
		return fmt.Errorf("sequence %q has no effects", s.Name)
	}
	for i, effect := range s.Effects {
		if err := effect.Validate(); err != nil {
			return fmt.Errorf("sequence %q effect %d: %w", s.Name, i, err)
		}
	}
	return nil
}

// file is the on-disk shape of the sequence configuration.
type file struct {
	Version   int                 `toml:"version" json:"version"`
	Sequences map[string]Sequence `toml:"sequences" json:"sequences"`
}

// Store is a TOML-backed sequence store. Safe for concurrent use; the API
// server reads it while the watcher reloads it.
type Store struct {
	mu   sync.RWMutex
	path string
	file *file
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	if path == "" {
		path = "sequences.toml"
	}
	return &Store{
		path: path,
		file: &file{
			Version:   1,
			Sequences: make(map[string]Sequence),
		},
	}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the sequence file. A missing file is not an error; the store
// starts empty and the first Save creates it.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read sequence file: %w", err)
	}

	loaded := &file{}
	if err := toml.Unmarshal(data, loaded); err != nil {
		return fmt.Errorf("failed to parse sequence file: %w", err)
	}

	if loaded.Sequences == nil {
		loaded.Sequences = make(map[string]Sequence)
	}
	if loaded.Version == 0 {
		loaded.Version = 1
	}

	// Normalize effects so hand-edited files get defaults and IDs
	for name, seq := range loaded.Sequences {
		seq.Name = name
		for i := range seq.Effects {
			seq.Effects[i].Normalize()
		}
		if err := seq.Validate(); err != nil {
			return err
		}
		loaded.Sequences[name] = seq
	}

	s.file = loaded
	return nil
}

// save writes the file. Caller holds the lock.
func (s *Store) save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create sequence directory: %w", err)
	}

	data, err := toml.Marshal(s.file)
	if err != nil {
		return fmt.Errorf("failed to marshal sequences: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write sequence file: %w", err)
	}
	return nil
}

// Put adds or replaces a sequence and persists the change.
func (s *Store) Put(seq Sequence) error {
	for i := range seq.Effects {
		seq.Effects[i].Normalize()
	}
	if err := seq.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.file.Sequences[seq.Name] = seq
	return s.save()
}

// Remove deletes a sequence and persists the change.
func (s *Store) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.file.Sequences[name]; !exists {
		return fmt.Errorf("sequence %q not found", name)
	}
	delete(s.file.Sequences, name)
	return s.save()
}

// Get retrieves a sequence by name.
func (s *Store) Get(name string) (Sequence, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seq, exists := s.file.Sequences[name]
	return seq, exists
}

// All returns every sequence, sorted by name.
func (s *Store) All() []Sequence {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Sequence, 0, len(s.file.Sequences))
	for _, seq := range s.file.Sequences {
		out = append(out, seq)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Replace swaps the entire sequence set. Used by the file watcher when the
// file changes on disk.
func (s *Store) Replace(sequences map[string]Sequence) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sequences == nil {
		sequences = make(map[string]Sequence)
	}
	s.file.Sequences = sequences
}

// LoadFile parses a sequence file without touching a store. Used by the
// watcher loader and the validate command.
func LoadFile(path string) (map[string]Sequence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sequence file: %w", err)
	}

	loaded := &file{}
	if err := toml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("failed to parse sequence file: %w", err)
	}
	if loaded.Sequences == nil {
		loaded.Sequences = make(map[string]Sequence)
	}

	for name, seq := range loaded.Sequences {
		seq.Name = name
		for i := range seq.Effects {
			seq.Effects[i].Normalize()
		}
		if err := seq.Validate(); err != nil {
			return nil, err
		}
		loaded.Sequences[name] = seq
	}
	return loaded.Sequences, nil
}
