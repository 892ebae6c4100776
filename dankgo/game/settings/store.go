package settings

import (
	"fmt"
	"sync"
)

type setting struct {
	template Template
	raw      string
	value    any
}

// Store holds one chat's validated setting values. It is owned by its chat
// and shares the chat's locking discipline for writes; reads are guarded
// here because the scheduler consults live values from timer goroutines.
type Store struct {
	mu       sync.RWMutex
	registry *Registry
	values   map[string]*setting
}

// Set parses and validates raw against the named template and commits the
// value. The returned error is user-facing.
func (s *Store) Set(name, raw string) error {
	t, ok := s.registry.Get(name)
	if !ok {
		return fmt.Errorf("there is no setting named %q", name)
	}
	v, err := t.parse(raw)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", name, err)
	}
	s.mu.Lock()
	s.values[name] = &setting{template: t, raw: raw, value: v}
	s.mu.Unlock()
	return nil
}

// Raw returns the stored raw string for persistence, and whether it exists.
func (s *Store) Raw(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[name]
	if !ok {
		return "", false
	}
	return v.raw, true
}

// All returns a name→raw snapshot of every setting.
func (s *Store) All() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.values))
	for name, v := range s.values {
		out[name] = v.raw
	}
	return out
}

func (s *Store) get(name string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[name]; ok {
		return v.value
	}
	return nil
}

// Typed accessors fall back to the type's zero value for unknown names so
// callers never have to branch on missing settings.

func (s *Store) Bool(name string) bool {
	v, _ := s.get(name).(bool)
	return v
}

func (s *Store) Int(name string) int {
	v, _ := s.get(name).(int)
	return v
}

func (s *Store) Float64(name string) float64 {
	v, _ := s.get(name).(float64)
	return v
}

func (s *Store) String(name string) string {
	v, _ := s.get(name).(string)
	return v
}
