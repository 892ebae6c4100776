package settings

import (
	"fmt"
	"sort"
	"sync"
)

// Template describes one chat setting: its name, default and how raw user
// input becomes a validated typed value. Templates are process-wide and
// immutable once the registry is frozen.
type Template interface {
	Name() string
	Description() string
	DefaultRaw() string
	parse(raw string) (any, error)
}

type typedTemplate[T any] struct {
	name        string
	description string
	defaultVal  T
	defaultRaw  string
	parseFn     func(string) (T, error)
	validateFn  func(T) error
}

// NewTemplate builds a typed setting template. validate may be nil.
func NewTemplate[T any](name, description string, defaultVal T, parse func(string) (T, error), validate func(T) error) Template {
	return &typedTemplate[T]{
		name:        name,
		description: description,
		defaultVal:  defaultVal,
		defaultRaw:  fmt.Sprintf("%v", defaultVal),
		parseFn:     parse,
		validateFn:  validate,
	}
}

func (t *typedTemplate[T]) Name() string        { return t.name }
func (t *typedTemplate[T]) Description() string { return t.description }
func (t *typedTemplate[T]) DefaultRaw() string  { return t.defaultRaw }

func (t *typedTemplate[T]) parse(raw string) (any, error) {
	v, err := t.parseFn(raw)
	if err != nil {
		return nil, err
	}
	if t.validateFn != nil {
		if err := t.validateFn(v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Registry is the process-wide template collection. It is built once at
// startup, may grow during the plugin registration phase, and is frozen
// before the first chat is created.
type Registry struct {
	mu        sync.RWMutex
	frozen    bool
	templates map[string]Template
}

func NewRegistry() *Registry {
	return &Registry{templates: make(map[string]Template)}
}

func (r *Registry) Register(t Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("setting registry is frozen, cannot register %q", t.Name())
	}
	if _, exists := r.templates[t.Name()]; exists {
		return fmt.Errorf("setting %q is already registered", t.Name())
	}
	r.templates[t.Name()] = t
	return nil
}

func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

func (r *Registry) Get(name string) (Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[name]
	return t, ok
}

// Names returns all registered setting names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewStore creates a per-chat store holding every template's default value.
func (r *Registry) NewStore() *Store {
	r.mu.RLock()
	defer r.mu.RUnlock()
	values := make(map[string]*setting, len(r.templates))
	for name, t := range r.templates {
		v, err := t.parse(t.DefaultRaw())
		if err != nil {
			// Defaults are authored in this package; a default that fails
			// its own parser is a programming error.
			panic(fmt.Sprintf("invalid default for setting %q: %v", name, err))
		}
		values[name] = &setting{template: t, raw: t.DefaultRaw(), value: v}
	}
	return &Store{registry: r, values: values}
}
