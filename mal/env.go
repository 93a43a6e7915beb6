package mal

import (
	"sort"
	"sync"
)

// Env is a lexical scope with a link to its enclosing scope. Lookups walk
// outward; writes only ever touch the local table. The outer link is fixed at
// construction, so the chain never forms a cycle.
type Env struct {
	mu    sync.RWMutex
	outer *Env
	table map[string]Value
}

// NewEnv creates an empty scope whose parent is outer (which may be nil).
func NewEnv(outer *Env) *Env { return &Env{outer: outer, table: make(map[string]Value)} }

// Bind creates a child of outer with names[i] bound to values[i].
func Bind(outer *Env, names []string, values []Value) (*Env, error) {
	if len(names) != len(values) {
		return nil, newError(DiagArg, "bind: %d names for %d values", len(names), len(values))
	}
	e := &Env{outer: outer, table: make(map[string]Value, len(names))}
	for i, n := range names {
		e.table[n] = values[i]
	}
	return e, nil
}

// Set binds key to v in this scope, shadowing any outer binding.
func (e *Env) Set(key string, v Value) {
	e.mu.Lock()
	e.table[key] = v
	e.mu.Unlock()
}

func (e *Env) lookup(key string) (Value, bool) {
	e.mu.RLock()
	v, ok := e.table[key]
	e.mu.RUnlock()
	return v, ok
}

// Find returns the nearest scope that binds key, or nil.
func (e *Env) Find(key string) *Env {
	for s := e; s != nil; s = s.outer {
		if _, ok := s.lookup(key); ok {
			return s
		}
	}
	return nil
}

// Get resolves key through the chain. An unbound key is an eval error
// wrapping ErrSymbolNotFound.
func (e *Env) Get(key string) (Value, error) {
	for s := e; s != nil; s = s.outer {
		if v, ok := s.lookup(key); ok {
			return v, nil
		}
	}
	return Nil, symbolNotFound(key)
}

func (e *Env) Outer() *Env { return e.outer }

// Names lists the local bindings, sorted.
func (e *Env) Names() []string {
	e.mu.RLock()
	out := make([]string, 0, len(e.table))
	for k := range e.table {
		out = append(out, k)
	}
	e.mu.RUnlock()
	sort.Strings(out)
	return out
}
