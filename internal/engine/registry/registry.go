package registry

import (
	"fmt"

	"grammarcheck/internal/core/ports"
	"grammarcheck/internal/engine/grammar"
)

// Entry binds a grammar name to the loader for its language handle.
type Entry struct {
	Name   string
	Symbol string
	Load   func() (ports.Language, error)
}

// Registry is an immutable, ordered name -> language table.
type Registry struct {
	target  string
	entries []Entry
	index   map[string]int
}

// New builds a registry. Names must be unique and non-empty.
func New(target string, entries ...Entry) (*Registry, error) {
	r := &Registry{
		target:  target,
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("entries[%d].name must not be empty", i)
		}
		if _, dup := r.index[e.Name]; dup {
			return nil, fmt.Errorf("duplicate registry entry %q", e.Name)
		}
		r.index[e.Name] = len(r.entries)
		r.entries = append(r.entries, e)
	}
	return r, nil
}

// FromLookup builds a registry from a name listing and a lookup function,
// requiring every listed name to resolve. symbol may be nil.
func FromLookup(target string, names []string, lookup func(string) grammar.LanguageFn, symbol func(string) string) (*Registry, error) {
	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		fn := lookup(name)
		if fn == nil {
			return nil, fmt.Errorf("grammar %q is listed but has no binding", name)
		}
		e := Entry{Name: name, Load: grammar.Loader(fn)}
		if symbol != nil {
			e.Symbol = symbol(name)
		}
		entries = append(entries, e)
	}
	return New(target, entries...)
}

// Target is the platform triple the registry was built for.
func (r *Registry) Target() string {
	return r.target
}

// Names lists grammar names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Name
	}
	return names
}

// Lookup returns the entry for name. Unknown names report false.
func (r *Registry) Lookup(name string) (Entry, bool) {
	i, ok := r.index[name]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

func (r *Registry) Len() int {
	return len(r.entries)
}
