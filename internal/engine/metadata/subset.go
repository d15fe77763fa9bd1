package metadata

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// DefaultLanguages is the validation subset: small enough to keep a run fast,
// one grammar per syntactically distinct family.
var DefaultLanguages = []string{"c", "python", "javascript", "rust", "go"}

// Subset is the allow-list a grammar must match to be validated.
type Subset struct {
	names    map[string]bool
	ordered  []string
	patterns []glob.Glob
}

// DefaultSubset returns the built-in allow-list.
func DefaultSubset() *Subset {
	s, _ := NewSubset(DefaultLanguages, nil)
	return s
}

// NewSubset builds an allow-list from exact names and glob patterns.
func NewSubset(names, patterns []string) (*Subset, error) {
	s := &Subset{names: make(map[string]bool, len(names))}
	for _, name := range names {
		normalized := strings.ToLower(strings.TrimSpace(name))
		if normalized == "" || s.names[normalized] {
			continue
		}
		s.names[normalized] = true
		s.ordered = append(s.ordered, normalized)
	}
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid subset pattern %q: %w", pattern, err)
		}
		s.patterns = append(s.patterns, g)
	}
	return s, nil
}

// Allows reports whether name is in the subset.
func (s *Subset) Allows(name string) bool {
	if s.names[name] {
		return true
	}
	for _, g := range s.patterns {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Names returns the exact names of the subset in declaration order.
func (s *Subset) Names() []string {
	return append([]string(nil), s.ordered...)
}

// Filter keeps the descriptors the subset allows, preserving sidecar order.
func Filter(all []GrammarDescriptor, subset *Subset) []GrammarDescriptor {
	out := make([]GrammarDescriptor, 0, len(all))
	for _, g := range all {
		if subset.Allows(g.Name) {
			out = append(out, g)
		}
	}
	return out
}

// Missing returns the exact subset names that the filtered list lacks.
func Missing(filtered []GrammarDescriptor, subset *Subset) []string {
	present := make(map[string]bool, len(filtered))
	for _, g := range filtered {
		present[g.Name] = true
	}
	var missing []string
	for _, name := range subset.ordered {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	return missing
}
