package grammar

import "grammarcheck/internal/core/ports"

// Loader resolves symbol in l for a registry entry. A missing symbol is
// returned by the entry's load call, not here.
func (l *SharedLibrary) Loader(symbol string) func() (ports.Language, error) {
	fn, err := l.Symbol(symbol)
	if err != nil {
		return func() (ports.Language, error) { return nil, err }
	}
	return Loader(fn)
}
