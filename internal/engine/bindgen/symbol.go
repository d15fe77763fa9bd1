package bindgen

import (
	"regexp"
	"strings"
	"unicode"

	"grammarcheck/internal/engine/metadata"
)

// EntryPointPrefix starts every grammar constructor symbol.
const EntryPointPrefix = "tree_sitter_"

// SpecialCases maps grammar names whose compiled symbol is spelled
// irregularly to that spelling.
type SpecialCases map[string]string

// DefaultSpecialCases returns a fresh copy of the built-in table.
func DefaultSpecialCases() SpecialCases {
	return SpecialCases{
		"csharp": "c_sharp",
	}
}

// Merge returns a table with extra entries layered over s.
func (s SpecialCases) Merge(extra map[string]string) SpecialCases {
	out := make(SpecialCases, len(s)+len(extra))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range extra {
		out[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return out
}

var separators = strings.NewReplacer("-", "_", ".", "_")

// SymbolName derives the grammar's symbol suffix: an explicit override
// first, then the special-case table, then the name with separators
// replaced by underscores.
func SymbolName(g metadata.GrammarDescriptor, special SpecialCases) string {
	if g.SymbolName != "" {
		return g.SymbolName
	}
	if s, ok := special[g.Name]; ok && s != "" {
		return s
	}
	return separators.Replace(g.Name)
}

// EntryPoint is the full C symbol of the grammar constructor.
func EntryPoint(g metadata.GrammarDescriptor, special SpecialCases) string {
	return EntryPointPrefix + SymbolName(g, special)
}

var cIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidSymbol reports whether sym can be declared in C.
func ValidSymbol(sym string) bool {
	return cIdentifier.MatchString(sym)
}

// Identifier converts a grammar name into an exported Go identifier
// prefix: javascript -> Javascript, objective-c -> ObjectiveC.
func Identifier(name string) string {
	var b strings.Builder
	upperNext := true
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upperNext = true
			continue
		}
		if upperNext {
			r = unicode.ToUpper(r)
			upperNext = false
		}
		b.WriteRune(r)
	}
	id := b.String()
	if id == "" || unicode.IsDigit([]rune(id)[0]) {
		id = "Lang" + id
	}
	return id
}
