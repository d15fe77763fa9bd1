package ports

// Language is a loaded grammar handle as the harness exercises it.
type Language interface {
	// NodeKindCount is the number of distinct node kinds the grammar defines.
	NodeKindCount() uint32
	// NewParser returns a parser bound to this language.
	NewParser() (SyntaxParser, error)
}

// SyntaxParser parses source text with a bound language.
type SyntaxParser interface {
	// Parse returns nil when the parser refuses or aborts.
	Parse(source []byte) SyntaxTree
	Close()
}

// SyntaxTree is the result of one parse.
type SyntaxTree interface {
	// HasError reports whether the root contains any error or missing node.
	HasError() bool
	Close()
}
