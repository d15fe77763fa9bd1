// # internal/engine/grammar/language.go
package grammar

import (
	"unsafe"

	"grammarcheck/internal/core/errors"
	"grammarcheck/internal/core/ports"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// LanguageFn is a grammar entry point: a zero-argument constructor returning
// the address of a TSLanguage. The tree-sitter Go bindings expose the same
// shape (for example tree_sitter_go.Language).
type LanguageFn func() unsafe.Pointer

// Language adapts a tree-sitter language to ports.Language.
type Language struct {
	inner *sitter.Language
}

// Open invokes fn and wraps the returned grammar definition.
func Open(fn LanguageFn) (*Language, error) {
	if fn == nil {
		return nil, errors.New(errors.CodeGrammarNotLoaded, "grammar entry point is not bound")
	}
	ptr := fn()
	if ptr == nil {
		return nil, errors.New(errors.CodeGrammarNotLoaded, "grammar entry point returned a null language")
	}
	return &Language{inner: sitter.NewLanguage(ptr)}, nil
}

// Loader adapts fn to the signature registry entries use.
func Loader(fn LanguageFn) func() (ports.Language, error) {
	return func() (ports.Language, error) {
		lang, err := Open(fn)
		if err != nil {
			return nil, err
		}
		return lang, nil
	}
}

func (l *Language) NodeKindCount() uint32 {
	return l.inner.NodeKindCount()
}

func (l *Language) NewParser() (ports.SyntaxParser, error) {
	p := sitter.NewParser()
	if err := p.SetLanguage(l.inner); err != nil {
		p.Close()
		return nil, errors.Wrap(err, errors.CodeLanguageBinding, "failed to set language")
	}
	return &syntaxParser{inner: p}, nil
}

type syntaxParser struct {
	inner *sitter.Parser
}

func (p *syntaxParser) Parse(source []byte) ports.SyntaxTree {
	tree := p.inner.Parse(source, nil)
	if tree == nil {
		return nil
	}
	return &syntaxTree{inner: tree}
}

func (p *syntaxParser) Close() {
	p.inner.Close()
}

type syntaxTree struct {
	inner *sitter.Tree
}

func (t *syntaxTree) HasError() bool {
	root := t.inner.RootNode()
	return root == nil || root.HasError()
}

func (t *syntaxTree) Close() {
	t.inner.Close()
}
