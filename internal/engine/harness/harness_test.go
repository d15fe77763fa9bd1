// # internal/engine/harness/harness_test.go
package harness

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"unsafe"

	"grammarcheck/internal/core/ports"
	"grammarcheck/internal/engine/grammar"
	"grammarcheck/internal/engine/registry"
	"grammarcheck/internal/shared/observability"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tree_sitter_c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	tree_sitter_css "github.com/tree-sitter/tree-sitter-css/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_html "github.com/tree-sitter/tree-sitter-html/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func realEntry(name string, fn grammar.LanguageFn) registry.Entry {
	return registry.Entry{Name: name, Symbol: "tree_sitter_" + name, Load: grammar.Loader(fn)}
}

func coreEntries() []registry.Entry {
	return []registry.Entry{
		realEntry("c", tree_sitter_c.Language),
		realEntry("python", tree_sitter_python.Language),
		realEntry("javascript", tree_sitter_javascript.Language),
		realEntry("rust", tree_sitter_rust.Language),
		realEntry("go", tree_sitter_go.Language),
	}
}

func mustRegistry(t *testing.T, entries ...registry.Entry) *registry.Registry {
	t.Helper()
	r, err := registry.New("x86_64-unknown-linux-gnu", entries...)
	require.NoError(t, err)
	return r
}

type fakeLanguage struct {
	kinds     uint32
	bindErr   error
	abort     bool
	hasErrors bool
	panics    bool
}

func (f *fakeLanguage) NodeKindCount() uint32 {
	if f.panics {
		panic("corrupted parse table")
	}
	return f.kinds
}

func (f *fakeLanguage) NewParser() (ports.SyntaxParser, error) {
	if f.bindErr != nil {
		return nil, f.bindErr
	}
	return &fakeParser{lang: f}, nil
}

type fakeParser struct {
	lang *fakeLanguage
}

func (p *fakeParser) Parse(source []byte) ports.SyntaxTree {
	if p.lang.abort {
		return nil
	}
	return &fakeTree{hasErrors: p.lang.hasErrors}
}

func (p *fakeParser) Close() {}

type fakeTree struct {
	hasErrors bool
}

func (t *fakeTree) HasError() bool { return t.hasErrors }
func (t *fakeTree) Close()         {}

func fakeEntry(name string, lang *fakeLanguage) registry.Entry {
	return registry.Entry{Name: name, Load: func() (ports.Language, error) { return lang, nil }}
}

type recorder struct {
	events []string
}

func (r *recorder) Start(name string) { r.events = append(r.events, "start:"+name) }
func (r *recorder) Finish(res Result) { r.events = append(r.events, "finish:"+res.Grammar) }

func resultsByName(s Summary) map[string]Result {
	out := make(map[string]Result, len(s.Results))
	for _, r := range s.Results {
		out[r.Grammar] = r
	}
	return out
}

func TestRun_AllCoreGrammarsPass(t *testing.T) {
	m := observability.NewMetrics()
	rec := &recorder{}
	h := New(mustRegistry(t, coreEntries()...), WithLogger(quiet), WithMetrics(m), WithObserver(rec))

	summary := h.Run(context.Background())

	require.Len(t, summary.Results, 5)
	assert.True(t, summary.Passed())
	passed, failed := summary.Counts()
	assert.Equal(t, 5, passed)
	assert.Equal(t, 0, failed)
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, "x86_64-unknown-linux-gnu", summary.Target)

	order := make([]string, 0, len(summary.Results))
	for _, r := range summary.Results {
		order = append(order, r.Grammar)
		assert.Equal(t, StatusPass, r.Status, "%s: %s", r.Grammar, r.Detail)
		assert.NotZero(t, r.NodeKinds)
		assert.NotZero(t, r.Parsed)
		assert.Contains(t, r.Detail, "parsed:")
	}
	assert.Equal(t, []string{"c", "python", "javascript", "rust", "go"}, order)
	assert.Equal(t, 24, resultsByName(summary)["c"].Parsed)

	assert.Equal(t, []string{
		"start:c", "finish:c",
		"start:python", "finish:python",
		"start:javascript", "finish:javascript",
		"start:rust", "finish:rust",
		"start:go", "finish:go",
	}, rec.events)
	assert.Equal(t, 5.0, testutil.ToFloat64(m.GrammarResults.WithLabelValues("pass", "")))
}

func TestRun_ZeroNodeKindsFailsOnlyThatGrammar(t *testing.T) {
	entries := coreEntries()
	entries[3] = fakeEntry("rust", &fakeLanguage{kinds: 0})
	m := observability.NewMetrics()

	summary := New(mustRegistry(t, entries...), WithLogger(quiet), WithMetrics(m)).Run(context.Background())

	require.Len(t, summary.Results, 5)
	assert.False(t, summary.Passed())
	byName := resultsByName(summary)
	assert.Equal(t, ReasonInvalidGrammar, byName["rust"].Reason)
	assert.Equal(t, "Invalid language (0 node kinds)", byName["rust"].Detail)
	for _, name := range []string{"c", "python", "javascript", "go"} {
		assert.True(t, byName[name].Passed(), "%s should still pass: %s", name, byName[name].Detail)
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GrammarResults.WithLabelValues("fail", string(ReasonInvalidGrammar))))
}

func TestRun_InvalidFixtureFailsOnlyThatGrammar(t *testing.T) {
	fixtures := append([]Fixture(nil), DefaultFixtures...)
	for i := range fixtures {
		if fixtures[i].Language == "python" {
			fixtures[i].Source = "def hello(:\n    pass"
		}
	}

	summary := New(mustRegistry(t, coreEntries()...), WithLogger(quiet), WithFixtures(fixtures...)).Run(context.Background())

	failures := summary.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "python", failures[0].Grammar)
	assert.Equal(t, ReasonParseTreeHasErrors, failures[0].Reason)
	assert.NotZero(t, failures[0].NodeKinds)
}

func TestValidate_FailureReasons(t *testing.T) {
	tests := []struct {
		name   string
		entry  registry.Entry
		reason Reason
		detail string
	}{
		{
			name:   "NullEntryPoint",
			entry:  realEntry("go", func() unsafe.Pointer { return nil }),
			reason: ReasonGrammarNotLoaded,
		},
		{
			name:   "NilLoader",
			entry:  registry.Entry{Name: "go"},
			reason: ReasonGrammarNotLoaded,
			detail: "Failed to load grammar",
		},
		{
			name:   "LoaderError",
			entry:  registry.Entry{Name: "go", Load: func() (ports.Language, error) { return nil, errors.New("symbol missing") }},
			reason: ReasonGrammarNotLoaded,
			detail: "Failed to load grammar: symbol missing",
		},
		{
			name:   "BindingError",
			entry:  fakeEntry("go", &fakeLanguage{kinds: 10, bindErr: errors.New("incompatible language version 16")}),
			reason: ReasonLanguageBindingError,
			detail: "Failed to set language: incompatible language version 16",
		},
		{
			name:   "ParseAborted",
			entry:  fakeEntry("go", &fakeLanguage{kinds: 10, abort: true}),
			reason: ReasonParseAborted,
			detail: "Failed to parse test code",
		},
		{
			name:   "ParseTreeHasErrors",
			entry:  fakeEntry("go", &fakeLanguage{kinds: 10, hasErrors: true}),
			reason: ReasonParseTreeHasErrors,
			detail: "Parse tree has errors",
		},
		{
			name:   "Panic",
			entry:  fakeEntry("go", &fakeLanguage{panics: true}),
			reason: ReasonGrammarPanicked,
			detail: "Grammar panicked: corrupted parse table",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(mustRegistry(t, tt.entry), WithLogger(quiet))
			res := h.Validate(context.Background(), "go")
			assert.Equal(t, StatusFail, res.Status)
			assert.Equal(t, tt.reason, res.Reason)
			if tt.detail != "" {
				assert.Equal(t, tt.detail, res.Detail)
			}
		})
	}
}

func TestValidate_UnknownGrammar(t *testing.T) {
	h := New(mustRegistry(t, coreEntries()...), WithLogger(quiet))
	res := h.Validate(context.Background(), "cobol")
	assert.Equal(t, ReasonGrammarNotLoaded, res.Reason)
}

func TestValidate_NoFixturePassesOnSanity(t *testing.T) {
	h := New(mustRegistry(t, realEntry("java", tree_sitter_java.Language)), WithLogger(quiet))
	res := h.Validate(context.Background(), "java")
	require.True(t, res.Passed(), res.Detail)
	assert.Zero(t, res.Parsed)
	assert.Regexp(t, `^\(nodes: \d+\)$`, res.Detail)
}

func TestRun_MixedSubsetProbesOnlyFixtureLanguages(t *testing.T) {
	reg := mustRegistry(t,
		realEntry("css", tree_sitter_css.Language),
		realEntry("go", tree_sitter_go.Language),
		realEntry("html", tree_sitter_html.Language),
		realEntry("java", tree_sitter_java.Language),
		realEntry("tsx", tree_sitter_typescript.LanguageTSX),
		realEntry("typescript", tree_sitter_typescript.LanguageTypescript),
	)

	summary := New(reg, WithLogger(quiet)).Run(context.Background())

	require.True(t, summary.Passed())
	for _, r := range summary.Results {
		if r.Grammar == "go" {
			assert.NotZero(t, r.Parsed)
			continue
		}
		assert.Zero(t, r.Parsed, r.Grammar)
		assert.NotContains(t, r.Detail, "parsed", r.Grammar)
	}
}

func TestRun_EmptyRegistryPasses(t *testing.T) {
	summary := New(mustRegistry(t), WithLogger(quiet)).Run(context.Background())
	assert.Empty(t, summary.Results)
	assert.True(t, summary.Passed())
}
