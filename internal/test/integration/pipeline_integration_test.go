package integration

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"testing"

	"grammarcheck/internal/app"
	"grammarcheck/internal/core/config"
	"grammarcheck/internal/shared/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var externDecl = regexp.MustCompile(`extern const void \*(\w+)\(void\);`)

type generated struct {
	available []string
	dispatch  map[string]string // name -> var ident
	symbols   map[string]string // name -> entry point
	vars      map[string]bool
	externs   map[string]bool
}

func createProject(t *testing.T, sidecar string) util.Module {
	t.Helper()
	root := t.TempDir()
	dist := filepath.Join(root, "dist")
	module := filepath.Join(root, "validation")
	require.NoError(t, os.MkdirAll(dist, 0o755))
	require.NoError(t, os.MkdirAll(module, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(module, "go.mod"), []byte("module example.com/validation\ngo 1.24\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dist, "libtree-sitter-parsers-all-linux-aarch64-musl.a"), []byte("!<arch>\nstub"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dist, "grammars-linux-aarch64-musl.json"), []byte(sidecar), 0o644))

	mod, err := util.FindModule(module)
	require.NoError(t, err)
	return mod
}

func parseGenerated(t *testing.T, path string) generated {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
	require.NoError(t, err)

	g := generated{
		dispatch: map[string]string{},
		symbols:  map[string]string{},
		vars:     map[string]bool{},
		externs:  map[string]bool{},
	}
	for _, cg := range file.Comments {
		for _, m := range externDecl.FindAllStringSubmatch(cg.Text(), -1) {
			g.externs[m[1]] = true
		}
	}

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			if d.Tok != token.VAR {
				continue
			}
			for _, spec := range d.Specs {
				for _, name := range spec.(*ast.ValueSpec).Names {
					g.vars[name.Name] = true
				}
			}
		case *ast.FuncDecl:
			switch d.Name.Name {
			case "AvailableGrammars":
				lit := d.Body.List[0].(*ast.ReturnStmt).Results[0].(*ast.CompositeLit)
				for _, elt := range lit.Elts {
					g.available = append(g.available, unquote(t, elt))
				}
			case "LoadGrammar":
				collectCases(t, d, func(name string, result ast.Expr) {
					g.dispatch[name] = result.(*ast.Ident).Name
				})
			case "EntryPoint":
				collectCases(t, d, func(name string, result ast.Expr) {
					g.symbols[name] = unquote(t, result)
				})
			}
		}
	}
	return g
}

func collectCases(t *testing.T, fn *ast.FuncDecl, visit func(name string, result ast.Expr)) {
	t.Helper()
	sw := fn.Body.List[0].(*ast.SwitchStmt)
	for _, stmt := range sw.Body.List {
		clause := stmt.(*ast.CaseClause)
		ret := clause.Body[0].(*ast.ReturnStmt)
		visit(unquote(t, clause.List[0]), ret.Results[0])
	}
}

func unquote(t *testing.T, expr ast.Expr) string {
	t.Helper()
	s, err := strconv.Unquote(expr.(*ast.BasicLit).Value)
	require.NoError(t, err)
	return s
}

func newApp(t *testing.T, mod util.Module, cfg *config.Config) *app.App {
	t.Helper()
	a, err := app.New(context.Background(), cfg, mod, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return a
}

func TestFullPipelineIntegration(t *testing.T) {
	mod := createProject(t, `[
		{"name": "bash"},
		{"name": "rust"},
		{"name": "c", "symbol_name": "c"},
		{"name": "csharp"},
		{"name": "go", "extra": true},
		{"name": "javascript"},
		{"name": "python"}
	]`)

	cfg := config.DefaultConfig()
	cfg.Target = "aarch64-unknown-linux-musl"
	cfg.Subset.Languages = append(cfg.Subset.Languages, "csharp", "zig")

	res, err := newApp(t, mod, cfg).Generate(context.Background())
	require.NoError(t, err)

	g := parseGenerated(t, res.Output)
	assert.Equal(t, []string{"rust", "c", "csharp", "go", "javascript", "python"}, g.available)
	assert.Equal(t, "tree_sitter_c_sharp", g.symbols["csharp"])

	assertBijection(t, g)
}

func assertBijection(t *testing.T, g generated) {
	t.Helper()
	require.Len(t, g.dispatch, len(g.available))
	require.Len(t, g.symbols, len(g.available))
	require.Len(t, g.externs, len(g.available))
	for _, name := range g.available {
		ident, ok := g.dispatch[name]
		require.True(t, ok, "LoadGrammar lacks %s", name)
		assert.True(t, g.vars[ident], "LoadGrammar(%q) returns undeclared %s", name, ident)
		assert.True(t, g.externs[g.symbols[name]], "no extern for %s", g.symbols[name])
	}
}

func TestPipeline_ListingAndDispatchAgree(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		names := rapid.SliceOfNDistinct(
			rapid.StringMatching(`[a-z][a-z0-9]{0,8}(-[a-z0-9]{1,4})?`),
			1, 12, rapid.ID[string],
		).Draw(rt, "names")

		sidecar := "["
		for i, n := range names {
			if i > 0 {
				sidecar += ","
			}
			sidecar += `{"name":` + strconv.Quote(n) + `}`
		}
		sidecar += "]"

		mod := createProject(t, sidecar)
		cfg := config.DefaultConfig()
		cfg.Target = "aarch64-unknown-linux-musl"
		cfg.Subset.Languages = nil
		cfg.Subset.Patterns = []string{"*"}

		res, err := newApp(t, mod, cfg).Generate(context.Background())
		if err != nil {
			// Distinct names may still collide on a derived symbol or identifier.
			return
		}
		g := parseGenerated(t, res.Output)
		if len(g.available) != len(names) {
			rt.Fatalf("listed %d grammars, sidecar has %d", len(g.available), len(names))
		}
		assertBijection(t, g)
	})
}
