package bindgen

import (
	"fmt"
	"go/format"
	"path"
	"strconv"
	"strings"

	"grammarcheck/internal/core/errors"
	"grammarcheck/internal/engine/metadata"
)

const generatedHeader = "// Code generated by grammarcheck generate; DO NOT EDIT.\n"

// Input is everything one generated bindings file depends on.
type Input struct {
	// Package is the Go package name of the generated file.
	Package string
	// ModulePath is the import path prefix of this module.
	ModulePath string

	Triple string
	GOOS   string
	GOARCH string

	// LinkDir is the archive directory relative to the generated file, slash separated.
	LinkDir string
	// Library is the -l name of the archive.
	Library string
	// CxxLib is the C++ runtime library linked after the archive.
	CxxLib string

	ArchiveName   string
	ArchiveSHA256 string

	Grammars     []metadata.GrammarDescriptor
	SpecialCases SpecialCases
}

// Binding is the derived naming of one grammar.
type Binding struct {
	Name       string
	EntryPoint string
	Ident      string
}

// Bindings derives the names for grammars and rejects collisions.
func Bindings(grammars []metadata.GrammarDescriptor, special SpecialCases) ([]Binding, error) {
	bindings := make([]Binding, 0, len(grammars))
	entryPoints := make(map[string]string, len(grammars))
	idents := make(map[string]string, len(grammars))

	for _, g := range grammars {
		b := Binding{
			Name:       g.Name,
			EntryPoint: EntryPoint(g, special),
			Ident:      Identifier(g.Name) + "Language",
		}
		if !ValidSymbol(b.EntryPoint) {
			e := errors.Newf(errors.CodeGeneration, "grammar %q derives invalid symbol %q", g.Name, b.EntryPoint)
			return nil, errors.AddContext(e, errors.CtxSymbol, b.EntryPoint)
		}
		if other, dup := entryPoints[b.EntryPoint]; dup {
			return nil, errors.Newf(errors.CodeGeneration, "grammars %q and %q both bind %s", other, g.Name, b.EntryPoint)
		}
		if other, dup := idents[b.Ident]; dup {
			return nil, errors.Newf(errors.CodeGeneration, "grammars %q and %q both generate %s", other, g.Name, b.Ident)
		}
		entryPoints[b.EntryPoint] = g.Name
		idents[b.Ident] = g.Name
		bindings = append(bindings, b)
	}
	return bindings, nil
}

// Generate renders the bindings file. The output depends only on in.
func Generate(in Input) ([]byte, error) {
	if in.Package == "" || in.ModulePath == "" {
		return nil, errors.New(errors.CodeGeneration, "package and module path are required")
	}
	if len(in.Grammars) == 0 {
		return nil, errors.New(errors.CodeGeneration, "no grammars from the validation subset are present in the metadata")
	}

	bindings, err := Bindings(in.Grammars, in.SpecialCases)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	w := func(tmpl string, args ...interface{}) {
		fmt.Fprintf(&b, tmpl, args...)
	}

	w(generatedHeader)
	w("// target: %s\n", in.Triple)
	if in.ArchiveSHA256 != "" {
		w("// archive: %s sha256:%s\n", in.ArchiveName, in.ArchiveSHA256)
	}
	w("\n")
	if in.GOOS != "" && in.GOARCH != "" {
		w("//go:build %s && %s\n\n", in.GOOS, in.GOARCH)
	}
	w("package %s\n\n", in.Package)

	w("/*\n")
	w("#cgo LDFLAGS: -L${SRCDIR}/%s -l%s\n", path.Clean(in.LinkDir), in.Library)
	if in.CxxLib != "" {
		w("#cgo LDFLAGS: -l%s\n", in.CxxLib)
	}
	w("\n")
	for _, bd := range bindings {
		w("extern const void *%s(void);\n", bd.EntryPoint)
	}
	w("*/\n")
	w("import \"C\"\n\n")

	w("import (\n")
	w("\t\"unsafe\"\n\n")
	w("\t%s\n", strconv.Quote(in.ModulePath+"/internal/engine/grammar"))
	w("\t%s\n", strconv.Quote(in.ModulePath+"/internal/engine/registry"))
	w(")\n\n")

	w("// Target is the platform triple these bindings link against.\n")
	w("const Target = %s\n\n", strconv.Quote(in.Triple))

	w("var (\n")
	for _, bd := range bindings {
		w("\t%s grammar.LanguageFn = func() unsafe.Pointer { return unsafe.Pointer(C.%s()) }\n", bd.Ident, bd.EntryPoint)
	}
	w(")\n\n")

	w("// LoadGrammar returns the entry point bound to name, or nil if name is not validated.\n")
	w("func LoadGrammar(name string) grammar.LanguageFn {\n")
	w("\tswitch name {\n")
	for _, bd := range bindings {
		w("\tcase %s:\n\t\treturn %s\n", strconv.Quote(bd.Name), bd.Ident)
	}
	w("\t}\n")
	w("\treturn nil\n")
	w("}\n\n")

	w("// EntryPoint returns the C symbol bound to name.\n")
	w("func EntryPoint(name string) string {\n")
	w("\tswitch name {\n")
	for _, bd := range bindings {
		w("\tcase %s:\n\t\treturn %s\n", strconv.Quote(bd.Name), strconv.Quote(bd.EntryPoint))
	}
	w("\t}\n")
	w("\treturn \"\"\n")
	w("}\n\n")

	w("// AvailableGrammars lists the validated grammars in metadata order.\n")
	w("func AvailableGrammars() []string {\n")
	w("\treturn []string{\n")
	for _, bd := range bindings {
		w("\t\t%s,\n", strconv.Quote(bd.Name))
	}
	w("\t}\n")
	w("}\n\n")

	w("// Registry builds the immutable registry the harness runs against.\n")
	w("func Registry() (*registry.Registry, error) {\n")
	w("\treturn registry.FromLookup(Target, AvailableGrammars(), LoadGrammar, EntryPoint)\n")
	w("}\n")

	src, err := format.Source([]byte(b.String()))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeGeneration, "generated bindings do not format")
	}
	return src, nil
}
