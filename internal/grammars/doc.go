// Package grammars holds the cgo bindings to the grammar archive of one
// target platform. The bindings live in zz_grammars.go, which is written by
// the generator and not checked in:
//
//	go generate ./internal/grammars
//
// The generated file exports Target, LoadGrammar, EntryPoint,
// AvailableGrammars and Registry. Without it, or when the archive or sidecar
// was missing at generation time, this package does not build.
package grammars

//go:generate go run ../../cmd/grammarcheck generate
