//go:build windows

package grammar

import "grammarcheck/internal/core/errors"

// SharedLibrary is unavailable on Windows.
type SharedLibrary struct {
	path string
}

// OpenShared returns an error on Windows as dynamic grammar loading is not yet supported.
func OpenShared(path string) (*SharedLibrary, error) {
	e := errors.New(errors.CodeNotSupported, "dynamic grammar loading is currently not supported on Windows")
	return nil, errors.AddContext(e, errors.CtxPath, path)
}

func (l *SharedLibrary) Symbol(symbol string) (LanguageFn, error) {
	e := errors.New(errors.CodeNotSupported, "dynamic grammar loading is currently not supported on Windows")
	return nil, errors.AddContext(e, errors.CtxSymbol, symbol)
}

func (l *SharedLibrary) Path() string {
	return l.path
}
