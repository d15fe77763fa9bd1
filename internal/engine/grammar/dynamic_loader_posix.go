//go:build !windows

package grammar

/*
#cgo linux LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdlib.h>

static void* open_grammar_library(const char* path) {
    return dlopen(path, RTLD_NOW | RTLD_LOCAL);
}

static void* grammar_symbol(void* handle, const char* name) {
    return dlsym(handle, name);
}

static const void* call_language_fn(void* fn) {
    return ((const void* (*)(void))fn)();
}
*/
import "C"
import (
	"sync"
	"unsafe"

	"grammarcheck/internal/core/errors"
)

// SharedLibrary is a grammar library opened with dlopen. Handles are never
// closed: languages obtained from it must stay valid for the process lifetime.
type SharedLibrary struct {
	path   string
	handle unsafe.Pointer
}

var (
	libMu     sync.Mutex
	libraries = make(map[string]*SharedLibrary)
)

// OpenShared opens the shared grammar library at path, reusing earlier handles.
func OpenShared(path string) (*SharedLibrary, error) {
	libMu.Lock()
	defer libMu.Unlock()

	if lib, ok := libraries[path]; ok {
		return lib, nil
	}

	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	handle := C.open_grammar_library(cPath)
	if handle == nil {
		e := errors.Newf(errors.CodeGrammarNotLoaded, "dlopen failed: %s", C.GoString(C.dlerror()))
		return nil, errors.AddContext(e, errors.CtxPath, path)
	}
	lib := &SharedLibrary{path: path, handle: handle}
	libraries[path] = lib
	return lib, nil
}

// Symbol resolves an entry point such as tree_sitter_go.
func (l *SharedLibrary) Symbol(symbol string) (LanguageFn, error) {
	cSymbol := C.CString(symbol)
	defer C.free(unsafe.Pointer(cSymbol))

	C.dlerror()
	fn := C.grammar_symbol(l.handle, cSymbol)
	if fn == nil {
		msg := "symbol not found"
		if cerr := C.dlerror(); cerr != nil {
			msg = C.GoString(cerr)
		}
		e := errors.Newf(errors.CodeGrammarNotLoaded, "unresolved entry point %s: %s", symbol, msg)
		e = errors.AddContext(e, errors.CtxSymbol, symbol)
		return nil, errors.AddContext(e, errors.CtxPath, l.path)
	}
	return func() unsafe.Pointer {
		return unsafe.Pointer(C.call_language_fn(fn))
	}, nil
}

// Path returns the file the library was opened from.
func (l *SharedLibrary) Path() string {
	return l.path
}
