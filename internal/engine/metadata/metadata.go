package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"grammarcheck/internal/core/errors"
)

// ArchivePrefix is the naming prefix every bundled grammar archive carries.
const ArchivePrefix = "libtree-sitter-parsers-all-"

const sidecarPrefix = "grammars-"

// GrammarDescriptor is one grammar baked into an archive.
type GrammarDescriptor struct {
	Name string `json:"name"`
	// SymbolName overrides entry-point derivation when the compiled symbol
	// does not follow the grammar name.
	SymbolName string `json:"symbol_name,omitempty"`
}

// SidecarPath derives the metadata file that sits next to an archive:
// libtree-sitter-parsers-all-<platform>.a -> grammars-<platform>.json.
func SidecarPath(archivePath string) string {
	name := filepath.Base(archivePath)
	name = strings.Replace(name, ArchivePrefix, sidecarPrefix, 1)
	name = strings.TrimSuffix(name, ".a") + ".json"
	return filepath.Join(filepath.Dir(archivePath), name)
}

// Load reads the sidecar at path. Missing files and malformed content are fatal.
func Load(path string) ([]GrammarDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			e := errors.New(errors.CodeMetadataMissing, "no grammar metadata found")
			return nil, errors.AddContext(e, errors.CtxPath, path)
		}
		e := errors.Wrap(err, errors.CodeMetadataMissing, "failed to read grammar metadata")
		return nil, errors.AddContext(e, errors.CtxPath, path)
	}

	grammars, err := Parse(data)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	return grammars, nil
}

// Parse decodes and validates sidecar content.
func Parse(data []byte) ([]GrammarDescriptor, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.New(errors.CodeMetadataParse, "grammar metadata must be a JSON array")
	}

	// Unknown fields are ignored.
	var grammars []GrammarDescriptor
	if err := json.Unmarshal(trimmed, &grammars); err != nil {
		return nil, errors.Wrap(err, errors.CodeMetadataParse, "failed to parse grammar metadata")
	}

	seen := make(map[string]bool, len(grammars))
	for i, g := range grammars {
		ref := fmt.Sprintf("grammars[%d]", i)
		g.SymbolName = strings.TrimSpace(g.SymbolName)
		if g.Name == "" {
			return nil, errors.Newf(errors.CodeMetadataParse, "%s.name must not be empty", ref)
		}
		if g.Name != strings.ToLower(g.Name) || strings.TrimSpace(g.Name) != g.Name {
			return nil, errors.Newf(errors.CodeMetadataParse, "%s.name %q must be a lowercase identifier", ref, g.Name)
		}
		if seen[g.Name] {
			return nil, errors.Newf(errors.CodeMetadataParse, "duplicate grammar entry %q in metadata", g.Name)
		}
		seen[g.Name] = true
		grammars[i] = g
	}
	return grammars, nil
}
