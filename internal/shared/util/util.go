// # internal/shared/util/util.go
package util

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

var modulePattern = regexp.MustCompile(`(?m)^module\s+(\S+)`)

// Module identifies the Go module that contains a path.
type Module struct {
	Root string
	Path string
}

// FindModule walks up from startDir to the nearest go.mod.
func FindModule(startDir string) (Module, error) {
	current, err := filepath.Abs(startDir)
	if err != nil {
		return Module{}, err
	}
	for {
		modPath := filepath.Join(current, "go.mod")
		if data, err := os.ReadFile(modPath); err == nil {
			m := Module{Root: current}
			if matches := modulePattern.FindSubmatch(data); len(matches) > 1 {
				m.Path = string(matches[1])
			}
			return m, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return Module{}, errors.New("no go.mod found")
		}
		current = parent
	}
}

// SortedStringKeys returns the map's keys in sorted order.
func SortedStringKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// WriteFileIfChanged writes data to path through a temp file and rename,
// creating parent directories (0755). It reports false when path already
// holds identical bytes.
func WriteFileIfChanged(path string, data []byte, perm fs.FileMode) (bool, error) {
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, data) {
		return false, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, err
		}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return false, err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return false, err
	}
	if err := tmp.Close(); err != nil {
		return false, err
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return false, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return false, err
	}
	return true, nil
}
