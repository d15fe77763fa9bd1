package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"grammarcheck/internal/core/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect(t *testing.T) {
	dir := t.TempDir()

	t.Run("ValidArchive", func(t *testing.T) {
		content := []byte("!<arch>\nparser.o/       0           0     0     644     4         `\nabcd")
		path := filepath.Join(dir, "libok.a")
		require.NoError(t, os.WriteFile(path, content, 0o644))

		info, err := Inspect(path)
		require.NoError(t, err)
		sum := sha256.Sum256(content)
		assert.Equal(t, hex.EncodeToString(sum[:]), info.SHA256)
		assert.Equal(t, int64(len(content)), info.Size)
	})

	t.Run("NotAnArchive", func(t *testing.T) {
		path := filepath.Join(dir, "libbad.a")
		require.NoError(t, os.WriteFile(path, []byte("ELF"), 0o644))

		_, err := Inspect(path)
		assert.True(t, errors.IsCode(err, errors.CodeInvalidArchive), "got %v", err)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := Inspect(filepath.Join(dir, "libnone.a"))
		assert.True(t, errors.IsCode(err, errors.CodeArtifactNotFound), "got %v", err)
	})
}
