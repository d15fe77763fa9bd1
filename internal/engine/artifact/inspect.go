package artifact

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"grammarcheck/internal/core/errors"
)

// arMagic opens every Unix ar archive, including the GNU and BSD variants
// the grammar pipeline produces on each platform.
var arMagic = []byte("!<arch>\n")

// ArchiveInfo identifies the exact archive bytes bindings were generated for.
type ArchiveInfo struct {
	Size   int64
	SHA256 string
}

// Inspect checks that path is an ar archive and hashes it.
func Inspect(path string) (ArchiveInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		e := errors.Wrap(err, errors.CodeArtifactNotFound, "archive missing or unreadable")
		return ArchiveInfo{}, errors.AddContext(e, errors.CtxPath, path)
	}
	defer f.Close()

	header := make([]byte, len(arMagic))
	if _, err := io.ReadFull(f, header); err != nil || !bytes.Equal(header, arMagic) {
		e := errors.New(errors.CodeInvalidArchive, "file is not a static archive")
		return ArchiveInfo{}, errors.AddContext(e, errors.CtxPath, path)
	}

	h := sha256.New()
	h.Write(header)
	n, err := io.Copy(h, f)
	if err != nil {
		e := errors.Wrap(err, errors.CodeInvalidArchive, "failed to read archive")
		return ArchiveInfo{}, errors.AddContext(e, errors.CtxPath, path)
	}
	return ArchiveInfo{
		Size:   n + int64(len(header)),
		SHA256: hex.EncodeToString(h.Sum(nil)),
	}, nil
}
