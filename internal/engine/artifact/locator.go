package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"grammarcheck/internal/core/errors"
	"grammarcheck/internal/engine/metadata"
)

// ArchivePrefix is the naming prefix every bundled grammar archive carries.
const ArchivePrefix = metadata.ArchivePrefix

// Platform describes how a supported triple maps onto the Go toolchain.
type Platform struct {
	Triple  string
	GOOS    string
	GOARCH  string
	Libc    string
	Archive string
	// CxxLib is the C++ runtime some grammar scanners need at link time.
	CxxLib string
}

// TargetArtifact is the archive selected for one generator run.
type TargetArtifact struct {
	Triple       string
	ArchivePath  string
	MetadataPath string
}

var platforms = []Platform{
	{Triple: "aarch64-apple-darwin", GOOS: "darwin", GOARCH: "arm64", Archive: ArchivePrefix + "macos-aarch64.a", CxxLib: "c++"},
	{Triple: "x86_64-apple-darwin", GOOS: "darwin", GOARCH: "amd64", Archive: ArchivePrefix + "macos-x86_64.a", CxxLib: "c++"},
	{Triple: "aarch64-unknown-linux-gnu", GOOS: "linux", GOARCH: "arm64", Libc: "gnu", Archive: ArchivePrefix + "linux-aarch64-glibc.a", CxxLib: "stdc++"},
	{Triple: "x86_64-unknown-linux-gnu", GOOS: "linux", GOARCH: "amd64", Libc: "gnu", Archive: ArchivePrefix + "linux-x86_64-glibc.a", CxxLib: "stdc++"},
	{Triple: "aarch64-unknown-linux-musl", GOOS: "linux", GOARCH: "arm64", Libc: "musl", Archive: ArchivePrefix + "linux-aarch64-musl.a", CxxLib: "stdc++"},
	{Triple: "x86_64-unknown-linux-musl", GOOS: "linux", GOARCH: "amd64", Libc: "musl", Archive: ArchivePrefix + "linux-x86_64-musl.a", CxxLib: "stdc++"},
	{Triple: "aarch64-pc-windows-gnu", GOOS: "windows", GOARCH: "arm64", Archive: ArchivePrefix + "windows-aarch64.a", CxxLib: "stdc++"},
	{Triple: "x86_64-pc-windows-gnu", GOOS: "windows", GOARCH: "amd64", Archive: ArchivePrefix + "windows-x86_64.a", CxxLib: "stdc++"},
}

var byTriple = func() map[string]Platform {
	m := make(map[string]Platform, len(platforms))
	for _, p := range platforms {
		m[p.Triple] = p
	}
	return m
}()

// SupportedPlatforms returns the lookup table in declaration order.
func SupportedPlatforms() []Platform {
	return append([]Platform(nil), platforms...)
}

// Lookup returns the platform for triple or an UnsupportedTarget error.
func Lookup(triple string) (Platform, error) {
	p, ok := byTriple[triple]
	if !ok {
		return Platform{}, errors.Newf(errors.CodeUnsupportedTarget, "unsupported target for validation: %s", triple)
	}
	return p, nil
}

// ArchiveName maps a triple to the archive file name the build pipeline emits.
func ArchiveName(triple string) (string, error) {
	p, err := Lookup(triple)
	if err != nil {
		return "", err
	}
	return p.Archive, nil
}

// Locate computes the archive path for triple under distDir and checks it exists.
func Locate(distDir, triple string) (TargetArtifact, error) {
	info, err := os.Stat(distDir)
	if err != nil || !info.IsDir() {
		e := errors.New(errors.CodeBuildArtifactsMissing, "dist directory not found; build the grammar archives first")
		return TargetArtifact{}, errors.AddContext(e, errors.CtxPath, distDir)
	}

	name, err := ArchiveName(triple)
	if err != nil {
		return TargetArtifact{}, err
	}

	archive := filepath.Join(distDir, name)
	if info, err := os.Stat(archive); err != nil || info.IsDir() {
		e := errors.Newf(errors.CodeArtifactNotFound, "library %s not found in %s", name, distDir)
		e = errors.AddContext(e, errors.CtxTarget, triple)
		return TargetArtifact{}, e
	}

	return TargetArtifact{
		Triple:       triple,
		ArchivePath:  archive,
		MetadataPath: metadata.SidecarPath(archive),
	}, nil
}

// LibraryName is the -l argument for an archive: file stem without "lib".
func LibraryName(archivePath string) string {
	stem := strings.TrimSuffix(filepath.Base(archivePath), filepath.Ext(archivePath))
	return strings.TrimPrefix(stem, "lib")
}

// Source records which input decided the target triple.
type Source string

const (
	SourceTarget   Source = "TARGET"
	SourceGoEnv    Source = "GOOS/GOARCH"
	SourceHostEnv  Source = "HOST"
	SourceRuntime  Source = "runtime"
	SourceExplicit Source = "config"
)

// LookupEnv matches os.LookupEnv.
type LookupEnv func(key string) (string, bool)

// muslProbe reports whether the running host uses musl. Replaced in tests.
var muslProbe = func() bool {
	matches, _ := filepath.Glob("/lib/ld-musl-*.so.1")
	return len(matches) > 0
}

// ResolveTriple picks the build target: TARGET, then GOOS/GOARCH, then HOST,
// then the running host.
func ResolveTriple(env LookupEnv) (string, Source) {
	if env == nil {
		env = os.LookupEnv
	}
	if v, ok := env("TARGET"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), SourceTarget
	}

	goos, hasOS := env("GOOS")
	goarch, hasArch := env("GOARCH")
	if hasOS && hasArch && goos != "" && goarch != "" {
		libc, _ := env("GRAMMARCHECK_LIBC")
		return TripleFor(goos, goarch, libc), SourceGoEnv
	}

	if v, ok := env("HOST"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), SourceHostEnv
	}

	libc := "gnu"
	if runtime.GOOS == "linux" && muslProbe() {
		libc = "musl"
	}
	return TripleFor(runtime.GOOS, runtime.GOARCH, libc), SourceRuntime
}

// TripleFor maps GOOS/GOARCH (and a libc variant on linux) to a triple.
// Unknown combinations yield a triple that Lookup rejects.
func TripleFor(goos, goarch, libc string) string {
	libc = strings.ToLower(strings.TrimSpace(libc))
	if libc == "" {
		libc = "gnu"
	}
	for _, p := range platforms {
		if p.GOOS != goos || p.GOARCH != goarch {
			continue
		}
		if p.GOOS == "linux" && p.Libc != libc {
			continue
		}
		return p.Triple
	}
	return fmt.Sprintf("%s-unknown-%s", goarch, goos)
}
