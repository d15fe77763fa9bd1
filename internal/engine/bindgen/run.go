package bindgen

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"grammarcheck/internal/core/errors"
	"grammarcheck/internal/engine/artifact"
	"grammarcheck/internal/engine/metadata"
	"grammarcheck/internal/shared/observability"
	"grammarcheck/internal/shared/util"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Options configures one generator run.
type Options struct {
	ModulePath string
	DistDir    string
	OutputPath string
	Package    string

	// Triple overrides target resolution when set.
	Triple string
	Env    artifact.LookupEnv

	Subset       *metadata.Subset
	SpecialCases SpecialCases

	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// Result describes a successful run.
type Result struct {
	Artifact artifact.TargetArtifact
	Grammars []metadata.GrammarDescriptor
	Output   string
	Changed  bool
}

// Run resolves the target, loads the sidecar and writes the bindings file.
// On any error nothing is written and a bindings file left at OutputPath by
// an earlier run is removed, so the validator cannot build against it.
func Run(ctx context.Context, opts Options) (res Result, err error) {
	ctx, span := observability.Tracer().Start(ctx, "bindgen.Run")
	defer span.End()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			removeStale(opts.OutputPath, logger)
		}
		if opts.Metrics == nil {
			return
		}
		switch {
		case err != nil:
			opts.Metrics.GenerateTotal.WithLabelValues("failed").Inc()
		case res.Changed:
			opts.Metrics.GenerateTotal.WithLabelValues("written").Inc()
		default:
			opts.Metrics.GenerateTotal.WithLabelValues("unchanged").Inc()
		}
	}()

	triple := opts.Triple
	source := artifact.SourceExplicit
	if triple == "" {
		triple, source = artifact.ResolveTriple(opts.Env)
	}
	span.SetAttributes(attribute.String("target", triple))
	logger.InfoContext(ctx, "validation: building for target", "target", triple, "source", string(source))

	art, err := artifact.Locate(opts.DistDir, triple)
	if err != nil {
		return Result{}, err
	}
	logger.InfoContext(ctx, "validation: found library", "path", art.ArchivePath)

	platform, err := artifact.Lookup(triple)
	if err != nil {
		return Result{}, err
	}
	info, err := artifact.Inspect(art.ArchivePath)
	if err != nil {
		return Result{}, err
	}

	all, err := metadata.Load(art.MetadataPath)
	if err != nil {
		return Result{}, err
	}
	logger.InfoContext(ctx, "validation: found metadata", "path", art.MetadataPath, "grammars", len(all))

	subset := opts.Subset
	if subset == nil {
		subset = metadata.DefaultSubset()
	}
	grammars := metadata.Filter(all, subset)
	for _, name := range metadata.Missing(grammars, subset) {
		logger.WarnContext(ctx, "validation: subset grammar not in metadata", "language", name)
	}
	logger.InfoContext(ctx, "validation: testing grammars", "count", len(grammars))

	special := opts.SpecialCases
	if special == nil {
		special = DefaultSpecialCases()
	}

	outDir := filepath.Dir(opts.OutputPath)
	linkDir, err := filepath.Rel(outDir, filepath.Dir(art.ArchivePath))
	if err != nil {
		return Result{}, errors.Wrap(err, errors.CodeGeneration, "archive directory is not reachable from the output directory")
	}

	pkg := opts.Package
	if pkg == "" {
		pkg = filepath.Base(outDir)
	}

	src, err := Generate(Input{
		Package:       pkg,
		ModulePath:    opts.ModulePath,
		Triple:        triple,
		GOOS:          platform.GOOS,
		GOARCH:        platform.GOARCH,
		LinkDir:       filepath.ToSlash(linkDir),
		Library:       artifact.LibraryName(art.ArchivePath),
		CxxLib:        platform.CxxLib,
		ArchiveName:   filepath.Base(art.ArchivePath),
		ArchiveSHA256: info.SHA256,
		Grammars:      grammars,
		SpecialCases:  special,
	})
	if err != nil {
		return Result{}, err
	}

	changed, err := util.WriteFileIfChanged(opts.OutputPath, src, 0o644)
	if err != nil {
		e := errors.Wrap(err, errors.CodeGeneration, "failed to write bindings")
		return Result{}, errors.AddContext(e, errors.CtxPath, opts.OutputPath)
	}
	logger.InfoContext(ctx, "validation: bindings generated", "path", opts.OutputPath, "changed", changed)

	return Result{
		Artifact: art,
		Grammars: grammars,
		Output:   opts.OutputPath,
		Changed:  changed,
	}, nil
}

// Describe renders a one-line summary of a result for CLI output.
func (r Result) Describe() string {
	state := "unchanged"
	if r.Changed {
		state = "written"
	}
	return fmt.Sprintf("%s: %d grammars for %s (%s)", r.Output, len(r.Grammars), r.Artifact.Triple, state)
}

func removeStale(path string, logger *slog.Logger) {
	if path == "" {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil || !strings.HasPrefix(string(data), generatedHeader) {
		return
	}
	if err := os.Remove(path); err == nil {
		logger.Warn("validation: removed stale bindings", "path", path)
	}
}
