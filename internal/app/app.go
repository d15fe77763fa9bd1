// # internal/app/app.go
package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"grammarcheck/internal/core/config"
	"grammarcheck/internal/core/errors"
	"grammarcheck/internal/core/watcher"
	"grammarcheck/internal/engine/artifact"
	"grammarcheck/internal/engine/bindgen"
	"grammarcheck/internal/engine/grammar"
	"grammarcheck/internal/engine/harness"
	"grammarcheck/internal/engine/metadata"
	"grammarcheck/internal/engine/registry"
	"grammarcheck/internal/shared/observability"
	"grammarcheck/internal/shared/util"
)

// App wires configuration, observability and the engine packages for the
// build-time tool.
type App struct {
	Config  *config.Config
	Module  util.Module
	Logger  *slog.Logger
	Metrics *observability.Metrics

	// Env is consulted for target resolution.
	Env artifact.LookupEnv

	shutdownTracing observability.ShutdownFunc
	generateMu      sync.Mutex
}

func New(ctx context.Context, cfg *config.Config, module util.Module, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if module.Path == "" {
		return nil, errors.AddContext(
			errors.New(errors.CodeInvalidConfig, "go.mod declares no module path"),
			errors.CtxPath, module.Root)
	}

	shutdown, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint, cfg.Observability.ServiceName)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:          cfg,
		Module:          module,
		Logger:          logger,
		Metrics:         observability.NewMetrics(),
		Env:             os.LookupEnv,
		shutdownTracing: shutdown,
	}, nil
}

// GenerateOptions maps the configuration onto one generator run.
func (a *App) GenerateOptions() (bindgen.Options, error) {
	cfg := a.Config
	subset, err := metadata.NewSubset(cfg.Subset.Languages, cfg.Subset.Patterns)
	if err != nil {
		return bindgen.Options{}, errors.Wrap(err, errors.CodeInvalidConfig, "invalid subset")
	}
	return bindgen.Options{
		ModulePath:   a.Module.Path,
		DistDir:      config.ResolvePath(a.Module.Root, cfg.Paths.DistDir),
		OutputPath:   config.ResolvePath(a.Module.Root, cfg.Paths.Output),
		Triple:       strings.TrimSpace(cfg.Target),
		Env:          a.Env,
		Subset:       subset,
		SpecialCases: bindgen.DefaultSpecialCases().Merge(cfg.Symbols),
		Logger:       a.Logger,
		Metrics:      a.Metrics,
	}, nil
}

// Generate runs the binding generator once. Concurrent calls are serialized.
func (a *App) Generate(ctx context.Context) (bindgen.Result, error) {
	a.generateMu.Lock()
	defer a.generateMu.Unlock()

	opts, err := a.GenerateOptions()
	if err != nil {
		return bindgen.Result{}, err
	}
	return bindgen.Run(ctx, opts)
}

// Watch generates once, then regenerates whenever an archive or sidecar in
// the dist directory changes, until ctx is done. Generation failures are
// logged and do not stop the loop.
func (a *App) Watch(ctx context.Context) error {
	opts, err := a.GenerateOptions()
	if err != nil {
		return err
	}

	a.generateAndLog(ctx)

	w, err := watcher.NewWatcher(a.Config.Watch.Debounce, watcher.DefaultPatterns, func(paths []string) {
		a.Logger.Info("artifacts changed", "paths", paths)
		a.generateAndLog(ctx)
	})
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to create watcher")
	}
	w.SetLogger(a.Logger)
	w.SetMetrics(a.Metrics)
	defer w.Close()

	if err := w.Watch([]string{opts.DistDir}); err != nil {
		e := errors.Wrap(err, errors.CodeBuildArtifactsMissing, "failed to watch dist directory")
		return errors.AddContext(e, errors.CtxPath, opts.DistDir)
	}
	a.Logger.Info("watching for artifact changes", "dir", opts.DistDir, "debounce", a.Config.Watch.Debounce)

	<-ctx.Done()
	return nil
}

func (a *App) generateAndLog(ctx context.Context) {
	res, err := a.Generate(ctx)
	if err != nil {
		code, _ := errors.CodeOf(err)
		a.Logger.Error("generation failed", "code", string(code), "error", err)
		return
	}
	a.Logger.Info("generation finished", "result", res.Describe())
}

// Probe loads names from a shared grammar library and runs the harness over
// them. An empty names list probes the configured subset languages.
func (a *App) Probe(ctx context.Context, libPath string, names []string, out io.Writer) (harness.Summary, error) {
	lib, err := grammar.OpenShared(libPath)
	if err != nil {
		return harness.Summary{}, err
	}
	if len(names) == 0 {
		names = a.Config.Subset.Languages
	}

	special := bindgen.DefaultSpecialCases().Merge(a.Config.Symbols)
	entries := make([]registry.Entry, 0, len(names))
	for _, name := range names {
		sym := bindgen.EntryPoint(metadata.GrammarDescriptor{Name: name}, special)
		entries = append(entries, registry.Entry{
			Name:   name,
			Symbol: sym,
			Load:   lib.Loader(sym),
		})
	}

	reg, err := registry.New(filepath.Base(lib.Path()), entries...)
	if err != nil {
		return harness.Summary{}, err
	}
	return Validate(ctx, out, reg, harness.WithLogger(a.Logger), harness.WithMetrics(a.Metrics)), nil
}

// Close writes the metrics file, if configured, and flushes tracing.
func (a *App) Close(ctx context.Context) error {
	var firstErr error
	if path := strings.TrimSpace(a.Config.Observability.MetricsFile); path != "" {
		if err := a.Metrics.WriteTextfile(config.ResolvePath(a.Module.Root, path)); err != nil {
			firstErr = errors.Wrap(err, errors.CodeInternal, "failed to write metrics file")
		}
	}
	if a.shutdownTracing != nil {
		if err := a.shutdownTracing(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
