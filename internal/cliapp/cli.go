package cliapp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	coreapp "grammarcheck/internal/app"
	"grammarcheck/internal/core/config"
	"grammarcheck/internal/shared/util"

	"github.com/spf13/cobra"
)

const versionString = "1.0.0"

type globalOptions struct {
	configPath string
	verbose    bool
}

// overrides are per-command flags that win over the config file.
type overrides struct {
	target string
	dist   string
	output string
}

// Execute runs the build-time tool and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand(stdout, stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "grammarcheck",
		Short: "Bind and validate a precompiled tree-sitter grammar archive",
		Long: `grammarcheck generates the cgo bindings the validator links against and
offers helpers around the grammar archive build output.

Run "go generate ./internal/grammars" followed by "go run ./cmd/validate"
to validate the archive for the current target.`,
		Version:       versionString,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file (default <module root>/"+config.DefaultFileName+")")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newGenerateCommand(opts),
		newWatchCommand(opts),
		newTargetsCommand(),
		newProbeCommand(opts),
	)
	return root
}

// setup loads the configuration, installs the logger and builds the app.
func setup(cmd *cobra.Command, opts *globalOptions, over overrides) (*coreapp.App, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	module, err := util.FindModule(cwd)
	if err != nil {
		return nil, fmt.Errorf("locate module root from %s: %w", cwd, err)
	}

	cfg, err := loadConfig(opts.configPath, module.Root)
	if err != nil {
		return nil, err
	}
	config.ApplyEnvOverrides(cfg)
	applyOverrides(cfg, over)
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	level := cfg.SlogLevel()
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return coreapp.New(cmd.Context(), cfg, module, logger)
}

func loadConfig(path, moduleRoot string) (*config.Config, error) {
	if strings.TrimSpace(path) != "" {
		return config.Load(path)
	}
	cfg, _, err := config.LoadOptional(filepath.Join(moduleRoot, config.DefaultFileName))
	return cfg, err
}

func applyOverrides(cfg *config.Config, over overrides) {
	if over.target != "" {
		cfg.Target = over.target
	}
	if over.dist != "" {
		cfg.Paths.DistDir = over.dist
	}
	if over.output != "" {
		cfg.Paths.Output = over.output
	}
}

// closeApp flushes observability and keeps the first error.
func closeApp(ctx context.Context, a *coreapp.App, err *error) {
	if cerr := a.Close(ctx); cerr != nil && *err == nil {
		*err = cerr
	}
}
