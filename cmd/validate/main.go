// # cmd/validate/main.go

// Command validate checks every grammar bound in internal/grammars against
// the linked archive. It takes no arguments and exits 1 if any grammar fails.
//
// The bindings are generated, so run "go generate ./internal/grammars" first.
package main

import (
	"context"
	"log/slog"
	"os"

	"grammarcheck/internal/app"
	"grammarcheck/internal/engine/harness"
	"grammarcheck/internal/grammars"
	"grammarcheck/internal/ui/report"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	reg, err := grammars.Registry()
	if err != nil {
		report.New(os.Stdout).Fatal(err)
		os.Exit(1)
	}

	summary := app.Validate(context.Background(), os.Stdout, reg, harness.WithLogger(logger))
	os.Exit(app.ExitCode(summary))
}
