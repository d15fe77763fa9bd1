package app

import (
	"context"
	"io"

	"grammarcheck/internal/engine/harness"
	"grammarcheck/internal/engine/registry"
	"grammarcheck/internal/ui/report"
)

// Validate runs the harness over reg and prints the report to out as it goes.
func Validate(ctx context.Context, out io.Writer, reg *registry.Registry, opts ...harness.Option) harness.Summary {
	rep := report.New(out)
	rep.Header(reg.Len())

	opts = append(opts, harness.WithObserver(rep))
	summary := harness.New(reg, opts...).Run(ctx)

	rep.Summary(summary)
	return summary
}

// ExitCode maps a summary to the process exit status.
func ExitCode(s harness.Summary) int {
	if s.Passed() {
		return 0
	}
	return 1
}
