// # internal/ui/report/report.go
package report

import (
	"fmt"
	"io"
	"strings"

	"grammarcheck/internal/engine/harness"

	"github.com/charmbracelet/lipgloss"
)

const (
	title     = "🔍 Tree-sitter Parsers Validation"
	separator = "==================================="
)

type styles struct {
	title   lipgloss.Style
	pass    lipgloss.Style
	fail    lipgloss.Style
	summary lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:   r.NewStyle().Foreground(lipgloss.Color("#3B82F6")).Bold(true),
		pass:    r.NewStyle().Foreground(lipgloss.Color("#10B981")),
		fail:    r.NewStyle().Foreground(lipgloss.Color("#F87171")).Bold(true),
		summary: r.NewStyle().Bold(true),
		muted:   r.NewStyle().Foreground(lipgloss.Color("#64748B")).Italic(true),
	}
}

// Reporter prints validation progress. It implements harness.Observer so
// each line is written as soon as its grammar finishes. Colors are applied
// only when out is a terminal.
type Reporter struct {
	out    io.Writer
	styles styles
}

func New(out io.Writer) *Reporter {
	return &Reporter{
		out:    out,
		styles: newStyles(lipgloss.NewRenderer(out)),
	}
}

func (r *Reporter) Header(grammars int) {
	fmt.Fprintln(r.out, r.styles.title.Render(title))
	fmt.Fprintln(r.out, separator)
	fmt.Fprintf(r.out, "Testing %d core grammars...\n\n", grammars)
}

func (r *Reporter) Start(grammar string) {
	fmt.Fprintf(r.out, "Testing %-12s ", grammar+"...")
}

func (r *Reporter) Finish(res harness.Result) {
	if res.Passed() {
		fmt.Fprintln(r.out, r.styles.pass.Render("✅ "+res.Detail))
		return
	}
	fmt.Fprintln(r.out, r.styles.fail.Render("❌ "+res.Detail))
}

func (r *Reporter) Summary(s harness.Summary) {
	passed, _ := s.Counts()
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.styles.summary.Render("=== Validation Summary ==="))
	fmt.Fprintln(r.out, r.styles.muted.Render(fmt.Sprintf("%d/%d grammars passed for %s", passed, len(s.Results), s.Target)))

	if s.Passed() {
		fmt.Fprintln(r.out, r.styles.pass.Render("🎉 All grammars validated successfully!"))
		fmt.Fprintln(r.out, "✅ Library linking works correctly")
		fmt.Fprintln(r.out, "✅ Grammar loading works correctly")
		fmt.Fprintln(r.out, "✅ Basic parsing works correctly")
		return
	}

	fmt.Fprintln(r.out, r.styles.fail.Render("💥 Validation failed! Some grammars are broken."))
	for _, f := range s.Failures() {
		fmt.Fprintf(r.out, "   %s: %s (%s)\n", f.Grammar, f.Detail, f.Reason)
	}
	fmt.Fprintln(r.out, "❌ This indicates a problem with the library build process")
}

// Fatal prints a run that could not start, such as a broken registry.
func (r *Reporter) Fatal(err error) {
	msg := strings.TrimSpace(err.Error())
	fmt.Fprintln(r.out, r.styles.fail.Render("💥 Validation failed! "+msg))
	fmt.Fprintln(r.out, "❌ This indicates a problem with the library build process")
}
