// # internal/ui/report/report_test.go
package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"grammarcheck/internal/engine/harness"

	"github.com/stretchr/testify/assert"
)

func passing(name, detail string) harness.Result {
	return harness.Result{Grammar: name, Status: harness.StatusPass, Detail: detail}
}

func TestReporter_Lines(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	r.Header(2)
	r.Start("go")
	r.Finish(passing("go", "(nodes: 212, parsed: 37 chars)"))
	r.Start("javascript")
	r.Finish(harness.Result{Grammar: "javascript", Status: harness.StatusFail, Reason: harness.ReasonParseTreeHasErrors, Detail: "Parse tree has errors"})

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "🔍 Tree-sitter Parsers Validation\n===================================\nTesting 2 core grammars...\n\n"), out)
	assert.Contains(t, out, "Testing go...        ✅ (nodes: 212, parsed: 37 chars)\n")
	assert.Contains(t, out, "Testing javascript... ❌ Parse tree has errors\n")
}

func TestReporter_SummaryPassed(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Summary(harness.Summary{
		Target:  "x86_64-unknown-linux-gnu",
		Results: []harness.Result{passing("c", "(nodes: 1)"), passing("go", "(nodes: 2)")},
	})

	out := buf.String()
	assert.Contains(t, out, "=== Validation Summary ===")
	assert.Contains(t, out, "2/2 grammars passed for x86_64-unknown-linux-gnu")
	assert.Contains(t, out, "🎉 All grammars validated successfully!")
	assert.Contains(t, out, "✅ Basic parsing works correctly")
	assert.NotContains(t, out, "💥")
}

func TestReporter_SummaryFailed(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Summary(harness.Summary{
		Target: "x86_64-unknown-linux-gnu",
		Results: []harness.Result{
			passing("c", "(nodes: 1)"),
			{Grammar: "rust", Status: harness.StatusFail, Reason: harness.ReasonInvalidGrammar, Detail: "Invalid language (0 node kinds)"},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "1/2 grammars passed")
	assert.Contains(t, out, "💥 Validation failed! Some grammars are broken.")
	assert.Contains(t, out, "rust: Invalid language (0 node kinds) (InvalidGrammar)")
	assert.Contains(t, out, "❌ This indicates a problem with the library build process")
	assert.NotContains(t, out, "🎉")
}

func TestReporter_Fatal(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Fatal(errors.New("grammar \"go\" is listed but has no binding\n"))
	assert.Contains(t, buf.String(), "💥 Validation failed! grammar \"go\" is listed but has no binding\n")
}
