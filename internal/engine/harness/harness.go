// # internal/engine/harness/harness.go
package harness

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"grammarcheck/internal/core/errors"
	"grammarcheck/internal/core/ports"
	"grammarcheck/internal/engine/registry"
	"grammarcheck/internal/shared/observability"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
)

// Reason classifies a failed grammar.
type Reason string

const (
	ReasonNone                 Reason = ""
	ReasonGrammarNotLoaded     Reason = "GrammarNotLoaded"
	ReasonInvalidGrammar       Reason = "InvalidGrammar"
	ReasonLanguageBindingError Reason = "LanguageBindingError"
	ReasonParseAborted         Reason = "ParseAborted"
	ReasonParseTreeHasErrors   Reason = "ParseTreeHasErrors"
	ReasonGrammarPanicked      Reason = "GrammarPanicked"
)

// Result is the outcome of validating one grammar.
type Result struct {
	Grammar string
	Status  Status
	Reason  Reason
	// Detail is the human-readable pass detail or failure message.
	Detail    string
	NodeKinds uint32
	// Parsed is the fixture length in bytes, zero when no probe ran.
	Parsed   int
	Duration time.Duration
}

func (r Result) Passed() bool {
	return r.Status == StatusPass
}

// Summary aggregates one run.
type Summary struct {
	RunID   string
	Target  string
	Results []Result
}

// Passed is true only when every grammar passed.
func (s Summary) Passed() bool {
	for _, r := range s.Results {
		if !r.Passed() {
			return false
		}
	}
	return true
}

// Counts returns the number of passed and failed grammars.
func (s Summary) Counts() (passed, failed int) {
	for _, r := range s.Results {
		if r.Passed() {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}

// Failures returns the failed results in run order.
func (s Summary) Failures() []Result {
	var out []Result
	for _, r := range s.Results {
		if !r.Passed() {
			out = append(out, r)
		}
	}
	return out
}

// Observer is notified around each grammar, in run order.
type Observer interface {
	Start(grammar string)
	Finish(result Result)
}

type Harness struct {
	registry *registry.Registry
	fixtures map[string]string
	logger   *slog.Logger
	metrics  *observability.Metrics
	observer Observer
}

type Option func(*Harness)

// WithFixtures replaces the sample sources probed per grammar.
func WithFixtures(fixtures ...Fixture) Option {
	return func(h *Harness) {
		h.fixtures = fixtureTable(fixtures)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) { h.logger = logger }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(h *Harness) { h.metrics = m }
}

func WithObserver(o Observer) Option {
	return func(h *Harness) { h.observer = o }
}

func New(reg *registry.Registry, opts ...Option) *Harness {
	h := &Harness{
		registry: reg,
		fixtures: fixtureTable(DefaultFixtures),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run validates every registered grammar in registry order. It never stops
// early: each grammar gets its own result.
func (h *Harness) Run(ctx context.Context) Summary {
	ctx, span := observability.Tracer().Start(ctx, "harness.Run")
	defer span.End()

	summary := Summary{
		RunID:  uuid.NewString(),
		Target: h.registry.Target(),
	}
	span.SetAttributes(
		attribute.String("run_id", summary.RunID),
		attribute.String("target", summary.Target),
		attribute.Int("grammars", h.registry.Len()),
	)
	h.logger.DebugContext(ctx, "validation run started", "run_id", summary.RunID, "grammars", h.registry.Len())

	for _, name := range h.registry.Names() {
		if h.observer != nil {
			h.observer.Start(name)
		}
		res := h.Validate(ctx, name)
		summary.Results = append(summary.Results, res)
		if h.observer != nil {
			h.observer.Finish(res)
		}
	}

	passed, failed := summary.Counts()
	span.SetAttributes(attribute.Int("passed", passed), attribute.Int("failed", failed))
	if failed > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d grammars failed", failed))
	}
	h.logger.DebugContext(ctx, "validation run finished", "run_id", summary.RunID, "passed", passed, "failed", failed)
	return summary
}

// Validate runs the lookup, sanity and parse-probe steps for one grammar.
// Go panics become GrammarPanicked. A fault raised inside a grammar's C code,
// such as SIGSEGV, is not recoverable in-process and terminates the run.
func (h *Harness) Validate(ctx context.Context, name string) (res Result) {
	ctx, span := observability.Tracer().Start(ctx, "harness.grammar")
	span.SetAttributes(attribute.String("grammar", name))
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			res = fail(name, ReasonGrammarPanicked, fmt.Sprintf("Grammar panicked: %v", r))
		}
		res.Duration = time.Since(start)
		h.record(ctx, res)
		if !res.Passed() {
			span.SetStatus(codes.Error, string(res.Reason))
		}
		span.SetAttributes(attribute.String("status", string(res.Status)))
		span.End()
	}()

	entry, ok := h.registry.Lookup(name)
	if !ok || entry.Load == nil {
		return fail(name, ReasonGrammarNotLoaded, "Failed to load grammar")
	}
	lang, err := entry.Load()
	if err != nil || lang == nil {
		msg := "Failed to load grammar"
		if err != nil {
			msg = fmt.Sprintf("Failed to load grammar: %v", err)
		}
		return fail(name, ReasonGrammarNotLoaded, msg)
	}

	kinds := lang.NodeKindCount()
	if kinds == 0 {
		return fail(name, ReasonInvalidGrammar, "Invalid language (0 node kinds)")
	}

	source, ok := h.fixtures[name]
	if !ok {
		return Result{
			Grammar:   name,
			Status:    StatusPass,
			Detail:    fmt.Sprintf("(nodes: %d)", kinds),
			NodeKinds: kinds,
		}
	}

	res = probe(name, lang, source)
	res.NodeKinds = kinds
	if res.Passed() {
		res.Detail = fmt.Sprintf("(nodes: %d, parsed: %d chars)", kinds, res.Parsed)
	}
	return res
}

func probe(name string, lang ports.Language, source string) Result {
	parser, err := lang.NewParser()
	if err != nil {
		return fail(name, ReasonLanguageBindingError, fmt.Sprintf("Failed to set language: %v", errors.Cause(err)))
	}
	defer parser.Close()

	tree := parser.Parse([]byte(source))
	if tree == nil {
		return fail(name, ReasonParseAborted, "Failed to parse test code")
	}
	defer tree.Close()

	if tree.HasError() {
		return fail(name, ReasonParseTreeHasErrors, "Parse tree has errors")
	}
	return Result{
		Grammar: name,
		Status:  StatusPass,
		Parsed:  len(source),
	}
}

func fail(name string, reason Reason, msg string) Result {
	return Result{Grammar: name, Status: StatusFail, Reason: reason, Detail: msg}
}

func (h *Harness) record(ctx context.Context, res Result) {
	if res.Passed() {
		h.logger.DebugContext(ctx, "grammar passed", "language", res.Grammar, "nodes", res.NodeKinds, "duration", res.Duration)
	} else {
		h.logger.DebugContext(ctx, "grammar failed", "language", res.Grammar, "reason", string(res.Reason), "detail", res.Detail)
	}
	if h.metrics == nil {
		return
	}
	h.metrics.GrammarResults.WithLabelValues(string(res.Status), string(res.Reason)).Inc()
	h.metrics.NodeKinds.WithLabelValues(res.Grammar).Set(float64(res.NodeKinds))
	h.metrics.ProbeDuration.WithLabelValues(res.Grammar).Observe(res.Duration.Seconds())
}
