// Package program wraps a parsed command tree and runs it against a board.
package program

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aledsdavies/educode/core/board"
	"github.com/aledsdavies/educode/core/command"
	"github.com/aledsdavies/educode/core/invariant"
	"github.com/google/uuid"
)

// TraceSeparator joins trace entries in TextualTrace.
const TraceSeparator = ", "

// ErrIterationLimit is returned by Run when a configured ceiling on executed
// leaf commands or Repeat passes is reached.
var ErrIterationLimit = errors.New("iteration limit reached")

// Option configures a Program.
type Option func(*Config)

// Config holds program configuration
type Config struct {
	// MaxIterations caps, separately, the leaf commands and the Repeat passes
	// a single Run may execute. Zero means unlimited.
	MaxIterations int
	Logger        *slog.Logger
}

// WithMaxIterations sets a per-Run ceiling on executed leaf commands and on
// Repeat passes, so loops whose bodies run no leaf are bounded too.
func WithMaxIterations(n int) Option {
	return func(c *Config) {
		c.MaxIterations = n
	}
}

// WithLogger sets the logger used for run tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// RunStats describes the most recent Run.
type RunStats struct {
	ID       string        // unique per run, used to correlate log lines
	Steps    int           // leaf commands executed
	Duration time.Duration // wall time of the run
	Err      error         // nil when the run completed
}

// Program is an immutable command tree plus the trace of its latest run.
type Program struct {
	commands []command.Command
	config   Config

	trace   []string
	lastRun RunStats
}

// New wraps cmds. The slice is copied; later changes to cmds are not seen.
func New(cmds []command.Command, opts ...Option) *Program {
	config := Config{}
	for _, opt := range opts {
		opt(&config)
	}
	invariant.Precondition(config.MaxIterations >= 0, "max iterations must be >= 0, got %d", config.MaxIterations)
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}

	owned := make([]command.Command, len(cmds))
	copy(owned, cmds)
	return &Program{commands: owned, config: config}
}

// Commands returns a copy of the top-level commands.
func (p *Program) Commands() []command.Command {
	out := make([]command.Command, len(p.commands))
	copy(out, p.commands)
	return out
}

// CommandCount is the number of nodes in the tree, nested ones included.
func (p *Program) CommandCount() int {
	return command.CountAll(p.commands)
}

// MaximumDepth is the deepest nesting over the top-level commands.
func (p *Program) MaximumDepth() int {
	return command.MaxDepth(p.commands)
}

// Fingerprint identifies the tree structure; see command.Fingerprint.
func (p *Program) Fingerprint() ([32]byte, error) {
	return command.Fingerprint(p.commands)
}

// Run executes the program against b. The trace of any previous run is
// discarded first. On error, effects and trace entries recorded before the
// failing command are kept.
func (p *Program) Run(b *board.Board) error {
	invariant.NotNil(b, "board")

	rec := &traceRecorder{limit: p.config.MaxIterations}
	id := uuid.NewString()
	logger := p.config.Logger.With("run_id", id)
	logger.Debug("run started", "commands", p.CommandCount(), "board", b.String())

	start := time.Now()
	err := command.ExecuteAll(p.commands, b, rec)

	p.trace = rec.entries
	p.lastRun = RunStats{
		ID:       id,
		Steps:    len(rec.entries),
		Duration: time.Since(start),
		Err:      err,
	}

	if err != nil {
		logger.Debug("run failed", "steps", len(rec.entries), "error", err)
		return err
	}
	logger.Debug("run finished", "steps", len(rec.entries), "board", b.String(), "duration", p.lastRun.Duration)
	return nil
}

// Trace returns a copy of the entries recorded by the latest run.
func (p *Program) Trace() []string {
	out := make([]string, len(p.trace))
	copy(out, p.trace)
	return out
}

// TextualTrace is the latest run's trace as one line.
func (p *Program) TextualTrace() string {
	return strings.Join(p.trace, TraceSeparator)
}

// LastRun describes the latest run. It is the zero value before the first run.
func (p *Program) LastRun() RunStats {
	return p.lastRun
}

// traceRecorder collects leaf entries and enforces the iteration ceiling
type traceRecorder struct {
	entries []string
	passes  int
	limit   int
}

func (r *traceRecorder) Record(entry string) error {
	if r.limit > 0 && len(r.entries) >= r.limit {
		return fmt.Errorf("%w: stopped after %d commands", ErrIterationLimit, r.limit)
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *traceRecorder) Iterate() error {
	if r.limit > 0 && r.passes >= r.limit {
		return fmt.Errorf("%w: stopped after %d repeat passes", ErrIterationLimit, r.limit)
	}
	r.passes++
	return nil
}
