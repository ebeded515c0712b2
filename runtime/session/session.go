// Package session is the headless controller behind the EduCode front ends.
//
// A Session owns one board and at most one loaded program. Its actions are
// Load, Run, Reset and Metrics, and Output holds the text a front end shows
// after each of them.
package session

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aledsdavies/educode/core/board"
	"github.com/aledsdavies/educode/core/invariant"
	"github.com/aledsdavies/educode/runtime/parser"
	"github.com/aledsdavies/educode/runtime/program"
	"github.com/aledsdavies/educode/runtime/samples"
)

// Property names passed to observers. Board changes are forwarded with the
// board's own property names.
const (
	PropertyOutput  = "Output"
	PropertyProgram = "Program"
)

// Observer is notified with the name of a changed property.
type Observer func(property string)

// Session holds the board, the loaded program and the latest output.
type Session struct {
	board       *board.Board
	program     *program.Program
	programName string
	output      string

	parserOpts []parser.ParserOpt
	logger     *slog.Logger
	observers  []Observer
}

// Option configures a Session.
type Option func(*Session)

// WithParserOptions applies opts to every program the session loads.
func WithParserOptions(opts ...parser.ParserOpt) Option {
	return func(s *Session) {
		s.parserOpts = append(s.parserOpts, opts...)
	}
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// New creates a session around b.
func New(b *board.Board, opts ...Option) *Session {
	invariant.NotNil(b, "board")

	s := &Session{board: b}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	b.Subscribe(func(property string) { s.notify(property) })
	return s
}

func (s *Session) Position() board.Position { return s.board.Position() }

func (s *Session) Direction() board.Direction { return s.board.Direction() }

func (s *Session) Size() int { return s.board.Size() }

func (s *Session) Board() *board.Board { return s.board }

// Program returns the loaded program, or nil.
func (s *Session) Program() *program.Program { return s.program }

// ProgramName is the built-in name or file path of the loaded program.
func (s *Session) ProgramName() string { return s.programName }

// Output is the text produced by the latest Run or Metrics action.
func (s *Session) Output() string { return s.output }

// Subscribe registers an observer for board, program and output changes.
func (s *Session) Subscribe(o Observer) {
	invariant.NotNil(o, "observer")
	s.observers = append(s.observers, o)
}

// LoadBuiltin replaces the loaded program with a built-in one.
func (s *Session) LoadBuiltin(name string) error {
	prog, err := samples.Load(name, s.parserOpts...)
	if err != nil {
		return err
	}
	s.setProgram(name, prog)
	return nil
}

// LoadFile replaces the loaded program with the one at path. On error the
// current program is kept.
func (s *Session) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	prog, err := parser.ParseReader(f, s.parserOpts...)
	if err != nil {
		return err
	}
	s.setProgram(path, prog)
	return nil
}

// LoadProgram replaces the loaded program with an already parsed one.
func (s *Session) LoadProgram(name string, prog *program.Program) {
	invariant.NotNil(prog, "program")
	s.setProgram(name, prog)
}

// Run executes the loaded program against the board. It does nothing when no
// program is loaded. Output is updated even when the run fails part way.
func (s *Session) Run() error {
	if s.program == nil {
		return nil
	}
	err := s.program.Run(s.board)
	s.setOutput(fmt.Sprintf("Textual trace: %s\nEnd state: %s", s.program.TextualTrace(), s.board))
	if err != nil {
		s.logger.Warn("run failed", "program", s.programName, "error", err)
	}
	return err
}

// Reset returns the board to its initial state. The program and output stay.
func (s *Session) Reset() {
	s.board.Reset()
}

// Metrics writes the loaded program's structural metrics to Output. It does
// nothing when no program is loaded.
func (s *Session) Metrics() {
	if s.program == nil {
		return
	}
	s.setOutput(fmt.Sprintf("Command count: %d\nMaximum command depth: %d",
		s.program.CommandCount(), s.program.MaximumDepth()))
}

func (s *Session) setProgram(name string, prog *program.Program) {
	s.program = prog
	s.programName = name
	s.logger.Debug("program loaded", "program", name, "commands", prog.CommandCount())
	s.notify(PropertyProgram)
}

func (s *Session) setOutput(out string) {
	s.output = out
	s.notify(PropertyOutput)
}

func (s *Session) notify(property string) {
	for _, o := range s.observers {
		o(property)
	}
}
