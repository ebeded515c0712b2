package parser

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/aledsdavies/educode/core/board"
	"github.com/aledsdavies/educode/core/command"
	"github.com/aledsdavies/educode/core/command/formatter"
	"github.com/aledsdavies/educode/runtime/program"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// treeOpts compares command trees including Repeat bodies
var treeOpts = cmp.AllowUnexported(command.Repeat{})

func mustParse(t *testing.T, src string, opts ...ParserOpt) *program.Program {
	t.Helper()
	prog, err := ParseString(src, opts...)
	require.NoError(t, err)
	require.NotNil(t, prog)
	return prog
}

func TestParseFlatProgram(t *testing.T) {
	prog := mustParse(t, "Move 3\nTurn Right\nMove 2")

	want := []command.Command{
		command.Move{Amount: 3},
		command.Turn{Token: "Right"},
		command.Move{Amount: 2},
	}
	if diff := cmp.Diff(want, prog.Commands(), treeOpts); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 3, prog.CommandCount())
	assert.Equal(t, 0, prog.MaximumDepth())
}

func TestParseRepeatBlock(t *testing.T) {
	prog := mustParse(t, "Repeat 2\n  Move 1\n  Turn Right")

	want := []command.Command{
		command.NewRepeat(2, command.Move{Amount: 1}, command.Turn{Token: "Right"}),
	}
	if diff := cmp.Diff(want, prog.Commands(), treeOpts); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 3, prog.CommandCount())
	assert.Equal(t, 1, prog.MaximumDepth())

	b := board.New(5)
	require.NoError(t, prog.Run(b))
	assert.Equal(t, []string{"Move 1", "Turn Right", "Move 1", "Turn Right"}, prog.Trace())
	assert.Equal(t, board.Position{X: 1, Y: 1}, b.Position())
	assert.Equal(t, board.Down, b.Direction())
}

func TestParseRepeatZeroRunsNothing(t *testing.T) {
	prog := mustParse(t, "Repeat 0\n  Move 5")
	assert.Equal(t, 2, prog.CommandCount())

	b := board.New(5)
	require.NoError(t, prog.Run(b))
	assert.Equal(t, board.Position{}, b.Position())
	assert.Equal(t, board.Up, b.Direction())
	assert.Empty(t, prog.TextualTrace())
}

func TestParseEmptySource(t *testing.T) {
	for _, src := range []string{"", "\n", "   \n\n  \t \n"} {
		prog := mustParse(t, src)
		assert.Equal(t, 0, prog.CommandCount())
		assert.Equal(t, 0, prog.MaximumDepth())

		b := board.New(5)
		require.NoError(t, prog.Run(b))
		assert.Equal(t, board.Position{}, b.Position())
		assert.Empty(t, prog.TextualTrace())
	}
}

func TestParseStructure(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []command.Command
	}{
		{
			name:  "sibling repeats stay siblings",
			input: "Repeat 2\n  Move 1\nRepeat 3\n  Turn Left",
			want: []command.Command{
				command.NewRepeat(2, command.Move{Amount: 1}),
				command.NewRepeat(3, command.Turn{Token: "Left"}),
			},
		},
		{
			name: "dedent closes several levels",
			input: `Repeat 2
  Repeat 3
    Repeat 4
      Move 1
Move 9`,
			want: []command.Command{
				command.NewRepeat(2, command.NewRepeat(3, command.NewRepeat(4, command.Move{Amount: 1}))),
				command.Move{Amount: 9},
			},
		},
		{
			name: "dedent by one level continues the enclosing block",
			input: `Repeat 2
  Repeat 3
    Move 1
  Turn Right
Move 4`,
			want: []command.Command{
				command.NewRepeat(2,
					command.NewRepeat(3, command.Move{Amount: 1}),
					command.Turn{Token: "Right"},
				),
				command.Move{Amount: 4},
			},
		},
		{
			name:  "line after a closed block is not skipped",
			input: "Repeat 2\n  Move 1\nTurn Left\nMove 2",
			want: []command.Command{
				command.NewRepeat(2, command.Move{Amount: 1}),
				command.Turn{Token: "Left"},
				command.Move{Amount: 2},
			},
		},
		{
			name:  "blank lines do not affect blocks",
			input: "\nRepeat 2\n\n    \n    Move 1\n\n    Move 2\n\nMove 3\n",
			want: []command.Command{
				command.NewRepeat(2, command.Move{Amount: 1}, command.Move{Amount: 2}),
				command.Move{Amount: 3},
			},
		},
		{
			name:  "body width is set by its first line",
			input: "Repeat 2\n      Move 1\n      Move 2",
			want: []command.Command{
				command.NewRepeat(2, command.Move{Amount: 1}, command.Move{Amount: 2}),
			},
		},
		{
			name:  "negative numbers and extra spaces between tokens",
			input: "Move   -4\nRepeat  -1\n  Turn\tAround",
			want: []command.Command{
				command.Move{Amount: -4},
				command.NewRepeat(-1, command.Turn{Token: "Around"}),
			},
		},
		{
			name:  "crlf line endings",
			input: "Repeat 2\r\n  Move 1\r\n",
			want: []command.Command{
				command.NewRepeat(2, command.Move{Amount: 1}),
			},
		},
		{
			name:  "unknown turn tokens parse",
			input: "Turn Sideways",
			want:  []command.Command{command.Turn{Token: "Sideways"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := mustParse(t, tt.input)
			if diff := cmp.Diff(tt.want, prog.Commands(), treeOpts); diff != "" {
				t.Errorf("tree mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		line       int
		column     int
		message    string
		suggestion string
	}{
		{
			name:    "indent without repeat",
			input:   "Move 1\n  Move 2",
			line:    2,
			column:  3,
			message: "invalid indentation: expected 0 spaces, got 2",
		},
		{
			name:    "repeat without body",
			input:   "Repeat 2",
			line:    1,
			column:  1,
			message: "repeat has no body",
		},
		{
			name:    "repeat followed only by blank lines",
			input:   "Move 1\nRepeat 2\n\n   ",
			line:    2,
			column:  1,
			message: "repeat has no body",
		},
		{
			name:    "nested repeat without body",
			input:   "Repeat 2\n  Repeat 3\n",
			line:    2,
			column:  3,
			message: "repeat has no body",
		},
		{
			name:    "repeat body not indented",
			input:   "Repeat 2\nMove 1",
			line:    2,
			column:  1,
			message: "repeat body must be indented more than its header (0 spaces), got 0",
		},
		{
			name:    "dedent to a width no block uses",
			input:   "Repeat 2\n    Move 1\n  Move 2",
			line:    3,
			column:  3,
			message: "invalid indentation: expected 0 spaces, got 2",
		},
		{
			name:    "deeper line inside a block",
			input:   "Repeat 2\n  Move 1\n    Move 2",
			line:    3,
			column:  5,
			message: "invalid indentation: expected 2 spaces, got 4",
		},
		{
			name:       "unknown command",
			input:      "Move 1\nmove 2",
			line:       2,
			column:     1,
			message:    `invalid command "move"`,
			suggestion: "Move",
		},
		{
			name:    "unknown command without suggestion",
			input:   "Jump 2",
			line:    1,
			column:  1,
			message: `invalid command "Jump"`,
		},
		{
			name:    "move without argument",
			input:   "Move",
			line:    1,
			column:  1,
			message: "invalid move command: expected 1 argument, got 0",
		},
		{
			name:    "turn with two arguments",
			input:   "Repeat 1\n  Turn Left Right",
			line:    2,
			column:  3,
			message: "invalid turn command: expected 1 argument, got 2",
		},
		{
			name:    "move with non-integer",
			input:   "Move three",
			line:    1,
			column:  6,
			message: `invalid move command: "three" is not an integer`,
		},
		{
			name:    "repeat count shares letters with keyword",
			input:   "Repeat e\n  Move 1",
			line:    1,
			column:  8,
			message: `invalid repeat command: "e" is not an integer`,
		},
		{
			name:    "tab indentation",
			input:   "Repeat 2\n\tMove 1",
			line:    2,
			column:  1,
			message: "tabs are not allowed in indentation",
		},
		{
			name:    "tab after spaces",
			input:   "Repeat 2\n  Move 1\n  \tMove 2",
			line:    3,
			column:  3,
			message: "tabs are not allowed in indentation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := ParseString(tt.input)

			require.Error(t, err)
			assert.Nil(t, prog, "no partial program on failure")
			assert.True(t, errors.Is(err, ErrMalformedSource))

			var mse *MalformedSourceError
			require.ErrorAs(t, err, &mse)
			assert.Equal(t, tt.line, mse.Line, "line")
			assert.Equal(t, tt.column, mse.Column, "column")
			assert.Equal(t, tt.message, mse.Message)
			assert.Equal(t, tt.suggestion, mse.Suggestion)
			assert.Equal(t, SplitLines(tt.input)[tt.line-1], mse.Source)
		})
	}
}

func TestMalformedSourceErrorFormatting(t *testing.T) {
	_, err := ParseString("Move 1\nMvoe 2")
	require.Error(t, err)

	var mse *MalformedSourceError
	require.ErrorAs(t, err, &mse)
	assert.Equal(t, `line 2:1: invalid command "Mvoe" (did you mean "Move"?)`, err.Error())

	expected := "  --> 2:1\n   |\n 2 | Mvoe 2\n   | ^"
	if diff := cmp.Diff(expected, mse.Snippet()); diff != "" {
		t.Errorf("snippet mismatch (-want +got):\n%s", diff)
	}
}

func TestParseIsDeterministic(t *testing.T) {
	src := "Move 1\nRepeat 3\n  Turn Left\n  Repeat 2\n    Move 2\nTurn Around\n"

	a := mustParse(t, src)
	b := mustParse(t, src)

	assert.Equal(t, a.CommandCount(), b.CommandCount())
	assert.Equal(t, a.MaximumDepth(), b.MaximumDepth())
	fa, err := a.Fingerprint()
	require.NoError(t, err)
	fb, err := b.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fa, fb)

	// structural queries are idempotent
	assert.Equal(t, a.CommandCount(), a.CommandCount())
	assert.Equal(t, 6, a.CommandCount())
	assert.Equal(t, 2, a.MaximumDepth())
}

func TestFormatSourceRoundTrip(t *testing.T) {
	src := "Move 1\nRepeat 3\n    Turn Left\n    Repeat 2\n        Move -2\nTurn Around"
	prog := mustParse(t, src)

	again := mustParse(t, formatter.FormatSource(prog.Commands()))

	if diff := cmp.Diff(prog.Commands(), again.Commands(), treeOpts); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParseReader(t *testing.T) {
	prog, err := ParseReader(strings.NewReader("Repeat 4\n  Move 1\n  Turn Right\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, prog.CommandCount())
}

func TestParseWithTelemetry(t *testing.T) {
	lines := SplitLines("Move 1\n\nRepeat 2\n  Move 1\n   \n  Turn Right")

	prog, telemetry, err := ParseWithTelemetry(lines)
	require.NoError(t, err)
	require.NotNil(t, prog)

	assert.Equal(t, 6, telemetry.LineCount)
	assert.Equal(t, 2, telemetry.BlankLines)
	assert.Equal(t, 4, telemetry.CommandCount)
	assert.Equal(t, 1, telemetry.MaxDepth)
}

func TestParseWithProgramOptions(t *testing.T) {
	prog := mustParse(t, "Repeat 100\n  Move 1", WithProgramOptions(program.WithMaxIterations(5)))

	err := prog.Run(board.New(5))
	assert.ErrorIs(t, err, program.ErrIterationLimit)
	assert.Len(t, prog.Trace(), 5)
}

func TestParseLogsBlocks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	mustParse(t, "Repeat 2\n  Move 1", WithLogger(logger))

	out := buf.String()
	assert.Contains(t, out, `msg="enter block"`)
	assert.Contains(t, out, `msg="exit block"`)
	assert.Contains(t, out, `msg="parse finished"`)
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, SplitLines(""))
	assert.Equal(t, []string{"a"}, SplitLines("a\n"))
	assert.Equal(t, []string{"a", "", "b"}, SplitLines("a\r\n\r\nb"))
}
