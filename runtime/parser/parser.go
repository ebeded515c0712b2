// Package parser turns indented EduCode source into a command tree.
//
// The grammar is line oriented. Each non-blank line holds one command and its
// leading spaces are significant:
//
//	Move 3
//	Repeat 4
//	  Move 1
//	  Turn Right
//
// A block is opened only by a Repeat header; the next non-blank line fixes
// the block's indentation and every following line at that indentation
// belongs to it. A shallower line closes the block.
//
// That first body line must be indented deeper than its header. A flat body
// such as
//
//	Repeat 2
//	Move 1
//
// is rejected with "repeat body must be indented more than its header",
// rather than letting the Repeat take every following line at the header's
// own indentation as its body.
package parser

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/aledsdavies/educode/core/command"
	"github.com/aledsdavies/educode/core/invariant"
	"github.com/aledsdavies/educode/runtime/program"
)

// Command keywords
const (
	KeywordMove   = "Move"
	KeywordTurn   = "Turn"
	KeywordRepeat = "Repeat"
)

// Keywords lists the command keywords in grammar order.
func Keywords() []string {
	return []string{KeywordMove, KeywordTurn, KeywordRepeat}
}

// Parse parses source lines into a Program.
func Parse(lines []string, opts ...ParserOpt) (*program.Program, error) {
	prog, _, err := ParseWithTelemetry(lines, opts...)
	return prog, err
}

// ParseString splits src into lines and parses it. Both \n and \r\n line
// endings are accepted.
func ParseString(src string, opts ...ParserOpt) (*program.Program, error) {
	return Parse(SplitLines(src), opts...)
}

// ParseReader reads all of r and parses it.
func ParseReader(r io.Reader, opts ...ParserOpt) (*program.Program, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return ParseString(string(data), opts...)
}

// ParseWithTelemetry parses lines and also reports parse metrics.
func ParseWithTelemetry(lines []string, opts ...ParserOpt) (*program.Program, *ParseTelemetry, error) {
	config := newConfig(opts)
	start := time.Now()

	p := newBlockParser(lines, config.logger)
	cmds, err := p.parseBlock()
	if err != nil {
		config.logger.Debug("parse failed", "error", err)
		return nil, nil, err
	}
	invariant.Invariant(len(p.indents) == 0, "indentation stack must be empty after parse, got %v", p.indents)
	invariant.Invariant(p.pos == len(lines), "parse stopped at line %d of %d", p.pos, len(lines))

	telemetry := &ParseTelemetry{
		LineCount:    len(lines),
		BlankLines:   p.blank,
		CommandCount: command.CountAll(cmds),
		MaxDepth:     command.MaxDepth(cmds),
		ParseTime:    time.Since(start),
	}
	config.logger.Debug("parse finished",
		"lines", telemetry.LineCount,
		"commands", telemetry.CommandCount,
		"depth", telemetry.MaxDepth)

	return program.New(cmds, config.programOpts...), telemetry, nil
}

// SplitLines splits program text into lines. A trailing newline does not
// produce an extra line.
func SplitLines(src string) []string {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	src = strings.TrimSuffix(src, "\n")
	if src == "" {
		return nil
	}
	return strings.Split(src, "\n")
}

// blockParser is the working state of one parse: the source lines, a cursor,
// and a stack of indentation widths, one per open block. Each call to
// parseBlock pops exactly the frame it was entered with.
type blockParser struct {
	lines   []string
	pos     int
	indents []int
	blank   int
	logger  *slog.Logger
}

func newBlockParser(lines []string, logger *slog.Logger) *blockParser {
	return &blockParser{
		lines:   lines,
		indents: []int{0},
		logger:  logger,
	}
}

// parseBlock collects the commands of the innermost open block. It returns at
// end of input or when a line is indented less than the block, leaving that
// line unconsumed for the enclosing block.
func (p *blockParser) parseBlock() ([]command.Command, error) {
	invariant.Precondition(len(p.indents) > 0, "parseBlock needs an open block")

	expected := p.indents[len(p.indents)-1]
	p.logger.Debug("enter block", "line", p.pos+1, "indent", expected, "level", len(p.indents)-1)

	var cmds []command.Command
	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		if isBlank(line) {
			p.blank++
			p.pos++
			continue
		}

		actual, err := p.indentAt(p.pos)
		if err != nil {
			return nil, err
		}

		if actual < expected {
			break
		}
		if actual > expected {
			return nil, p.errorAt(p.pos, actual+1,
				"invalid indentation: expected %d spaces, got %d", expected, actual)
		}

		prevPos := p.pos
		cmd, err := p.parseCommand()
		if err != nil {
			return nil, err
		}
		invariant.Invariant(p.pos > prevPos, "cursor must advance past line %d", prevPos+1)
		cmds = append(cmds, cmd)
	}

	p.indents = p.indents[:len(p.indents)-1]
	p.logger.Debug("exit block", "line", p.pos+1, "indent", expected, "commands", len(cmds))
	return cmds, nil
}

// parseCommand parses the line under the cursor and advances past it. For a
// Repeat the cursor ends after the whole body.
func (p *blockParser) parseCommand() (command.Command, error) {
	line := p.lines[p.pos]
	fields := strings.Fields(line)
	keyword, args := fields[0], fields[1:]

	switch keyword {
	case KeywordMove:
		amount, err := p.intArg(keyword, args)
		if err != nil {
			return nil, err
		}
		p.pos++
		return command.Move{Amount: amount}, nil

	case KeywordTurn:
		if err := p.checkArity(keyword, args); err != nil {
			return nil, err
		}
		p.pos++
		// The token is checked when the Turn executes, not here.
		return command.Turn{Token: args[0]}, nil

	case KeywordRepeat:
		count, err := p.intArg(keyword, args)
		if err != nil {
			return nil, err
		}
		return p.parseRepeat(count)

	default:
		e := p.errorAt(p.pos, columnOf(line, keyword), "invalid command %q", keyword)
		e.Suggestion = command.ClosestMatch(keyword, Keywords())
		return nil, e
	}
}

// parseRepeat opens a block at the indentation of the next non-blank line and
// parses it as the Repeat body.
func (p *blockParser) parseRepeat(count int) (command.Command, error) {
	header := p.pos
	headerIndent := p.indents[len(p.indents)-1]

	next := p.nextNonBlank(header + 1)
	if next == len(p.lines) {
		return nil, p.errorAt(header, headerIndent+1, "repeat has no body")
	}
	bodyIndent, err := p.indentAt(next)
	if err != nil {
		return nil, err
	}
	if bodyIndent <= headerIndent {
		return nil, p.errorAt(next, bodyIndent+1,
			"repeat body must be indented more than its header (%d spaces), got %d", headerIndent, bodyIndent)
	}

	p.indents = append(p.indents, bodyIndent)
	p.pos = header + 1

	depth := len(p.indents)
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	invariant.Invariant(len(p.indents) == depth-1, "repeat body must close its own block")

	return command.NewRepeat(count, body...), nil
}

func (p *blockParser) checkArity(keyword string, args []string) error {
	if len(args) != 1 {
		line := p.lines[p.pos]
		return p.errorAt(p.pos, columnOf(line, keyword),
			"invalid %s command: expected 1 argument, got %d", strings.ToLower(keyword), len(args))
	}
	return nil
}

func (p *blockParser) intArg(keyword string, args []string) (int, error) {
	if err := p.checkArity(keyword, args); err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, p.errorAt(p.pos, argColumn(p.lines[p.pos], keyword, args[0]),
			"invalid %s command: %q is not an integer", strings.ToLower(keyword), args[0])
	}
	return n, nil
}

// indentAt counts the leading spaces of line i. Tabs in the indentation are
// rejected rather than guessed at.
func (p *blockParser) indentAt(i int) (int, error) {
	line := p.lines[i]
	n := indentWidth(line)
	if n < len(line) && line[n] == '\t' {
		return 0, p.errorAt(i, n+1, "tabs are not allowed in indentation")
	}
	return n, nil
}

func (p *blockParser) nextNonBlank(from int) int {
	i := from
	for i < len(p.lines) && isBlank(p.lines[i]) {
		i++
	}
	return i
}

func (p *blockParser) errorAt(line, column int, format string, args ...interface{}) *MalformedSourceError {
	return &MalformedSourceError{
		Line:    line + 1,
		Column:  column,
		Message: fmt.Sprintf(format, args...),
		Source:  p.lines[line],
	}
}

func indentWidth(line string) int {
	n := 0
	for n < len(line) && line[n] == ' ' {
		n++
	}
	return n
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// columnOf is the 1-based column of the first occurrence of word in line.
func columnOf(line, word string) int {
	return strings.Index(line, word) + 1
}

// argColumn is the 1-based column of the first argument after keyword.
func argColumn(line, keyword, arg string) int {
	after := strings.Index(line, keyword) + len(keyword)
	return after + strings.Index(line[after:], arg) + 1
}
