package parser

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedSource is matched by every *MalformedSourceError.
var ErrMalformedSource = errors.New("malformed source")

// MalformedSourceError reports a syntactic or structural problem in program
// text. Parsing never returns a partial program alongside it.
type MalformedSourceError struct {
	Line       int    // 1-based line number
	Column     int    // 1-based column of the offending text
	Message    string // what is wrong
	Source     string // the offending line
	Suggestion string // closest valid keyword, if any
}

func (e *MalformedSourceError) Error() string {
	msg := fmt.Sprintf("line %d:%d: %s", e.Line, e.Column, e.Message)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

func (e *MalformedSourceError) Is(target error) bool {
	return target == ErrMalformedSource
}

// Snippet renders the offending line with a caret under the error column:
//
//	  --> 2:3
//	   |
//	 2 |   Move 2
//	   |   ^
func (e *MalformedSourceError) Snippet() string {
	if e.Line == 0 {
		return ""
	}

	var snippet strings.Builder
	snippet.WriteString(fmt.Sprintf("  --> %d:%d\n", e.Line, e.Column))
	snippet.WriteString("   |\n")
	snippet.WriteString(fmt.Sprintf("%2d | %s\n", e.Line, e.Source))
	snippet.WriteString("   | ")
	if e.Column > 0 && e.Column <= len(e.Source)+1 {
		snippet.WriteString(strings.Repeat(" ", e.Column-1) + "^")
	}
	return snippet.String()
}
