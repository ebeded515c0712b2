package command

import (
	"errors"
	"fmt"

	"github.com/aledsdavies/educode/core/board"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ErrUnknownDirection is matched by every *UnknownDirectionError.
var ErrUnknownDirection = errors.New("unknown direction")

// UnknownDirectionError reports a Turn token outside the direction vocabulary.
type UnknownDirectionError struct {
	Token      string
	Suggestion string // closest known token, if any
}

func (e *UnknownDirectionError) Error() string {
	msg := fmt.Sprintf("unknown direction %q", e.Token)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

func (e *UnknownDirectionError) Is(target error) bool {
	return target == ErrUnknownDirection
}

func newUnknownDirection(token string) *UnknownDirectionError {
	return &UnknownDirectionError{
		Token:      token,
		Suggestion: ClosestMatch(token, board.TurnTokens()),
	}
}

// ClosestMatch returns the best fuzzy match for target among candidates, or
// "" when nothing matches.
func ClosestMatch(target string, candidates []string) string {
	if target == "" || len(candidates) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) == 0 {
		return ""
	}
	best := ranks[0]
	for _, r := range ranks[1:] {
		if r.Distance < best.Distance {
			best = r
		}
	}
	return best.Target
}

// CheckDirections reports every Turn in cmds whose token would fail at
// execution time. Parsing never rejects these; this is an optional static pass.
func CheckDirections(cmds []Command) []error {
	var errs []error
	Walk(cmds, func(c Command, _ int) bool {
		if t, ok := c.(Turn); ok {
			if _, known := board.ResolveTurn(board.Up, t.Token); !known {
				errs = append(errs, newUnknownDirection(t.Token))
			}
		}
		return true
	})
	return errs
}
