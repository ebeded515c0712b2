package command

import (
	"github.com/aledsdavies/educode/core/board"
	"github.com/aledsdavies/educode/core/invariant"
)

// Recorder receives one entry per leaf command, before the leaf's effect is
// applied. A non-nil error aborts execution and the leaf has no effect.
type Recorder interface {
	Record(entry string) error
}

// LoopGuard is an optional Recorder extension consulted before every Repeat
// pass. A non-nil error aborts execution before the pass runs.
type LoopGuard interface {
	Iterate() error
}

// Execute applies c to b. Execution stops at the first error; effects already
// applied stay applied.
func Execute(c Command, b *board.Board, rec Recorder) error {
	invariant.NotNil(b, "board")
	invariant.NotNil(rec, "recorder")

	switch c := c.(type) {
	case Move:
		if err := rec.Record(String(c)); err != nil {
			return err
		}
		b.Advance(c.Amount)
		return nil

	case Turn:
		facing, ok := board.ResolveTurn(b.Direction(), c.Token)
		if !ok {
			return newUnknownDirection(c.Token)
		}
		if err := rec.Record(String(c)); err != nil {
			return err
		}
		b.Face(facing)
		return nil

	case Repeat:
		guard, _ := rec.(LoopGuard)
		// Count <= 0 runs nothing.
		for i := 0; i < c.Count; i++ {
			if guard != nil {
				if err := guard.Iterate(); err != nil {
					return err
				}
			}
			if err := ExecuteAll(c.body, b, rec); err != nil {
				return err
			}
		}
		return nil

	default:
		invariant.Unreachable("unknown command %T", c)
		return nil
	}
}

// ExecuteAll runs cmds in order against b.
func ExecuteAll(cmds []Command, b *board.Board, rec Recorder) error {
	for _, c := range cmds {
		if err := Execute(c, b, rec); err != nil {
			return err
		}
	}
	return nil
}
