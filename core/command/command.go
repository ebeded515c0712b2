// Package command defines the EduCode command tree.
//
// Command is a closed set of three variants: Move, Turn and Repeat. The
// marker method is unexported so no other package can add a variant, and
// every operation over the tree (Execute, Depth, Count, String, Walk) is a
// single exhaustive type switch.
//
// Commands are immutable. A Repeat owns its body; NewRepeat copies the slice
// it is given and Body returns a copy.
package command

import (
	"fmt"

	"github.com/aledsdavies/educode/core/invariant"
)

// Command is one node of a program tree.
type Command interface {
	isCommand()
}

// Move advances the agent Amount cells along its facing.
type Move struct {
	Amount int
}

// Turn reorients the agent. Token is interpreted at execution time.
type Turn struct {
	Token string
}

// Repeat runs its body Count times.
type Repeat struct {
	Count int
	body  []Command
}

func (Move) isCommand()   {}
func (Turn) isCommand()   {}
func (Repeat) isCommand() {}

// NewRepeat builds a Repeat that owns a copy of body.
func NewRepeat(count int, body ...Command) Repeat {
	owned := make([]Command, len(body))
	copy(owned, body)
	return Repeat{Count: count, body: owned}
}

// Body returns a copy of the repeated commands.
func (r Repeat) Body() []Command {
	out := make([]Command, len(r.body))
	copy(out, r.body)
	return out
}

func (m Move) String() string   { return String(m) }
func (t Turn) String() string   { return String(t) }
func (r Repeat) String() string { return String(r) }

// String renders the header line of c as it appears in source.
func String(c Command) string {
	switch c := c.(type) {
	case Move:
		return fmt.Sprintf("Move %d", c.Amount)
	case Turn:
		return "Turn " + c.Token
	case Repeat:
		return fmt.Sprintf("Repeat %d", c.Count)
	default:
		invariant.Unreachable("unknown command %T", c)
		return ""
	}
}

// Depth is the nesting depth of c: 0 for leaves, one more than the deepest
// child for a Repeat, and 1 for an empty Repeat.
func Depth(c Command) int {
	switch c := c.(type) {
	case Move, Turn:
		return 0
	case Repeat:
		return 1 + MaxDepth(c.body)
	default:
		invariant.Unreachable("unknown command %T", c)
		return 0
	}
}

// MaxDepth is the largest Depth in cmds, or 0 when cmds is empty.
func MaxDepth(cmds []Command) int {
	deepest := 0
	for _, c := range cmds {
		if d := Depth(c); d > deepest {
			deepest = d
		}
	}
	return deepest
}

// Count is the number of nodes in the subtree rooted at c, c included.
func Count(c Command) int {
	switch c := c.(type) {
	case Move, Turn:
		return 1
	case Repeat:
		return 1 + CountAll(c.body)
	default:
		invariant.Unreachable("unknown command %T", c)
		return 0
	}
}

// CountAll sums Count over cmds.
func CountAll(cmds []Command) int {
	total := 0
	for _, c := range cmds {
		total += Count(c)
	}
	return total
}

// Walk visits cmds in source order, depth first. level is 0 for the top-level
// sequence. Returning false from fn skips the children of that node.
func Walk(cmds []Command, fn func(c Command, level int) bool) {
	walk(cmds, 0, fn)
}

func walk(cmds []Command, level int, fn func(Command, int) bool) {
	for _, c := range cmds {
		descend := fn(c, level)
		switch c := c.(type) {
		case Move, Turn:
		case Repeat:
			if descend {
				walk(c.body, level+1, fn)
			}
		default:
			invariant.Unreachable("unknown command %T", c)
		}
	}
}
