// Package board holds the state of the agent commanded by EduCode programs.
//
// A Board is owned by exactly one running program at a time and is not safe
// for concurrent use.
package board

import (
	"fmt"
	"math"

	"github.com/aledsdavies/educode/core/invariant"
)

// Property names passed to observers.
const (
	PropertyPosition  = "Position"
	PropertyDirection = "Direction"
)

// Position is a cell on the board.
type Position struct {
	X, Y int
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Add offsets p by v scaled by n. Coordinates saturate at the int range
// instead of wrapping.
func (p Position) Add(v Vector, n int) Position {
	return Position{
		X: saturatingAdd(p.X, saturatingMul(v.DX, n)),
		Y: saturatingAdd(p.Y, saturatingMul(v.DY, n)),
	}
}

// Vector is a displacement between cells.
type Vector struct {
	DX, DY int
}

// Bounds selects what happens when a move leaves the grid.
type Bounds int

const (
	Clamp     Bounds = iota // stop at the edge (default)
	Unbounded               // allow any coordinate
)

func (b Bounds) String() string {
	switch b {
	case Clamp:
		return "clamp"
	case Unbounded:
		return "unbounded"
	default:
		return fmt.Sprintf("Bounds(%d)", int(b))
	}
}

// ParseBounds maps a config value onto a Bounds policy.
func ParseBounds(s string) (Bounds, error) {
	switch s {
	case "", "clamp":
		return Clamp, nil
	case "unbounded":
		return Unbounded, nil
	default:
		return Clamp, fmt.Errorf("unknown bounds policy %q (want clamp or unbounded)", s)
	}
}

// Observer is notified with the name of the property that changed.
type Observer func(property string)

// Option configures a Board.
type Option func(*Board)

// WithBounds sets the bounds policy.
func WithBounds(b Bounds) Option {
	return func(bd *Board) {
		bd.bounds = b
	}
}

// Board is a square grid with a single agent.
type Board struct {
	size      int
	bounds    Bounds
	position  Position
	direction Direction
	observers []Observer
}

// New creates a board of the given size with the agent at the origin facing Up.
func New(size int, opts ...Option) *Board {
	invariant.Precondition(size >= 1, "board size must be >= 1, got %d", size)

	b := &Board{size: size}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Board) Size() int { return b.size }

func (b *Board) Bounds() Bounds { return b.bounds }

func (b *Board) Position() Position { return b.position }

func (b *Board) Direction() Direction { return b.direction }

// Subscribe registers an observer for position and direction changes.
func (b *Board) Subscribe(o Observer) {
	invariant.NotNil(o, "observer")
	b.observers = append(b.observers, o)
}

// Advance moves the agent n cells along its facing. Negative n moves backward.
func (b *Board) Advance(n int) {
	b.setPosition(b.position.Add(b.direction.Vector(), n))
}

// Face sets the facing direction.
func (b *Board) Face(d Direction) {
	invariant.Precondition(d >= Up && d <= Left, "invalid direction %d", int(d))
	if d == b.direction {
		return
	}
	b.direction = d
	b.notify(PropertyDirection)
}

// Reset returns the agent to the origin facing Up. Size and bounds are kept.
func (b *Board) Reset() {
	b.setPosition(Position{})
	b.Face(Up)
}

func (b *Board) String() string {
	return fmt.Sprintf("position %s facing %s", b.position, b.direction)
}

func (b *Board) setPosition(p Position) {
	if b.bounds == Clamp {
		p.X = clamp(p.X, 0, b.size-1)
		p.Y = clamp(p.Y, 0, b.size-1)
	}
	if p == b.position {
		return
	}
	b.position = p
	b.notify(PropertyPosition)
}

func (b *Board) notify(property string) {
	for _, o := range b.observers {
		o(property)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func saturatingMul(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	c := a * b
	overflow := c/b != a ||
		(a == -1 && b == math.MinInt) ||
		(b == -1 && a == math.MinInt)
	if !overflow {
		return c
	}
	if (a < 0) != (b < 0) {
		return math.MinInt
	}
	return math.MaxInt
}

func saturatingAdd(a, b int) int {
	c := a + b
	switch {
	case b > 0 && c < a:
		return math.MaxInt
	case b < 0 && c > a:
		return math.MinInt
	default:
		return c
	}
}
