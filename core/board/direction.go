package board

import "fmt"

// Direction is the agent's facing. Values are ordered clockwise so that a
// relative turn is modular arithmetic.
type Direction int

const (
	Up Direction = iota
	Right
	Down
	Left
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "Up"
	case Right:
		return "Right"
	case Down:
		return "Down"
	case Left:
		return "Left"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Vector returns the unit step for d. Up is +Y because the origin is the
// bottom-left cell.
func (d Direction) Vector() Vector {
	switch d {
	case Up:
		return Vector{DX: 0, DY: 1}
	case Right:
		return Vector{DX: 1, DY: 0}
	case Down:
		return Vector{DX: 0, DY: -1}
	case Left:
		return Vector{DX: -1, DY: 0}
	default:
		return Vector{}
	}
}

// Rotate turns d clockwise by quarter turns; negative values turn
// counterclockwise.
func (d Direction) Rotate(quarterTurns int) Direction {
	return Direction(((int(d)+quarterTurns)%4 + 4) % 4)
}

// turn tokens. Left and Right are relative to the current facing; from Up they
// coincide with the absolute headings of the same name.
var (
	relativeTurns = map[string]int{
		"Right":  1,
		"Around": 2,
		"Left":   -1,
	}
	absoluteTurns = map[string]Direction{
		"Up":    Up,
		"North": Up,
		"East":  Right,
		"Down":  Down,
		"South": Down,
		"West":  Left,
	}
)

// ResolveTurn interprets a Turn token against the current facing. The second
// result is false when the token is not part of the vocabulary.
func ResolveTurn(current Direction, token string) (Direction, bool) {
	if quarters, ok := relativeTurns[token]; ok {
		return current.Rotate(quarters), true
	}
	if d, ok := absoluteTurns[token]; ok {
		return d, true
	}
	return current, false
}

// TurnTokens lists the accepted Turn tokens in a stable order.
func TurnTokens() []string {
	return []string{"Left", "Right", "Around", "Up", "Down", "North", "East", "South", "West"}
}
