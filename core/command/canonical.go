package command

import (
	"fmt"

	"github.com/aledsdavies/educode/core/invariant"
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

// node kinds in the canonical encoding
const (
	kindMove   = "move"
	kindTurn   = "turn"
	kindRepeat = "repeat"
)

// CanonicalNode is the serialisable form of a Command. Field keys are short
// and fixed so the encoding is stable across releases.
type CanonicalNode struct {
	Kind   string          `cbor:"k"`
	Amount int             `cbor:"a,omitempty"`
	Token  string          `cbor:"t,omitempty"`
	Count  int             `cbor:"n,omitempty"`
	Body   []CanonicalNode `cbor:"b,omitempty"`
}

// Canonicalize converts a command sequence to its canonical form.
func Canonicalize(cmds []Command) []CanonicalNode {
	out := make([]CanonicalNode, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, canonicalize(c))
	}
	return out
}

func canonicalize(c Command) CanonicalNode {
	switch c := c.(type) {
	case Move:
		return CanonicalNode{Kind: kindMove, Amount: c.Amount}
	case Turn:
		return CanonicalNode{Kind: kindTurn, Token: c.Token}
	case Repeat:
		return CanonicalNode{Kind: kindRepeat, Count: c.Count, Body: Canonicalize(c.body)}
	default:
		invariant.Unreachable("unknown command %T", c)
		return CanonicalNode{}
	}
}

// Decanonicalize rebuilds commands from their canonical form.
func Decanonicalize(nodes []CanonicalNode) ([]Command, error) {
	out := make([]Command, 0, len(nodes))
	for i, n := range nodes {
		switch n.Kind {
		case kindMove:
			out = append(out, Move{Amount: n.Amount})
		case kindTurn:
			out = append(out, Turn{Token: n.Token})
		case kindRepeat:
			body, err := Decanonicalize(n.Body)
			if err != nil {
				return nil, fmt.Errorf("repeat body at %d: %w", i, err)
			}
			out = append(out, Repeat{Count: n.Count, body: body})
		default:
			return nil, fmt.Errorf("node %d: unknown kind %q", i, n.Kind)
		}
	}
	return out, nil
}

// Marshal produces the deterministic CBOR encoding of cmds.
func Marshal(cmds []Command) ([]byte, error) {
	encMode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("failed to create CBOR encoder: %w", err)
	}

	data, err := encMode.Marshal(Canonicalize(cmds))
	if err != nil {
		return nil, fmt.Errorf("CBOR encoding failed: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a sequence produced by Marshal.
func Unmarshal(data []byte) ([]Command, error) {
	var nodes []CanonicalNode
	if err := cbor.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("CBOR decoding failed: %w", err)
	}
	return Decanonicalize(nodes)
}

// Fingerprint is the BLAKE2b-256 digest of the canonical encoding. Two trees
// have the same fingerprint exactly when they are structurally equal.
func Fingerprint(cmds []Command) ([32]byte, error) {
	data, err := Marshal(cmds)
	if err != nil {
		return [32]byte{}, err
	}
	return blake2b.Sum256(data), nil
}
