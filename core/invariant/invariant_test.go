package invariant_test

import (
	"fmt"
	"testing"

	"github.com/aledsdavies/educode/core/invariant"
	"github.com/stretchr/testify/assert"
)

type thing struct{}

func panicMessage(f func()) (msg string) {
	defer func() {
		if r := recover(); r != nil {
			msg = fmt.Sprintf("%v", r)
		}
	}()
	f()
	return ""
}

func TestPrecondition(t *testing.T) {
	assert.NotPanics(t, func() { invariant.Precondition(true, "fine") })

	msg := panicMessage(func() { invariant.Precondition(false, "size must be >= 1, got %d", 0) })
	assert.Contains(t, msg, "PRECONDITION VIOLATION")
	assert.Contains(t, msg, "size must be >= 1, got 0")
	assert.Contains(t, msg, "invariant_test.go")
}

func TestInvariant(t *testing.T) {
	assert.NotPanics(t, func() { invariant.Invariant(2 > 1, "ordering") })

	msg := panicMessage(func() { invariant.Invariant(false, "cursor must advance") })
	assert.Contains(t, msg, "INVARIANT VIOLATION: cursor must advance")
}

func TestNotNil(t *testing.T) {
	assert.NotPanics(t, func() { invariant.NotNil(&thing{}, "thing") })

	var typed *thing
	tests := []struct {
		name  string
		value interface{}
	}{
		{"untyped nil", nil},
		{"typed nil pointer", typed},
		{"nil slice", []int(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := panicMessage(func() { invariant.NotNil(tt.value, "board") })
			assert.Contains(t, msg, "board must not be nil")
		})
	}
}

func TestUnreachable(t *testing.T) {
	msg := panicMessage(func() { invariant.Unreachable("unknown command %T", 42) })
	assert.Contains(t, msg, "UNREACHABLE VIOLATION: unknown command int")
}
