// Package invariant provides contract assertions for EduCode.
//
// Assertions guard programming errors, not user errors: a malformed program
// text is reported through an error value, while a nil board or an unknown
// command variant is a bug and panics here.
package invariant

import (
	"fmt"
	"reflect"
	"runtime"
)

// Precondition checks an input contract at function entry.
//
//	func (p *Program) Run(b *board.Board) error {
//	    invariant.NotNil(b, "board")
//	    ...
//	}
func Precondition(condition bool, format string, args ...interface{}) {
	if !condition {
		fail("PRECONDITION", format, args...)
	}
}

// Invariant checks internal consistency while a function is running, such
// as the parser cursor advancing on every loop iteration.
func Invariant(condition bool, format string, args ...interface{}) {
	if !condition {
		fail("INVARIANT", format, args...)
	}
}

// NotNil panics if value is nil, including typed nils such as (*Board)(nil).
func NotNil(value interface{}, name string) {
	if isNil(value) {
		fail("PRECONDITION", "%s must not be nil", name)
	}
}

// Unreachable marks the default branch of an exhaustive type switch.
func Unreachable(format string, args ...interface{}) {
	fail("UNREACHABLE", format, args...)
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return v.IsNil()
	default:
		return false
	}
}

// fail panics with the violation kind and the caller's file:line.
func fail(kind, format string, args ...interface{}) {
	pc := make([]uintptr, 10)
	n := runtime.Callers(3, pc)
	frames := runtime.CallersFrames(pc[:n])

	msg := fmt.Sprintf("%s VIOLATION: "+format, append([]interface{}{kind}, args...)...)
	if frame, ok := frames.Next(); ok {
		msg += fmt.Sprintf("\n  at %s:%d", frame.File, frame.Line)
	}

	panic(msg)
}
