package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aledsdavies/educode/core/command"
	"github.com/aledsdavies/educode/runtime/parser"
	"github.com/aledsdavies/educode/runtime/program"
)

// CLIError represents a formatted CLI error with context
type CLIError struct {
	Message string
	Details string // Additional context
	Hint    string // How to fix it
}

// Error implements the error interface
func (e *CLIError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Details != "" {
		b.WriteString("\n")
		b.WriteString(e.Details)
	}
	if e.Hint != "" {
		b.WriteString("\n")
		b.WriteString(e.Hint)
	}
	return b.String()
}

// FormatError formats an error for CLI output with colors
func FormatError(w io.Writer, err error, useColor bool) {
	if err == nil {
		return
	}

	var (
		malformed *parser.MalformedSourceError
		direction *command.UnknownDirectionError
		cliErr    *CLIError
	)
	switch {
	case errors.As(err, &malformed):
		formatMalformedSource(w, malformed, useColor)
	case errors.As(err, &direction):
		formatCLIError(w, &CLIError{
			Message: err.Error(),
			Hint:    suggestionHint(direction.Suggestion),
		}, useColor)
	case errors.Is(err, program.ErrIterationLimit):
		formatCLIError(w, &CLIError{
			Message: err.Error(),
			Hint:    "raise --max-iterations or set it to 0 for no limit",
		}, useColor)
	case errors.As(err, &cliErr):
		formatCLIError(w, cliErr, useColor)
	default:
		_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), err.Error())
	}
}

// formatMalformedSource prints the message, the offending line with a caret,
// and a hint when the parser found a close keyword.
func formatMalformedSource(w io.Writer, err *parser.MalformedSourceError, useColor bool) {
	_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), err.Message)

	if snippet := err.Snippet(); snippet != "" {
		_, _ = fmt.Fprintf(w, "%s\n", snippet)
	}

	if hint := suggestionHint(err.Suggestion); hint != "" {
		_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Hint: ", ColorYellow, useColor), hint)
	}
}

// formatCLIError formats CLI errors
func formatCLIError(w io.Writer, err *CLIError, useColor bool) {
	_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), err.Message)

	if err.Details != "" {
		_, _ = fmt.Fprintf(w, "\n%s\n", err.Details)
	}

	if err.Hint != "" {
		_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Hint: ", ColorYellow, useColor), err.Hint)
	}
}

func suggestionHint(suggestion string) string {
	if suggestion == "" {
		return ""
	}
	return fmt.Sprintf("did you mean %q?", suggestion)
}
