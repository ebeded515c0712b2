package formatter

import (
	"strings"

	"github.com/aledsdavies/educode/core/command"
)

// IndentWidth is the number of spaces per block level in FormatSource output.
const IndentWidth = 2

// FormatSource renders cmds back to program text, one command per line, with
// Repeat bodies indented by IndentWidth spaces per level. Any tree the parser
// can produce survives a FormatSource/parse round trip unchanged; an empty
// Repeat cannot, since a header without a body is not valid source.
func FormatSource(cmds []command.Command) string {
	var b strings.Builder
	command.Walk(cmds, func(c command.Command, level int) bool {
		b.WriteString(strings.Repeat(" ", level*IndentWidth))
		b.WriteString(command.String(c))
		b.WriteString("\n")
		return true
	})
	return b.String()
}
