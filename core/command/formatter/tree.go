// Package formatter renders command trees for people.
package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/aledsdavies/educode/core/command"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
	ColorGray   = "\033[90m"
)

// Colorize wraps text in ANSI color codes if color is enabled
func Colorize(text, color string, useColor bool) string {
	if !useColor {
		return text
	}
	return color + text + ColorReset
}

// FormatTree writes cmds as a tree under a title line:
//
//	square:
//	└─ Repeat 4
//	   ├─ Move 2
//	   └─ Turn Right
func FormatTree(w io.Writer, title string, cmds []command.Command, useColor bool) {
	_, _ = fmt.Fprintf(w, "%s:\n", title)

	if len(cmds) == 0 {
		_, _ = fmt.Fprintf(w, "(no commands)\n")
		return
	}

	renderBlock(w, cmds, "", useColor)
}

func renderBlock(w io.Writer, cmds []command.Command, indent string, useColor bool) {
	for i, c := range cmds {
		isLast := i == len(cmds)-1

		branch, childIndent := "├─ ", indent+"│  "
		if isLast {
			branch, childIndent = "└─ ", indent+"   "
		}

		_, _ = fmt.Fprintf(w, "%s%s%s\n", indent, branch, renderNode(c, useColor))

		if r, ok := c.(command.Repeat); ok {
			renderBlock(w, r.Body(), childIndent, useColor)
		}
	}
}

// renderNode renders a header line with the keyword colored by kind
func renderNode(c command.Command, useColor bool) string {
	text := command.String(c)
	keyword, rest, _ := strings.Cut(text, " ")

	color := ColorBlue
	if _, ok := c.(command.Repeat); ok {
		color = ColorCyan
	}
	return Colorize(keyword, color, useColor) + " " + rest
}
