package formatter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aledsdavies/educode/core/command"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestFormatTree_Empty(t *testing.T) {
	var buf bytes.Buffer
	FormatTree(&buf, "empty", nil, false)

	expected := "empty:\n(no commands)\n"
	if diff := cmp.Diff(expected, buf.String()); diff != "" {
		t.Errorf("Output mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatTree_Nested(t *testing.T) {
	cmds := []command.Command{
		command.Move{Amount: 3},
		command.NewRepeat(2,
			command.NewRepeat(4, command.Move{Amount: 1}),
			command.Turn{Token: "Right"},
		),
		command.Turn{Token: "Left"},
	}

	var buf bytes.Buffer
	FormatTree(&buf, "demo", cmds, false)

	expected := `demo:
├─ Move 3
├─ Repeat 2
│  ├─ Repeat 4
│  │  └─ Move 1
│  └─ Turn Right
└─ Turn Left
`
	if diff := cmp.Diff(expected, buf.String()); diff != "" {
		t.Errorf("Output mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatTree_EmptyRepeat(t *testing.T) {
	var buf bytes.Buffer
	FormatTree(&buf, "x", []command.Command{command.NewRepeat(3)}, false)

	assert.Equal(t, "x:\n└─ Repeat 3\n", buf.String())
}

func TestFormatTree_Color(t *testing.T) {
	var buf bytes.Buffer
	FormatTree(&buf, "c", []command.Command{
		command.NewRepeat(1, command.Move{Amount: 2}),
	}, true)

	out := buf.String()
	assert.Contains(t, out, ColorCyan+"Repeat"+ColorReset+" 1")
	assert.Contains(t, out, ColorBlue+"Move"+ColorReset+" 2")
}

func TestColorize(t *testing.T) {
	assert.Equal(t, "plain", Colorize("plain", ColorRed, false))
	assert.Equal(t, ColorRed+"err"+ColorReset, Colorize("err", ColorRed, true))
}

func TestFormatSource(t *testing.T) {
	cmds := []command.Command{
		command.NewRepeat(2,
			command.Move{Amount: -1},
			command.NewRepeat(3, command.Turn{Token: "Around"}),
		),
		command.Move{Amount: 4},
	}

	expected := strings.Join([]string{
		"Repeat 2",
		"  Move -1",
		"  Repeat 3",
		"    Turn Around",
		"Move 4",
		"",
	}, "\n")
	assert.Equal(t, expected, FormatSource(cmds))
	assert.Equal(t, "", FormatSource(nil))
}
