// Package samples ships the built-in example programs.
package samples

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/aledsdavies/educode/runtime/parser"
	"github.com/aledsdavies/educode/runtime/program"
)

// Extension is the file extension of EduCode programs.
const Extension = ".edu"

//go:embed programs/*.edu
var programs embed.FS

// Names lists the built-in programs in alphabetical order.
func Names() []string {
	entries, err := fs.ReadDir(programs, "programs")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), Extension) {
			names = append(names, strings.TrimSuffix(e.Name(), Extension))
		}
	}
	sort.Strings(names)
	return names
}

// Source returns the text of a built-in program.
func Source(name string) (string, error) {
	data, err := programs.ReadFile(path.Join("programs", name+Extension))
	if err != nil {
		return "", fmt.Errorf("unknown program %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return string(data), nil
}

// Load parses a built-in program.
func Load(name string, opts ...parser.ParserOpt) (*program.Program, error) {
	src, err := Source(name)
	if err != nil {
		return nil, err
	}
	prog, err := parser.ParseString(src, opts...)
	if err != nil {
		return nil, fmt.Errorf("built-in program %q: %w", name, err)
	}
	return prog, nil
}
