package main

import (
	"fmt"
	"io"
	"os"
)

// stdinName is the program name shown for source read from stdin.
const stdinName = "<stdin>"

// getInputReader opens file for reading. "-" selects stdin.
func getInputReader(file string, stdin io.Reader) (io.Reader, func() error, error) {
	if file == "-" {
		return stdin, func() error { return nil }, nil
	}

	f, err := os.Open(file)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening file %s: %w", file, err)
	}
	return f, f.Close, nil
}

func displayName(file string) string {
	if file == "-" {
		return stdinName
	}
	return file
}
