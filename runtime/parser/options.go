package parser

import (
	"log/slog"
	"time"

	"github.com/aledsdavies/educode/runtime/program"
)

// ParserOpt represents a parser configuration option
type ParserOpt func(*ParserConfig)

// ParserConfig holds parser configuration
type ParserConfig struct {
	logger      *slog.Logger
	programOpts []program.Option
}

// WithLogger traces block entry and exit at debug level.
func WithLogger(l *slog.Logger) ParserOpt {
	return func(c *ParserConfig) {
		c.logger = l
	}
}

// WithProgramOptions passes options through to the Program built from a
// successful parse.
func WithProgramOptions(opts ...program.Option) ParserOpt {
	return func(c *ParserConfig) {
		c.programOpts = append(c.programOpts, opts...)
	}
}

// ParseTelemetry holds parse metrics
type ParseTelemetry struct {
	LineCount    int           // Lines in the source, blank ones included
	BlankLines   int           // Blank or whitespace-only lines skipped
	CommandCount int           // Nodes in the resulting tree
	MaxDepth     int           // Deepest Repeat nesting
	ParseTime    time.Duration // Wall time of the parse
}

func newConfig(opts []ParserOpt) *ParserConfig {
	config := &ParserConfig{}
	for _, opt := range opts {
		opt(config)
	}
	if config.logger == nil {
		config.logger = slog.New(slog.DiscardHandler)
	}
	return config
}
