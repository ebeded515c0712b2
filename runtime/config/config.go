// Package config loads EduCode settings from TOML or YAML files.
//
// A file is decoded twice: first into a generic document that is checked
// against the embedded JSON Schema, then into Config on top of Default so
// that omitted keys keep their default values.
package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/aledsdavies/educode/core/board"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// SupportedMajor is the config format major version this build reads.
const SupportedMajor = "v1"

// DebugEnv forces debug logging when set to any non-empty value.
const DebugEnv = "EDUCODE_DEBUG"

//go:embed schema.json
var schemaJSON string

const schemaURL = "educode.schema.json"

// Format is a config file syntax.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "toml"
}

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return FormatTOML, fmt.Errorf("unsupported config extension %q (want .toml, .yaml or .yml)", filepath.Ext(path))
	}
}

// Config holds the complete application configuration
type Config struct {
	Version string      `toml:"version" yaml:"version"`
	Board   BoardConfig `toml:"board" yaml:"board"`
	Run     RunConfig   `toml:"run" yaml:"run"`
	Log     LogConfig   `toml:"log" yaml:"log"`
}

// BoardConfig holds board settings
type BoardConfig struct {
	Size   int    `toml:"size" yaml:"size"`
	Bounds string `toml:"bounds" yaml:"bounds"`
}

// RunConfig holds execution settings
type RunConfig struct {
	MaxIterations int `toml:"max_iterations" yaml:"max_iterations"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Version: "v1.0.0",
		Board: BoardConfig{
			Size:   5,
			Bounds: board.Clamp.String(),
		},
		Run: RunConfig{
			MaxIterations: 0,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads and validates the config file at path.
func Load(path string) (Config, error) {
	format, err := FormatFor(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data, format)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates config data.
func Parse(data []byte, format Format) (Config, error) {
	var doc map[string]interface{}
	if err := unmarshal(data, format, &doc); err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", format, err)
	}
	if err := validateDocument(doc); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := unmarshal(data, format, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", format, err)
	}
	if err := cfg.checkVersion(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func unmarshal(data []byte, format Format, v interface{}) error {
	if format == FormatYAML {
		return yaml.Unmarshal(data, v)
	}
	return toml.Unmarshal(data, v)
}

func (c Config) checkVersion() error {
	if !semver.IsValid(c.Version) {
		return fmt.Errorf("config version %q is not a valid semantic version", c.Version)
	}
	if major := semver.Major(c.Version); major != SupportedMajor {
		return fmt.Errorf("config version %s is not supported (want %s.x)", c.Version, SupportedMajor)
	}
	return nil
}

// validateDocument checks a decoded document against the embedded schema
func validateDocument(doc map[string]interface{}) error {
	schema, err := compileSchema()
	if err != nil {
		return err
	}

	// Round-trip through JSON so TOML and YAML values arrive as JSON types.
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("config marshal failed: %w", err)
	}
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return fmt.Errorf("config unmarshal failed: %w", err)
	}
	if value == nil {
		value = map[string]interface{}{}
	}

	if err := schema.Validate(value); err != nil {
		return convertValidationError(err)
	}
	return nil
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("schema load failed: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("schema compilation failed: %w", err)
	}
	return schema, nil
}

// convertValidationError flattens a jsonschema error tree into one line per
// failing value.
func convertValidationError(err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err
	}

	var problems []string
	var collect func(*jsonschema.ValidationError)
	collect = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			problems = append(problems, fmt.Sprintf("%s: %s", loc, e.Message))
			return
		}
		for _, c := range e.Causes {
			collect(c)
		}
	}
	collect(ve)

	return fmt.Errorf("invalid config:\n- %s", strings.Join(problems, "\n- "))
}

// BoardOptions converts the board section into board options.
func (c Config) BoardOptions() ([]board.Option, error) {
	bounds, err := board.ParseBounds(c.Board.Bounds)
	if err != nil {
		return nil, err
	}
	return []board.Option{board.WithBounds(bounds)}, nil
}

// NewBoard builds a board from the board section.
func (c Config) NewBoard() (*board.Board, error) {
	opts, err := c.BoardOptions()
	if err != nil {
		return nil, err
	}
	return board.New(c.Board.Size, opts...), nil
}

// LogLevel maps the log section onto an slog level. DebugEnv overrides it.
func (c Config) LogLevel() slog.Level {
	if os.Getenv(DebugEnv) != "" {
		return slog.LevelDebug
	}
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger returns a text logger on w without time or level attributes.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: c.LogLevel(),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}
