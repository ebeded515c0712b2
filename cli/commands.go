package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/aledsdavies/educode/core/command"
	"github.com/aledsdavies/educode/core/command/formatter"
	"github.com/aledsdavies/educode/runtime/config"
	"github.com/aledsdavies/educode/runtime/parser"
	"github.com/aledsdavies/educode/runtime/program"
	"github.com/aledsdavies/educode/runtime/samples"
	"github.com/aledsdavies/educode/runtime/session"
	"github.com/aledsdavies/educode/runtime/watch"
	"github.com/spf13/cobra"
)

// env is the resolved configuration for one command invocation: defaults,
// then the config file, then flags.
type env struct {
	cfg      config.Config
	logger   *slog.Logger
	useColor bool
}

func loadEnv(cmd *cobra.Command, flags *globalFlags) (*env, error) {
	cfg := config.Default()
	if flags.configFile != "" {
		loaded, err := config.Load(flags.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if flags.debug {
		cfg.Log.Level = "debug"
	}

	return &env{
		cfg:      cfg,
		logger:   cfg.NewLogger(cmd.ErrOrStderr()),
		useColor: ShouldUseColor(flags.noColor),
	}, nil
}

func (e *env) parserOptions() []parser.ParserOpt {
	return []parser.ParserOpt{
		parser.WithLogger(e.logger),
		parser.WithProgramOptions(
			program.WithMaxIterations(e.cfg.Run.MaxIterations),
			program.WithLogger(e.logger),
		),
	}
}

// loadSource parses the program named by file or builtin.
func (e *env) loadSource(stdin io.Reader, file, builtin string) (string, *program.Program, error) {
	if builtin != "" {
		prog, err := samples.Load(builtin, e.parserOptions()...)
		return builtin, prog, err
	}

	reader, closeFunc, err := getInputReader(file, stdin)
	if err != nil {
		return "", nil, err
	}
	defer func() { _ = closeFunc() }()

	prog, err := parser.ParseReader(reader, e.parserOptions()...)
	return displayName(file), prog, err
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func newRunCmd(flags *globalFlags) *cobra.Command {
	var (
		builtin       string
		size          int
		maxIterations int
		watchFile     bool
	)

	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Run a program and print its trace and end state",
		Args:  sourceArgs(&builtin),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := firstArg(args)
			if watchFile && (file == "" || file == "-") {
				return &CLIError{
					Message: "--watch needs a program file",
					Hint:    "built-in programs and stdin cannot be watched",
				}
			}

			e, err := loadEnv(cmd, flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("size") {
				if size < 1 {
					return &CLIError{Message: fmt.Sprintf("invalid board size %d", size), Hint: "--size must be at least 1"}
				}
				e.cfg.Board.Size = size
			}
			if cmd.Flags().Changed("max-iterations") {
				if maxIterations < 0 {
					return &CLIError{Message: fmt.Sprintf("invalid iteration limit %d", maxIterations), Hint: "use 0 for no limit"}
				}
				e.cfg.Run.MaxIterations = maxIterations
			}

			b, err := e.cfg.NewBoard()
			if err != nil {
				return err
			}
			s := session.New(b,
				session.WithLogger(e.logger),
				session.WithParserOptions(e.parserOptions()...))

			name, prog, err := e.loadSource(cmd.InOrStdin(), file, builtin)
			if err != nil {
				return err
			}
			s.LoadProgram(name, prog)

			runErr := runSession(cmd.OutOrStdout(), s)
			if !watchFile {
				return runErr
			}
			FormatError(cmd.ErrOrStderr(), runErr, e.useColor)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return watch.Run(ctx, file, func(path string) {
				s.Reset()
				if err := s.LoadFile(path); err != nil {
					FormatError(cmd.ErrOrStderr(), err, e.useColor)
					return
				}
				FormatError(cmd.ErrOrStderr(), runSession(cmd.OutOrStdout(), s), e.useColor)
			}, watch.WithLogger(e.logger))
		},
	}

	cmd.Flags().StringVar(&builtin, "builtin", "", "Run a built-in program (see \"educode samples\")")
	cmd.Flags().IntVar(&size, "size", 0, "Board size, overriding the config file")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "Stop after this many executed commands or repeat passes (0 for no limit)")
	cmd.Flags().BoolVar(&watchFile, "watch", false, "Re-run the program whenever the file changes")
	return cmd
}

// runSession runs the loaded program and prints the session output, which is
// set even when the run stops part way.
func runSession(w io.Writer, s *session.Session) error {
	err := s.Run()
	_, _ = fmt.Fprintln(w, s.Output())
	return err
}

func newCheckCmd(flags *globalFlags) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Parse a program without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, flags)
			if err != nil {
				return err
			}
			_, prog, err := e.loadSource(cmd.InOrStdin(), args[0], "")
			if err != nil {
				return err
			}

			if strict {
				if problems := command.CheckDirections(prog.Commands()); len(problems) > 0 {
					for _, p := range problems {
						FormatError(cmd.ErrOrStderr(), p, e.useColor)
					}
					return &CLIError{Message: fmt.Sprintf("%s: %d unknown directions", args[0], len(problems))}
				}
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %d commands, depth %d\n",
				Colorize("ok:", ColorGreen, e.useColor), prog.CommandCount(), prog.MaximumDepth())
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Also reject unknown Turn directions")
	return cmd
}

func newMetricsCmd(flags *globalFlags) *cobra.Command {
	var (
		builtin     string
		fingerprint bool
	)

	cmd := &cobra.Command{
		Use:   "metrics [file]",
		Short: "Print the command count and maximum depth of a program",
		Args:  sourceArgs(&builtin),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, flags)
			if err != nil {
				return err
			}
			b, err := e.cfg.NewBoard()
			if err != nil {
				return err
			}
			name, prog, err := e.loadSource(cmd.InOrStdin(), firstArg(args), builtin)
			if err != nil {
				return err
			}

			s := session.New(b, session.WithLogger(e.logger))
			s.LoadProgram(name, prog)
			s.Metrics()
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), s.Output())

			if fingerprint {
				sum, err := prog.Fingerprint()
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Fingerprint: %x\n", sum)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&builtin, "builtin", "", "Use a built-in program (see \"educode samples\")")
	cmd.Flags().BoolVar(&fingerprint, "fingerprint", false, "Also print the program fingerprint")
	return cmd
}

func newTreeCmd(flags *globalFlags) *cobra.Command {
	var builtin string

	cmd := &cobra.Command{
		Use:   "tree [file]",
		Short: "Print the command tree of a program",
		Args:  sourceArgs(&builtin),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, flags)
			if err != nil {
				return err
			}
			name, prog, err := e.loadSource(cmd.InOrStdin(), firstArg(args), builtin)
			if err != nil {
				return err
			}
			formatter.FormatTree(cmd.OutOrStdout(), name, prog.Commands(), e.useColor)
			return nil
		},
	}

	cmd.Flags().StringVar(&builtin, "builtin", "", "Use a built-in program (see \"educode samples\")")
	return cmd
}

func newSamplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "samples",
		Short: "List the built-in programs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range samples.Names() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
