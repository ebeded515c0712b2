package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := newRootCmd(os.Stdin)
	if err := rootCmd.Execute(); err != nil {
		FormatError(os.Stderr, err, ShouldUseColor(noColorFlag(rootCmd)))
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configFile string
	debug      bool
	noColor    bool
}

func newRootCmd(stdin io.Reader) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "educode [command]",
		Short:         "Run EduCode programs on a square board",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.SetIn(stdin)

	rootCmd.PersistentFlags().StringVar(&flags.configFile, "config", "", "Path to a TOML or YAML config file")
	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Enable debug output")
	rootCmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		newRunCmd(flags),
		newCheckCmd(flags),
		newMetricsCmd(flags),
		newTreeCmd(flags),
		newSamplesCmd(),
	)
	return rootCmd
}

func noColorFlag(cmd *cobra.Command) bool {
	v, err := cmd.PersistentFlags().GetBool("no-color")
	return err == nil && v
}

// sourceArgs validates the "[file] or --builtin" pair most commands accept.
func sourceArgs(builtin *string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
			return err
		}
		switch {
		case len(args) == 1 && *builtin != "":
			return &CLIError{
				Message: "both a file and --builtin were given",
				Hint:    "pass a file path or --builtin, not both",
			}
		case len(args) == 0 && *builtin == "":
			return &CLIError{
				Message: "no program given",
				Hint:    fmt.Sprintf("pass a file path, - for stdin, or --builtin (see %q)", "educode samples"),
			}
		}
		return nil
	}
}
