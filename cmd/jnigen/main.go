package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"jnigen/internal/trace"
	"jnigen/internal/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the full command tree with fresh flag state.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "jnigen",
		Short: "Generate JNI bindings for Rust functions",
		Long: `jnigen reads a manifest of Rust functions and generates a cdylib crate of
JNI entry points together with the Kotlin declarations that call them.`,
		Version:           version.Version,
		PersistentPreRunE: prepareRun,
	}
	rootCmd.AddCommand(newGenerateCmd(), newInitCmd(), newCleanCmd(), newVersionCmd())

	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show stage timings")
	pf.String("config", "", "path to jnigen.toml (default: nearest one above the working directory)")

	pf.String("trace", "", "write trace events to file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	pf.Int("trace-ring-size", trace.DefaultRingSize, "events kept in ring mode")

	pf.String("cpu-profile", "", "write a CPU profile to file")
	pf.String("mem-profile", "", "write a heap profile to file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to file")
	return rootCmd
}

// prepareRun runs once arguments have been validated: usage text is kept
// for arity and flag errors and silenced for failures of the run itself.
func prepareRun(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	return applyColorMode(cmd, args)
}

func applyColorMode(cmd *cobra.Command, _ []string) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch strings.ToLower(mode) {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto", "":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
