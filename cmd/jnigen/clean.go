package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"jnigen/internal/cache"
)

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean [lib]",
		Short: "Remove generated crates",
		Long: `Remove the generated crate of [lib] from the output directory, or the
whole output directory when no library is named. --cache also empties the
generation cache. The working directory and its parents are never removed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runClean,
	}
	cmd.Flags().String("out", "", "output directory (default from jnigen.toml, else codegen)")
	cmd.Flags().Bool("cache", false, "also drop the generation cache")
	return cmd
}

func runClean(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Root().PersistentFlags().GetString("config")
	loaded, err := resolveConfig(configPath, ".")
	if err != nil {
		return err
	}
	outDir := loaded.Config.Output.Dir
	if cmd.Flags().Changed("out") {
		outDir, _ = cmd.Flags().GetString("out")
	}
	target := outDir
	if len(args) == 1 {
		if !isLibraryName(args[0]) {
			return fmt.Errorf("library name %q must be an identifier", args[0])
		}
		target = filepath.Join(outDir, args[0])
	}

	if err := checkRemovable(target); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	info, err := os.Stat(target)
	switch {
	case errors.Is(err, os.ErrNotExist):
		fmt.Fprintf(out, "%s not found\n", displayPath(target))
	case err != nil:
		return fmt.Errorf("failed to stat %q: %w", target, err)
	case !info.IsDir():
		return fmt.Errorf("%q is not a directory", target)
	default:
		if err := os.RemoveAll(target); err != nil {
			return fmt.Errorf("failed to remove %q: %w", target, err)
		}
		fmt.Fprintf(out, "removed %s\n", displayPath(target))
	}

	if dropCache, _ := cmd.Flags().GetBool("cache"); dropCache {
		c, err := cache.Open("jnigen")
		if err != nil {
			return err
		}
		if err := c.DropAll(); err != nil {
			return fmt.Errorf("failed to drop cache: %w", err)
		}
		fmt.Fprintf(out, "dropped cache %s\n", c.Dir())
	}
	return nil
}

// checkRemovable refuses targets that contain the working directory, so a
// stray --out . cannot wipe the project.
func checkRemovable(target string) error {
	abs, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("failed to resolve %q: %w", target, err)
	}
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	rel, err := filepath.Rel(abs, wd)
	if err != nil {
		return nil
	}
	if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
		return fmt.Errorf("refusing to remove %q: it contains the working directory", target)
	}
	return nil
}
