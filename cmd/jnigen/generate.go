package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"jnigen/internal/buildpipeline"
	"jnigen/internal/cache"
	"jnigen/internal/cargo"
	"jnigen/internal/trace"
	"jnigen/internal/version"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <lib> <manifest> <java_package>",
		Short: "Generate a Rust JNI crate and Kotlin bindings from a manifest",
		Long: `Generate reads a JSON (or TOML) manifest of Rust functions and writes
<out>/<lib>/src/lib.rs with one JNI entry point per function and
<out>/<lib>/kotlin/<Root>.kt with the matching Kotlin declarations, nested
in objects that mirror the Rust module paths.

The crate is scaffolded with cargo (new, add) and tidied with clippy --fix
and fmt unless --emit-only or --no-format is given.`,
		Example: "  jnigen generate mylib manifest.json com.example",
		Args:    cobra.ExactArgs(3),
		RunE:    runGenerate,
	}
	f := cmd.Flags()
	f.String("out", "", "output directory (default from jnigen.toml, else codegen)")
	f.String("root-object", "", "name of the top-level Kotlin object (default: library name in PascalCase)")
	f.String("containers", "", "Kotlin object naming for Rust modules (pascal|pass|camel)")
	f.Int("indent", 0, "spaces per Kotlin nesting level")
	f.Int("jobs", 0, "parallel per-function generation (default 1)")
	f.Bool("emit-only", false, "write sources without running cargo")
	f.Bool("no-format", false, "skip cargo clippy --fix and cargo fmt")
	f.Bool("strict-format", false, "fail when formatting fails")
	f.Bool("print-commands", false, "print external commands before running them")
	f.Bool("no-cache", false, "ignore and do not update the generation cache")
	f.String("ui", "auto", "progress UI (auto|on|off)")
	return cmd
}

type generateArgs struct {
	library  string
	manifest string
	pkg      string
}

func parseGenerateArgs(args []string) (generateArgs, error) {
	ga := generateArgs{library: args[0], manifest: args[1], pkg: args[2]}
	if !isLibraryName(ga.library) {
		return ga, fmt.Errorf("library name %q must be an identifier (hyphens allowed)", ga.library)
	}
	for _, part := range strings.Split(ga.pkg, ".") {
		if !isIdentifier(part) {
			return ga, fmt.Errorf("java package %q is not a dotted identifier", ga.pkg)
		}
	}
	return ga, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ga, err := parseGenerateArgs(args)
	if err != nil {
		return err
	}
	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	req, uiSetting, err := buildRequest(cmd, ga)
	if err != nil {
		return err
	}
	display, err := parseProgressDisplay(uiSetting)
	if err != nil {
		return err
	}
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	showTimings, _ := cmd.Root().PersistentFlags().GetBool("timings")
	useTUI := display.interactive(quiet)

	printCommands, _ := cmd.Flags().GetBool("print-commands")
	runner := cargo.ExecRunner{PrintCommands: printCommands && !useTUI, Echo: cmd.OutOrStdout()}
	if !quiet && !useTUI {
		runner.Stdout = cmd.ErrOrStderr()
	}
	if !req.EmitOnly {
		tc := cargo.New(req.OutputRoot, runner)
		tc.Binary = req.cargoBinary
		req.Toolchain = tc
	}

	ctx := cmd.Context()
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "generate", 0)
	ctx = trace.WithSpan(ctx, span)

	var res buildpipeline.BuildResult
	if useTUI {
		res, err = runBuildWithUI(ctx, cmd.OutOrStdout(), "generate "+ga.library, &req.BuildRequest)
	} else {
		res, err = buildpipeline.Build(ctx, &req.BuildRequest)
	}
	span.End(errDetail(err))
	if err != nil {
		dumpTraceRing(cmd)
		return err
	}

	out := cmd.OutOrStdout()
	if res.FormatErr != nil {
		color.New(color.FgYellow).Fprintf(cmd.ErrOrStderr(), "warning: formatting failed: %v\n", res.FormatErr)
	}
	if !quiet {
		printSummary(out, res)
	}
	if showTimings {
		return printStageTimings(out, res.Timings)
	}
	return nil
}

type generateRequest struct {
	buildpipeline.BuildRequest
	cargoBinary string
}

// buildRequest merges jnigen.toml with explicitly set flags.
func buildRequest(cmd *cobra.Command, ga generateArgs) (*generateRequest, string, error) {
	configPath, _ := cmd.Root().PersistentFlags().GetString("config")
	loaded, err := resolveConfig(configPath, ".")
	if err != nil {
		return nil, "", err
	}
	cfg := loaded.Config
	f := cmd.Flags()

	if f.Changed("out") {
		cfg.Output.Dir, _ = f.GetString("out")
	}
	if f.Changed("root-object") {
		cfg.Output.RootObject, _ = f.GetString("root-object")
		if !isIdentifier(cfg.Output.RootObject) {
			return nil, "", fmt.Errorf("--root-object %q is not an identifier", cfg.Output.RootObject)
		}
	}
	if f.Changed("containers") {
		cfg.Generate.Containers, _ = f.GetString("containers")
	}
	if f.Changed("indent") {
		cfg.Output.Indent, _ = f.GetInt("indent")
		cfg.Output.Tabs = false
		if cfg.Output.Indent < 1 || cfg.Output.Indent > 16 {
			return nil, "", fmt.Errorf("--indent must be between 1 and 16")
		}
	}
	if f.Changed("jobs") {
		cfg.Generate.Jobs, _ = f.GetInt("jobs")
		if cfg.Generate.Jobs < 1 {
			return nil, "", fmt.Errorf("--jobs must be at least 1")
		}
	}
	if noFormat, _ := f.GetBool("no-format"); noFormat {
		cfg.Tools.Format = false
	}
	if strict, _ := f.GetBool("strict-format"); strict {
		cfg.Tools.StrictFormat = true
	}
	if noCache, _ := f.GetBool("no-cache"); noCache {
		cfg.Cache.Enabled = false
	}
	conv, err := cfg.containerConvention()
	if err != nil {
		return nil, "", err
	}
	emitOnly, _ := f.GetBool("emit-only")
	uiSetting, _ := f.GetString("ui")

	req := &generateRequest{
		BuildRequest: buildpipeline.BuildRequest{
			GenerateRequest: buildpipeline.GenerateRequest{
				Package:    ga.pkg,
				Library:    ga.library,
				RootObject: cfg.Output.RootObject,
				Indent:     cfg.indentUnit(),
				Containers: conv,
				Jobs:       cfg.Generate.Jobs,
			},
			ManifestPath: ga.manifest,
			OutputRoot:   cfg.Output.Dir,
			Version:      version.Fingerprint(),
			EmitOnly:     emitOnly,
			Format:       cfg.Tools.Format,
			StrictFormat: cfg.Tools.StrictFormat,
		},
		cargoBinary: cfg.Tools.Cargo,
	}
	if cfg.Cache.Enabled {
		c, err := cache.Open("jnigen")
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "cache disabled: %v\n", err)
		} else {
			req.Cache = c
		}
	}
	return req, uiSetting, nil
}

func printSummary(out io.Writer, res buildpipeline.BuildResult) {
	ok := color.New(color.FgGreen, color.Bold)
	note := ""
	if res.CacheHit {
		note = " (cached)"
	}
	ok.Fprint(out, "generated")
	fmt.Fprintf(out, " %d %s in %d %s%s\n",
		res.Functions, plural(int(res.Functions), "function"),
		res.Containers, plural(int(res.Containers), "object"), note)
	fmt.Fprintf(out, "  %s\n  %s\n", displayPath(res.NativePath), displayPath(res.ManagedPath))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func displayPath(p string) string {
	wd, err := os.Getwd()
	if err != nil {
		return p
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	if rel, err := filepath.Rel(wd, abs); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return p
}

func errDetail(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
