package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"jnigen/internal/names"
)

const configFileName = "jnigen.toml"

type projectConfig struct {
	Output   outputConfig   `toml:"output"`
	Generate generateConfig `toml:"generate"`
	Tools    toolsConfig    `toml:"tools"`
	Cache    cacheConfig    `toml:"cache"`
}

type outputConfig struct {
	Dir        string `toml:"dir"`
	RootObject string `toml:"root_object"`
	Indent     int    `toml:"indent"`
	Tabs       bool   `toml:"tabs"`
}

type generateConfig struct {
	Jobs       int    `toml:"jobs"`
	Containers string `toml:"containers"`
}

type toolsConfig struct {
	Cargo        string `toml:"cargo"`
	Format       bool   `toml:"format"`
	StrictFormat bool   `toml:"strict_format"`
}

type cacheConfig struct {
	Enabled bool `toml:"enabled"`
}

// loadedConfig is the effective configuration and where it came from.
type loadedConfig struct {
	Path   string
	Config projectConfig
}

func defaultConfig() projectConfig {
	return projectConfig{
		Output:   outputConfig{Dir: "codegen", Indent: 4},
		Generate: generateConfig{Jobs: 1, Containers: "pascal"},
		Tools:    toolsConfig{Cargo: "cargo", Format: true},
		Cache:    cacheConfig{Enabled: true},
	}
}

func (c projectConfig) indentUnit() string {
	if c.Output.Tabs {
		return "\t"
	}
	return strings.Repeat(" ", c.Output.Indent)
}

func (c projectConfig) containerConvention() (names.Convention, error) {
	return names.ParseConvention(c.Generate.Containers)
}

func findConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// resolveConfig loads explicit when set, otherwise the nearest jnigen.toml
// above startDir, otherwise the defaults. A relative output dir is taken
// relative to the file that sets it.
func resolveConfig(explicit, startDir string) (loadedConfig, error) {
	path := explicit
	if path == "" {
		found, ok, err := findConfig(startDir)
		if err != nil {
			return loadedConfig{}, err
		}
		if !ok {
			return loadedConfig{Config: defaultConfig()}, nil
		}
		path = found
	}
	cfg, err := loadConfig(path)
	if err != nil {
		return loadedConfig{}, err
	}
	return loadedConfig{Path: path, Config: cfg}, nil
}

func loadConfig(path string) (projectConfig, error) {
	cfg := defaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return projectConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return projectConfig{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("output", "dir") {
		if strings.TrimSpace(cfg.Output.Dir) == "" {
			return projectConfig{}, fmt.Errorf("%s: [output].dir must not be empty", path)
		}
		if !filepath.IsAbs(cfg.Output.Dir) {
			cfg.Output.Dir = filepath.Join(filepath.Dir(path), cfg.Output.Dir)
		}
	}
	if meta.IsDefined("output", "indent") && (cfg.Output.Indent < 1 || cfg.Output.Indent > 16) {
		return projectConfig{}, fmt.Errorf("%s: [output].indent must be between 1 and 16", path)
	}
	if meta.IsDefined("output", "root_object") && !isIdentifier(cfg.Output.RootObject) {
		return projectConfig{}, fmt.Errorf("%s: [output].root_object %q is not an identifier", path, cfg.Output.RootObject)
	}
	if meta.IsDefined("generate", "jobs") && cfg.Generate.Jobs < 1 {
		return projectConfig{}, fmt.Errorf("%s: [generate].jobs must be at least 1", path)
	}
	if _, err := cfg.containerConvention(); err != nil {
		return projectConfig{}, fmt.Errorf("%s: [generate].containers: %w", path, err)
	}
	if meta.IsDefined("tools", "cargo") && strings.TrimSpace(cfg.Tools.Cargo) == "" {
		return projectConfig{}, fmt.Errorf("%s: [tools].cargo must not be empty", path)
	}
	if cfg.Tools.StrictFormat && !cfg.Tools.Format {
		return projectConfig{}, fmt.Errorf("%s: [tools].strict_format requires format = true", path)
	}
	return cfg, nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// isLibraryName accepts identifiers with inner hyphens, as cargo does for
// crate names.
func isLibraryName(s string) bool {
	if strings.HasPrefix(s, "-") || strings.HasSuffix(s, "-") {
		return false
	}
	return isIdentifier(strings.ReplaceAll(s, "-", "_"))
}

const defaultConfigTemplate = `# jnigen project configuration

[output]
# directory holding one crate per library
dir = "codegen"
# top-level Kotlin object; defaults to the library name in PascalCase
# root_object = "Bindings"
indent = 4
tabs = false

[generate]
# parallel per-function generation
jobs = 1
# Kotlin object naming for Rust modules: pascal | pass
containers = "pascal"

[tools]
cargo = "cargo"
# run cargo clippy --fix and cargo fmt on the generated crate
format = true
# treat formatting failures as errors
strict_format = false

[cache]
enabled = true
`
