// Package config resolves runtime options from defaults, an optional
// YAML file, and ERRGEN_ environment variables. CLI flags override all
// three.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	DefaultGlob   = "**/*.go"
	DefaultSuffix = "_errgen"

	envPrefix = "ERRGEN_"
)

// Config stores runtime options for one generation run.
type Config struct {
	In     string `koanf:"in"`
	Glob   string `koanf:"glob"`
	Suffix string `koanf:"suffix"`

	ReportJSON string `koanf:"report_json"`
	ReportCSV  string `koanf:"report_csv"`

	Strict bool `koanf:"strict"`
	DryRun bool `koanf:"dry_run"`
}

// Default returns baseline configuration values used by CLI flags.
func Default() Config {
	return Config{
		Glob:   DefaultGlob,
		Suffix: DefaultSuffix,
	}
}

// Load layers defaults, the optional YAML file at path, and ERRGEN_
// environment variables (ERRGEN_REPORT_JSON maps to report_json).
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Set("glob", DefaultGlob); err != nil {
		return Config{}, fmt.Errorf("seed default glob: %w", err)
	}
	if err := k.Set("suffix", DefaultSuffix); err != nil {
		return Config{}, fmt.Errorf("seed default suffix: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %q: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load environment overrides: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decode configuration: %w", err)
	}
	return cfg, nil
}

// Validate normalizes and checks the configuration before execution.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.In) == "" {
		return fmt.Errorf("--in is required")
	}

	if strings.TrimSpace(c.Glob) == "" {
		c.Glob = DefaultGlob
	}
	c.Suffix = strings.TrimSpace(c.Suffix)
	if c.Suffix == "" {
		c.Suffix = DefaultSuffix
	}
	if strings.ContainsAny(c.Suffix, `/\.`) {
		return fmt.Errorf("--suffix must be a bare file-name fragment, got %q", c.Suffix)
	}

	c.In = filepath.Clean(c.In)

	info, err := os.Stat(c.In)
	if err != nil {
		return fmt.Errorf("input path %q is not accessible: %w", c.In, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("input path %q must be a directory", c.In)
	}

	return nil
}
