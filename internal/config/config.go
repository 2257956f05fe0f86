// Package config loads dspec project configuration from file,
// environment, and flags.
package config

import (
	"fmt"
	"sort"

	"github.com/dspeclang/dspec/pkg/diag"
)

// Default configuration values.
const (
	DefaultSchemaDir = "schemas"
	DefaultOutput    = "table"
	DefaultExt       = ".dspec"
)

// Config holds all resolved configuration options.
type Config struct {
	// SchemaDir is the directory scanned for schema source files.
	SchemaDir string `koanf:"schema_dir"`

	// Ext is the schema file extension, including the dot.
	Ext string `koanf:"ext"`

	// Severity overrides the default severity per diagnostic kind,
	// for example InvalidForeignKeyTarget: error.
	Severity map[string]string `koanf:"severity"`

	// Parallelism bounds concurrent compilation work. Zero means
	// one worker per CPU.
	Parallelism int `koanf:"parallelism"`

	// Output selects the diagnostic rendering: table, text, or json.
	Output string `koanf:"output"`

	Verbose bool `koanf:"verbose"`

	// ProjectRoot is the directory relative paths resolve against.
	// Set by the loader, not the config file.
	ProjectRoot string `koanf:"-"`
}

// Policy builds the severity policy from the configured overrides on
// top of the defaults.
func (c *Config) Policy() (diag.Policy, error) {
	p := diag.DefaultPolicy()

	// Deterministic application order for error reporting.
	kinds := make([]string, 0, len(c.Severity))
	for k := range c.Severity {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	for _, name := range kinds {
		kind, ok := diag.ParseKind(name)
		if !ok {
			return p, fmt.Errorf("unknown diagnostic kind %q in severity config", name)
		}
		sev, ok := diag.ParseSeverity(c.Severity[name])
		if !ok {
			return p, fmt.Errorf("invalid severity %q for %s (want error or warning)", c.Severity[name], name)
		}
		p = p.Override(kind, sev)
	}
	return p, nil
}

// Validate checks the configuration for values no command can use.
func (c *Config) Validate() error {
	switch c.Output {
	case "table", "text", "json":
	default:
		return fmt.Errorf("invalid output format %q (want table, text, or json)", c.Output)
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("parallelism must not be negative")
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	return nil
}
