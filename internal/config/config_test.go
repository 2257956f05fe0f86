package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dspeclang/dspec/internal/config"
	"github.com/dspeclang/dspec/pkg/diag"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(wd))
	})
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// ---------- Loading ----------

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultExt, cfg.Ext)
	assert.Equal(t, config.DefaultOutput, cfg.Output)
	assert.Equal(t, 0, cfg.Parallelism)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, config.DefaultSchemaDir), cfg.SchemaDir)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, config.ConfigFileName, `
schema_dir: db/schemas
output: json
parallelism: 4
severity:
  InvalidForeignKeyTarget: error
`)

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(dir, "db", "schemas"), cfg.SchemaDir)
	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, 4, cfg.Parallelism)

	policy, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, diag.SeverityError, policy.SeverityOf(diag.InvalidForeignKeyTarget))
}

func TestLoadFindsConfigInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.ConfigFileNameAlt, "output: text\n")
	chdir(t, dir)

	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Output)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, config.ConfigFileName, "output: text\n")
	t.Setenv("DSPEC_OUTPUT", "json")

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DSPEC_OUTPUT", "json")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output", config.DefaultOutput, "")
	flags.Int("parallelism", 0, "")
	require.NoError(t, flags.Set("output", "text"))

	cfg, err := config.Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Output)
	// An unchanged flag must not mask lower layers.
	assert.Equal(t, 0, cfg.Parallelism)
}

func TestLoadUnchangedFlagDoesNotOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DSPEC_PARALLELISM", "3")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("parallelism", 0, "")

	cfg, err := config.Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Parallelism)
}

func TestLoadKebabFlagMapsToSnakeKey(t *testing.T) {
	chdir(t, t.TempDir())

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("schema-dir", config.DefaultSchemaDir, "")
	require.NoError(t, flags.Set("schema-dir", "migrations"))

	cfg, err := config.Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, "migrations"), cfg.SchemaDir)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, config.ConfigFileName, "output: csv\n")

	_, err := config.Load(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

// ---------- Policy ----------

func TestPolicyOverrides(t *testing.T) {
	cfg := &config.Config{
		Output: "table",
		Severity: map[string]string{
			"InvalidForeignKeyTarget": "error",
			"InvalidRelationTarget":   "error",
		},
	}
	policy, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, diag.SeverityError, policy.SeverityOf(diag.InvalidForeignKeyTarget))
	assert.Equal(t, diag.SeverityError, policy.SeverityOf(diag.InvalidRelationTarget))
	// Kinds without an override keep their defaults.
	assert.Equal(t, diag.SeverityError, policy.SeverityOf(diag.SyntaxError))
}

func TestPolicyUnknownKind(t *testing.T) {
	cfg := &config.Config{Severity: map[string]string{"NotAKind": "error"}}
	_, err := cfg.Policy()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown diagnostic kind")
}

func TestPolicyInvalidSeverity(t *testing.T) {
	cfg := &config.Config{Severity: map[string]string{"SyntaxError": "fatal"}}
	_, err := cfg.Policy()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid severity")
}

// ---------- Validation ----------

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr string
	}{
		{"valid", config.Config{Output: "table"}, ""},
		{"bad output", config.Config{Output: "csv"}, "invalid output format"},
		{"negative parallelism", config.Config{Output: "json", Parallelism: -1}, "must not be negative"},
		{"bad severity kind", config.Config{Output: "text", Severity: map[string]string{"Nope": "error"}}, "unknown diagnostic kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
