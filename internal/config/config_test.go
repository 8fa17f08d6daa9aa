package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingExplicitFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent-but-explicit.yaml"), nil)
	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, `
tables_path: data/tables.json
output_dir: out
workers: 4
data_roots:
  - data/train_databases
  - data/dev_databases
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "data", "tables.json"), cfg.TablesPath)
	assert.Equal(t, filepath.Join(dir, "out"), cfg.OutputDir)
	assert.Equal(t, 4, cfg.Workers)
	require.Len(t, cfg.DataRoots, 2)
	assert.Equal(t, filepath.Join(dir, "data", "train_databases"), cfg.DataRoots[0])
	assert.Equal(t, dir, cfg.ProjectRoot)
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, "tables_path: tables.json\n")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, DefaultOutputDir), cfg.OutputDir)
	assert.Equal(t, filepath.Join(dir, DefaultStateFile), cfg.StatePath)
	assert.Equal(t, 0, cfg.Workers)
	assert.False(t, cfg.Verbose)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, "workers: 4\n")

	t.Setenv("GOLDGRAPH_WORKERS", "8")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Workers)
}

func TestLoadFlagsOverrideEverything(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, "workers: 4\ntables_path: from_file.json\n")

	t.Setenv("GOLDGRAPH_WORKERS", "8")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("workers", 0, "")
	flags.String("tables", "", "")
	require.NoError(t, flags.Parse([]string{"--workers", "2", "--tables", "from_flag.json"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, filepath.Join(dir, "from_flag.json"), cfg.TablesPath)
}

func TestLoadUnsetFlagsIgnored(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, "workers: 4\n")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("workers", 99, "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Workers)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	require.Error(t, cfg.Validate())

	cfg.TablesPath = filepath.Join(t.TempDir(), "missing.json")
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")

	path := filepath.Join(t.TempDir(), "tables.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))
	cfg.TablesPath = path
	assert.NoError(t, cfg.Validate())
}
