// Package config provides shared configuration types for goldgraph.
// Configuration is loaded from goldgraph.yaml, GOLDGRAPH_* environment
// variables, and CLI flags, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
)

// Config holds all goldgraph configuration options.
type Config struct {
	// TablesPath is the schema payload: a JSON array of database schemas.
	TablesPath string `koanf:"tables_path"`

	// DataRoots are directories containing per-database folders with
	// database_description CSV sheets. Searched in order.
	DataRoots []string `koanf:"data_roots"`

	// OutputDir receives gold graph arrays, context texts, and reports.
	OutputDir string `koanf:"output_dir"`

	// StatePath is the SQLite run-history database.
	StatePath string `koanf:"state_path"`

	// Workers bounds extraction concurrency. Zero or less means NumCPU.
	Workers int `koanf:"workers"`

	Verbose bool `koanf:"verbose"`

	// ProjectRoot is the directory relative paths resolve against.
	// Derived at load time, never read from the config file.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultOutputDir = "gold_graphs"
	DefaultStateFile = ".goldgraph/state.db"
	ConfigFileName   = "goldgraph.yaml"
	ConfigFileAlt    = "goldgraph.yml"
)

// Validate checks that the configuration can support an extraction run.
func (c *Config) Validate() error {
	if c.TablesPath == "" {
		return fmt.Errorf("tables_path is required")
	}
	if _, err := os.Stat(c.TablesPath); os.IsNotExist(err) {
		return fmt.Errorf("tables file does not exist: %s", c.TablesPath)
	}
	return nil
}
