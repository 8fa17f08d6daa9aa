// Package commands implements the goldgraph subcommands.
package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/benchforge/goldgraph/internal/config"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
}

type commandContextKey struct{}

// NewContext returns ctx carrying the command dependencies.
func NewContext(ctx context.Context, cfg *config.Config, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, commandContextKey{}, &CommandContext{Cfg: cfg, Logger: logger})
}

// FromCommand retrieves the command dependencies from the command context.
// Commands invoked outside the root command get safe fallbacks.
func FromCommand(cmd *cobra.Command) *CommandContext {
	if cc, ok := cmd.Context().Value(commandContextKey{}).(*CommandContext); ok {
		return cc
	}
	return &CommandContext{
		Cfg:    &config.Config{OutputDir: config.DefaultOutputDir, StatePath: config.DefaultStateFile},
		Logger: slog.New(slog.DiscardHandler),
	}
}

// writeJSONFile writes four-space indented JSON without HTML escaping,
// the convention of the question and tables files.
func writeJSONFile(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// stem strips the extension from a file path's base name.
func stem(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
