// Package commands implements the tdecat subcommands.
package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/tdecat/tdecat/internal/catalogue"
	"github.com/tdecat/tdecat/internal/cli/config"
	"github.com/tdecat/tdecat/internal/dataset"
	"github.com/tdecat/tdecat/internal/render"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg       *config.Config
	Logger    *slog.Logger
	Catalogue *catalogue.Catalogue
	Resolver  dataset.Resolver
	Renderer  *render.Renderer
}

// NewCommandContext creates a CommandContext with the catalogue loaded and a
// data resolver rooted at the configured archive directory.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cmdCtx := NewCommandContextWithoutCatalogue(cmd)

	cat, err := catalogue.Load(cmdCtx.Cfg.CataloguePath)
	if err != nil {
		return nil, err
	}
	cmdCtx.Catalogue = cat
	cmdCtx.Resolver = dataset.NewResolver(cmdCtx.Cfg.DataRoot)
	cmdCtx.Logger.Debug("catalogue loaded",
		"path", cmdCtx.Cfg.CataloguePath, "sources", len(cat.Sources))

	return cmdCtx, nil
}

// NewCommandContextWithoutCatalogue creates a CommandContext without touching
// the filesystem. Useful for commands that don't need catalogue access.
func NewCommandContextWithoutCatalogue(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := render.Mode(cfg.OutputFormat)
	r := render.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to
// environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	return &config.Config{
		CataloguePath: getEnvOrDefault("TDECAT_CATALOGUE", config.DefaultCatalogue),
		DataRoot:      getEnvOrDefault("TDECAT_DATA_ROOT", config.DefaultDataRoot),
		StatePath:     getEnvOrDefault("TDECAT_STATE_PATH", config.DefaultStateFile),
		SNRThreshold:  config.DefaultSNR,
		Verbose:       os.Getenv("TDECAT_VERBOSE") == "true",
		OutputFormat:  os.Getenv("TDECAT_OUTPUT"),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// findSource resolves a catalogue entry by any of its names.
func (c *CommandContext) findSource(name string) (*catalogue.Source, error) {
	return c.Catalogue.Find(name)
}

// completeSourceNames offers catalogue plain names for shell completion.
func completeSourceNames(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cfg := getConfig()
	cat, err := catalogue.Load(cfg.CataloguePath)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	names := make([]string, 0, len(cat.Sources))
	for i := range cat.Sources {
		if n := cat.Sources[i].PlainName(); n != "" {
			names = append(names, n)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
