package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store the logger in the command context.
type loggerKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search for
// config files.
const maxUpwardSearchLevels = 10

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config // Stores the loaded config for access by commands
)

// configExistsIn checks if a tdecat config file exists in the directory.
func configExistsIn(dir string) bool {
	for _, name := range []string{"tdecat.yaml", "tdecat.yml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// findProjectRootUpward searches upward from startDir for a tdecat config
// file. Returns empty string if not found within maxUpwardSearchLevels.
func findProjectRootUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if configExistsIn(dir) {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}
	return ""
}

// inferProjectRoot determines the project root from CLI flags and the
// filesystem. Priority:
//  1. Explicit --data-root flag
//  2. Search upward from CWD for tdecat.yaml
//  3. Current working directory
func inferProjectRoot(flags *pflag.FlagSet) string {
	if flags != nil {
		if dataRoot, _ := flags.GetString("data-root"); dataRoot != "" && flags.Changed("data-root") {
			abs, err := filepath.Abs(dataRoot)
			if err == nil {
				return abs
			}
			return filepath.Clean(dataRoot)
		}
	}

	if cwd, err := os.Getwd(); err == nil {
		if root := findProjectRootUpward(cwd); root != "" {
			return root
		}
	}

	cwd, _ := os.Getwd()
	if cwd == "" {
		cwd = "."
	}
	return cwd
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not
// absolute. Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from file, environment variables, and
// flags. Precedence (highest to lowest): flags > env vars > config file >
// defaults.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")

	projectRoot := inferProjectRoot(flags)

	// Paths explicitly provided as flags are relative to the CWD, not the
	// inferred project root; make them absolute before resolution.
	var flagCatalogue, flagDataRoot, flagStatePath string
	if flags != nil {
		if flags.Changed("catalogue") {
			if v, _ := flags.GetString("catalogue"); v != "" {
				flagCatalogue, _ = filepath.Abs(v)
			}
		}
		if flags.Changed("data-root") {
			if v, _ := flags.GetString("data-root"); v != "" {
				flagDataRoot, _ = filepath.Abs(v)
			}
		}
		if flags.Changed("state") {
			if v, _ := flags.GetString("state"); v != "" {
				flagStatePath, _ = filepath.Abs(v)
			}
		}
	}

	// If an explicit config file is provided, use its directory as project
	// root (unless a more specific hint was given via flags)
	if cfgFile != "" && flagDataRoot == "" {
		if absPath, err := filepath.Abs(cfgFile); err == nil {
			projectRoot = filepath.Dir(absPath)
		}
	}

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"catalogue":     DefaultCatalogue,
		"data_root":     DefaultDataRoot,
		"state_path":    DefaultStateFile,
		"snr_threshold": DefaultSNR,
		"verbose":       false,
		"output":        DefaultOutput,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	if cfgFile == "" {
		for _, name := range []string{"tdecat.yaml", "tdecat.yml"} {
			candidate := filepath.Join(projectRoot, name)
			if _, err := os.Stat(candidate); err == nil {
				cfgFile = candidate
				break
			}
		}
	}
	configFileUsed = cfgFile
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Load environment variables (TDECAT_ prefix)
	// Transform: TDECAT_DATA_ROOT -> data_root
	if err := k.Load(env.Provider("TDECAT_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "TDECAT_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			// Transform kebab-case to snake_case for config keys
			key := strings.ReplaceAll(f.Name, "-", "_")

			// The CLI uses --state for brevity; the config key is state_path
			if key == "state" {
				return "state_path", posflag.FlagVal(flags, f)
			}
			// Likewise --snr maps to snr_threshold
			if key == "snr" {
				return "snr_threshold", posflag.FlagVal(flags, f)
			}

			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// 6. Set project root and resolve relative paths
	cfg.ProjectRoot = projectRoot

	if flagCatalogue != "" {
		cfg.CataloguePath = flagCatalogue
	} else {
		cfg.CataloguePath = resolvePathRelativeTo(cfg.CataloguePath, projectRoot)
	}
	if flagDataRoot != "" {
		cfg.DataRoot = flagDataRoot
	} else {
		cfg.DataRoot = resolvePathRelativeTo(cfg.DataRoot, projectRoot)
	}
	if flagStatePath != "" {
		cfg.StatePath = flagStatePath
	} else {
		cfg.StatePath = resolvePathRelativeTo(cfg.StatePath, projectRoot)
	}

	if cfg.SNRThreshold < 0 {
		return nil, fmt.Errorf("snr_threshold must be non-negative, got %g", cfg.SNRThreshold)
	}

	currentConfig = &cfg
	return currentConfig, nil
}

// GetCurrentConfig returns the currently loaded configuration.
// Returns nil if LoadConfig has not been called yet.
func GetCurrentConfig() *Config {
	return currentConfig
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// LoggerKey returns the context key used for storing the logger. This allows
// the commands package to retrieve the logger from context without creating
// an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}
