// Package config provides configuration management for the tdecat CLI.
//
// Configuration is merged from defaults, an optional tdecat.yaml file, the
// TDECAT_ environment, and CLI flags, in increasing priority.
package config

// UIConfig holds configuration for the web viewer.
type UIConfig struct {
	Port     int    `koanf:"port"`
	AutoOpen bool   `koanf:"auto_open"`
	Watch    bool   `koanf:"watch"`
	Theme    string `koanf:"theme"`
}

// DefaultUIConfig returns a UIConfig with default values.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Port:     8765,
		AutoOpen: true,
		Watch:    true,
		Theme:    "default",
	}
}

// GetUIConfig returns the UI config with defaults applied for unset values.
func (c *Config) GetUIConfig() *UIConfig {
	if c.UI == nil {
		return DefaultUIConfig()
	}
	ui := c.UI
	if ui.Port == 0 {
		ui.Port = 8765
	}
	return ui
}

// Config holds all CLI configuration options.
type Config struct {
	ProjectRoot string `koanf:"-"`

	CataloguePath string    `koanf:"catalogue"`
	DataRoot      string    `koanf:"data_root"`
	StatePath     string    `koanf:"state_path"`
	SNRThreshold  float64   `koanf:"snr_threshold"`
	Verbose       bool      `koanf:"verbose"`
	OutputFormat  string    `koanf:"output"`
	UI            *UIConfig `koanf:"ui"`
}

// Default configuration values.
const (
	DefaultCatalogue = "TDE_catalogue_all.csv"
	DefaultDataRoot  = "."
	DefaultStateFile = ".tdecat/index.db"
	DefaultSNR       = 3.0
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)
