package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("catalogue", "", "")
	fs.String("data-root", "", "")
	fs.String("state", "", "")
	fs.Float64("snr", 0, "")
	fs.Bool("verbose", false, "")
	fs.String("output", "", "")
	return fs
}

func TestLoadConfigDefaults(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("", newFlagSet())
	require.NoError(t, err)

	assert.Equal(t, filepath.Base(cfg.CataloguePath), DefaultCatalogue)
	assert.InDelta(t, DefaultSNR, cfg.SNRThreshold, 1e-9)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.False(t, cfg.Verbose)
}

func TestLoadConfigFromFile(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "tdecat.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"catalogue: my_catalogue.csv\nsnr_threshold: 5\nui:\n  port: 9000\n"), 0o644))

	cfg, err := LoadConfig(cfgPath, newFlagSet())
	require.NoError(t, err)

	// Relative paths resolve against the config file's directory.
	assert.Equal(t, filepath.Join(dir, "my_catalogue.csv"), cfg.CataloguePath)
	assert.InDelta(t, 5.0, cfg.SNRThreshold, 1e-9)
	assert.Equal(t, 9000, cfg.GetUIConfig().Port)
}

func TestLoadConfigFlagOverridesFile(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "tdecat.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("snr_threshold: 5\n"), 0o644))

	fs := newFlagSet()
	require.NoError(t, fs.Set("snr", "7.5"))

	cfg, err := LoadConfig(cfgPath, fs)
	require.NoError(t, err)
	assert.InDelta(t, 7.5, cfg.SNRThreshold, 1e-9)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())
	t.Setenv("TDECAT_OUTPUT", "json")

	cfg, err := LoadConfig("", newFlagSet())
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.OutputFormat)
}

func TestLoadConfigUpwardSearch(t *testing.T) {
	ResetConfig()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "tdecat.yaml"),
		[]byte("catalogue: cat.csv\n"), 0o644))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	t.Chdir(nested)

	cfg, err := LoadConfig("", newFlagSet())
	require.NoError(t, err)

	// macOS tempdirs resolve through symlinks; compare the tail of the path.
	assert.Equal(t, "cat.csv", filepath.Base(cfg.CataloguePath))
	assert.Equal(t, filepath.Dir(cfg.CataloguePath), cfg.ProjectRoot)
}

func TestLoadConfigRejectsNegativeSNR(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "tdecat.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("snr_threshold: -1\n"), 0o644))

	_, err := LoadConfig(cfgPath, newFlagSet())
	assert.Error(t, err)
}

func TestGetUIConfigDefaults(t *testing.T) {
	cfg := &Config{}
	ui := cfg.GetUIConfig()
	assert.Equal(t, 8765, ui.Port)
	assert.True(t, ui.AutoOpen)

	cfg = &Config{UI: &UIConfig{Port: 3000}}
	assert.Equal(t, 3000, cfg.GetUIConfig().Port)
}
