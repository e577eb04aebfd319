package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/tdecat/tdecat/internal/cli/config"
	"github.com/tdecat/tdecat/internal/web"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Port      int
	NoBrowser bool
	Watch     bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the local catalogue viewer",
		Long: `Start a local web server with the interactive catalogue viewer.

The viewer provides:
- Sortable source table with data availability
- Per-source light curves and spectra as SVG charts
- Broker links (TNS, ALeRCE, Gaia Alerts)
- Catalogue statistics
- Live reload when the catalogue file changes`,
		Example: `  # Start viewer on default port
  tdecat serve

  # Start on custom port
  tdecat serve --port 3000

  # Start without auto-opening browser
  tdecat serve --no-browser`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: 8765)")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().BoolVar(&opts.Watch, "watch", true, "Watch the catalogue file for changes")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	uiCfg := cfg.GetUIConfig()

	// CLI flags override config file
	port := uiCfg.Port
	if opts.Port != 0 {
		port = opts.Port
	}

	autoOpen := uiCfg.AutoOpen
	if opts.NoBrowser {
		autoOpen = false
	}

	watch := uiCfg.Watch
	if cmd.Flags().Changed("watch") {
		watch = opts.Watch
	}

	if _, err := os.Stat(cfg.CataloguePath); os.IsNotExist(err) {
		return fmt.Errorf("catalogue not found: %s", cfg.CataloguePath)
	}

	server, err := web.NewServer(web.Config{
		CataloguePath: cfg.CataloguePath,
		DataRoot:      cfg.DataRoot,
		Port:          port,
		Watch:         watch,
		SNRThreshold:  cfg.SNRThreshold,
		SessionSecret: sessionSecret(),
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	if autoOpen {
		url := fmt.Sprintf("http://localhost:%d", port)
		go openBrowser(url)
	}

	fmt.Printf("Starting viewer on http://localhost:%d\n", port)
	fmt.Println("Press Ctrl+C to stop")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	return server.Serve(ctx)
}

// sessionSecret returns the cookie signing secret.
func sessionSecret() string {
	if secret := os.Getenv("TDECAT_SESSION_SECRET"); secret != "" {
		return secret
	}
	// Fixed fallback: the viewer binds to localhost and the session only
	// remembers display preferences.
	return "tdecat-local-viewer" //nolint:gosec
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
