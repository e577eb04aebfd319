package commands

import (
	"github.com/spf13/cobra"
	"github.com/tdecat/tdecat/internal/tui"
)

// NewBrowseCommand creates the browse command.
func NewBrowseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the catalogue interactively",
		Long: `Open an interactive terminal browser over the catalogue.

Navigate with the arrow keys, press / to filter by name, and enter to
open a source with its catalogued fields, broker links, and an optical
light-curve preview.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			return tui.Run(cmdCtx.Catalogue, cmdCtx.Resolver)
		},
	}
}
