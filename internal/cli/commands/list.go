package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tdecat/tdecat/internal/catalogue"
	"github.com/tdecat/tdecat/internal/dataset"
	"github.com/tdecat/tdecat/internal/render"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalogued sources",
		Long: `List all sources in the catalogue with their names, redshift, discovery
date, and which data products are present on disk.

The availability column uses one letter per data kind:
  O  optical/infrared photometry
  U  Swift UVOT photometry
  X  X-ray light curve
  S  optical spectra

Output adapts to environment:
  - Terminal: styled table
  - Piped/Scripted: markdown format

Use --output to override: auto, text, markdown, json`,
		Example: `  # List all sources
  tdecat list

  # Only sources with X-ray data
  tdecat list --has xray

  # Search by name fragment
  tdecat list --search 2019

  # Machine-readable listing
  tdecat list --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			search, _ := cmd.Flags().GetString("search")
			has, _ := cmd.Flags().GetString("has")
			return runList(cmd, search, has)
		},
	}

	cmd.Flags().String("search", "", "Only list sources whose name contains this fragment")
	cmd.Flags().String("has", "", "Only list sources with this data kind (optical|uvot|xray|spectra)")
	_ = cmd.RegisterFlagCompletionFunc("has", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"optical", "uvot", "xray", "spectra"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// listEntry is one row of the listing, shared by all output modes.
type listEntry struct {
	Name      string               `json:"name"`
	ZTF       string               `json:"ztf,omitempty"`
	Redshift  string               `json:"redshift,omitempty"`
	Discovery string               `json:"discovery,omitempty"`
	Data      dataset.Availability `json:"data"`
}

func runList(cmd *cobra.Command, search, has string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	if has != "" {
		switch has {
		case "optical", "uvot", "xray", "spectra":
		default:
			return fmt.Errorf("unknown data kind %q (want optical, uvot, xray, or spectra)", has)
		}
	}

	entries := collectListEntries(cmdCtx, search, has)
	r := cmdCtx.Renderer

	if r.EffectiveMode() == render.ModeJSON {
		return r.JSON(entries)
	}

	r.Header(1, fmt.Sprintf("Sources (%d of %d)", len(entries), len(cmdCtx.Catalogue.Sources)))
	headers := []string{"Name", "ZTF", "z", "Discovery", "Data"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Name, e.ZTF, e.Redshift, e.Discovery, availabilityFlags(e.Data)})
	}
	return r.Table(headers, rows)
}

func collectListEntries(cmdCtx *CommandContext, search, has string) []listEntry {
	needle := strings.ToLower(search)
	entries := make([]listEntry, 0, len(cmdCtx.Catalogue.Sources))

	for i := range cmdCtx.Catalogue.Sources {
		src := &cmdCtx.Catalogue.Sources[i]
		name := src.PlainName()
		if name == "" {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(name), needle) &&
			!strings.Contains(strings.ToLower(src.ZTFName), needle) {
			continue
		}

		avail := cmdCtx.Resolver.Availability(name)
		if !availabilityHas(avail, has) {
			continue
		}

		entry := listEntry{
			Name:      name,
			ZTF:       src.PlainZTFName(),
			Discovery: src.Fields[catalogue.ColDiscoveryUT],
			Data:      avail,
		}
		if z, ok := src.Redshift(); ok {
			entry.Redshift = fmt.Sprintf("%g", z)
		}
		entries = append(entries, entry)
	}
	return entries
}

// availabilityFlags renders availability as a compact OUXS string, with a
// dot for each missing kind.
func availabilityFlags(a dataset.Availability) string {
	var b strings.Builder
	flag := func(present bool, c byte) {
		if present {
			b.WriteByte(c)
		} else {
			b.WriteByte('.')
		}
	}
	flag(a.Optical, 'O')
	flag(a.UVOT, 'U')
	flag(a.XRay, 'X')
	flag(a.Spectra, 'S')
	return b.String()
}

func availabilityHas(a dataset.Availability, kind string) bool {
	switch kind {
	case "optical":
		return a.Optical
	case "uvot":
		return a.UVOT
	case "xray":
		return a.XRay
	case "spectra":
		return a.Spectra
	default:
		return true
	}
}
