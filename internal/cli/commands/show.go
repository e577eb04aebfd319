package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tdecat/tdecat/internal/catalogue"
	"github.com/tdecat/tdecat/internal/dataset"
	"github.com/tdecat/tdecat/internal/render"
)

// NewShowCommand creates the show command.
func NewShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <source>",
		Short: "Show one source in detail",
		Long: `Show every catalogued field of a single source, along with broker links
and the data products present on disk.

The source may be given by its plain name, AT name, ZTF name, Gaia name,
or alternative designation. Matching is case-insensitive.`,
		Example: `  # Show a source by plain name
  tdecat show AT2019qiz

  # ZTF names work too
  tdecat show ZTF19abzrhgq

  # Full field dump as JSON
  tdecat show AT2019qiz --all --output json`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeSourceNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")
			return runShow(cmd, args[0], all)
		},
	}

	cmd.Flags().Bool("all", false, "Include every catalogue column, not just the summary fields")

	return cmd
}

// showDetail is the JSON shape of a source dump.
type showDetail struct {
	Name      string               `json:"name"`
	ATName    string               `json:"at_name,omitempty"`
	ZTFName   string               `json:"ztf_name,omitempty"`
	GaiaName  string               `json:"gaia_name,omitempty"`
	AltName   string               `json:"alt_name,omitempty"`
	Redshift  *float64             `json:"redshift,omitempty"`
	Discovery string               `json:"discovery,omitempty"`
	Links     catalogue.Links      `json:"links"`
	Data      dataset.Availability `json:"data"`
	Fields    map[string]string    `json:"fields,omitempty"`
}

func runShow(cmd *cobra.Command, name string, all bool) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	src, err := cmdCtx.findSource(name)
	if err != nil {
		return err
	}

	plain := src.PlainName()
	detail := showDetail{
		Name:      plain,
		ATName:    src.ATName,
		ZTFName:   src.ZTFName,
		GaiaName:  src.GaiaName,
		AltName:   src.AltName,
		Discovery: src.Fields[catalogue.ColDiscoveryUT],
		Links:     src.Links(),
		Data:      cmdCtx.Resolver.Availability(plain),
	}
	if z, ok := src.Redshift(); ok {
		detail.Redshift = &z
	}
	if all {
		detail.Fields = src.Fields
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == render.ModeJSON {
		return r.JSON(detail)
	}

	r.Header(1, plain)
	r.KeyValue("AT name", src.ATName)
	r.KeyValue("ZTF name", src.ZTFName)
	r.KeyValue("Gaia name", src.GaiaName)
	r.KeyValue("Alternative name", src.AltName)
	r.KeyValue("Redshift", redshiftString(detail.Redshift))
	r.KeyValue("Discovery (UT)", detail.Discovery)
	if mag, ok := src.DiscoveryMag(); ok {
		r.KeyValue("Discovery mag", fmt.Sprintf("%g", mag))
	}
	r.KeyValue("Data", availabilityFlags(detail.Data))

	r.Println()
	r.Header(2, "Links")
	if detail.Links.TNS != "" {
		r.KeyValue("TNS", detail.Links.TNS)
	}
	if detail.Links.ZTF != "" {
		r.KeyValue("ALeRCE", detail.Links.ZTF)
	}
	if detail.Links.Gaia != "" {
		r.KeyValue("Gaia Alerts", detail.Links.Gaia)
	}

	if all {
		r.Println()
		r.Header(2, "All fields")
		for _, col := range cmdCtx.Catalogue.Columns {
			if v := strings.TrimSpace(src.Fields[col]); v != "" {
				r.KeyValue(col, v)
			}
		}
	}

	return nil
}

func redshiftString(z *float64) string {
	if z == nil {
		return ""
	}
	return fmt.Sprintf("%g", *z)
}
