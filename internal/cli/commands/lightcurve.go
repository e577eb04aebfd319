package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/tdecat/tdecat/internal/photometry"
	"github.com/tdecat/tdecat/internal/render"
)

// NewLightCurveCommand creates the lightcurve command.
func NewLightCurveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "lightcurve <source>",
		Aliases: []string{"lc"},
		Short:   "Plot or dump a source's light curve",
		Long: `Load a source's photometry and render it as a terminal scatter plot,
a table, or JSON.

By default the optical/infrared photometry is shown in observed magnitudes,
brightest at the top. Swift UVOT photometry is selected with --uvot and
reported in AB magnitudes, or as AB flux densities in Jansky with --flux.
X-ray light curves (--xray) are split into detections and upper limits
using the configured SNR threshold.`,
		Example: `  # Optical light curve as a terminal plot
  tdecat lightcurve AT2019qiz

  # UVOT photometry in AB magnitudes
  tdecat lightcurve AT2019qiz --uvot

  # UVOT fluxes as JSON
  tdecat lightcurve AT2019qiz --uvot --flux --output json

  # X-ray curve with a stricter detection threshold
  tdecat lightcurve AT2019qiz --xray --snr 5`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeSourceNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := lightCurveOptions{}
			opts.uvot, _ = cmd.Flags().GetBool("uvot")
			opts.xray, _ = cmd.Flags().GetBool("xray")
			opts.flux, _ = cmd.Flags().GetBool("flux")
			opts.table, _ = cmd.Flags().GetBool("table")
			opts.width, _ = cmd.Flags().GetInt("width")
			opts.height, _ = cmd.Flags().GetInt("height")
			return runLightCurve(cmd, args[0], opts)
		},
	}

	cmd.Flags().Bool("uvot", false, "Show Swift UVOT photometry instead of optical/infrared")
	cmd.Flags().Bool("xray", false, "Show the X-ray light curve")
	cmd.Flags().Bool("flux", false, "Convert UVOT AB magnitudes to flux density in Jansky")
	cmd.Flags().Bool("table", false, "Print points as a table instead of a plot")
	cmd.Flags().Int("width", 0, "Plot width in columns")
	cmd.Flags().Int("height", 0, "Plot height in rows")
	cmd.MarkFlagsMutuallyExclusive("uvot", "xray")

	return cmd
}

type lightCurveOptions struct {
	uvot   bool
	xray   bool
	flux   bool
	table  bool
	width  int
	height int
}

func runLightCurve(cmd *cobra.Command, name string, opts lightCurveOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	src, err := cmdCtx.findSource(name)
	if err != nil {
		return err
	}
	plain := src.PlainName()

	if opts.xray {
		return renderXRayCurve(cmdCtx, plain, opts)
	}

	var series []photometry.Series
	yLabel := "mag"
	if opts.uvot {
		// The UVOT loader converts Vega magnitudes to AB; no further
		// conversion happens here.
		series, err = photometry.LoadUVOT(cmdCtx.Resolver.UVOTPath(plain))
		if err != nil {
			return err
		}
		yLabel = "AB mag"
		if opts.flux {
			for i := range series {
				series[i] = photometry.ToFlux(series[i])
			}
			yLabel = "flux [Jy]"
		}
	} else {
		series, err = photometry.LoadOptical(cmdCtx.Resolver.OpticalPath(plain))
		if err != nil {
			return err
		}
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == render.ModeJSON {
		return r.JSON(map[string]any{"source": plain, "series": series})
	}

	if opts.table || r.EffectiveMode() == render.ModeMarkdown {
		return lightCurveTable(r, series, yLabel)
	}

	plot := make([]render.PlotSeries, 0, len(series))
	for _, s := range series {
		ps := render.PlotSeries{Name: s.Band}
		offset := 0.0
		if opts.uvot && !opts.flux {
			// Stack UVOT bands with the conventional display offsets so the
			// curves do not overlap.
			if off, ok := photometry.UVOTDisplayOffsets[s.Band]; ok && off != 0 {
				offset = off
				ps.Name = fmt.Sprintf("%s +%g", s.Band, off)
			}
		}
		for _, p := range s.Points {
			ps.X = append(ps.X, p.MJD)
			ps.Y = append(ps.Y, p.Value+offset)
		}
		plot = append(plot, ps)
	}

	r.Header(1, fmt.Sprintf("%s light curve", plain))
	r.Printf("%s", render.ScatterPlot(plot, render.PlotOptions{
		Width:   opts.width,
		Height:  opts.height,
		InvertY: yLabel != "flux [Jy]", // magnitude axes run brightest-up
		XLabel:  "MJD",
		YLabel:  yLabel,
		Styled:  true,
	}))
	return nil
}

func lightCurveTable(r *render.Renderer, series []photometry.Series, unit string) error {
	headers := []string{"Band", "MJD", unit, "err"}
	var rows [][]string
	for _, s := range series {
		for _, p := range s.Points {
			rows = append(rows, []string{
				s.Band,
				fmt.Sprintf("%.3f", p.MJD),
				fmt.Sprintf("%.4g", p.Value),
				fmt.Sprintf("%.3g", p.Err),
			})
		}
	}
	return r.Table(headers, rows)
}

func renderXRayCurve(cmdCtx *CommandContext, plain string, opts lightCurveOptions) error {
	curve, err := photometry.LoadXRay(cmdCtx.Resolver.XRayPath(plain), cmdCtx.Cfg.SNRThreshold)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == render.ModeJSON {
		return r.JSON(map[string]any{"source": plain, "snr_threshold": curve.SNRThreshold, "points": curve.Points})
	}

	if opts.table || r.EffectiveMode() == render.ModeMarkdown {
		headers := []string{"MJD", "Flux", "-err", "+err", "Class"}
		rows := make([][]string, 0, len(curve.Points))
		for _, p := range curve.Points {
			rows = append(rows, []string{
				fmt.Sprintf("%.3f", p.MJD),
				fmt.Sprintf("%.4g", p.Flux),
				fmt.Sprintf("%.3g", p.ErrLo),
				fmt.Sprintf("%.3g", p.ErrHi),
				string(p.Class),
			})
		}
		return r.Table(headers, rows)
	}

	byClass := curve.ByClass()
	classes := make([]string, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, string(c))
	}
	sort.Strings(classes)

	plot := make([]render.PlotSeries, 0, len(classes))
	for _, c := range classes {
		ps := render.PlotSeries{Name: c}
		for _, p := range byClass[photometry.XRayClass(c)] {
			ps.X = append(ps.X, p.MJD)
			ps.Y = append(ps.Y, p.Flux)
		}
		plot = append(plot, ps)
	}

	r.Header(1, fmt.Sprintf("%s X-ray light curve (SNR >= %g)", plain, curve.SNRThreshold))
	r.Printf("%s", render.ScatterPlot(plot, render.PlotOptions{
		Width:  opts.width,
		Height: opts.height,
		XLabel: "MJD",
		YLabel: "flux [erg/s/cm2]",
		Styled: true,
	}))
	return nil
}
