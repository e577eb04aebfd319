package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/tdecat/tdecat/internal/render"
	"github.com/tdecat/tdecat/internal/spectra"
)

// NewSpectrumCommand creates the spectrum command.
func NewSpectrumCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spectrum <source>",
		Short: "List or plot a source's optical spectra",
		Long: `List the optical spectra available for a source, or plot one of them.

Without --file the available spectrum files are listed. With --file (or
--index to pick by position) the spectrum is rendered as a terminal plot
of flux against observed wavelength. With --rest the wavelength axis is
shifted to the rest frame using the catalogued redshift, and the classic
TDE lines (H alpha, H beta, He II) are marked in the legend.`,
		Example: `  # List available spectra
  tdecat spectrum AT2019qiz

  # Plot the second spectrum in the rest frame
  tdecat spectrum AT2019qiz --index 2 --rest

  # Plot a specific file
  tdecat spectrum AT2019qiz --file AT2019qiz_2019-10-01.ascii`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeSourceNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			index, _ := cmd.Flags().GetInt("index")
			rest, _ := cmd.Flags().GetBool("rest")
			width, _ := cmd.Flags().GetInt("width")
			height, _ := cmd.Flags().GetInt("height")
			return runSpectrum(cmd, args[0], file, index, rest, width, height)
		},
	}

	cmd.Flags().String("file", "", "Spectrum file name to plot")
	cmd.Flags().Int("index", 0, "Spectrum to plot, by position in the listing (1-based)")
	cmd.Flags().Bool("rest", false, "Shift wavelengths to the rest frame using the catalogued redshift")
	cmd.Flags().Int("width", 0, "Plot width in columns")
	cmd.Flags().Int("height", 0, "Plot height in rows")
	cmd.MarkFlagsMutuallyExclusive("file", "index")

	return cmd
}

func runSpectrum(cmd *cobra.Command, name, file string, index int, rest bool, width, height int) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	src, err := cmdCtx.findSource(name)
	if err != nil {
		return err
	}
	plain := src.PlainName()

	specs, skipped, err := spectra.LoadDir(cmdCtx.Resolver.SpectraPath(plain))
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer
	for _, f := range skipped {
		r.Warn("skipping unreadable spectrum %s", f)
	}

	if file == "" && index == 0 {
		return listSpectra(r, plain, specs)
	}

	spec, err := pickSpectrum(specs, file, index)
	if err != nil {
		return err
	}

	if rest {
		z, ok := src.Redshift()
		if !ok {
			return fmt.Errorf("no redshift catalogued for %s, cannot shift to rest frame", plain)
		}
		*spec = spectra.RestFrame(*spec, z)
	}

	if r.EffectiveMode() == render.ModeJSON {
		return r.JSON(map[string]any{"source": plain, "rest_frame": rest, "spectrum": spec})
	}

	ps := render.PlotSeries{Name: spec.File}
	for _, p := range spec.Points {
		ps.X = append(ps.X, p.Wavelength)
		ps.Y = append(ps.Y, p.Flux)
	}

	frame := "observed"
	if rest {
		frame = "rest"
	}
	r.Header(1, fmt.Sprintf("%s spectrum (%s frame)", plain, frame))
	r.Printf("%s", render.ScatterPlot([]render.PlotSeries{ps}, render.PlotOptions{
		Width:  width,
		Height: height,
		XLabel: "wavelength [A]",
		YLabel: "flux",
		Styled: true,
	}))

	if rest {
		lines := make([]string, 0, len(spectra.RestLines))
		for l := range spectra.RestLines {
			lines = append(lines, l)
		}
		sort.Strings(lines)
		for _, l := range lines {
			r.KeyValue(l, fmt.Sprintf("%.1f A", spectra.RestLines[l]))
		}
	}
	return nil
}

func listSpectra(r *render.Renderer, plain string, specs []spectra.Spectrum) error {
	if r.EffectiveMode() == render.ModeJSON {
		files := make([]string, 0, len(specs))
		for _, s := range specs {
			files = append(files, s.File)
		}
		return r.JSON(map[string]any{"source": plain, "spectra": files})
	}

	r.Header(1, fmt.Sprintf("%s spectra (%d)", plain, len(specs)))
	rows := make([][]string, 0, len(specs))
	for i, s := range specs {
		rows = append(rows, []string{fmt.Sprintf("%d", i+1), s.File, fmt.Sprintf("%d", len(s.Points))})
	}
	return r.Table([]string{"#", "File", "Points"}, rows)
}

func pickSpectrum(specs []spectra.Spectrum, file string, index int) (*spectra.Spectrum, error) {
	if file != "" {
		for i := range specs {
			if specs[i].File == file {
				return &specs[i], nil
			}
		}
		return nil, fmt.Errorf("no spectrum named %q", file)
	}
	if index < 1 || index > len(specs) {
		return nil, fmt.Errorf("spectrum index %d out of range (have %d)", index, len(specs))
	}
	return &specs[index-1], nil
}
