package web

import (
	"fmt"
	"math"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/tdecat/tdecat/internal/photometry"
	"github.com/tdecat/tdecat/internal/spectra"
)

// svgSeries is one plotted dataset.
type svgSeries struct {
	Name  string
	X     []float64
	Y     []float64
	Lines bool // connect points (spectra) instead of markers (photometry)
}

// svgOptions controls chart geometry.
type svgOptions struct {
	Width   int
	Height  int
	InvertY bool
	XLabel  string
	YLabel  string
	Title   string
}

var svgPalette = []string{
	"#b13bce", "#8031a7", "#2a6fdb", "#2e9e4f",
	"#c7a500", "#cf3f3f", "#1e9e9e", "#666666",
}

const (
	svgMarginLeft   = 70
	svgMarginRight  = 20
	svgMarginTop    = 30
	svgMarginBottom = 50
)

// renderSVG renders the series as a standalone SVG document.
func renderSVG(series []svgSeries, opts svgOptions) string {
	if opts.Width <= 0 {
		opts.Width = 720
	}
	if opts.Height <= 0 {
		opts.Height = 420
	}

	xMin, xMax, yMin, yMax, n := svgBounds(series)

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		opts.Width, opts.Height, opts.Width, opts.Height)
	b.WriteString(`<rect width="100%" height="100%" fill="white"/>`)

	if n == 0 {
		fmt.Fprintf(&b, `<text x="%d" y="%d" text-anchor="middle" font-family="sans-serif" font-size="14" fill="#888">no data</text>`,
			opts.Width/2, opts.Height/2)
		b.WriteString(`</svg>`)
		return b.String()
	}

	// Pad degenerate ranges so a single epoch still renders
	if xMax == xMin {
		xMin, xMax = xMin-0.5, xMax+0.5
	}
	if yMax == yMin {
		yMin, yMax = yMin-0.5, yMax+0.5
	}

	plotW := float64(opts.Width - svgMarginLeft - svgMarginRight)
	plotH := float64(opts.Height - svgMarginTop - svgMarginBottom)

	toX := func(x float64) float64 {
		return svgMarginLeft + (x-xMin)/(xMax-xMin)*plotW
	}
	toY := func(y float64) float64 {
		frac := (y - yMin) / (yMax - yMin)
		if !opts.InvertY {
			frac = 1 - frac
		}
		return svgMarginTop + frac*plotH
	}

	// Frame
	fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%.0f" height="%.0f" fill="none" stroke="#ccc"/>`,
		svgMarginLeft, svgMarginTop, plotW, plotH)

	// Axis ticks
	for i := 0; i <= 4; i++ {
		fx := float64(i) / 4
		xv := xMin + fx*(xMax-xMin)
		px := toX(xv)
		fmt.Fprintf(&b, `<line x1="%.1f" y1="%.0f" x2="%.1f" y2="%.0f" stroke="#ccc"/>`,
			px, svgMarginTop+plotH, px, svgMarginTop+plotH+5)
		fmt.Fprintf(&b, `<text x="%.1f" y="%.0f" text-anchor="middle" font-family="sans-serif" font-size="11" fill="#555">%s</text>`,
			px, svgMarginTop+plotH+18, svgTickLabel(xv))

		yv := yMin + fx*(yMax-yMin)
		py := toY(yv)
		fmt.Fprintf(&b, `<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="#ccc"/>`,
			svgMarginLeft-5, py, svgMarginLeft, py)
		fmt.Fprintf(&b, `<text x="%d" y="%.1f" text-anchor="end" font-family="sans-serif" font-size="11" fill="#555">%s</text>`,
			svgMarginLeft-8, py+4, svgTickLabel(yv))
	}

	// Axis labels and title
	if opts.XLabel != "" {
		fmt.Fprintf(&b, `<text x="%.0f" y="%d" text-anchor="middle" font-family="sans-serif" font-size="12" fill="#333">%s</text>`,
			svgMarginLeft+plotW/2, opts.Height-10, svgEscape(opts.XLabel))
	}
	if opts.YLabel != "" {
		fmt.Fprintf(&b, `<text x="14" y="%.0f" text-anchor="middle" font-family="sans-serif" font-size="12" fill="#333" transform="rotate(-90 14 %.0f)">%s</text>`,
			svgMarginTop+plotH/2, svgMarginTop+plotH/2, svgEscape(opts.YLabel))
	}
	if opts.Title != "" {
		fmt.Fprintf(&b, `<text x="%.0f" y="18" text-anchor="middle" font-family="sans-serif" font-size="13" font-weight="bold" fill="#222">%s</text>`,
			svgMarginLeft+plotW/2, svgEscape(opts.Title))
	}

	// Data
	for si, sr := range series {
		color := svgPalette[si%len(svgPalette)]
		if sr.Lines {
			var pts []string
			for i := range sr.X {
				pts = append(pts, fmt.Sprintf("%.1f,%.1f", toX(sr.X[i]), toY(sr.Y[i])))
			}
			fmt.Fprintf(&b, `<polyline points="%s" fill="none" stroke="%s" stroke-width="1"/>`,
				strings.Join(pts, " "), color)
		} else {
			for i := range sr.X {
				fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="3" fill="%s" fill-opacity="0.8"/>`,
					toX(sr.X[i]), toY(sr.Y[i]), color)
			}
		}

		// Legend entry
		lx := svgMarginLeft + 10
		ly := svgMarginTop + 14 + si*16
		fmt.Fprintf(&b, `<circle cx="%d" cy="%d" r="4" fill="%s"/>`, lx, ly, color)
		fmt.Fprintf(&b, `<text x="%d" y="%d" font-family="sans-serif" font-size="11" fill="#333">%s</text>`,
			lx+10, ly+4, svgEscape(sr.Name))
	}

	b.WriteString(`</svg>`)
	return b.String()
}

func svgBounds(series []svgSeries) (xMin, xMax, yMin, yMax float64, n int) {
	xMin, yMin = math.Inf(1), math.Inf(1)
	xMax, yMax = math.Inf(-1), math.Inf(-1)
	for _, s := range series {
		for i := range s.X {
			xMin = math.Min(xMin, s.X[i])
			xMax = math.Max(xMax, s.X[i])
			yMin = math.Min(yMin, s.Y[i])
			yMax = math.Max(yMax, s.Y[i])
			n++
		}
	}
	return xMin, xMax, yMin, yMax, n
}

func svgTickLabel(v float64) string {
	av := math.Abs(v)
	if av != 0 && (av < 1e-3 || av >= 1e6) {
		return fmt.Sprintf("%.2g", v)
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

func svgEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}

// handleLightCurveSVG renders a light-curve chart.
func (s *Server) handleLightCurveSVG(w http.ResponseWriter, r *http.Request) {
	src := s.findSource(w, chi.URLParam(r, "name"))
	if src == nil {
		return
	}
	name := src.PlainName()
	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = "optical"
	}

	var (
		series  []svgSeries
		yLabel  = "magnitude"
		invertY = true
	)

	switch kind {
	case "optical", "uvot":
		var phot []photometry.Series
		var err error
		if kind == "uvot" {
			phot, err = photometry.LoadUVOT(s.resolver.UVOTPath(name))
			yLabel = "AB magnitude"
		} else {
			phot, err = photometry.LoadOptical(s.resolver.OpticalPath(name))
		}
		if err != nil {
			s.writeLoadError(w, err)
			return
		}
		for _, p := range phot {
			sr := svgSeries{Name: p.Band}
			offset := 0.0
			if kind == "uvot" {
				// Stack UVOT bands with the conventional display offsets.
				if off, ok := photometry.UVOTDisplayOffsets[p.Band]; ok && off != 0 {
					offset = off
					sr.Name = fmt.Sprintf("%s +%g", p.Band, off)
				}
			}
			for _, pt := range p.Points {
				sr.X = append(sr.X, pt.MJD)
				sr.Y = append(sr.Y, pt.Value+offset)
			}
			series = append(series, sr)
		}

	case "xray":
		curve, err := photometry.LoadXRay(s.resolver.XRayPath(name), s.snrFromRequest(w, r))
		if err != nil {
			s.writeLoadError(w, err)
			return
		}
		byClass := curve.ByClass()
		classes := make([]string, 0, len(byClass))
		for class := range byClass {
			classes = append(classes, string(class))
		}
		sort.Strings(classes)
		for _, class := range classes {
			sr := svgSeries{Name: class}
			for _, pt := range byClass[photometry.XRayClass(class)] {
				sr.X = append(sr.X, pt.MJD)
				sr.Y = append(sr.Y, pt.Flux)
			}
			series = append(series, sr)
		}
		yLabel = "flux [erg/s/cm2]"
		invertY = false

	default:
		writeJSONError(w, http.StatusBadRequest, fmt.Errorf("unknown kind %q", kind))
		return
	}

	svg := renderSVG(series, svgOptions{
		InvertY: invertY,
		XLabel:  "MJD",
		YLabel:  yLabel,
		Title:   fmt.Sprintf("%s (%s)", name, kind),
	})
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write([]byte(svg))
}

// handleSpectrumSVG renders one spectrum as a line chart.
func (s *Server) handleSpectrumSVG(w http.ResponseWriter, r *http.Request) {
	src := s.findSource(w, chi.URLParam(r, "name"))
	if src == nil {
		return
	}
	name := src.PlainName()

	specs, _, err := spectra.LoadDir(s.resolver.SpectraPath(name))
	if err != nil {
		s.writeLoadError(w, err)
		return
	}

	file := r.URL.Query().Get("file")
	var spec *spectra.Spectrum
	for i := range specs {
		if file == "" || specs[i].File == file {
			spec = &specs[i]
			break
		}
	}
	if spec == nil {
		writeJSONError(w, http.StatusNotFound, fmt.Errorf("no spectrum named %q", file))
		return
	}

	frame := "observed"
	if r.URL.Query().Get("rest") != "" {
		z, ok := src.Redshift()
		if !ok {
			writeJSONError(w, http.StatusBadRequest, fmt.Errorf("no redshift catalogued for %s", name))
			return
		}
		rest := spectra.RestFrame(*spec, z)
		spec = &rest
		frame = "rest"
	}

	sr := svgSeries{Name: spec.File, Lines: true}
	for _, p := range spec.Points {
		sr.X = append(sr.X, p.Wavelength)
		sr.Y = append(sr.Y, p.Flux)
	}

	svg := renderSVG([]svgSeries{sr}, svgOptions{
		XLabel: fmt.Sprintf("wavelength [A] (%s frame)", frame),
		YLabel: "flux",
		Title:  name,
	})
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write([]byte(svg))
}
