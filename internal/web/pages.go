package web

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tdecat/tdecat/internal/catalogue"
	"github.com/tdecat/tdecat/internal/spectra"
)

const pageShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}} - TDECat</title>
<style>
  body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem auto; max-width: 60rem; color: #222; }
  h1 { font-size: 1.4rem; }
  h2 { font-size: 1.1rem; margin-top: 2rem; }
  table { border-collapse: collapse; width: 100%; font-size: 0.9rem; }
  th, td { text-align: left; padding: 0.3rem 0.6rem; border-bottom: 1px solid #eee; }
  th { border-bottom: 1px solid #999; }
  a { color: #8031a7; text-decoration: none; }
  a:hover { text-decoration: underline; }
  .flags { font-family: monospace; }
  .dim { color: #888; }
  .bar { background: #8031a7; display: inline-block; height: 0.8rem; }
  img.chart { max-width: 100%; border: 1px solid #eee; margin: 0.5rem 0; }
  nav { margin-bottom: 1.5rem; font-size: 0.9rem; }
</style>
</head>
<body>
<nav><a href="/">Catalogue</a> &middot; <a href="/stats/redshift">Redshift</a> &middot; <a href="/stats/Discovery date (UT)">Discovery years</a></nav>
{{template "content" .}}
<script>
  new EventSource("/events").onmessage = function (e) {
    if (e.data === "reload") location.reload();
  };
</script>
</body>
</html>`

var (
	indexTemplate = template.Must(template.New("index").Parse(pageShell + `
{{define "content"}}
<h1>TDE catalogue ({{len .Sources}} sources)</h1>
{{if .LastSource}}<p class="dim">Last viewed: <a href="/sources/{{.LastSource}}">{{.LastSource}}</a></p>{{end}}
<table>
<tr><th>Name</th><th>ZTF</th><th>z</th><th>Discovery</th><th>Data</th></tr>
{{range .Sources}}
<tr>
  <td><a href="/sources/{{.Name}}">{{.Name}}</a></td>
  <td>{{.ZTF}}</td>
  <td>{{if .Redshift}}{{.Redshift}}{{end}}</td>
  <td>{{.Discovery}}</td>
  <td class="flags">{{if .Data.Optical}}O{{else}}.{{end}}{{if .Data.UVOT}}U{{else}}.{{end}}{{if .Data.XRay}}X{{else}}.{{end}}{{if .Data.Spectra}}S{{else}}.{{end}}</td>
</tr>
{{end}}
</table>
{{end}}`))

	sourceTemplate = template.Must(template.New("source").Parse(pageShell + `
{{define "content"}}
<h1>{{.Name}}</h1>
<table>
{{if .ATName}}<tr><td class="dim">AT name</td><td>{{.ATName}}</td></tr>{{end}}
{{if .ZTFName}}<tr><td class="dim">ZTF name</td><td>{{.ZTFName}}</td></tr>{{end}}
{{if .GaiaName}}<tr><td class="dim">Gaia name</td><td>{{.GaiaName}}</td></tr>{{end}}
{{if .AltName}}<tr><td class="dim">Alternative name</td><td>{{.AltName}}</td></tr>{{end}}
{{if .Redshift}}<tr><td class="dim">Redshift</td><td>{{.Redshift}}</td></tr>{{end}}
{{if .Discovery}}<tr><td class="dim">Discovery (UT)</td><td>{{.Discovery}}</td></tr>{{end}}
<tr><td class="dim">Links</td><td>
  {{if .Links.TNS}}<a href="{{.Links.TNS}}">TNS</a> {{end}}
  {{if .Links.ZTF}}<a href="{{.Links.ZTF}}">ALeRCE</a> {{end}}
  {{if .Links.Gaia}}<a href="{{.Links.Gaia}}">Gaia Alerts</a>{{end}}
</td></tr>
</table>

{{if .Data.Optical}}
<h2>Optical / infrared photometry</h2>
<img class="chart" src="/sources/{{.Name}}/lightcurve.svg?kind=optical" alt="optical light curve">
{{end}}
{{if .Data.UVOT}}
<h2>Swift UVOT photometry</h2>
<img class="chart" src="/sources/{{.Name}}/lightcurve.svg?kind=uvot" alt="UVOT light curve">
{{end}}
{{if .Data.XRay}}
<h2>X-ray light curve</h2>
<img class="chart" src="/sources/{{.Name}}/lightcurve.svg?kind=xray" alt="X-ray light curve">
{{end}}
{{if .Spectra}}
<h2>Optical spectra</h2>
{{range .Spectra}}
<p class="dim">{{.}}</p>
<img class="chart" src="/sources/{{$.Name}}/spectrum.svg?file={{.}}{{if $.Redshift}}&rest=1{{end}}" alt="spectrum {{.}}">
{{end}}
{{end}}
{{end}}`))

	statsTemplate = template.Must(template.New("stats").Parse(pageShell + `
{{define "content"}}
<h1>{{.Column}} ({{.Total}} values)</h1>
<table>
{{range .Bins}}
<tr>
  <td>{{.Label}}</td>
  <td style="width: 70%"><span class="bar" style="width: {{.Width}}%"></span> {{.Count}}</td>
</tr>
{{end}}
</table>
{{end}}`))
)

type indexPageData struct {
	Title      string
	Sources    []sourceSummary
	LastSource string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.sessionStore.Get(r, sessionName)
	data := indexPageData{
		Title:   "Catalogue",
		Sources: s.sourceSummaries(),
	}
	if v, ok := sess.Values["last_source"].(string); ok {
		data.LastSource = v
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Error("render index failed", "error", err)
	}
}

type sourcePageData struct {
	Title     string
	Name      string
	ATName    string
	ZTFName   string
	GaiaName  string
	AltName   string
	Redshift  *float64
	Discovery string
	Links     catalogue.Links
	Data      struct{ Optical, UVOT, XRay, Spectra bool }
	Spectra   []string
}

func (s *Server) handleSourcePage(w http.ResponseWriter, r *http.Request) {
	src := s.findSource(w, chi.URLParam(r, "name"))
	if src == nil {
		return
	}
	name := src.PlainName()
	s.rememberSource(w, r, name)

	avail := s.resolver.Availability(name)
	data := sourcePageData{
		Title:     name,
		Name:      name,
		ATName:    src.ATName,
		ZTFName:   src.ZTFName,
		GaiaName:  src.GaiaName,
		AltName:   src.AltName,
		Discovery: src.Fields[catalogue.ColDiscoveryUT],
		Links:     src.Links(),
	}
	data.Data.Optical = avail.Optical
	data.Data.UVOT = avail.UVOT
	data.Data.XRay = avail.XRay
	data.Data.Spectra = avail.Spectra
	if z, ok := src.Redshift(); ok {
		data.Redshift = &z
	}
	if avail.Spectra {
		if specs, _, err := spectra.LoadDir(s.resolver.SpectraPath(name)); err == nil {
			for _, sp := range specs {
				data.Spectra = append(data.Spectra, sp.File)
			}
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := sourceTemplate.Execute(w, data); err != nil {
		s.logger.Error("render source page failed", "error", err)
	}
}

type statsBin struct {
	Label string
	Count int
	Width int // bar width as a percentage of the largest bin
}

type statsPageData struct {
	Title  string
	Column string
	Total  int
	Bins   []statsBin
}

func (s *Server) handleStatsPage(w http.ResponseWriter, r *http.Request) {
	column := chi.URLParam(r, "column")

	hist, err := s.catalogueSnapshot().Histogram(column, catalogue.DefaultHistogramBins)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	maxCount := 0
	for _, b := range hist.Bins {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}

	data := statsPageData{
		Title:  hist.Column,
		Column: hist.Column,
		Total:  hist.Total,
	}
	for _, b := range hist.Bins {
		width := 0
		if maxCount > 0 {
			width = b.Count * 100 / maxCount
		}
		data.Bins = append(data.Bins, statsBin{Label: b.Label, Count: b.Count, Width: width})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := statsTemplate.Execute(w, data); err != nil {
		s.logger.Error("render stats page failed", "error", err)
	}
}
