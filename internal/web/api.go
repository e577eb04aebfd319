package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tdecat/tdecat/internal/catalogue"
	"github.com/tdecat/tdecat/internal/dataset"
	"github.com/tdecat/tdecat/internal/photometry"
	"github.com/tdecat/tdecat/internal/spectra"
)

const sessionName = "tdecat"

// setupRoutes registers all viewer routes.
func (s *Server) setupRoutes(r chi.Router) {
	r.Get("/", s.handleIndex)
	r.Get("/sources/{name}", s.handleSourcePage)
	r.Get("/sources/{name}/lightcurve.svg", s.handleLightCurveSVG)
	r.Get("/sources/{name}/spectrum.svg", s.handleSpectrumSVG)
	r.Get("/stats/{column}", s.handleStatsPage)
	r.Get("/events", s.handleSSE)

	r.Route("/api", func(api chi.Router) {
		api.Get("/sources", s.handleAPISources)
		api.Get("/sources/{name}", s.handleAPISource)
		api.Get("/sources/{name}/lightcurve", s.handleAPILightCurve)
		api.Get("/sources/{name}/spectra", s.handleAPISpectra)
		api.Get("/stats/{column}", s.handleAPIStats)
		api.Get("/session", s.handleAPISession)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// findSource resolves a source by name, mapping lookup failures to 404.
func (s *Server) findSource(w http.ResponseWriter, name string) *catalogue.Source {
	src, err := s.catalogueSnapshot().Find(name)
	if err != nil {
		var nf *catalogue.NotFoundError
		status := http.StatusInternalServerError
		if errors.As(err, &nf) {
			status = http.StatusNotFound
		}
		writeJSONError(w, status, err)
		return nil
	}
	return src
}

// sourceSummary is one row of the /api/sources listing.
type sourceSummary struct {
	Name      string               `json:"name"`
	ZTF       string               `json:"ztf,omitempty"`
	Redshift  *float64             `json:"redshift,omitempty"`
	Discovery string               `json:"discovery,omitempty"`
	Data      dataset.Availability `json:"data"`
}

func (s *Server) sourceSummaries() []sourceSummary {
	cat := s.catalogueSnapshot()
	out := make([]sourceSummary, 0, len(cat.Sources))
	for i := range cat.Sources {
		src := &cat.Sources[i]
		name := src.PlainName()
		if name == "" {
			continue
		}
		sum := sourceSummary{
			Name:      name,
			ZTF:       src.PlainZTFName(),
			Discovery: src.Fields[catalogue.ColDiscoveryUT],
			Data:      s.resolver.Availability(name),
		}
		if z, ok := src.Redshift(); ok {
			sum.Redshift = &z
		}
		out = append(out, sum)
	}
	return out
}

func (s *Server) handleAPISources(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.sourceSummaries())
}

func (s *Server) handleAPISource(w http.ResponseWriter, r *http.Request) {
	src := s.findSource(w, chi.URLParam(r, "name"))
	if src == nil {
		return
	}
	name := src.PlainName()

	detail := map[string]any{
		"name":      name,
		"at_name":   src.ATName,
		"ztf_name":  src.ZTFName,
		"gaia_name": src.GaiaName,
		"alt_name":  src.AltName,
		"discovery": src.Fields[catalogue.ColDiscoveryUT],
		"links":     src.Links(),
		"data":      s.resolver.Availability(name),
		"fields":    src.Fields,
	}
	if z, ok := src.Redshift(); ok {
		detail["redshift"] = z
	}
	writeJSON(w, http.StatusOK, detail)
}

// handleAPILightCurve serves photometry as JSON.
//
// Query parameters:
//
//	kind  optical (default), uvot, or xray
//	flux  convert UVOT AB magnitudes to flux density in Jansky
//	snr   X-ray detection threshold override, remembered in the session
func (s *Server) handleAPILightCurve(w http.ResponseWriter, r *http.Request) {
	src := s.findSource(w, chi.URLParam(r, "name"))
	if src == nil {
		return
	}
	name := src.PlainName()
	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = "optical"
	}

	switch kind {
	case "optical":
		series, err := photometry.LoadOptical(s.resolver.OpticalPath(name))
		if err != nil {
			s.writeLoadError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"source": name, "kind": kind, "series": series})

	case "uvot":
		// Magnitudes come out of the loader already converted to AB.
		series, err := photometry.LoadUVOT(s.resolver.UVOTPath(name))
		if err != nil {
			s.writeLoadError(w, err)
			return
		}
		if r.URL.Query().Get("flux") != "" {
			for i := range series {
				series[i] = photometry.ToFlux(series[i])
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"source": name, "kind": kind, "series": series})

	case "xray":
		snr := s.snrFromRequest(w, r)
		curve, err := photometry.LoadXRay(s.resolver.XRayPath(name), snr)
		if err != nil {
			s.writeLoadError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"source":        name,
			"kind":          kind,
			"snr_threshold": curve.SNRThreshold,
			"points":        curve.Points,
		})

	default:
		writeJSONError(w, http.StatusBadRequest, fmt.Errorf("unknown kind %q", kind))
	}
}

func (s *Server) handleAPISpectra(w http.ResponseWriter, r *http.Request) {
	src := s.findSource(w, chi.URLParam(r, "name"))
	if src == nil {
		return
	}
	name := src.PlainName()

	specs, skipped, err := spectra.LoadDir(s.resolver.SpectraPath(name))
	if err != nil {
		s.writeLoadError(w, err)
		return
	}

	if file := r.URL.Query().Get("file"); file != "" {
		for i := range specs {
			if specs[i].File != file {
				continue
			}
			spec := specs[i]
			rest := false
			if r.URL.Query().Get("rest") != "" {
				z, ok := src.Redshift()
				if !ok {
					writeJSONError(w, http.StatusBadRequest,
						fmt.Errorf("no redshift catalogued for %s", name))
					return
				}
				spec = spectra.RestFrame(spec, z)
				rest = true
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"source": name, "rest_frame": rest, "spectrum": spec,
			})
			return
		}
		writeJSONError(w, http.StatusNotFound, fmt.Errorf("no spectrum named %q", file))
		return
	}

	files := make([]string, 0, len(specs))
	for _, sp := range specs {
		files = append(files, sp.File)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"source": name, "spectra": files, "skipped": skipped,
	})
}

func (s *Server) handleAPIStats(w http.ResponseWriter, r *http.Request) {
	column := chi.URLParam(r, "column")
	bins := catalogue.DefaultHistogramBins
	if v := r.URL.Query().Get("bins"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSONError(w, http.StatusBadRequest, fmt.Errorf("bad bins value %q", v))
			return
		}
		bins = n
	}

	hist, err := s.catalogueSnapshot().Histogram(column, bins)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, hist)
}

// handleAPISession exposes what the viewer remembers about this browser.
func (s *Server) handleAPISession(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.sessionStore.Get(r, sessionName)
	out := map[string]any{"snr_threshold": s.snrThreshold}
	if v, ok := sess.Values["snr"].(float64); ok {
		out["snr_threshold"] = v
	}
	if v, ok := sess.Values["last_source"].(string); ok {
		out["last_source"] = v
	}
	writeJSON(w, http.StatusOK, out)
}

// snrFromRequest resolves the X-ray threshold: explicit query parameter
// (remembered in the session) wins over the session value, which wins over
// the configured default.
func (s *Server) snrFromRequest(w http.ResponseWriter, r *http.Request) float64 {
	sess, _ := s.sessionStore.Get(r, sessionName)

	if v := r.URL.Query().Get("snr"); v != "" {
		if snr, err := strconv.ParseFloat(v, 64); err == nil && snr >= 0 {
			sess.Values["snr"] = snr
			_ = sess.Save(r, w)
			return snr
		}
	}
	if v, ok := sess.Values["snr"].(float64); ok {
		return v
	}
	return s.snrThreshold
}

// rememberSource stores the last viewed source in the session.
func (s *Server) rememberSource(w http.ResponseWriter, r *http.Request, name string) {
	sess, _ := s.sessionStore.Get(r, sessionName)
	sess.Values["last_source"] = name
	_ = sess.Save(r, w)
}

// writeLoadError maps data-loading failures onto HTTP statuses.
func (s *Server) writeLoadError(w http.ResponseWriter, err error) {
	var nf *photometry.NotFoundError
	var snf *spectra.NotFoundError
	if errors.As(err, &nf) || errors.As(err, &snf) {
		writeJSONError(w, http.StatusNotFound, err)
		return
	}
	writeJSONError(w, http.StatusInternalServerError, err)
}

// handleSSE notifies the browser when the catalogue is reloaded.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	ch := s.notifier.Subscribe()
	defer s.notifier.Unsubscribe(ch)

	_, _ = fmt.Fprintf(w, "data: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ch:
			_, _ = fmt.Fprintf(w, "data: reload\n\n")
			flusher.Flush()
		}
	}
}
