package web

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tdecat/tdecat/internal/testutil"
)

const testCatalogue = `AT name,ZTF name,Gaia alert name,Alternative name,Redshift,Discovery date (UT),Discovery mag/flux
AT 2019qiz,ZTF19abzrhgq,Gaia19eks,,0.0151,2019-09-19 13:15:00,17.5 (vega)
AT 2018hyz,ZTF18acpdvos,,,0.0457,2018-11-06 00:00:00,17.2
,,,iPTF16fnl,0.0163,2016-08-26 00:00:00,17.0
`

// writeArchive lays out a data root with the catalogue and every data kind
// for AT2019qiz. The other sources have no data files.
func writeArchive(t *testing.T) (cataloguePath, dataRoot string) {
	t.Helper()
	dataRoot = t.TempDir()

	cataloguePath = filepath.Join(dataRoot, "TDE_catalogue_all.csv")
	require.NoError(t, os.WriteFile(cataloguePath, []byte(testCatalogue), 0o644))

	write := func(rel, content string) {
		path := filepath.Join(dataRoot, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	write("OPTICAL_INFRARED/target_AT2019qiz_photometry.csv",
		"MJD;Magnitude;Error;Filter\n"+
			"58750.1;17.2;0.05;g\n"+
			"58751.3;17.4;0.04;r\n")
	write("UV/AT2019qiz_uvot_lightcurve.csv",
		"mjd,mag_w2_src,magerr_w2_src,mag_vv_src,magerr_vv_src\n"+
			"58750.5,18.0,0.1,17.5,0.2\n")
	write("X-RAYS/AT2019qiz_xray_lightcurve.csv",
		"mjd_start,mjd_stop,src_flux,src_flux_errinf,src_flux_errsup,src_flux_SNR,src_flux_UL\n"+
			"58750,58752,1e-12,1e-13,2e-13,5.0,0\n"+
			"58780,58782,1e-13,1e-13,1e-13,1.5,8e-13\n")
	write("OPTICAL_SPECTRA/AT2019qiz_ascii_files/epoch1.dat",
		"4000.0 1.0e-16\n4002.0 1.4e-16\n")
	write("OPTICAL_SPECTRA/AT2019qiz_ascii_files/epoch2.dat",
		"4000.0 1.1e-16\n4002.0 1.2e-16\n")

	return cataloguePath, dataRoot
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cataloguePath, dataRoot := writeArchive(t)

	s, err := NewServer(Config{
		CataloguePath: cataloguePath,
		DataRoot:      dataRoot,
		Port:          0,
		SNRThreshold:  3,
		SessionSecret: "test-secret",
		Logger:        testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	return s
}

func get(t *testing.T, h http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestAPISources(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := get(t, h, "/api/sources")
	require.Equal(t, http.StatusOK, rec.Code)

	var sources []sourceSummary
	decodeJSON(t, rec, &sources)
	require.Len(t, sources, 3)

	byName := make(map[string]sourceSummary, len(sources))
	for _, s := range sources {
		byName[s.Name] = s
	}

	qiz, ok := byName["AT2019qiz"]
	require.True(t, ok)
	assert.Equal(t, "ZTF19abzrhgq", qiz.ZTF)
	require.NotNil(t, qiz.Redshift)
	assert.InDelta(t, 0.0151, *qiz.Redshift, 1e-9)
	assert.True(t, qiz.Data.Optical)
	assert.True(t, qiz.Data.UVOT)
	assert.True(t, qiz.Data.XRay)
	assert.True(t, qiz.Data.Spectra)

	fnl, ok := byName["iPTF16fnl"]
	require.True(t, ok)
	assert.False(t, fnl.Data.Any())
}

func TestAPISourceDetail(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := get(t, h, "/api/sources/AT2019qiz")
	require.Equal(t, http.StatusOK, rec.Code)

	var detail map[string]any
	decodeJSON(t, rec, &detail)
	assert.Equal(t, "AT2019qiz", detail["name"])
	assert.Equal(t, "AT 2019qiz", detail["at_name"])
	assert.InDelta(t, 0.0151, detail["redshift"].(float64), 1e-9)

	links, ok := detail["links"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, links["tns"], "2019qiz")
}

func TestAPISourceNotFound(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := get(t, h, "/api/sources/AT2099xyz")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	decodeJSON(t, rec, &body)
	assert.Contains(t, body["error"], "AT2099xyz")
}

func TestAPILightCurveOptical(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := get(t, h, "/api/sources/AT2019qiz/lightcurve")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Source string `json:"source"`
		Kind   string `json:"kind"`
		Series []struct {
			Band   string `json:"band"`
			Points []struct {
				MJD   float64 `json:"mjd"`
				Value float64 `json:"value"`
			} `json:"points"`
		} `json:"series"`
	}
	decodeJSON(t, rec, &body)
	assert.Equal(t, "AT2019qiz", body.Source)
	assert.Equal(t, "optical", body.Kind)
	require.Len(t, body.Series, 2) // g and r bands
}

func TestAPILightCurveUVOT(t *testing.T) {
	h := newTestServer(t).Handler()

	var body struct {
		Series []struct {
			Band   string `json:"band"`
			Points []struct {
				Value float64 `json:"value"`
			} `json:"points"`
		} `json:"series"`
	}

	// The loader converts Vega to AB exactly once: w2 18.0 Vega is 19.73 AB.
	rec := get(t, h, "/api/sources/AT2019qiz/lightcurve?kind=uvot")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &body)
	require.NotEmpty(t, body.Series)
	require.Equal(t, "w2", body.Series[0].Band)
	require.NotEmpty(t, body.Series[0].Points)
	assert.InDelta(t, 19.73, body.Series[0].Points[0].Value, 1e-9)

	// flux=1 converts that AB magnitude to Jansky.
	rec = get(t, h, "/api/sources/AT2019qiz/lightcurve?kind=uvot&flux=1")
	require.Equal(t, http.StatusOK, rec.Code)
	body.Series = nil
	decodeJSON(t, rec, &body)
	require.NotEmpty(t, body.Series)
	require.NotEmpty(t, body.Series[0].Points)
	assert.InDelta(t, 3631*math.Pow(10, -0.4*19.73), body.Series[0].Points[0].Value, 1e-12)
}

func TestAPILightCurveXRaySession(t *testing.T) {
	h := newTestServer(t).Handler()

	// Explicit snr override is applied and remembered in the session cookie.
	rec := get(t, h, "/api/sources/AT2019qiz/lightcurve?kind=xray&snr=5")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	decodeJSON(t, rec, &body)
	assert.InDelta(t, 5.0, body["snr_threshold"].(float64), 1e-9)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec2 := httptest.NewRecorder()
	h.ServeHTTP(rec2, req)
	require.Equal(t, http.StatusOK, rec2.Code)

	var sess map[string]any
	decodeJSON(t, rec2, &sess)
	assert.InDelta(t, 5.0, sess["snr_threshold"].(float64), 1e-9)
}

func TestAPILightCurveMissingData(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := get(t, h, "/api/sources/AT2018hyz/lightcurve")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, h, "/api/sources/AT2019qiz/lightcurve?kind=bogus")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPISpectra(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := get(t, h, "/api/sources/AT2019qiz/spectra")
	require.Equal(t, http.StatusOK, rec.Code)

	var listing struct {
		Spectra []string `json:"spectra"`
	}
	decodeJSON(t, rec, &listing)
	assert.Equal(t, []string{"epoch1.dat", "epoch2.dat"}, listing.Spectra)

	// Rest-frame request divides wavelengths by 1+z.
	rec = get(t, h, "/api/sources/AT2019qiz/spectra?file=epoch1.dat&rest=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		RestFrame bool `json:"rest_frame"`
		Spectrum  struct {
			Points []struct {
				Wavelength float64 `json:"wavelength"`
			} `json:"points"`
		} `json:"spectrum"`
	}
	decodeJSON(t, rec, &body)
	assert.True(t, body.RestFrame)
	require.NotEmpty(t, body.Spectrum.Points)
	assert.InDelta(t, 4000.0/1.0151, body.Spectrum.Points[0].Wavelength, 1e-6)

	rec = get(t, h, "/api/sources/AT2019qiz/spectra?file=nope.dat")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPIStats(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := get(t, h, "/api/stats/redshift?bins=5")
	require.Equal(t, http.StatusOK, rec.Code)

	var hist struct {
		Column string `json:"Column"`
		Total  int    `json:"Total"`
	}
	decodeJSON(t, rec, &hist)
	assert.Equal(t, 3, hist.Total)

	rec = get(t, h, "/api/stats/unknown")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLightCurveSVG(t *testing.T) {
	h := newTestServer(t).Handler()

	for _, kind := range []string{"optical", "uvot", "xray"} {
		rec := get(t, h, "/sources/AT2019qiz/lightcurve.svg?kind="+kind)
		require.Equal(t, http.StatusOK, rec.Code, "kind %s", kind)
		assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "<svg")
	}
}

func TestSpectrumSVG(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := get(t, h, "/sources/AT2019qiz/spectrum.svg?file=epoch1.dat&rest=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "rest frame")
}

func TestHTMLPages(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "AT2019qiz")
	assert.Contains(t, rec.Body.String(), "iPTF16fnl")

	rec = get(t, h, "/sources/AT2019qiz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "lightcurve.svg")
	assert.Contains(t, rec.Body.String(), "epoch1.dat")

	rec = get(t, h, "/stats/redshift")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, h, "/sources/AT2099xyz")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReload(t *testing.T) {
	cataloguePath, dataRoot := writeArchive(t)
	s, err := NewServer(Config{
		CataloguePath: cataloguePath,
		DataRoot:      dataRoot,
		SNRThreshold:  3,
		SessionSecret: "test-secret",
		Logger:        testutil.NewTestLogger(t),
	})
	require.NoError(t, err)

	extra := testCatalogue + "AT 2020zso,ZTF20acqoiyt,,,0.0563,2020-11-12 00:00:00,18.0\n"
	require.NoError(t, os.WriteFile(cataloguePath, []byte(extra), 0o644))
	require.NoError(t, s.reload())

	rec := get(t, s.Handler(), "/api/sources")
	require.Equal(t, http.StatusOK, rec.Code)

	var sources []sourceSummary
	decodeJSON(t, rec, &sources)
	assert.Len(t, sources, 4)
}

func TestNotifier(t *testing.T) {
	n := NewNotifier()
	ch := n.Subscribe()
	defer n.Unsubscribe(ch)

	n.Broadcast()
	select {
	case <-ch:
	default:
		t.Fatal("expected a pending notification")
	}

	// A second broadcast with nobody draining must not block.
	n.Broadcast()
	n.Broadcast()
}
