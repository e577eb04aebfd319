package photometry

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// UVOTFilters lists the Swift UVOT filters in plot order (bluest first).
var UVOTFilters = []string{"w2", "m2", "w1", "uu", "bb", "vv"}

// uvotZeropoint holds the Vega and AB zero-points for one UVOT filter
// (Breeveld et al. calibration).
type uvotZeropoint struct {
	Vega float64
	AB   float64
}

var uvotZeropoints = map[string]uvotZeropoint{
	"vv": {Vega: 17.89, AB: 17.88},
	"bb": {Vega: 19.11, AB: 18.98},
	"uu": {Vega: 18.34, AB: 19.36},
	"w1": {Vega: 17.44, AB: 18.95},
	"m2": {Vega: 16.85, AB: 18.54},
	"w2": {Vega: 17.38, AB: 19.11},
}

// UVOTDisplayOffsets are the vertical magnitude offsets applied per filter
// when stacking UVOT light curves in one panel.
var UVOTDisplayOffsets = map[string]float64{
	"w2": 0.0,
	"m2": 1.25,
	"w1": 2.5,
	"uu": 4,
	"bb": 5.5,
	"vv": 7,
}

// VegaToAB converts a Swift UVOT Vega magnitude to an AB magnitude.
func VegaToAB(vegaMag float64, filter string) (float64, error) {
	zp, ok := uvotZeropoints[filter]
	if !ok {
		return 0, fmt.Errorf("unknown UVOT filter: %s", filter)
	}
	return vegaMag + (zp.AB - zp.Vega), nil
}

// LoadUVOT reads a Swift UVOT light-curve file: comma-separated with an
// "mjd" column plus "mag_<f>_src"/"magerr_<f>_src" pairs per filter. Source
// magnitudes are recorded in the Vega system and converted to AB here.
// Filters without columns in the file are skipped.
func LoadUVOT(path string) ([]Series, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Kind: "uvot", Path: path}
		}
		return nil, fmt.Errorf("failed to open UVOT light curve: %w", err)
	}
	defer func() { _ = f.Close() }()

	return parseUVOT(f, path)
}

func parseUVOT(r io.Reader, path string) ([]Series, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, &ParseError{Path: path, Line: 1, Err: fmt.Errorf("missing header: %w", err)}
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	mjdIdx, ok := col["mjd"]
	if !ok {
		return nil, &ParseError{Path: path, Line: 1, Err: fmt.Errorf("missing column %q", "mjd")}
	}

	series := make(map[string]*Series)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Path: path, Line: line, Err: err}
		}

		cell := func(idx int) string {
			if idx < len(record) {
				return record[idx]
			}
			return ""
		}

		mjd, err := strconv.ParseFloat(cell(mjdIdx), 64)
		if err != nil {
			return nil, &ParseError{Path: path, Line: line, Err: fmt.Errorf("bad mjd: %w", err)}
		}

		for _, filt := range UVOTFilters {
			magIdx, okMag := col["mag_"+filt+"_src"]
			errIdx, okErr := col["magerr_"+filt+"_src"]
			if !okMag || !okErr {
				continue
			}

			// Blank cells mean the filter was not observed in this epoch.
			rawMag, rawErr := cell(magIdx), cell(errIdx)
			if rawMag == "" {
				continue
			}
			vega, err := strconv.ParseFloat(rawMag, 64)
			if err != nil {
				return nil, &ParseError{Path: path, Line: line, Err: fmt.Errorf("bad mag_%s_src: %w", filt, err)}
			}
			magErr := 0.0
			if rawErr != "" {
				magErr, err = strconv.ParseFloat(rawErr, 64)
				if err != nil {
					return nil, &ParseError{Path: path, Line: line, Err: fmt.Errorf("bad magerr_%s_src: %w", filt, err)}
				}
			}

			ab, err := VegaToAB(vega, filt)
			if err != nil {
				return nil, &ParseError{Path: path, Line: line, Err: err}
			}

			s, ok := series[filt]
			if !ok {
				s = &Series{Band: filt}
				series[filt] = s
			}
			s.Points = append(s.Points, Point{MJD: mjd, Value: ab, Err: magErr})
		}
	}

	// Preserve the canonical filter order rather than sorting alphabetically.
	out := make([]Series, 0, len(series))
	for _, filt := range UVOTFilters {
		if s, ok := series[filt]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}

// ToFlux converts an AB-magnitude series to flux density in Jy.
func ToFlux(s Series) Series {
	out := Series{Band: s.Band, Points: make([]Point, len(s.Points))}
	for i, p := range s.Points {
		flux, fluxErr := ABMagnitudeToFlux(p.Value, p.Err)
		out.Points[i] = Point{MJD: p.MJD, Value: flux, Err: fluxErr}
	}
	return out
}
