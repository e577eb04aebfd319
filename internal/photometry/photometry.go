// Package photometry loads per-object light-curve files and converts
// between magnitude systems and flux units.
package photometry

import (
	"fmt"
	"math"
)

// Point is a single photometric measurement.
type Point struct {
	MJD   float64 `json:"mjd"`
	Value float64 `json:"value"`
	Err   float64 `json:"err"`
}

// Series is a light curve in one band.
type Series struct {
	Band   string  `json:"band"`
	Points []Point `json:"points"`
}

// NotFoundError reports a missing light-curve file. Callers render this as
// "no data available" rather than an empty plot.
type NotFoundError struct {
	Kind string // "optical", "uvot", "xray"
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s data available (%s)", e.Kind, e.Path)
}

// ParseError reports a malformed row in a light-curve file.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ABReferenceFluxJy is the AB system zero-point flux density in Jansky.
const ABReferenceFluxJy = 3631.0

// ABMagnitudeToFlux converts an AB magnitude and its uncertainty to flux
// density in Jy: f = 3631 * 10^(-0.4 m), sigma_f = f * ln(10) * 0.4 * sigma_m.
func ABMagnitudeToFlux(mag, magErr float64) (flux, fluxErr float64) {
	flux = ABReferenceFluxJy * math.Pow(10, -0.4*mag)
	fluxErr = flux * math.Ln10 * 0.4 * magErr
	return flux, fluxErr
}
