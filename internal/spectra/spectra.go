// Package spectra loads per-object optical spectrum files and applies
// rest-frame corrections.
package spectra

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Point is one wavelength/flux sample.
type Point struct {
	Wavelength float64 `json:"wavelength"`
	Flux       float64 `json:"flux"`
}

// Spectrum is a single spectrum file.
type Spectrum struct {
	File   string  `json:"file"`
	Points []Point `json:"points"`
}

// RestLines are reference emission lines (rest wavelength in Angstrom)
// marked on spectrum plots.
var RestLines = map[string]float64{
	"H alpha": 6562.8,
	"H beta":  4861.3,
	"He II":   4686.0,
}

// NotFoundError reports a missing spectrum directory for a source.
type NotFoundError struct {
	Dir string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no spectrum folder found (%s)", e.Dir)
}

// LoadDir reads every non-hidden file in dir as a whitespace-separated
// spectrum table ('#' starts a comment). Files with fewer than two columns
// or no parseable rows are skipped; the skipped file names are returned so
// callers can report them. Spectra are sorted by file name.
func LoadDir(dir string) ([]Spectrum, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, &NotFoundError{Dir: dir}
		}
		return nil, nil, fmt.Errorf("failed to read spectrum folder: %w", err)
	}

	var spectra []Spectrum
	var skipped []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		spec, err := loadFile(filepath.Join(dir, entry.Name()))
		if err != nil || len(spec.Points) == 0 {
			skipped = append(skipped, entry.Name())
			continue
		}
		spectra = append(spectra, spec)
	}

	sort.Slice(spectra, func(i, j int) bool { return spectra[i].File < spectra[j].File })
	return spectra, skipped, nil
}

func loadFile(path string) (Spectrum, error) {
	f, err := os.Open(path)
	if err != nil {
		return Spectrum{}, err
	}
	defer func() { _ = f.Close() }()

	spec := Spectrum{File: filepath.Base(path)}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return Spectrum{}, fmt.Errorf("%s: row with fewer than two columns", path)
		}
		wl, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return Spectrum{}, fmt.Errorf("%s: bad wavelength %q", path, fields[0])
		}
		flux, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return Spectrum{}, fmt.Errorf("%s: bad flux %q", path, fields[1])
		}
		spec.Points = append(spec.Points, Point{Wavelength: wl, Flux: flux})
	}
	if err := scanner.Err(); err != nil {
		return Spectrum{}, err
	}

	return spec, nil
}

// RestFrame returns a copy of the spectrum with observed wavelengths
// divided by (1+z). A zero redshift returns the spectrum unchanged.
func RestFrame(s Spectrum, z float64) Spectrum {
	if z == 0 {
		return s
	}
	out := Spectrum{File: s.File, Points: make([]Point, len(s.Points))}
	for i, p := range s.Points {
		out.Points[i] = Point{Wavelength: p.Wavelength / (1.0 + z), Flux: p.Flux}
	}
	return out
}
