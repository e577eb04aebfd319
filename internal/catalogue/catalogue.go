// Package catalogue loads and queries the TDE master catalogue CSV.
package catalogue

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Well-known catalogue column names.
const (
	ColATName       = "AT name"
	ColZTFName      = "ZTF name"
	ColGaiaName     = "Gaia alert name"
	ColAltName      = "Alternative name"
	ColRedshift     = "Redshift"
	ColDiscoveryUT  = "Discovery date (UT)"
	ColDiscoveryMag = "Discovery mag/flux"
)

// Source is a single catalogue row. The named fields cover the columns the
// toolkit interprets; everything else stays available through Fields.
type Source struct {
	ATName   string
	ZTFName  string
	GaiaName string
	AltName  string

	// Fields maps every catalogue column to its raw cell value.
	Fields map[string]string
}

// Catalogue is the loaded master table with its column order preserved.
type Catalogue struct {
	Columns []string
	Sources []Source
}

// NotFoundError reports a source name that does not resolve to any row.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("source not found: %s", e.Name)
}

// Load reads the catalogue CSV from path. The first record is the header;
// rows shorter than the header are padded with empty cells so sparse
// trailing columns do not fail the load.
func Load(path string) (*Catalogue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalogue: %w", err)
	}
	defer func() { _ = f.Close() }()

	cat, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalogue %s: %w", path, err)
	}
	return cat, nil
}

// Parse reads catalogue CSV content from r.
func Parse(r io.Reader) (*Catalogue, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // tolerate ragged rows
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("catalogue is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	cat := &Catalogue{Columns: header}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		fields := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				fields[col] = strings.TrimSpace(record[i])
			} else {
				fields[col] = ""
			}
		}

		cat.Sources = append(cat.Sources, Source{
			ATName:   fields[ColATName],
			ZTFName:  fields[ColZTFName],
			GaiaName: fields[ColGaiaName],
			AltName:  fields[ColAltName],
			Fields:   fields,
		})
	}

	return cat, nil
}

// Find returns the source whose plain AT, ZTF, Gaia, or alternative name
// matches name (case-insensitive). Unknown names yield a NotFoundError so
// callers can distinguish "no selection" from real failures.
func (c *Catalogue) Find(name string) (*Source, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return nil, &NotFoundError{Name: name}
	}

	for i := range c.Sources {
		s := &c.Sources[i]
		for _, candidate := range []string{
			s.PlainName(),
			s.PlainZTFName(),
			s.ATName,
			s.GaiaName,
			s.AltName,
		} {
			if candidate != "" && strings.ToLower(candidate) == want {
				return s, nil
			}
		}
	}
	return nil, &NotFoundError{Name: name}
}

// Redshift returns the numeric redshift of the source, or ok=false when the
// cell is blank or not a number.
func (s *Source) Redshift() (float64, bool) {
	z, err := strconv.ParseFloat(strings.TrimSpace(s.Fields[ColRedshift]), 64)
	if err != nil {
		return 0, false
	}
	return z, true
}

// DiscoveryMag returns the numeric discovery magnitude. Some rows carry a
// "(vega)" suffix which is stripped before parsing.
func (s *Source) DiscoveryMag() (float64, bool) {
	raw := s.Fields[ColDiscoveryMag]
	raw = strings.ReplaceAll(raw, "(vega)", "")
	m, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return m, true
}
