package photometry

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
)

// LoadOptical reads an optical/infrared photometry file: semicolon-separated
// with a header row containing at least MJD, Magnitude, Error and Filter
// columns. Points are grouped into one Series per filter, sorted by filter
// name for deterministic output.
func LoadOptical(path string) ([]Series, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Kind: "optical", Path: path}
		}
		return nil, fmt.Errorf("failed to open optical photometry: %w", err)
	}
	defer func() { _ = f.Close() }()

	return parseOptical(f, path)
}

func parseOptical(r io.Reader, path string) ([]Series, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
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
	for _, required := range []string{"MJD", "Magnitude", "Error", "Filter"} {
		if _, ok := col[required]; !ok {
			return nil, &ParseError{Path: path, Line: 1, Err: fmt.Errorf("missing column %q", required)}
		}
	}

	byBand := make(map[string]*Series)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Path: path, Line: line, Err: err}
		}

		get := func(name string) string {
			if i := col[name]; i < len(record) {
				return record[i]
			}
			return ""
		}

		mjd, err := strconv.ParseFloat(get("MJD"), 64)
		if err != nil {
			return nil, &ParseError{Path: path, Line: line, Err: fmt.Errorf("bad MJD: %w", err)}
		}
		mag, err := strconv.ParseFloat(get("Magnitude"), 64)
		if err != nil {
			return nil, &ParseError{Path: path, Line: line, Err: fmt.Errorf("bad Magnitude: %w", err)}
		}
		// A blank error cell is common for survey upper limits.
		magErr := 0.0
		if raw := get("Error"); raw != "" {
			magErr, err = strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, &ParseError{Path: path, Line: line, Err: fmt.Errorf("bad Error: %w", err)}
			}
		}

		band := get("Filter")
		s, ok := byBand[band]
		if !ok {
			s = &Series{Band: band}
			byBand[band] = s
		}
		s.Points = append(s.Points, Point{MJD: mjd, Value: mag, Err: magErr})
	}

	bands := make([]string, 0, len(byBand))
	for b := range byBand {
		bands = append(bands, b)
	}
	sort.Strings(bands)

	series := make([]Series, 0, len(bands))
	for _, b := range bands {
		series = append(series, *byBand[b])
	}
	return series, nil
}
