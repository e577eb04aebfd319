package catalogue

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// DefaultHistogramBins matches the bin count of the original catalogue plots.
const DefaultHistogramBins = 30

// Bin is one histogram bucket.
type Bin struct {
	Label string
	Count int
}

// Histogram is a binned distribution over one catalogue column.
type Histogram struct {
	Column string
	Bins   []Bin
	Total  int // rows with a usable value
}

// HistogramColumns lists the columns the stats command supports.
func HistogramColumns() []string {
	return []string{ColRedshift, ColDiscoveryUT, ColDiscoveryMag}
}

// ResolveHistogramColumn maps a user-facing column spelling to a supported
// catalogue column. Matching is case-insensitive and accepts the short
// aliases "redshift", "discovery", and "mag".
func ResolveHistogramColumn(name string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "redshift", "z":
		return ColRedshift, true
	case "discovery", "year", strings.ToLower(ColDiscoveryUT):
		return ColDiscoveryUT, true
	case "mag", "magnitude", strings.ToLower(ColDiscoveryMag):
		return ColDiscoveryMag, true
	default:
		return "", false
	}
}

// Histogram bins the given column. Numeric columns (redshift, discovery
// magnitude) get equal-width bins; the discovery date column is bucketed by
// year. Rows without a usable value are skipped.
func (c *Catalogue) Histogram(column string, bins int) (*Histogram, error) {
	if bins <= 0 {
		bins = DefaultHistogramBins
	}

	if resolved, ok := ResolveHistogramColumn(column); ok {
		column = resolved
	}

	switch column {
	case ColRedshift:
		return c.numericHistogram(column, bins, func(s *Source) (float64, bool) { return s.Redshift() })
	case ColDiscoveryMag:
		return c.numericHistogram(column, bins, func(s *Source) (float64, bool) { return s.DiscoveryMag() })
	case ColDiscoveryUT:
		return c.yearHistogram(column)
	default:
		return nil, fmt.Errorf("unsupported histogram column: %s (supported: %s)",
			column, strings.Join(HistogramColumns(), ", "))
	}
}

func (c *Catalogue) numericHistogram(column string, bins int, value func(*Source) (float64, bool)) (*Histogram, error) {
	var values []float64
	for i := range c.Sources {
		if v, ok := value(&c.Sources[i]); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no numeric values in column %s", column)
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return &Histogram{
			Column: column,
			Bins:   []Bin{{Label: formatRange(lo, hi), Count: len(values)}},
			Total:  len(values),
		}, nil
	}

	width := (hi - lo) / float64(bins)
	h := &Histogram{Column: column, Total: len(values)}
	counts := make([]int, bins)
	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1 // upper edge belongs to the last bin
		}
		counts[idx]++
	}
	for i, n := range counts {
		h.Bins = append(h.Bins, Bin{
			Label: formatRange(lo+float64(i)*width, lo+float64(i+1)*width),
			Count: n,
		})
	}
	return h, nil
}

func (c *Catalogue) yearHistogram(column string) (*Histogram, error) {
	counts := make(map[int]int)
	total := 0
	for _, s := range c.Sources {
		year, ok := discoveryYear(s.Fields[column])
		if !ok {
			continue
		}
		counts[year]++
		total++
	}
	if total == 0 {
		return nil, fmt.Errorf("no parseable dates in column %s", column)
	}

	years := make([]int, 0, len(counts))
	for y := range counts {
		years = append(years, y)
	}
	sort.Ints(years)

	h := &Histogram{Column: column, Total: total}
	for _, y := range years {
		h.Bins = append(h.Bins, Bin{Label: strconv.Itoa(y), Count: counts[y]})
	}
	return h, nil
}

// discoveryYear pulls the leading 4-digit year out of a discovery timestamp
// like "2019-09-19 12:00:00".
func discoveryYear(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if len(raw) < 4 {
		return 0, false
	}
	year, err := strconv.Atoi(raw[:4])
	if err != nil || year < 1900 || year > 2100 {
		return 0, false
	}
	return year, true
}

func formatRange(lo, hi float64) string {
	return fmt.Sprintf("%.3g..%.3g", lo, hi)
}
