package catalogue

import (
	"fmt"
	"strings"
)

// Issue severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warn"
)

// Issue is a single validation finding.
type Issue struct {
	Severity string `json:"severity"`
	Row      int    `json:"row,omitempty"` // 1-based data row, 0 when not row-bound
	Message  string `json:"message"`
}

func (i Issue) String() string {
	if i.Row == 0 {
		return fmt.Sprintf("%s: %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("%s: row %d: %s", i.Severity, i.Row, i.Message)
}

// Validate checks the catalogue invariants:
//   - every source resolves to a non-empty plain name
//   - plain names are unique across the table (case-insensitive)
//
// Rows without a numeric redshift get a warning since spectra cannot be
// rest-frame corrected for them.
func (c *Catalogue) Validate() []Issue {
	var issues []Issue

	seen := make(map[string]int, len(c.Sources))
	for i, s := range c.Sources {
		row := i + 1
		name := s.PlainName()
		if name == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Row:      row,
				Message:  "no usable name: AT name and alternative name are both blank",
			})
			continue
		}

		key := strings.ToLower(name)
		if first, dup := seen[key]; dup {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Row:      row,
				Message:  fmt.Sprintf("duplicate identifier %q (first seen at row %d)", name, first),
			})
		} else {
			seen[key] = row
		}

		if _, ok := s.Redshift(); !ok && s.Fields[ColRedshift] != "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Row:      row,
				Message:  fmt.Sprintf("non-numeric redshift %q", s.Fields[ColRedshift]),
			})
		}
	}

	return issues
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}
