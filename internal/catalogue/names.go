package catalogue

import "strings"

// Alert broker base URLs used to build external links for a source.
const (
	baseURLTNS  = "https://www.wis-tns.org/object/"
	baseURLZTF  = "https://alerce.online/object/"
	baseURLGaia = "http://gsaweb.ast.cam.ac.uk/alerts/alert/"
)

// PlainName returns the file-naming name of the source: the AT name with the
// "AT " space collapsed ("AT 2019qiz" -> "AT2019qiz"), falling back to the
// alternative name and then the ZTF name when earlier names are blank.
func (s *Source) PlainName() string {
	at := strings.TrimSpace(s.ATName)
	if at != "" {
		return strings.ReplaceAll(at, "AT ", "AT")
	}
	if alt := strings.TrimSpace(s.AltName); alt != "" {
		return alt
	}
	return s.PlainZTFName()
}

// PlainZTFName returns the trimmed ZTF name.
func (s *Source) PlainZTFName() string {
	return strings.TrimSpace(s.ZTFName)
}

// Identifier extracts the trailing token of a survey name, which is the
// object identifier used in broker URLs ("AT 2019qiz" -> "2019qiz").
func Identifier(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	parts := strings.Fields(name)
	return parts[len(parts)-1]
}

// Links holds the external broker URLs for a source. Empty entries mean the
// source has no identifier for that broker.
type Links struct {
	TNS  string `json:"tns,omitempty"`
	ZTF  string `json:"ztf,omitempty"`
	Gaia string `json:"gaia,omitempty"`
}

// Links builds broker URLs from the source's survey identifiers.
func (s *Source) Links() Links {
	var l Links
	if id := Identifier(s.ATName); id != "" {
		l.TNS = baseURLTNS + id
	}
	if id := Identifier(s.ZTFName); id != "" {
		l.ZTF = baseURLZTF + id
	}
	if id := Identifier(s.GaiaName); id != "" {
		l.Gaia = baseURLGaia + id
	}
	return l
}
