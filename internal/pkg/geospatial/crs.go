package geospatial

import "strings"

// WGS 84, the only coordinate system of CGMES GL position points.
const (
	WGS84Name = "WGS84"
	WGS84URN  = "urn:ogc:def:crs:EPSG::4326"
)

// CRS identifies a coordinate reference system by name and URN.
type CRS struct {
	Name string `mapstructure:"name"`
	URN  string `mapstructure:"urn"`
}

// Catalog is a fixed set of accepted coordinate reference systems.
// A record matches an entry when both name and URN match exactly, ignoring
// surrounding whitespace.
type Catalog struct {
	entries []CRS
}

// NewCatalog returns a catalog accepting the given systems. With no entries it
// accepts WGS 84 only.
func NewCatalog(entries ...CRS) *Catalog {
	if len(entries) == 0 {
		entries = []CRS{{Name: WGS84Name, URN: WGS84URN}}
	}
	return &Catalog{entries: entries}
}

// IsSupportedCRS implements ports.CRSChecker.
func (c *Catalog) IsSupportedCRS(name, urn string) bool {
	name = strings.TrimSpace(name)
	urn = strings.TrimSpace(urn)
	for _, e := range c.entries {
		if e.Name == name && e.URN == urn {
			return true
		}
	}
	return false
}

// Entries returns a copy of the accepted systems.
func (c *Catalog) Entries() []CRS {
	return append([]CRS(nil), c.entries...)
}
