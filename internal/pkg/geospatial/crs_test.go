package geospatial

import "testing"

func TestCatalog_DefaultsToWGS84(t *testing.T) {
	c := NewCatalog()

	tests := []struct {
		name, urn string
		want      bool
	}{
		{"WGS84", "urn:ogc:def:crs:EPSG::4326", true},
		{"wgs84", "urn:ogc:def:crs:EPSG::4326", false},
		{"WGS84", "URN:OGC:DEF:CRS:EPSG::4326", false},
		{" WGS84 ", "urn:ogc:def:crs:EPSG::4326 ", true},
		{"WGS84", "urn:ogc:def:crs:EPSG::4258", false},
		{"ETRS89", "urn:ogc:def:crs:EPSG::4326", false},
		{"", "", false},
	}
	for _, tt := range tests {
		if got := c.IsSupportedCRS(tt.name, tt.urn); got != tt.want {
			t.Errorf("IsSupportedCRS(%q, %q) = %v, want %v", tt.name, tt.urn, got, tt.want)
		}
	}
}

func TestCatalog_CustomEntries(t *testing.T) {
	c := NewCatalog(CRS{Name: "ETRS89", URN: "urn:ogc:def:crs:EPSG::4258"})
	if !c.IsSupportedCRS("ETRS89", "urn:ogc:def:crs:EPSG::4258") {
		t.Error("expected ETRS89 to be accepted")
	}
	if c.IsSupportedCRS(WGS84Name, WGS84URN) {
		t.Error("WGS84 must not be accepted by a custom catalog")
	}
	if len(c.Entries()) != 1 {
		t.Errorf("expected 1 entry, got %d", len(c.Entries()))
	}
}
