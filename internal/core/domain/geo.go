package domain

// Coordinate is a geographic coordinate (latitude, longitude) as delivered by the source.
type Coordinate struct {
	Lat float64 `json:"lat" msgpack:"lat"`
	Lon float64 `json:"lon" msgpack:"lon"`
}

// GeoLineString represents an ordered sequence of geographic coordinates.
type GeoLineString struct {
	Coordinates []Coordinate `json:"coordinates"`
}
