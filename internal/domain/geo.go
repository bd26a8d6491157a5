package domain

// GeoPoint is a WGS-84 coordinate pair. A point captured for a checkout
// attempt is never mutated afterwards.
type GeoPoint struct {
	Lat float64
	Lng float64
}
