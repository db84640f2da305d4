package places

import (
	"fmt"
	"math"
)

// Place is a point of interest from the external feed. It is immutable once
// fetched; a cache refresh replaces the whole set rather than merging.
type Place struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Address      string  `json:"address,omitempty"`
	OpeningHours string  `json:"opening_hours,omitempty"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	Distance     float64 `json:"distance,omitempty"` // metres, set when sorting by proximity
}

// Feed categories. The feed is queried for exactly these three.
const (
	CategoryCafe      = "cafe"
	CategoryLibrary   = "library"
	CategoryCoworking = "coworking_space"
)

// Key returns the stable key used to correlate a place with its ratings.
// It is derived from the feed's node id.
func (p Place) Key() string {
	return fmt.Sprintf("node/%d", p.ID)
}

// haversine returns the great-circle distance in metres between two lat/lon points.
func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371000 // Earth radius in metres
	φ1 := lat1 * math.Pi / 180
	φ2 := lat2 * math.Pi / 180
	Δφ := (lat2 - lat1) * math.Pi / 180
	Δλ := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(Δφ/2)*math.Sin(Δφ/2) + math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	return R * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
