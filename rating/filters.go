package rating

import "strings"

// FilterAll matches every place; it is the inactive filter value.
const FilterAll = "all"

// Filters is the ephemeral view state: noise/wifi label filters, search
// radius in metres and the search query. It is never persisted.
type Filters struct {
	Noise  string `json:"noise"`
	Wifi   string `json:"wifi"`
	Radius int    `json:"radius"`
	Query  string `json:"query"`
}

// NoiseActive reports whether the noise filter narrows the view.
func (f Filters) NoiseActive() bool {
	return f.Noise != "" && f.Noise != FilterAll
}

// WifiActive reports whether the wifi filter narrows the view.
func (f Filters) WifiActive() bool {
	return f.Wifi != "" && f.Wifi != FilterAll
}

// Active reports whether any label filter narrows the view.
func (f Filters) Active() bool {
	return f.NoiseActive() || f.WifiActive()
}

// Match decides whether a place with the given ratings passes the active
// label filters. This is the single filter policy shared by the map
// reconciler and search, so the two can never disagree.
//
// Filters only ever narrow to rated places: with an active filter a place
// with no ratings is excluded unconditionally; with no active filter every
// place passes regardless of rating presence.
func (f Filters) Match(ratings []Rating) bool {
	if !f.Active() {
		return true
	}
	if len(ratings) == 0 {
		return false
	}
	avg := Aggregate(ratings)
	if avg == nil {
		return false
	}
	if f.NoiseActive() && !strings.EqualFold(f.Noise, avg.NoiseLabel) {
		return false
	}
	if f.WifiActive() && !strings.EqualFold(f.Wifi, avg.WifiLabel) {
		return false
	}
	return true
}
