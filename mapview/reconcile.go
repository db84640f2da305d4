package mapview

import (
	"sync"

	"hushmap/places"
	"hushmap/rating"
)

// Build computes the ordered marker set for the current place set, rating
// snapshot and filters. It is pure: identical inputs always yield an
// identical set, in feed order.
//
// Filter policy is rating.Filters.Match, shared with search: an active
// noise/wifi filter excludes unrated places outright and keeps rated ones
// only when their aggregated labels match; with no active filter every
// place is kept whether rated or not.
func Build(ps []places.Place, rated map[string][]rating.Rating, f rating.Filters) []Marker {
	markers := make([]Marker, 0, len(ps))
	for _, p := range ps {
		rs := rated[p.Key()]
		if !f.Match(rs) {
			continue
		}
		avg := rating.Aggregate(rs)
		markers = append(markers, Marker{
			ID:           p.ID,
			Key:          p.Key(),
			Name:         p.Name,
			Category:     p.Category,
			Address:      p.Address,
			OpeningHours: p.OpeningHours,
			Lat:          p.Lat,
			Lon:          p.Lon,
			ReviewCount:  len(rs),
			Averages:     avg,
			LatestNote:   latestNote(rs),
			IconHTML:     markerIconHTML(p.Category, avg),
			PopupHTML:    popupHTML(p, rs),
		})
	}
	return markers
}

// Reconciler owns the drawn marker set. Every pass clears the surface and
// redraws from scratch: no marker survives two passes by identity, which
// rules out drift between the view model and the drawing surface at the
// cost of redraw work. Fine at tens to low hundreds of markers.
type Reconciler struct {
	surface Surface

	mu      sync.RWMutex
	handles map[string]int64 // place key -> drawn marker id, lookup only
}

// NewReconciler returns a reconciler over the given surface.
func NewReconciler(surface Surface) *Reconciler {
	return &Reconciler{surface: surface, handles: map[string]int64{}}
}

// Reconcile rebuilds the marker set and redraws the surface wholesale.
// It returns the drawn set in order.
func (r *Reconciler) Reconcile(ps []places.Place, rated map[string][]rating.Rating, f rating.Filters) []Marker {
	markers := Build(ps, rated, f)

	handles := make(map[string]int64, len(markers))
	for _, m := range markers {
		handles[m.Key] = m.ID
	}

	r.surface.Clear()
	for _, m := range markers {
		r.surface.Draw(m)
	}

	r.mu.Lock()
	r.handles = handles
	r.mu.Unlock()

	return markers
}

// CenterOn centres the surface on the marker drawn for the given place
// key, if one exists. Used by search result selection.
func (r *Reconciler) CenterOn(key string) bool {
	r.mu.RLock()
	id, ok := r.handles[key]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	r.surface.CenterOn(id)
	return true
}
