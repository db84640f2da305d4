package mapview

import (
	"sync"

	"hushmap/rating"
)

// Marker is the fully rendered spec for one map pin: position, informational
// payload and the HTML the drawing surface needs. Identity is the feed's
// place id so callers can centre on a marker without re-deriving
// coordinates.
type Marker struct {
	ID           int64            `json:"id"`
	Key          string           `json:"key"`
	Name         string           `json:"name"`
	Category     string           `json:"category"`
	Address      string           `json:"address,omitempty"`
	OpeningHours string           `json:"opening_hours,omitempty"`
	Lat          float64          `json:"lat"`
	Lon          float64          `json:"lon"`
	ReviewCount  int              `json:"review_count"`
	Averages     *rating.Averages `json:"averages,omitempty"`
	LatestNote   string           `json:"latest_note,omitempty"`
	IconHTML     string           `json:"icon_html"`
	PopupHTML    string           `json:"popup_html"`
}

// Surface is the imperative drawing contract. The reconciler clears it and
// redraws the whole marker set on every pass; it never keeps a drawing
// object beyond the Draw call, so marker lifecycle has a single owner.
type Surface interface {
	Clear()
	Draw(m Marker)
	CenterOn(id int64)
}

// LayerGroup is an in-memory Surface. It backs the served map page (the
// drawn set is what gets rendered into Leaflet) and stands in for the
// drawing library in tests.
type LayerGroup struct {
	mu       sync.RWMutex
	markers  []Marker
	byID     map[int64]int
	centered int64
}

// NewLayerGroup returns an empty surface.
func NewLayerGroup() *LayerGroup {
	return &LayerGroup{byID: map[int64]int{}}
}

func (g *LayerGroup) Clear() {
	g.mu.Lock()
	g.markers = nil
	g.byID = map[int64]int{}
	g.mu.Unlock()
}

func (g *LayerGroup) Draw(m Marker) {
	g.mu.Lock()
	g.byID[m.ID] = len(g.markers)
	g.markers = append(g.markers, m)
	g.mu.Unlock()
}

func (g *LayerGroup) CenterOn(id int64) {
	g.mu.Lock()
	if _, ok := g.byID[id]; ok {
		g.centered = id
	}
	g.mu.Unlock()
}

// Markers returns the drawn set in draw order.
func (g *LayerGroup) Markers() []Marker {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Marker, len(g.markers))
	copy(out, g.markers)
	return out
}

// Centered returns the id last centred on, zero if none.
func (g *LayerGroup) Centered() int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.centered
}
