package places

import (
	"sort"
	"sync"

	"github.com/asim/quadtree"
)

// Index is an in-memory spatial index over every place the cache has seen.
// When the feed is unreachable it lets nearby queries degrade to
// already-fetched data instead of an empty map.
type Index struct {
	mu    sync.RWMutex
	qtree *quadtree.QuadTree
	seen  map[int64]bool
}

// NewIndex returns an index covering the whole world (lat ±90, lon ±180).
func NewIndex() *Index {
	center := quadtree.NewPoint(0, 0, nil)
	half := quadtree.NewPoint(90, 180, nil)
	boundary := quadtree.NewAABB(center, half)
	return &Index{
		qtree: quadtree.New(boundary, 0, nil),
		seen:  map[int64]bool{},
	}
}

// Insert adds places to the index, skipping ids it already holds.
func (idx *Index) Insert(places []Place) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for i := range places {
		p := places[i]
		if idx.seen[p.ID] {
			continue
		}
		idx.seen[p.ID] = true
		idx.qtree.Insert(quadtree.NewPoint(p.Lat, p.Lon, &p))
	}
}

// Query returns the indexed places within radiusM metres of lat/lon,
// nearest first.
func (idx *Index) Query(lat, lon float64, radiusM int) []Place {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	center := quadtree.NewPoint(lat, lon, nil)
	half := center.HalfPoint(float64(radiusM))
	boundary := quadtree.NewAABB(center, half)

	points := idx.qtree.Search(boundary)

	results := make([]Place, 0, len(points))
	for _, pt := range points {
		p, ok := pt.Data().(*Place)
		if !ok {
			continue
		}
		dist := haversine(lat, lon, p.Lat, p.Lon)
		if dist > float64(radiusM) {
			continue // bounding box is approximate; filter to actual radius
		}
		pCopy := *p
		pCopy.Distance = dist
		results = append(results, pCopy)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	return results
}
