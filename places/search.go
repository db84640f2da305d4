package places

import (
	"strings"

	sanitize "github.com/mrz1836/go-sanitize"

	"hushmap/rating"
)

// maxSearchResults bounds the dropdown: only the first few matches in feed
// order are returned, no relevance ranking.
const maxSearchResults = 5

// SearchResult is one dropdown entry.
type SearchResult struct {
	ID       int64   `json:"id"`
	Key      string  `json:"key"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
}

// Search matches the query against the currently loaded place set,
// case-insensitively on name or on the category with underscores read as
// spaces. When a noise/wifi filter is active the same policy as the map
// applies: unrated places are dropped and rated ones must match the
// filters, so search and the marker set never disagree on what counts.
func Search(query string, places []Place, rated map[string][]rating.Rating, f rating.Filters) []SearchResult {
	q := strings.ToLower(strings.TrimSpace(sanitize.SingleLine(query)))
	if q == "" {
		return nil
	}

	var results []SearchResult
	for _, p := range places {
		name := strings.ToLower(p.Name)
		category := strings.ToLower(strings.ReplaceAll(p.Category, "_", " "))
		if !strings.Contains(name, q) && !strings.Contains(category, q) {
			continue
		}

		if f.Active() && !f.Match(rated[p.Key()]) {
			continue
		}

		results = append(results, SearchResult{
			ID:       p.ID,
			Key:      p.Key(),
			Name:     p.Name,
			Category: p.Category,
			Lat:      p.Lat,
			Lon:      p.Lon,
		})
		if len(results) == maxSearchResults {
			break
		}
	}
	return results
}
