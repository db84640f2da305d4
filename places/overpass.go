package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hushmap/app"
)

const overpassURL = "https://overpass-api.de/api/interpreter"

// httpClient is the shared HTTP client with timeout
var httpClient = &http.Client{Timeout: 15 * time.Second}

// overpassElement represents a POI from the Overpass API
type overpassElement struct {
	ID   int64             `json:"id"`
	Lat  float64           `json:"lat"`
	Lon  float64           `json:"lon"`
	Tags map[string]string `json:"tags"`
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

// FetchOverpass queries the Overpass API for cafes, libraries and coworking
// spaces within radiusM metres of lat/lon. One POST per call; callers are
// expected to go through the cache since the feed is rate-limit-sensitive.
func FetchOverpass(ctx context.Context, lat, lon float64, radiusM int) ([]Place, error) {
	query := fmt.Sprintf(`[out:json][timeout:25];
(
  node["amenity"="cafe"](around:%d,%f,%f);
  node["amenity"="library"](around:%d,%f,%f);
  node["amenity"="coworking_space"](around:%d,%f,%f);
);
out body;`, radiusM, lat, lon, radiusM, lat, lon, radiusM, lat, lon)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, overpassURL,
		strings.NewReader("data="+url.QueryEscape(query)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "HushMap/1.0")

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		app.RecordAPICall("overpass", http.MethodPost, overpassURL, 0, time.Since(start), err)
		return nil, fmt.Errorf("overpass request failed: %w", err)
	}
	defer resp.Body.Close()
	app.RecordAPICall("overpass", http.MethodPost, overpassURL, resp.StatusCode, time.Since(start), nil)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overpass returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var ovResp overpassResponse
	if err := json.Unmarshal(body, &ovResp); err != nil {
		return nil, err
	}

	return parseElements(ovResp.Elements), nil
}

// parseElements converts raw feed elements into places, preserving feed order.
func parseElements(elements []overpassElement) []Place {
	places := make([]Place, 0, len(elements))
	for _, el := range elements {
		name := el.Tags["name"]
		if name == "" {
			name = "Unknown"
		}

		category := el.Tags["amenity"]
		if category == "" {
			category = "place"
		}

		addr := el.Tags["addr:street"]
		if addr != "" {
			if n := el.Tags["addr:housenumber"]; n != "" {
				addr = n + " " + addr
			}
		}

		places = append(places, Place{
			ID:           el.ID,
			Name:         name,
			Category:     category,
			Address:      strings.TrimSpace(addr),
			OpeningHours: el.Tags["opening_hours"],
			Lat:          el.Lat,
			Lon:          el.Lon,
		})
	}
	return places
}
