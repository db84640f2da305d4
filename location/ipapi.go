package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"hushmap/app"
)

const ipAPIURL = "http://ip-api.com/json/"

// httpClient is the shared HTTP client with timeout
var httpClient = &http.Client{Timeout: 15 * time.Second}

// IPProvider resolves a coarse position from the caller's public IP. It is
// the server-side stand-in for a platform geolocation service: best
// effort, city-level accuracy at most.
type IPProvider struct{}

type ipAPIResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

func (IPProvider) Position(ctx context.Context) (Coordinate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ipAPIURL, nil)
	if err != nil {
		return Coordinate{}, err
	}

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		app.RecordAPICall("ip-api", http.MethodGet, ipAPIURL, 0, time.Since(start), err)
		return Coordinate{}, fmt.Errorf("ip-api request failed: %w", err)
	}
	defer resp.Body.Close()
	app.RecordAPICall("ip-api", http.MethodGet, ipAPIURL, resp.StatusCode, time.Since(start), nil)

	if resp.StatusCode != http.StatusOK {
		return Coordinate{}, fmt.Errorf("ip-api returned status %d", resp.StatusCode)
	}

	var body ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Coordinate{}, err
	}
	if body.Status != "success" {
		return Coordinate{}, fmt.Errorf("ip-api lookup failed: %s", body.Message)
	}

	return Coordinate{Lat: body.Lat, Lng: body.Lon}, nil
}
