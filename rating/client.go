package rating

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"hushmap/app"
)

// httpClient is the shared HTTP client with timeout
var httpClient = &http.Client{Timeout: 15 * time.Second}

// Client talks to a remote rating store over HTTP. It implements Store.
// Authorization is an opaque bearer token; the store decides what the
// caller may do.
type Client struct {
	// URL is the store's base URL, e.g. https://store.example.com
	URL string
	// Token is sent as a bearer token when set.
	Token string
}

// NewClient returns a store client for the given base URL.
func NewClient(baseURL, token string) *Client {
	return &Client{URL: baseURL, Token: token}
}

// do performs one store request and decodes the response into out when
// out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out interface{}) error {
	u := c.URL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		app.RecordAPICall("rating-store", method, u, 0, time.Since(start), err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	app.RecordAPICall("rating-store", method, u, resp.StatusCode, time.Since(start), nil)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		return ErrExists
	case resp.StatusCode == http.StatusForbidden:
		return ErrEditLimit
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("rating store returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("rating store response: %w", err)
	}
	return nil
}

type submitRequest struct {
	Location    *LocationInput `json:"location,omitempty"`
	Key         string         `json:"key,omitempty"`
	NoiseLevel  NoiseLevel     `json:"noise_level"`
	WifiSpeed   WifiSpeed      `json:"wifi_speed"`
	Description string         `json:"description,omitempty"`
}

func (c *Client) CheckIn(ctx context.Context, loc LocationInput, noise NoiseLevel, wifi WifiSpeed, description string) error {
	return c.do(ctx, http.MethodPost, "/checkin", nil, submitRequest{
		Location:    &loc,
		NoiseLevel:  noise,
		WifiSpeed:   wifi,
		Description: description,
	}, nil)
}

func (c *Client) UpdateRating(ctx context.Context, key string, noise NoiseLevel, wifi WifiSpeed, description string) error {
	return c.do(ctx, http.MethodPost, "/rating/update", nil, submitRequest{
		Key:         key,
		NoiseLevel:  noise,
		WifiSpeed:   wifi,
		Description: description,
	}, nil)
}

func (c *Client) DeleteMyRating(ctx context.Context, key string) error {
	return c.do(ctx, http.MethodPost, "/rating/delete", nil, submitRequest{Key: key}, nil)
}

func (c *Client) GetAllLocations(ctx context.Context) ([]Location, error) {
	var out []Location
	if err := c.do(ctx, http.MethodGet, "/locations", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetLocation(ctx context.Context, key string) (*Location, error) {
	var out Location
	params := url.Values{"key": {key}}
	if err := c.do(ctx, http.MethodGet, "/location", params, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetLocationsByNoise(ctx context.Context, level NoiseLevel) ([]Location, error) {
	var out []Location
	params := url.Values{"level": {string(level)}}
	if err := c.do(ctx, http.MethodGet, "/locations/noise", params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetLocationsByType(ctx context.Context, t LocationType) ([]Location, error) {
	var out []Location
	params := url.Values{"type": {string(t)}}
	if err := c.do(ctx, http.MethodGet, "/locations/type", params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetMyRating(ctx context.Context, key string) (*Rating, error) {
	var out Rating
	params := url.Values{"key": {key}}
	err := c.do(ctx, http.MethodGet, "/rating/me", params, nil, &out)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	var out Profile
	err := c.do(ctx, http.MethodGet, "/profile", nil, nil, &out)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetProfile(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPost, "/profile", nil, map[string]string{"name": name}, nil)
}
