package rating

import (
	"context"
	"errors"
)

// LocationType is the kind of place a rating belongs to.
type LocationType string

const (
	Cafe           LocationType = "Cafe"
	Library        LocationType = "Library"
	CoworkingSpace LocationType = "CoworkingSpace"
)

// ParseLocationType maps a feed category onto a location type.
func ParseLocationType(category string) LocationType {
	switch category {
	case "library":
		return Library
	case "coworking_space", "coworking":
		return CoworkingSpace
	}
	return Cafe
}

// Location is a rated place as the store sees it: a place key joined with
// every rating submitted for it.
type Location struct {
	Key     string       `json:"key"`
	Name    string       `json:"name"`
	Lat     float64      `json:"lat"`
	Lng     float64      `json:"lng"`
	Address string       `json:"address,omitempty"`
	Type    LocationType `json:"type"`
	Ratings []Rating     `json:"ratings"`
}

// LocationInput identifies a place on first check-in.
type LocationInput struct {
	Key     string       `json:"key"`
	Name    string       `json:"name"`
	Lat     float64      `json:"lat"`
	Lng     float64      `json:"lng"`
	Address string       `json:"address,omitempty"`
	Type    LocationType `json:"type"`
}

// Profile is the current user's public profile.
type Profile struct {
	Name string `json:"name"`
}

var (
	// ErrNotFound is returned when the place or rating does not exist.
	ErrNotFound = errors.New("not found")
	// ErrExists is returned by CheckIn when the user already rated the place.
	ErrExists = errors.New("rating already exists")
	// ErrEditLimit is returned when a rating has used up its one edit.
	ErrEditLimit = errors.New("edit limit reached")
	// ErrUnavailable is returned when the store cannot be reached. Callers
	// should surface it as retryable, never fatal.
	ErrUnavailable = errors.New("rating store unavailable")
)

// Store is the remote rating store contract. All calls may fail; failures
// resolve to typed errors the caller can branch on. An empty description
// means none was given.
//
// Check-in and update are disjoint: check-in creates the user's first
// rating for a place, update edits an existing one. Which applies is
// selected by rating presence, never inferred from other state.
type Store interface {
	CheckIn(ctx context.Context, loc LocationInput, noise NoiseLevel, wifi WifiSpeed, description string) error
	UpdateRating(ctx context.Context, key string, noise NoiseLevel, wifi WifiSpeed, description string) error
	DeleteMyRating(ctx context.Context, key string) error

	GetAllLocations(ctx context.Context) ([]Location, error)
	GetLocation(ctx context.Context, key string) (*Location, error)
	GetLocationsByNoise(ctx context.Context, level NoiseLevel) ([]Location, error)
	GetLocationsByType(ctx context.Context, t LocationType) ([]Location, error)
	// GetMyRating returns nil with no error when the user has not rated
	// the place.
	GetMyRating(ctx context.Context, key string) (*Rating, error)

	GetProfile(ctx context.Context) (*Profile, error)
	SetProfile(ctx context.Context, name string) error
}
