// Package location produces the user's current coordinate. A fixed
// fallback is used until a real reading or a manual pin arrives, so the
// map always has somewhere to point.
package location

import (
	"context"
	"errors"
	"sync"
	"time"

	"hushmap/app"
)

// Coordinate is a lat/lng pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Fallback is the default coordinate until the user is located.
var Fallback = Coordinate{Lat: 47.36450050601848, Lng: 8.534532028862294}

// locateTimeout bounds a one-shot locate request.
const locateTimeout = 10 * time.Second

// Provider resolves the device's position. It may block until the platform
// service answers, and fails when permission is denied or the platform has
// no geolocation.
type Provider interface {
	Position(ctx context.Context) (Coordinate, error)
}

// Source is the current-coordinate source. It caches the last known
// coordinate and never loses it to a failed locate.
type Source struct {
	provider Provider

	mu       sync.RWMutex
	current  Coordinate
	located  bool // a real reading or manual pin has arrived
	locating bool
}

// NewSource returns a source starting at the fallback coordinate.
func NewSource(provider Provider) *Source {
	return &Source{provider: provider, current: Fallback}
}

// Current returns the latest coordinate: the fallback until a reading or
// manual pin arrives, the last known one after.
func (s *Source) Current() Coordinate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Located reports whether a real reading or manual pin has arrived.
func (s *Source) Located() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.located
}

// Locating reports whether a one-shot locate is in flight.
func (s *Source) Locating() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locating
}

// SetManual overrides the coordinate immediately, e.g. from a map tap.
func (s *Source) SetManual(c Coordinate) {
	s.mu.Lock()
	s.current = c
	s.located = true
	s.mu.Unlock()
}

// ErrNoProvider is returned by LocateOnce when the source has no way to
// resolve a position. Manual pins still work on such a source.
var ErrNoProvider = errors.New("no location provider")

// LocateOnce asks the provider for the current position, waiting at most
// ten seconds. On failure the prior coordinate is left unchanged and the
// error is returned so the caller can show a locating-failed state.
func (s *Source) LocateOnce(ctx context.Context) (Coordinate, error) {
	if s.provider == nil {
		return s.Current(), ErrNoProvider
	}

	s.mu.Lock()
	s.locating = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.locating = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, locateTimeout)
	defer cancel()

	c, err := s.provider.Position(ctx)
	if err != nil {
		return s.Current(), err
	}

	s.mu.Lock()
	s.current = c
	s.located = true
	s.mu.Unlock()
	return c, nil
}

// Start attempts one best-effort locate in the background, with no
// timeout. It never blocks the caller; denial or an unsupported platform
// just leaves the fallback in place.
func (s *Source) Start() {
	if s.provider == nil {
		return
	}
	go func() {
		c, err := s.provider.Position(context.Background())
		if err != nil {
			app.Log("location", "initial locate unavailable: %v", err)
			return
		}
		s.mu.Lock()
		// A manual pin set while we waited wins over the startup reading.
		if !s.located {
			s.current = c
			s.located = true
		}
		s.mu.Unlock()
	}()
}
