package rating

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"hushmap/data"
)

const (
	ratingsFileKey  = "ratings.json"
	profilesFileKey = "profiles.json"
)

// Memory is an in-process Store used in local mode and tests. Unlike the
// client-side CanEdit check, which is only an optimistic mirror, Memory
// enforces the one-edit rule and check-in/update disjointness
// authoritatively, the way the remote store does.
type Memory struct {
	mu        sync.RWMutex
	user      string
	locations map[string]*Location
	profiles  map[string]Profile
	persist   bool

	// saveMu serializes writes so two mutations never overlap on disk.
	saveMu sync.Mutex
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		user:      "anonymous",
		locations: map[string]*Location{},
		profiles:  map[string]Profile{},
	}
}

// NewPersistentMemory returns a store that loads from and saves to the
// local data directory.
func NewPersistentMemory() *Memory {
	m := NewMemory()
	m.persist = true
	var locs map[string]*Location
	if err := data.LoadJSON(ratingsFileKey, &locs); err == nil && locs != nil {
		m.locations = locs
	}
	var profiles map[string]Profile
	if err := data.LoadJSON(profilesFileKey, &profiles); err == nil && profiles != nil {
		m.profiles = profiles
	}
	return m
}

// SetUser sets the identity attributed to subsequent calls.
func (m *Memory) SetUser(name string) {
	m.mu.Lock()
	m.user = name
	m.mu.Unlock()
}

func (m *Memory) save() {
	if !m.persist {
		return
	}
	m.saveMu.Lock()
	defer m.saveMu.Unlock()
	m.mu.RLock()
	defer m.mu.RUnlock()
	data.SaveJSON(ratingsFileKey, m.locations)
	data.SaveJSON(profilesFileKey, m.profiles)
}

func (m *Memory) CheckIn(ctx context.Context, loc LocationInput, noise NoiseLevel, wifi WifiSpeed, description string) error {
	m.mu.Lock()
	l, ok := m.locations[loc.Key]
	if !ok {
		l = &Location{
			Key:     loc.Key,
			Name:    loc.Name,
			Lat:     loc.Lat,
			Lng:     loc.Lng,
			Address: loc.Address,
			Type:    loc.Type,
		}
		m.locations[loc.Key] = l
	}
	for _, r := range l.Ratings {
		if r.Author == m.user {
			m.mu.Unlock()
			return ErrExists
		}
	}
	now := time.Now()
	l.Ratings = append(l.Ratings, Rating{
		Author:      m.user,
		NoiseLevel:  noise,
		WifiSpeed:   wifi,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	m.mu.Unlock()
	m.save()
	return nil
}

func (m *Memory) UpdateRating(ctx context.Context, key string, noise NoiseLevel, wifi WifiSpeed, description string) error {
	m.mu.Lock()
	l, ok := m.locations[key]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	for i := range l.Ratings {
		if l.Ratings[i].Author != m.user {
			continue
		}
		if l.Ratings[i].EditCount >= maxEdits {
			m.mu.Unlock()
			return ErrEditLimit
		}
		l.Ratings[i].NoiseLevel = noise
		l.Ratings[i].WifiSpeed = wifi
		l.Ratings[i].Description = description
		l.Ratings[i].UpdatedAt = time.Now()
		l.Ratings[i].EditCount++
		m.mu.Unlock()
		m.save()
		return nil
	}
	m.mu.Unlock()
	return ErrNotFound
}

func (m *Memory) DeleteMyRating(ctx context.Context, key string) error {
	m.mu.Lock()
	l, ok := m.locations[key]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	for i := range l.Ratings {
		if l.Ratings[i].Author == m.user {
			l.Ratings = append(l.Ratings[:i], l.Ratings[i+1:]...)
			m.mu.Unlock()
			m.save()
			return nil
		}
	}
	m.mu.Unlock()
	return ErrNotFound
}

func (m *Memory) GetAllLocations(ctx context.Context) ([]Location, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Location, 0, len(m.locations))
	for _, l := range m.locations {
		out = append(out, copyLocation(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *Memory) GetLocation(ctx context.Context, key string) (*Location, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.locations[key]
	if !ok {
		return nil, ErrNotFound
	}
	c := copyLocation(l)
	return &c, nil
}

func (m *Memory) GetLocationsByNoise(ctx context.Context, level NoiseLevel) ([]Location, error) {
	all, _ := m.GetAllLocations(ctx)
	var out []Location
	for _, l := range all {
		avg := Aggregate(l.Ratings)
		if avg != nil && strings.EqualFold(avg.NoiseLabel, string(level)) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *Memory) GetLocationsByType(ctx context.Context, t LocationType) ([]Location, error) {
	all, _ := m.GetAllLocations(ctx)
	var out []Location
	for _, l := range all {
		if l.Type == t {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *Memory) GetMyRating(ctx context.Context, key string) (*Rating, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.locations[key]
	if !ok {
		return nil, nil
	}
	for _, r := range l.Ratings {
		if r.Author == m.user {
			c := r
			return &c, nil
		}
	}
	return nil, nil
}

func (m *Memory) GetProfile(ctx context.Context) (*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[m.user]
	if !ok {
		return nil, nil
	}
	c := p
	return &c, nil
}

func (m *Memory) SetProfile(ctx context.Context, name string) error {
	m.mu.Lock()
	m.profiles[m.user] = Profile{Name: name}
	m.mu.Unlock()
	m.save()
	return nil
}

// copyLocation deep-copies a location so callers never share rating slices
// with the store.
func copyLocation(l *Location) Location {
	c := *l
	c.Ratings = make([]Rating, len(l.Ratings))
	copy(c.Ratings, l.Ratings)
	return c
}
