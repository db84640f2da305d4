package mapview

import (
	"context"
	"sync"
	"time"

	"hushmap/rating"
)

// snapshotFreshFor is how long a pulled rating snapshot is considered
// fresh before the next read goes back to the store.
const snapshotFreshFor = 30 * time.Second

// snapshot holds the last pulled rating-store state as a place-key to
// rating-list mapping, rebuilt whenever the store is re-read. A successful
// mutation invalidates it so the next read reflects the change.
type snapshot struct {
	store rating.Store

	mu        sync.Mutex
	rated     map[string][]rating.Rating
	fetchedAt time.Time
}

func newSnapshot(store rating.Store) *snapshot {
	return &snapshot{store: store}
}

// Ratings returns the place-key to ratings mapping. When the store cannot
// be reached the previous snapshot (possibly nil) is returned along with
// the error, so callers can render with ratings unknown instead of
// blocking the whole view.
func (s *snapshot) Ratings(ctx context.Context) (map[string][]rating.Rating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rated != nil && time.Since(s.fetchedAt) < snapshotFreshFor {
		return s.rated, nil
	}

	locs, err := s.store.GetAllLocations(ctx)
	if err != nil {
		return s.rated, err
	}

	rated := make(map[string][]rating.Rating, len(locs))
	for _, l := range locs {
		rated[l.Key] = l.Ratings
	}
	s.rated = rated
	s.fetchedAt = time.Now()
	return rated, nil
}

// Invalidate drops the held snapshot. Called after a successful create,
// update or delete for a place key.
func (s *snapshot) Invalidate() {
	s.mu.Lock()
	s.rated = nil
	s.fetchedAt = time.Time{}
	s.mu.Unlock()
}
