package mapview

import (
	"context"
	"errors"
	"testing"

	"hushmap/rating"
)

// flakyStore wraps a real store and fails GetAllLocations on demand.
type flakyStore struct {
	rating.Store
	down bool
}

func (s *flakyStore) GetAllLocations(ctx context.Context) ([]rating.Location, error) {
	if s.down {
		return nil, errors.New("store down")
	}
	return s.Store.GetAllLocations(ctx)
}

func TestSnapshotRatings(t *testing.T) {
	ctx := context.Background()
	mem := rating.NewMemory()
	mem.CheckIn(ctx, rating.LocationInput{Key: "node/1", Name: "The Daily Grind", Type: rating.Cafe},
		rating.Quiet, rating.Fast, "")

	s := newSnapshot(mem)
	rated, err := s.Ratings(ctx)
	if err != nil {
		t.Fatalf("Ratings error: %v", err)
	}
	if len(rated["node/1"]) != 1 {
		t.Errorf("expected 1 rating for node/1, got %d", len(rated["node/1"]))
	}
}

func TestSnapshotInvalidate(t *testing.T) {
	ctx := context.Background()
	mem := rating.NewMemory()
	s := newSnapshot(mem)

	rated, _ := s.Ratings(ctx)
	if len(rated) != 0 {
		t.Fatalf("expected empty snapshot, got %d entries", len(rated))
	}

	mem.CheckIn(ctx, rating.LocationInput{Key: "node/1", Type: rating.Cafe}, rating.Quiet, rating.Fast, "")

	// Still fresh, so the new rating is not visible yet.
	rated, _ = s.Ratings(ctx)
	if len(rated) != 0 {
		t.Fatal("fresh snapshot should not have been re-read")
	}

	// After invalidation the next read reflects the mutation.
	s.Invalidate()
	rated, _ = s.Ratings(ctx)
	if len(rated["node/1"]) != 1 {
		t.Errorf("expected the new rating after invalidation, got %+v", rated)
	}
}

func TestSnapshotStoreFailure(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: rating.NewMemory(), down: true}
	s := newSnapshot(store)

	// The error surfaces but does not panic the view: callers render with
	// ratings unknown.
	rated, err := s.Ratings(ctx)
	if err == nil {
		t.Fatal("expected store error")
	}
	if rated != nil {
		t.Fatalf("expected no snapshot on first failure, got %+v", rated)
	}

	// Once the store recovers the next read succeeds.
	store.down = false
	if _, err := s.Ratings(ctx); err != nil {
		t.Errorf("expected recovery, got %v", err)
	}
}
