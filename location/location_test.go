package location

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeProvider struct {
	coord Coordinate
	err   error
	block bool
}

func (p fakeProvider) Position(ctx context.Context) (Coordinate, error) {
	if p.block {
		<-ctx.Done()
		return Coordinate{}, ctx.Err()
	}
	return p.coord, p.err
}

func TestSourceStartsAtFallback(t *testing.T) {
	s := NewSource(fakeProvider{})
	if got := s.Current(); got != Fallback {
		t.Errorf("expected fallback coordinate, got %+v", got)
	}
	if s.Located() {
		t.Error("source should not report located before any reading")
	}
}

func TestSetManual(t *testing.T) {
	s := NewSource(fakeProvider{})
	pin := Coordinate{Lat: 51.5, Lng: -0.12}
	s.SetManual(pin)

	if got := s.Current(); got != pin {
		t.Errorf("expected manual pin, got %+v", got)
	}
	if !s.Located() {
		t.Error("manual pin should mark the source located")
	}
}

func TestLocateOnce(t *testing.T) {
	reading := Coordinate{Lat: 40.7, Lng: -74.0}
	s := NewSource(fakeProvider{coord: reading})

	got, err := s.LocateOnce(context.Background())
	if err != nil {
		t.Fatalf("LocateOnce error: %v", err)
	}
	if got != reading {
		t.Errorf("expected provider reading, got %+v", got)
	}
	if s.Current() != reading {
		t.Error("reading should become the current coordinate")
	}
}

func TestLocateOnceFailureKeepsPrior(t *testing.T) {
	s := NewSource(fakeProvider{err: errors.New("permission denied")})
	pin := Coordinate{Lat: 51.5, Lng: -0.12}
	s.SetManual(pin)

	got, err := s.LocateOnce(context.Background())
	if err == nil {
		t.Fatal("expected locate error")
	}
	if got != pin {
		t.Errorf("failed locate must return the prior coordinate, got %+v", got)
	}
	if s.Current() != pin {
		t.Error("failed locate must not change the current coordinate")
	}
}

func TestLocateOnceNoProvider(t *testing.T) {
	s := NewSource(nil)

	got, err := s.LocateOnce(context.Background())
	if !errors.Is(err, ErrNoProvider) {
		t.Fatalf("expected ErrNoProvider, got %v", err)
	}
	if got != Fallback {
		t.Errorf("expected the fallback coordinate, got %+v", got)
	}
	if s.Locating() {
		t.Error("source should not report locating")
	}

	// Manual pins still work without a provider.
	pin := Coordinate{Lat: 51.5, Lng: -0.12}
	s.SetManual(pin)
	if got, _ := s.LocateOnce(context.Background()); got != pin {
		t.Errorf("expected the pin back, got %+v", got)
	}
}

func TestLocateOnceTimeout(t *testing.T) {
	s := NewSource(fakeProvider{block: true})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	got, err := s.LocateOnce(ctx)
	if err == nil {
		t.Fatal("expected timeout error from a hung provider")
	}
	if got != Fallback {
		t.Errorf("timed-out locate must keep the fallback, got %+v", got)
	}
}

func TestStartDoesNotOverrideManualPin(t *testing.T) {
	// A manual pin placed before the startup reading lands must win.
	s := NewSource(fakeProvider{coord: Coordinate{Lat: 1, Lng: 1}})
	pin := Coordinate{Lat: 51.5, Lng: -0.12}
	s.SetManual(pin)
	s.Start()

	time.Sleep(50 * time.Millisecond)
	if s.Current() != pin {
		t.Errorf("startup reading overrode the manual pin: %+v", s.Current())
	}
}

func TestStartSetsLocation(t *testing.T) {
	reading := Coordinate{Lat: 40.7, Lng: -74.0}
	s := NewSource(fakeProvider{coord: reading})
	s.Start()

	deadline := time.Now().Add(time.Second)
	for s.Current() != reading {
		if time.Now().After(deadline) {
			t.Fatalf("startup locate never landed, current %+v", s.Current())
		}
		time.Sleep(5 * time.Millisecond)
	}
}
