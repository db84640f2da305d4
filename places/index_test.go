package places

import "testing"

func TestIndexQueryRadius(t *testing.T) {
	idx := NewIndex()
	idx.Insert([]Place{
		{ID: 1, Name: "Near", Lat: 47.3700, Lon: 8.5400},
		{ID: 2, Name: "Nearer", Lat: 47.3701, Lon: 8.5401},
		{ID: 3, Name: "Far", Lat: 47.45, Lon: 8.60}, // ~10km away
	})

	results := idx.Query(47.3700, 8.5400, 1000)
	if len(results) != 2 {
		t.Fatalf("expected 2 places within 1km, got %d", len(results))
	}
	// Nearest first.
	if results[0].ID != 1 || results[1].ID != 2 {
		t.Errorf("expected nearest-first order, got %d then %d", results[0].ID, results[1].ID)
	}
	if results[0].Distance > results[1].Distance {
		t.Error("distances not ascending")
	}
}

func TestIndexDedupes(t *testing.T) {
	idx := NewIndex()
	p := []Place{{ID: 1, Name: "Near", Lat: 47.37, Lon: 8.54}}
	idx.Insert(p)
	idx.Insert(p)

	if got := len(idx.Query(47.37, 8.54, 500)); got != 1 {
		t.Errorf("expected 1 place after duplicate insert, got %d", got)
	}
}

func TestIndexEmpty(t *testing.T) {
	idx := NewIndex()
	if got := idx.Query(0, 0, 1000); len(got) != 0 {
		t.Errorf("expected no results from empty index, got %d", len(got))
	}
}
