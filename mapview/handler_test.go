package mapview

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"hushmap/events"
	"hushmap/location"
	"hushmap/places"
	"hushmap/rating"
)

func testHandler() (*Handler, *rating.Memory) {
	fetch := func(ctx context.Context, lat, lon float64, radiusM int) ([]places.Place, error) {
		return feedPlaces(), nil
	}
	store := rating.NewMemory()
	h := NewHandler(places.NewCache(fetch, nil), store, location.NewSource(nil), events.NewBus())
	return h, store
}

func TestMarkersEndpoint(t *testing.T) {
	h, _ := testHandler()

	req := httptest.NewRequest("GET", "/map/markers?lat=47.37&lng=8.54", nil)
	w := httptest.NewRecorder()
	h.Markers(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Markers        []Marker `json:"markers"`
		Count          int      `json:"count"`
		Radius         int      `json:"radius"`
		RatingsUnknown bool     `json:"ratings_unknown"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 2 || len(resp.Markers) != 2 {
		t.Errorf("expected 2 markers, got %d", resp.Count)
	}
	if resp.Radius != 1000 {
		t.Errorf("expected default radius 1000, got %d", resp.Radius)
	}
	if resp.RatingsUnknown {
		t.Error("ratings should be known with a working store")
	}
}

func TestMarkersFeedStale(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	fetch := func(ctx context.Context, lat, lon float64, radiusM int) ([]places.Place, error) {
		if !healthy.Load() {
			return nil, errors.New("feed down")
		}
		return feedPlaces(), nil
	}
	h := NewHandler(places.NewCache(fetch, nil), rating.NewMemory(), location.NewSource(nil), events.NewBus())

	// A healthy load populates the fallback index and is not stale.
	w := httptest.NewRecorder()
	h.Markers(w, httptest.NewRequest("GET", "/map/markers?lat=47.37&lng=8.54", nil))
	var resp struct {
		Count     int  `json:"count"`
		FeedStale bool `json:"feed_stale"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.FeedStale {
		t.Error("healthy fetch must not be flagged stale")
	}

	// The feed goes down; a nearby view served from the index is flagged.
	healthy.Store(false)
	w = httptest.NewRecorder()
	h.Markers(w, httptest.NewRequest("GET", "/map/markers?lat=47.38&lng=8.54&radius=5000", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected degraded 200, got %d: %s", w.Code, w.Body.String())
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.FeedStale {
		t.Error("index fallback must be flagged feed_stale")
	}
	if resp.Count != 2 {
		t.Errorf("expected 2 cached places from the index, got %d", resp.Count)
	}

	// With nothing cached nearby the failure stays a retryable error.
	w = httptest.NewRecorder()
	h.Markers(w, httptest.NewRequest("GET", "/map/markers?lat=51.5&lng=-0.12", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 with an empty index, got %d", w.Code)
	}
}

func TestMarkersRadiusClamped(t *testing.T) {
	h, _ := testHandler()

	req := httptest.NewRequest("GET", "/map/markers?lat=1&lng=1&radius=99999", nil)
	w := httptest.NewRecorder()
	h.Markers(w, req)

	var resp struct {
		Radius int `json:"radius"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Radius != 5000 {
		t.Errorf("expected radius clamped to 5000, got %d", resp.Radius)
	}
}

func checkIn(t *testing.T, h *Handler, noise, wifi, desc string) *httptest.ResponseRecorder {
	t.Helper()
	body := `{"key":"node/1","name":"The Daily Grind","category":"cafe","lat":47.37,"lng":8.54,` +
		`"noise_level":"` + noise + `","wifi_speed":"` + wifi + `","description":"` + desc + `"}`
	req := httptest.NewRequest("POST", "/map/checkin", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.CheckIn(w, req)
	return w
}

func TestCheckInFlow(t *testing.T) {
	h, _ := testHandler()

	// First submission creates the rating.
	if w := checkIn(t, h, "Quiet", "Fast", "calm"); w.Code != http.StatusOK {
		t.Fatalf("check-in failed: %d %s", w.Code, w.Body.String())
	}

	// The marker now carries the aggregate.
	req := httptest.NewRequest("GET", "/map/markers?lat=47.37&lng=8.54", nil)
	w := httptest.NewRecorder()
	h.Markers(w, req)
	var resp struct {
		Markers []Marker `json:"markers"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Markers[0].Averages == nil || resp.Markers[0].Averages.AvgOverall != 3 {
		t.Errorf("expected rated marker after check-in, got %+v", resp.Markers[0].Averages)
	}

	// Second submission is the one allowed edit.
	if w := checkIn(t, h, "Moderate", "Okay", "busier today"); w.Code != http.StatusOK {
		t.Fatalf("edit failed: %d %s", w.Code, w.Body.String())
	}

	// Third submission exceeds the edit limit.
	if w := checkIn(t, h, "Buzzing", "Slow", ""); w.Code != http.StatusForbidden {
		t.Errorf("expected 403 past the edit limit, got %d", w.Code)
	}
}

func TestCheckInRejectsBadEnums(t *testing.T) {
	h, _ := testHandler()

	body := `{"key":"node/1","noise_level":"Deafening","wifi_speed":"Fast"}`
	req := httptest.NewRequest("POST", "/map/checkin", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.CheckIn(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad noise level, got %d", w.Code)
	}
}

func TestMyRatingEndpoint(t *testing.T) {
	h, _ := testHandler()

	req := httptest.NewRequest("GET", "/map/rating?key=node/1", nil)
	w := httptest.NewRecorder()
	h.MyRating(w, req)

	var resp struct {
		Rating  *rating.Rating `json:"rating"`
		CanEdit bool           `json:"can_edit"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Rating != nil || !resp.CanEdit {
		t.Errorf("expected no rating and can_edit=true, got %+v", resp)
	}

	checkIn(t, h, "Quiet", "Fast", "")
	w = httptest.NewRecorder()
	h.MyRating(w, httptest.NewRequest("GET", "/map/rating?key=node/1", nil))
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Rating == nil || resp.Rating.NoiseLevel != rating.Quiet {
		t.Errorf("expected the stored rating, got %+v", resp.Rating)
	}
}

func TestDeleteMyRating(t *testing.T) {
	h, _ := testHandler()
	checkIn(t, h, "Quiet", "Fast", "")

	w := httptest.NewRecorder()
	h.MyRating(w, httptest.NewRequest("DELETE", "/map/rating?key=node/1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("delete failed: %d %s", w.Code, w.Body.String())
	}

	var resp struct {
		Rating *rating.Rating `json:"rating"`
	}
	w = httptest.NewRecorder()
	h.MyRating(w, httptest.NewRequest("GET", "/map/rating?key=node/1", nil))
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Rating != nil {
		t.Errorf("expected rating gone, got %+v", resp.Rating)
	}

	w = httptest.NewRecorder()
	h.MyRating(w, httptest.NewRequest("DELETE", "/map/rating?key=node/1", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 deleting a missing rating, got %d", w.Code)
	}
}

func TestLocateManualPin(t *testing.T) {
	h, _ := testHandler()

	req := httptest.NewRequest("POST", "/map/locate", strings.NewReader("lat=51.5&lng=-0.12"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.Locate(w, req)

	var resp struct {
		Located  bool                `json:"located"`
		Location location.Coordinate `json:"location"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Located {
		t.Error("manual pin should report located")
	}
	if resp.Location.Lat != 51.5 || resp.Location.Lng != -0.12 {
		t.Errorf("unexpected location: %+v", resp.Location)
	}
	if h.Source.Current().Lat != 51.5 {
		t.Error("pin did not stick in the source")
	}
}

func TestIntentPublishes(t *testing.T) {
	h, _ := testHandler()
	_, ch := h.Bus.Subscribe(events.TopicCheckIn)

	body := `{"topic":"checkin","payload":{"key":"node/1","name":"The Daily Grind","lat":47.37,"lng":8.54}}`
	req := httptest.NewRequest("POST", "/map/intent", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Intent(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("intent rejected: %d %s", w.Code, w.Body.String())
	}

	select {
	case msg := <-ch:
		intent := msg.Payload.(events.CheckInIntent)
		if intent.Key != "node/1" {
			t.Errorf("expected key node/1, got %q", intent.Key)
		}
	case <-time.After(time.Second):
		t.Fatal("intent never reached the bus")
	}
}

func TestIntentUnknownTopic(t *testing.T) {
	h, _ := testHandler()

	req := httptest.NewRequest("POST", "/map/intent", strings.NewReader(`{"topic":"selfdestruct","payload":{}}`))
	w := httptest.NewRecorder()
	h.Intent(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown topic, got %d", w.Code)
	}
}

func TestProfileRoundtrip(t *testing.T) {
	h, _ := testHandler()

	req := httptest.NewRequest("POST", "/profile", strings.NewReader("name=Ada"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.Profile(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("profile save failed: %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.Profile(w, httptest.NewRequest("GET", "/profile", nil))
	var resp struct {
		Profile *rating.Profile `json:"profile"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Profile == nil || resp.Profile.Name != "Ada" {
		t.Errorf("expected profile Ada, got %+v", resp.Profile)
	}
}
