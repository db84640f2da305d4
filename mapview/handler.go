package mapview

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"

	"hushmap/app"
	"hushmap/events"
	"hushmap/location"
	"hushmap/places"
	"hushmap/rating"
)

// Radius bounds, metres.
const (
	minRadius     = 100
	maxRadius     = 5000
	defaultRadius = 1000
)

// Handler serves the map: the page itself, the reconciled marker set, the
// search dropdown, locate requests, rating submissions and the intent
// channel that decouples marker popups from dialogs.
type Handler struct {
	Cache  *places.Cache
	Store  rating.Store
	Source *location.Source
	Bus    *events.Bus

	surface    *LayerGroup
	reconciler *Reconciler
	snapshot   *snapshot
}

// NewHandler wires a handler over its collaborators.
func NewHandler(cache *places.Cache, store rating.Store, source *location.Source, bus *events.Bus) *Handler {
	surface := NewLayerGroup()
	return &Handler{
		Cache:      cache,
		Store:      store,
		Source:     source,
		Bus:        bus,
		surface:    surface,
		reconciler: NewReconciler(surface),
		snapshot:   newSnapshot(store),
	}
}

// Register adds the map routes to the default mux.
func (h *Handler) Register() {
	http.HandleFunc("/map", h.Page)
	http.HandleFunc("/map/markers", h.Markers)
	http.HandleFunc("/map/search", h.Search)
	http.HandleFunc("/map/locate", h.Locate)
	http.HandleFunc("/map/checkin", h.CheckIn)
	http.HandleFunc("/map/rating", h.MyRating)
	http.HandleFunc("/map/intent", h.Intent)
	http.HandleFunc("/map/ws", h.WS)
	http.HandleFunc("/profile", h.Profile)
}

// filtersFromRequest reads the ephemeral view state off the query string.
func filtersFromRequest(r *http.Request) rating.Filters {
	radius := defaultRadius
	if v, err := strconv.Atoi(r.URL.Query().Get("radius")); err == nil && v > 0 {
		radius = v
	}
	if radius < minRadius {
		radius = minRadius
	}
	if radius > maxRadius {
		radius = maxRadius
	}

	noise := strings.ToLower(r.URL.Query().Get("noise"))
	if noise == "" {
		noise = rating.FilterAll
	}
	wifi := strings.ToLower(r.URL.Query().Get("wifi"))
	if wifi == "" {
		wifi = rating.FilterAll
	}

	return rating.Filters{
		Noise:  noise,
		Wifi:   wifi,
		Radius: radius,
		Query:  r.URL.Query().Get("q"),
	}
}

// coordsFromRequest reads lat/lng, falling back to the current location.
func (h *Handler) coordsFromRequest(r *http.Request) location.Coordinate {
	latStr := r.URL.Query().Get("lat")
	lngStr := r.URL.Query().Get("lng")
	if latStr != "" && lngStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)
		if latErr == nil && lngErr == nil {
			return location.Coordinate{Lat: lat, Lng: lng}
		}
	}
	return h.Source.Current()
}

// view assembles the current marker set. Feed and store are independent
// sources completing in either order: a store failure renders with
// ratings unknown, a feed failure falls back to the local spatial index
// over previously cached places, flagged stale so the client can offer
// a retry.
func (h *Handler) view(ctx context.Context, c location.Coordinate, f rating.Filters) ([]Marker, bool, bool, error) {
	feedStale := false
	ps, feedErr := h.Cache.Fetch(ctx, c.Lat, c.Lng, f.Radius)
	if feedErr != nil {
		app.Log("mapview", "feed fetch failed: %v", feedErr)
		ps = h.Cache.Index().Query(c.Lat, c.Lng, f.Radius)
		if len(ps) == 0 {
			return nil, false, false, feedErr
		}
		feedStale = true
	}

	rated, storeErr := h.snapshot.Ratings(ctx)
	ratingsUnknown := storeErr != nil
	if ratingsUnknown {
		app.Log("mapview", "rating snapshot unavailable: %v", storeErr)
		if f.Active() {
			// Filters need ratings; with none known the filtered view is empty.
			rated = nil
		}
	}

	return h.reconciler.Reconcile(ps, rated, f), ratingsUnknown, feedStale, nil
}

// Markers handles GET /map/markers: the reconciled marker set as JSON.
func (h *Handler) Markers(w http.ResponseWriter, r *http.Request) {
	f := filtersFromRequest(r)
	c := h.coordsFromRequest(r)

	markers, ratingsUnknown, feedStale, err := h.view(r.Context(), c, f)
	if err != nil {
		// Retryable: the client keeps the old view and offers a retry action.
		app.RespondError(w, http.StatusServiceUnavailable, "Could not load places. Please retry.")
		return
	}

	app.RespondJSON(w, map[string]interface{}{
		"markers":         markers,
		"count":           len(markers),
		"lat":             c.Lat,
		"lng":             c.Lng,
		"radius":          f.Radius,
		"ratings_unknown": ratingsUnknown,
		"feed_stale":      feedStale,
	})
}

// Search handles GET /map/search: the dropdown results for the query,
// consistent with the marker filter policy.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	f := filtersFromRequest(r)
	c := h.coordsFromRequest(r)

	entry, ok := h.Cache.Cached(c.Lat, c.Lng, f.Radius)
	var ps []places.Place
	if ok {
		ps = entry.Data
	} else {
		ps = h.Cache.Index().Query(c.Lat, c.Lng, f.Radius)
	}

	rated, err := h.snapshot.Ratings(r.Context())
	if err != nil && f.Active() {
		rated = nil
	}

	results := places.Search(f.Query, ps, rated, f)
	if key := r.URL.Query().Get("center"); key != "" {
		h.reconciler.CenterOn(key)
	}
	app.RespondJSON(w, map[string]interface{}{"results": results})
}

// Locate handles POST /map/locate. With lat/lng it pins the location
// manually (map tap); without, it performs a one-shot locate that times
// out after ten seconds and leaves the previous coordinate on failure.
func (h *Handler) Locate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		app.MethodNotAllowed(w, r)
		return
	}
	r.ParseForm()

	latStr := r.Form.Get("lat")
	lngStr := r.Form.Get("lng")
	if latStr != "" && lngStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)
		if latErr != nil || lngErr != nil {
			app.BadRequest(w, r, "invalid coordinates")
			return
		}
		h.Source.SetManual(location.Coordinate{Lat: lat, Lng: lng})
		app.RespondJSON(w, map[string]interface{}{"location": h.Source.Current(), "located": true})
		return
	}

	c, err := h.Source.LocateOnce(r.Context())
	if err != nil {
		// Prior coordinate stands; the client shows a locating-failed note.
		app.RespondJSON(w, map[string]interface{}{"location": c, "located": false})
		return
	}
	app.RespondJSON(w, map[string]interface{}{"location": c, "located": true})
}

type checkInRequest struct {
	Key         string  `json:"key"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Address     string  `json:"address"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	NoiseLevel  string  `json:"noise_level"`
	WifiSpeed   string  `json:"wifi_speed"`
	Description string  `json:"description"`
}

// CheckIn handles POST /map/checkin: create or update the user's rating.
// Which one applies is selected purely by whether a prior rating exists.
func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		app.MethodNotAllowed(w, r)
		return
	}

	var req checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		app.BadRequest(w, r, "invalid request body")
		return
	}
	if req.Key == "" {
		app.BadRequest(w, r, "place key required")
		return
	}

	noise, ok := rating.ParseNoiseLevel(req.NoiseLevel)
	if !ok {
		app.BadRequest(w, r, "invalid noise level")
		return
	}
	wifi, ok := rating.ParseWifiSpeed(req.WifiSpeed)
	if !ok {
		app.BadRequest(w, r, "invalid wifi speed")
		return
	}

	ctx := r.Context()
	existing, err := h.Store.GetMyRating(ctx, req.Key)
	if err != nil {
		app.RespondError(w, http.StatusServiceUnavailable, "Rating store unavailable. Please retry.")
		return
	}

	// Optimistic mirror of the store's own rule; the store still rejects
	// over-limit updates if this check is bypassed.
	if !rating.CanEdit(existing) {
		app.RespondError(w, http.StatusForbidden, "This rating has already been edited once.")
		return
	}

	if existing == nil {
		err = h.Store.CheckIn(ctx, rating.LocationInput{
			Key:     req.Key,
			Name:    req.Name,
			Lat:     req.Lat,
			Lng:     req.Lng,
			Address: req.Address,
			Type:    rating.ParseLocationType(req.Category),
		}, noise, wifi, req.Description)
	} else {
		err = h.Store.UpdateRating(ctx, req.Key, noise, wifi, req.Description)
	}

	switch {
	case err == nil:
	case errors.Is(err, rating.ErrEditLimit):
		app.RespondError(w, http.StatusForbidden, "This rating has already been edited once.")
		return
	case errors.Is(err, rating.ErrExists):
		app.RespondError(w, http.StatusConflict, "You already rated this place.")
		return
	default:
		app.RespondError(w, http.StatusServiceUnavailable, "Submission failed. Please retry.")
		return
	}

	// The held snapshot no longer reflects the store for this key.
	h.snapshot.Invalidate()
	app.RespondJSON(w, map[string]interface{}{"ok": true})
}

// MyRating handles /map/rating?key=: GET returns the user's rating for a
// place and whether it may still be edited, DELETE removes it.
func (h *Handler) MyRating(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		app.BadRequest(w, r, "place key required")
		return
	}
	if r.Method == http.MethodDelete {
		err := h.Store.DeleteMyRating(r.Context(), key)
		switch {
		case errors.Is(err, rating.ErrNotFound):
			app.RespondError(w, http.StatusNotFound, "No rating to delete.")
			return
		case err != nil:
			app.RespondError(w, http.StatusServiceUnavailable, "Rating store unavailable. Please retry.")
			return
		}
		h.snapshot.Invalidate()
		app.RespondJSON(w, map[string]interface{}{"ok": true})
		return
	}
	existing, err := h.Store.GetMyRating(r.Context(), key)
	if err != nil {
		app.RespondError(w, http.StatusServiceUnavailable, "Rating store unavailable. Please retry.")
		return
	}
	app.RespondJSON(w, map[string]interface{}{
		"rating":   existing,
		"can_edit": rating.CanEdit(existing),
	})
}

// Intent handles POST /map/intent: marker popup buttons publish named
// intents here, which fan out over the bus to whoever owns the dialogs.
func (h *Handler) Intent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		app.MethodNotAllowed(w, r)
		return
	}

	var msg struct {
		Topic   string          `json:"topic"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		app.BadRequest(w, r, "invalid request body")
		return
	}

	switch msg.Topic {
	case events.TopicCheckIn:
		var intent events.CheckInIntent
		if err := json.Unmarshal(msg.Payload, &intent); err != nil {
			app.BadRequest(w, r, "invalid payload")
			return
		}
		h.Bus.Publish(events.TopicCheckIn, intent)
	case events.TopicViewReviews:
		var intent events.ViewReviewsIntent
		if err := json.Unmarshal(msg.Payload, &intent); err != nil {
			app.BadRequest(w, r, "invalid payload")
			return
		}
		h.Bus.Publish(events.TopicViewReviews, intent)
	default:
		app.BadRequest(w, r, "unknown topic")
		return
	}

	app.RespondJSON(w, map[string]interface{}{"ok": true})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WS handles GET /map/ws: streams bus messages to the connected UI layer
// so dialogs open without any reference back into the map.
func (h *Handler) WS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		app.Log("mapview", "ws upgrade: %v", err)
		return
	}
	defer conn.Close()

	id, ch := h.Bus.Subscribe("")
	defer h.Bus.Unsubscribe(id)

	// Drain reads so close frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				conn.Close()
				return
			}
		}
	}()

	for msg := range ch {
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// Profile handles GET and POST /profile.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		p, err := h.Store.GetProfile(r.Context())
		if err != nil {
			app.RespondError(w, http.StatusServiceUnavailable, "Rating store unavailable. Please retry.")
			return
		}
		app.RespondJSON(w, map[string]interface{}{"profile": p})
	case http.MethodPost:
		r.ParseForm()
		name := strings.TrimSpace(r.Form.Get("name"))
		if name == "" {
			app.BadRequest(w, r, "name required")
			return
		}
		if err := h.Store.SetProfile(r.Context(), name); err != nil {
			app.RespondError(w, http.StatusServiceUnavailable, "Rating store unavailable. Please retry.")
			return
		}
		app.RespondJSON(w, map[string]interface{}{"ok": true})
	default:
		app.MethodNotAllowed(w, r)
	}
}
