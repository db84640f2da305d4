package mapview

import (
	"fmt"
	"net/http"

	"hushmap/app"
)

// Page handles GET /map: the Leaflet page. Markers are loaded from
// /map/markers and redrawn wholesale whenever the location, radius or
// filters change.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	c := h.Source.Current()
	body := h.renderMapPage(c.Lat, c.Lng, defaultRadius)
	html := app.RenderHTML("Map", "Find quiet places to work", body)
	w.Write([]byte(html))
}

// renderMapPage renders the map container, controls and the script that
// drives reconciliation from the browser side.
func (h *Handler) renderMapPage(lat, lng float64, radius int) string {
	return fmt.Sprintf(`<div class="map-page">
<div class="map-controls" style="display:flex;gap:8px;flex-wrap:wrap;margin-bottom:8px;">
  <input type="text" id="hm-search" placeholder="Search places" style="flex:1;min-width:160px;">
  <select id="hm-radius">
    <option value="500">500m</option>
    <option value="1000" selected>1 km</option>
    <option value="2000">2 km</option>
    <option value="5000">5 km</option>
  </select>
  <select id="hm-noise">
    <option value="all">Noise: All</option>
    <option value="quiet">Quiet</option>
    <option value="moderate">Moderate</option>
    <option value="buzzing">Buzzing</option>
  </select>
  <select id="hm-wifi">
    <option value="all">WiFi: All</option>
    <option value="fast">Fast</option>
    <option value="okay">Okay</option>
    <option value="slow">Slow</option>
  </select>
  <button onclick="hmLocateMe()">Locate Me</button>
  <button id="hm-relocate" onclick="hmToggleRelocate()">Set Location</button>
</div>
<div id="hm-results" style="position:relative;"></div>
<p id="hm-status" class="text-muted"></p>
<div id="hm-map" style="height:70vh;width:100%%;border-radius:8px;"></div>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css" integrity="sha256-p4NxAoJBhIIN+hmNHrzRCf9tD/miZyoHS5obTRR9BMY=" crossorigin="">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js" integrity="sha256-20nQCchB9co0qIjJZRGuk2/Z9VM+kNiyxNV/XN/WPeE=" crossorigin=""></script>
<script>
var hmLat = %f, hmLng = %f, hmRadius = %d;
var hmRelocating = false;
var hmMarkersById = {};

var map = L.map('hm-map', {zoomControl: false}).setView([hmLat, hmLng], 15);
L.control.zoom({position: 'bottomleft'}).addTo(map);
L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
  maxZoom: 19,
  attribution: '&copy; <a href="http://www.openstreetmap.org/copyright">OpenStreetMap</a>'
}).addTo(map);

var userIcon = L.divIcon({
  className: 'user-location-marker',
  html: '<div style="width:16px;height:16px;background:#2e7d32;border:3px solid white;border-radius:50%%;box-shadow:0 2px 4px rgba(0,0,0,0.3);"></div>',
  iconSize: [16, 16], iconAnchor: [8, 8]
});
var userMarker = L.marker([hmLat, hmLng], {icon: userIcon}).addTo(map).bindPopup('You are here');
var circle = L.circle([hmLat, hmLng], {radius: hmRadius, color: '#2e7d32', fillColor: '#2e7d32', fillOpacity: 0.1, weight: 2}).addTo(map);
var markers = L.layerGroup().addTo(map);

function hmQuery() {
  return 'lat=' + hmLat + '&lng=' + hmLng + '&radius=' + hmRadius +
    '&noise=' + document.getElementById('hm-noise').value +
    '&wifi=' + document.getElementById('hm-wifi').value;
}

function hmLoadMarkers() {
  document.getElementById('hm-status').textContent = 'Loading places...';
  fetch('/map/markers?' + hmQuery(), {headers: {Accept: 'application/json'}})
    .then(function(r) { if (!r.ok) throw new Error('unavailable'); return r.json(); })
    .then(function(data) {
      markers.clearLayers();
      hmMarkersById = {};
      data.markers.forEach(function(m) {
        var icon = L.divIcon({className: 'place-marker', html: m.icon_html, iconSize: [32, 40], iconAnchor: [16, 20], popupAnchor: [0, -20]});
        var marker = L.marker([m.lat, m.lon], {icon: icon}).bindPopup(m.popup_html);
        markers.addLayer(marker);
        hmMarkersById[m.id] = marker;
      });
      var note = data.ratings_unknown ? ' (ratings unavailable)' : '';
      var status = document.getElementById('hm-status');
      if (data.feed_stale) {
        status.innerHTML = data.count + ' cached places' + note +
          '. Live data unavailable. <a href="#" onclick="hmLoadMarkers();return false;">Retry</a>';
      } else {
        status.textContent = data.count + ' places' + note;
      }
    })
    .catch(function() {
      document.getElementById('hm-status').innerHTML =
        'Could not load places. <a href="#" onclick="hmLoadMarkers();return false;">Retry</a>';
    });
}

function hmSetLocation(lat, lng) {
  hmLat = lat; hmLng = lng;
  map.setView([lat, lng], map.getZoom() || 15);
  userMarker.setLatLng([lat, lng]);
  circle.setLatLng([lat, lng]);
  hmLoadMarkers();
}

function hmLocateMe() {
  fetch('/map/locate', {method: 'POST'})
    .then(function(r) { return r.json(); })
    .then(function(data) {
      if (!data.located) {
        document.getElementById('hm-status').textContent = 'Could not determine your location.';
      }
      hmSetLocation(data.location.lat, data.location.lng);
    });
}

function hmToggleRelocate() {
  hmRelocating = !hmRelocating;
  map.getContainer().style.cursor = hmRelocating ? 'crosshair' : '';
  document.getElementById('hm-relocate').textContent = hmRelocating ? 'Tap the map...' : 'Set Location';
}

map.on('click', function(e) {
  if (!hmRelocating) return;
  hmToggleRelocate();
  var body = new URLSearchParams({lat: e.latlng.lat, lng: e.latlng.lng});
  fetch('/map/locate', {method: 'POST', body: body})
    .then(function(r) { return r.json(); })
    .then(function(data) { hmSetLocation(data.location.lat, data.location.lng); });
});

function hmIntent(topic, payload) {
  fetch('/map/intent', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({topic: topic, payload: payload})
  });
}

document.getElementById('hm-radius').onchange = function() {
  hmRadius = parseInt(this.value, 10);
  circle.setRadius(hmRadius);
  map.fitBounds(circle.getBounds(), {padding: [20, 20]});
  hmLoadMarkers();
};
document.getElementById('hm-noise').onchange = hmLoadMarkers;
document.getElementById('hm-wifi').onchange = hmLoadMarkers;

document.getElementById('hm-search').oninput = function() {
  var q = this.value.trim();
  var box = document.getElementById('hm-results');
  if (!q) { box.innerHTML = ''; return; }
  fetch('/map/search?q=' + encodeURIComponent(q) + '&' + hmQuery(), {headers: {Accept: 'application/json'}})
    .then(function(r) { return r.json(); })
    .then(function(data) {
      var results = data.results || [];
      box.innerHTML = results.map(function(p) {
        return '<a href="#" style="display:block;padding:4px 8px;" onclick="hmSelectResult(' + p.id + ',' + p.lat + ',' + p.lon + ');return false;">' +
          p.name + ' <span class="text-muted">' + p.category.replace('_', ' ') + '</span></a>';
      }).join('');
    });
};

function hmSelectResult(id, lat, lon) {
  document.getElementById('hm-results').innerHTML = '';
  map.setView([lat, lon], map.getZoom() || 15);
  var marker = hmMarkersById[id];
  if (marker) { marker.openPopup(); }
}

// Intents fan out over the bus; the dialog layer listens here.
(function() {
  var proto = window.location.protocol === 'https:' ? 'wss://' : 'ws://';
  var ws = new WebSocket(proto + window.location.host + '/map/ws');
  ws.onmessage = function(e) {
    var msg = JSON.parse(e.data);
    window.dispatchEvent(new CustomEvent(msg.topic, {detail: msg.payload}));
  };
})();

hmLoadMarkers();
</script>
</div>`, lat, lng, radius)
}
