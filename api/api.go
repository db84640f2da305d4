// Package api documents the HTTP API as markdown, rendered into the /api
// page at startup.
package api

// Markdown returns the API documentation.
func Markdown() string {
	return `# HushMap API

Discover cafes, libraries and co-working spaces with crowd-sourced noise
and WiFi ratings.

All endpoints speak JSON when requested with ` + "`Accept: application/json`" + `.

## Map

### GET /map/markers

The reconciled marker set for a view.

Parameters: ` + "`lat`, `lng`" + ` (defaults to the current location),
` + "`radius`" + ` in metres (100-5000, default 1000), ` + "`noise`" + `
(all/quiet/moderate/buzzing), ` + "`wifi`" + ` (all/fast/okay/slow).

With an active noise or wifi filter only rated places whose aggregated
labels match are returned. Returns ` + "`ratings_unknown: true`" + ` when the
rating store could not be reached; the markers are still usable. Returns
` + "`feed_stale: true`" + ` when the place feed was unreachable and the
markers come from previously cached data; retry to get live results.

### GET /map/search

Substring search over the currently loaded place set. Same parameters as
/map/markers plus ` + "`q`" + `. Returns at most five matches in feed order,
filtered with the same policy as the markers.

### POST /map/locate

With ` + "`lat`/`lng`" + ` form values, pins the location manually. Without,
performs a one-shot locate (10 second timeout); on failure the previous
location is kept and ` + "`located: false`" + ` is returned.

## Ratings

### POST /map/checkin

Submit a rating. Creates the caller's first rating for the place, or edits
an existing one. A rating may be edited at most once; further attempts get
status 403.

Body: ` + "`key`, `name`, `category`, `address`, `lat`, `lng`, `noise_level`" + `
(Quiet/Moderate/Buzzing), ` + "`wifi_speed`" + ` (Slow/Okay/Fast) and an
optional ` + "`description`" + `.

### GET /map/rating?key=...

The caller's rating for a place, with ` + "`can_edit`" + `.

### DELETE /map/rating?key=...

Removes the caller's rating for a place.

## Intents

### POST /map/intent

Publishes a marker intent: topic ` + "`checkin`" + ` or ` + "`viewreviews`" + `
with its payload. Dialogs subscribe over the websocket at ` + "`/map/ws`" + `.

## Profile

### GET /profile, POST /profile

Read or set the caller's profile name.
`
}
