// Package admin serves the diagnostics pages: the in-memory system log
// and the external API call log. Access is gated by a shared token since
// the app itself has no user accounts.
package admin

import (
	"crypto/subtle"
	"fmt"
	"html"
	"net/http"
	"os"
	"strings"

	"hushmap/app"
)

// authorized checks the admin token from HUSHMAP_ADMIN_TOKEN. With no
// token configured the pages are open, which is fine for local mode.
func authorized(r *http.Request) bool {
	token := os.Getenv("HUSHMAP_ADMIN_TOKEN")
	if token == "" {
		return true
	}
	given := r.URL.Query().Get("token")
	if given == "" {
		given = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	return subtle.ConstantTimeCompare([]byte(given), []byte(token)) == 1
}

// Handler shows the admin index.
func Handler(w http.ResponseWriter, r *http.Request) {
	if !authorized(r) {
		app.RespondError(w, http.StatusForbidden, "Admin access required")
		return
	}

	content := `<h3>Admin</h3>
<p><a href="/admin/syslog">System Log</a></p>
<p><a href="/admin/apilog">External API Calls</a></p>`

	w.Write([]byte(app.RenderHTML("Admin", "Diagnostics", content)))
}

// SysLogHandler shows the in-memory system log page.
func SysLogHandler(w http.ResponseWriter, r *http.Request) {
	if !authorized(r) {
		app.RespondError(w, http.StatusForbidden, "Admin access required")
		return
	}

	entries := app.GetSysLog()

	var content strings.Builder
	content.WriteString(fmt.Sprintf(`<h3>System Log (%d)</h3>`, len(entries)))

	if len(entries) == 0 {
		content.WriteString(`<p class="text-muted">No log entries yet.</p>`)
	} else {
		content.WriteString(`<table>`)
		content.WriteString(`<tr><th>Time</th><th>Package</th><th>Message</th></tr>`)
		for _, e := range entries {
			content.WriteString(fmt.Sprintf(`<tr>
				<td>%s</td>
				<td>%s</td>
				<td>%s</td>
			</tr>`,
				e.Time.Format("Jan 2 15:04:05"),
				html.EscapeString(e.Package),
				html.EscapeString(e.Message),
			))
		}
		content.WriteString(`</table>`)
	}

	content.WriteString(`<p><a href="/admin">← Back to Admin</a></p>`)

	w.Write([]byte(app.RenderHTML("System Log", "System Log", content.String())))
}

// APILogHandler shows the external API call log page: every Overpass and
// geolocation request with status and timing.
func APILogHandler(w http.ResponseWriter, r *http.Request) {
	if !authorized(r) {
		app.RespondError(w, http.StatusForbidden, "Admin access required")
		return
	}

	entries := app.GetAPILog()

	var content strings.Builder
	content.WriteString(fmt.Sprintf(`<h3>External API Calls (%d)</h3>`, len(entries)))

	if len(entries) == 0 {
		content.WriteString(`<p class="text-muted">No API calls recorded yet.</p>`)
	} else {
		content.WriteString(`<table>`)
		content.WriteString(`<tr><th>Time</th><th>Service</th><th>Method</th><th>URL</th><th>Status</th><th>Duration</th><th>Error</th></tr>`)

		for _, e := range entries {
			statusLabel := fmt.Sprintf("%d", e.Status)
			if e.Status == 0 {
				statusLabel = "err"
			}

			errStr := ""
			if e.Error != "" {
				errStr = truncate(e.Error, 60)
			}

			content.WriteString(fmt.Sprintf(`<tr>
				<td>%s</td>
				<td>%s</td>
				<td>%s</td>
				<td title="%s">%s</td>
				<td>%s</td>
				<td>%dms</td>
				<td title="%s">%s</td>
			</tr>`,
				e.At.Format("Jan 2 15:04:05"),
				html.EscapeString(e.Service),
				e.Method,
				html.EscapeString(e.URL), html.EscapeString(truncate(e.URL, 50)),
				statusLabel,
				e.Duration.Milliseconds(),
				html.EscapeString(e.Error), html.EscapeString(errStr),
			))
		}

		content.WriteString(`</table>`)
	}

	content.WriteString(`<p><a href="/admin">← Back to Admin</a></p>`)

	w.Write([]byte(app.RenderHTML("API Log", "External API Log", content.String())))
}

// truncate shortens s to max characters with an ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
