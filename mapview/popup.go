package mapview

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	sanitize "github.com/mrz1836/go-sanitize"

	"hushmap/places"
	"hushmap/rating"
)

// categoryEmoji picks the marker glyph for a feed category.
func categoryEmoji(category string) string {
	switch category {
	case places.CategoryLibrary:
		return "📚"
	case places.CategoryCoworking:
		return "💼"
	}
	return "☕"
}

// markerIconHTML renders the circular marker icon: category glyph, rated
// places get a blue border and a star badge for the overall score.
func markerIconHTML(category string, avg *rating.Averages) string {
	borderColor := "#2e7d32"
	badge := ""
	if avg != nil {
		borderColor = "#1565c0"
		badge = fmt.Sprintf(
			`<span style="position: absolute; bottom: -8px; left: 50%%; transform: translateX(-50%%); font-size: 8px; color: %s; background: white; padding: 0 2px; border-radius: 2px; white-space: nowrap; box-shadow: 0 1px 2px rgba(0,0,0,0.2);">%s</span>`,
			rating.ScoreColor(avg.AvgOverall), rating.Stars(avg.AvgOverall),
		)
	}
	return fmt.Sprintf(
		`<div style="width: 32px; height: 32px; background: white; border: 2px solid %s; border-radius: 50%%; display: flex; align-items: center; justify-content: center; box-shadow: 0 2px 4px rgba(0,0,0,0.2); position: relative;"><span style="font-size: 14px;">%s</span>%s</div>`,
		borderColor, categoryEmoji(category), badge,
	)
}

// popupHTML renders the informational payload for one marker: name,
// category, aggregate bars when rated, the latest free-text note, and the
// check-in / view-reviews buttons. The buttons publish intents over the
// bus via the intent endpoint rather than referencing any dialog code.
func popupHTML(p places.Place, ratings []rating.Rating) string {
	avg := rating.Aggregate(ratings)

	var sb strings.Builder
	sb.WriteString(`<div style="min-width: 180px; font-family: Montserrat, sans-serif;">`)
	sb.WriteString("<strong>" + escapeHTML(p.Name) + "</strong><br/>")
	sb.WriteString(fmt.Sprintf(
		`<span style="color: #666; font-size: 12px; text-transform: capitalize;">%s</span><br/>`,
		escapeHTML(strings.ReplaceAll(p.Category, "_", " ")),
	))
	if p.Address != "" {
		sb.WriteString(fmt.Sprintf(`<span style="color: #888; font-size: 11px;">%s</span><br/>`, escapeHTML(p.Address)))
	}
	if p.OpeningHours != "" {
		sb.WriteString(fmt.Sprintf(`<span style="color: #888; font-size: 11px;">🕐 %s</span><br/>`, escapeHTML(p.OpeningHours)))
	}

	if avg != nil {
		sb.WriteString(ratingsHTML(p, ratings, avg))
	}

	label := "Check In"
	if avg != nil {
		label = "Add Rating"
	}
	sb.WriteString(fmt.Sprintf(
		`<button onclick='hmIntent("checkin", {key: %s, lat: %f, lng: %f, name: %s, category: %s, address: %s})' style="margin-top: 8px; padding: 4px 12px; background: #2e7d32; color: white; border: none; border-radius: 4px; cursor: pointer; font-size: 12px; width: 100%%;">%s</button>`,
		jsonStr(p.Key()), p.Lat, p.Lon, jsonStr(p.Name), jsonStr(p.Category), jsonStr(p.Address), label,
	))
	sb.WriteString(`</div>`)
	return sb.String()
}

// ratingsHTML renders the aggregate block: review count, quietness and
// wifi bars, and the latest description.
func ratingsHTML(p places.Place, ratings []rating.Rating, avg *rating.Averages) string {
	noiseColor := rating.ScoreColor(avg.AvgNoise)
	wifiColor := rating.ScoreColor(avg.AvgWifi)
	// 1-3 score as a bar percentage, higher is better for both
	quietPercent := int(math.Round(avg.AvgNoise / 3 * 100))
	wifiPercent := int(math.Round(avg.AvgWifi / 3 * 100))

	plural := ""
	if len(ratings) > 1 {
		plural = "s"
	}

	var sb strings.Builder
	sb.WriteString(`<div style="margin: 8px 0; padding: 10px; background: #f8f9fa; border-radius: 8px;">`)
	sb.WriteString(fmt.Sprintf(
		`<div style="display: flex; justify-content: space-between; align-items: center; margin-bottom: 10px;"><span style="font-size: 11px; color: #666;">%d review%s</span><button onclick='hmIntent("viewreviews", {key: %s, name: %s})' style="font-size: 10px; color: #1565c0; background: none; border: none; cursor: pointer; text-decoration: underline;">View all</button></div>`,
		len(ratings), plural, jsonStr(p.Key()), jsonStr(p.Name),
	))
	sb.WriteString(barHTML("🔇 Quietness", avg.NoiseLabel, noiseColor, quietPercent))
	sb.WriteString(barHTML("📶 WiFi", avg.WifiLabel, wifiColor, wifiPercent))

	if note := latestNote(ratings); note != "" {
		sb.WriteString(fmt.Sprintf(
			`<div style="font-size: 11px; color: #666; margin-top: 10px; font-style: italic; border-top: 1px solid #e0e0e0; padding-top: 8px;">"%s"</div>`,
			escapeHTML(sanitize.XSS(note)),
		))
	}
	sb.WriteString(`</div>`)
	return sb.String()
}

func barHTML(label, value, color string, percent int) string {
	return fmt.Sprintf(
		`<div style="margin-bottom: 12px;"><div style="display: flex; justify-content: space-between; align-items: center; margin-bottom: 4px;"><span style="font-size: 12px; color: #444;">%s</span><span style="font-size: 12px; font-weight: 600; color: %s;">%s</span></div><div style="height: 6px; background: #e0e0e0; border-radius: 3px; overflow: hidden;"><div style="height: 100%%; width: %d%%; background: %s; border-radius: 3px;"></div></div></div>`,
		label, color, value, percent, color,
	)
}

// latestNote returns the newest non-empty description.
func latestNote(ratings []rating.Rating) string {
	for i := len(ratings) - 1; i >= 0; i-- {
		if ratings[i].Description != "" {
			return ratings[i].Description
		}
	}
	return ""
}

// jsonStr returns a JSON-encoded string for use in JavaScript
func jsonStr(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// escapeHTML escapes HTML special characters
func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&#34;")
	s = strings.ReplaceAll(s, "'", "&#39;")
	return s
}
