package rating

import (
	"math"
	"strings"
	"time"
)

// NoiseLevel is how loud a place is. Higher scores are quieter.
type NoiseLevel string

const (
	Quiet    NoiseLevel = "Quiet"
	Moderate NoiseLevel = "Moderate"
	Buzzing  NoiseLevel = "Buzzing"
)

// WifiSpeed is how fast a place's wifi is. Higher scores are faster.
type WifiSpeed string

const (
	Slow WifiSpeed = "Slow"
	Okay WifiSpeed = "Okay"
	Fast WifiSpeed = "Fast"
)

// defaultScore is used for unrecognised values so one corrupt record
// can't poison an aggregate.
const defaultScore = 2

// Score maps a noise level onto the 1-3 scale (worse to better).
func (n NoiseLevel) Score() int {
	switch n {
	case Buzzing:
		return 1
	case Moderate:
		return 2
	case Quiet:
		return 3
	}
	return defaultScore
}

// Score maps a wifi speed onto the 1-3 scale (worse to better).
func (w WifiSpeed) Score() int {
	switch w {
	case Slow:
		return 1
	case Okay:
		return 2
	case Fast:
		return 3
	}
	return defaultScore
}

// ParseNoiseLevel decodes a noise level case-insensitively.
func ParseNoiseLevel(s string) (NoiseLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quiet":
		return Quiet, true
	case "moderate":
		return Moderate, true
	case "buzzing":
		return Buzzing, true
	}
	return NoiseLevel(s), false
}

// ParseWifiSpeed decodes a wifi speed case-insensitively.
func ParseWifiSpeed(s string) (WifiSpeed, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "slow":
		return Slow, true
	case "okay":
		return Okay, true
	case "fast":
		return Fast, true
	}
	return WifiSpeed(s), false
}

// Rating is a single user's submission for a place.
type Rating struct {
	Author      string     `json:"author"`
	NoiseLevel  NoiseLevel `json:"noise_level"`
	WifiSpeed   WifiSpeed  `json:"wifi_speed"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	EditCount   int        `json:"edit_count"`
}

// Averages are derived scores for a rating list. They are recomputed from
// the ratings on every read and never stored.
type Averages struct {
	AvgNoise   float64 `json:"avg_noise"`
	AvgWifi    float64 `json:"avg_wifi"`
	AvgOverall float64 `json:"avg_overall"`
	NoiseLabel string  `json:"noise_label"`
	WifiLabel  string  `json:"wifi_label"`
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Aggregate derives the average scores and labels for a list of ratings.
// Returns nil for an empty list: no data means no opinion, callers must not
// substitute a neutral score.
//
// The overall score is the mean of the two already-rounded per-dimension
// averages, rounded again. The two-stage rounding is intentional; displayed
// values depend on it.
func Aggregate(ratings []Rating) *Averages {
	if len(ratings) == 0 {
		return nil
	}

	var totalNoise, totalWifi int
	for _, r := range ratings {
		totalNoise += r.NoiseLevel.Score()
		totalWifi += r.WifiSpeed.Score()
	}

	avgNoise := round1(float64(totalNoise) / float64(len(ratings)))
	avgWifi := round1(float64(totalWifi) / float64(len(ratings)))
	avgOverall := round1((avgNoise + avgWifi) / 2)

	return &Averages{
		AvgNoise:   avgNoise,
		AvgWifi:    avgWifi,
		AvgOverall: avgOverall,
		NoiseLabel: NoiseLabelFor(avgNoise),
		WifiLabel:  WifiLabelFor(avgWifi),
	}
}

// NoiseLabelFor maps a rounded average onto its label.
func NoiseLabelFor(score float64) string {
	if score >= 2.5 {
		return string(Quiet)
	}
	if score >= 1.5 {
		return string(Moderate)
	}
	return string(Buzzing)
}

// WifiLabelFor maps a rounded average onto its label.
func WifiLabelFor(score float64) string {
	if score >= 2.5 {
		return string(Fast)
	}
	if score >= 1.5 {
		return string(Okay)
	}
	return string(Slow)
}

// ScoreColor returns the display colour for a score on the 1-3 scale.
func ScoreColor(score float64) string {
	if score >= 2.5 {
		return "#2e7d32" // green
	}
	if score >= 1.5 {
		return "#f9a825" // yellow
	}
	return "#e65100" // orange
}

// Stars renders a score as filled stars out of 3, e.g. "★★☆".
func Stars(score float64) string {
	n := int(math.Round(score))
	if n < 0 {
		n = 0
	}
	if n > 3 {
		n = 3
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", 3-n)
}
