package rating

import (
	"testing"
)

func TestAggregateEmpty(t *testing.T) {
	if avg := Aggregate(nil); avg != nil {
		t.Errorf("expected nil for no ratings, got %+v", avg)
	}
	if avg := Aggregate([]Rating{}); avg != nil {
		t.Errorf("expected nil for empty ratings, got %+v", avg)
	}
}

func TestAggregateSingle(t *testing.T) {
	avg := Aggregate([]Rating{{NoiseLevel: Quiet, WifiSpeed: Fast}})
	if avg == nil {
		t.Fatal("expected averages, got nil")
	}
	if avg.AvgNoise != 3 || avg.AvgWifi != 3 || avg.AvgOverall != 3 {
		t.Errorf("expected 3/3/3, got %.1f/%.1f/%.1f", avg.AvgNoise, avg.AvgWifi, avg.AvgOverall)
	}
	if avg.NoiseLabel != "Quiet" || avg.WifiLabel != "Fast" {
		t.Errorf("expected Quiet/Fast labels, got %s/%s", avg.NoiseLabel, avg.WifiLabel)
	}
}

func TestAggregateTwoStageRounding(t *testing.T) {
	// Noise scores 3,3,2 average to 2.666..., rounded to 2.7 before the
	// overall mean: (2.7 + 1.0) / 2 = 1.85, rounded to 1.9.
	ratings := []Rating{
		{NoiseLevel: Quiet, WifiSpeed: Slow},
		{NoiseLevel: Quiet, WifiSpeed: Slow},
		{NoiseLevel: Moderate, WifiSpeed: Slow},
	}
	avg := Aggregate(ratings)
	if avg.AvgNoise != 2.7 {
		t.Errorf("expected avg noise 2.7, got %v", avg.AvgNoise)
	}
	if avg.AvgWifi != 1.0 {
		t.Errorf("expected avg wifi 1.0, got %v", avg.AvgWifi)
	}
	if avg.AvgOverall != 1.9 {
		t.Errorf("expected avg overall 1.9, got %v", avg.AvgOverall)
	}
	if avg.NoiseLabel != "Quiet" {
		t.Errorf("expected noise label Quiet at 2.7, got %s", avg.NoiseLabel)
	}
	if avg.WifiLabel != "Slow" {
		t.Errorf("expected wifi label Slow at 1.0, got %s", avg.WifiLabel)
	}
}

func TestAggregateUnknownValues(t *testing.T) {
	// Corrupt values score as the neutral 2, never as 0.
	avg := Aggregate([]Rating{{NoiseLevel: "Loud???", WifiSpeed: "Blazing"}})
	if avg.AvgNoise != 2 || avg.AvgWifi != 2 {
		t.Errorf("expected neutral 2/2 for unknown values, got %.1f/%.1f", avg.AvgNoise, avg.AvgWifi)
	}
}

func TestLabelThresholds(t *testing.T) {
	tests := []struct {
		score      float64
		noiseLabel string
		wifiLabel  string
	}{
		{3.0, "Quiet", "Fast"},
		{2.5, "Quiet", "Fast"},
		{2.4, "Moderate", "Okay"},
		{1.5, "Moderate", "Okay"},
		{1.4, "Buzzing", "Slow"},
		{1.0, "Buzzing", "Slow"},
	}
	for _, tt := range tests {
		if got := NoiseLabelFor(tt.score); got != tt.noiseLabel {
			t.Errorf("NoiseLabelFor(%.1f) = %q, want %q", tt.score, got, tt.noiseLabel)
		}
		if got := WifiLabelFor(tt.score); got != tt.wifiLabel {
			t.Errorf("WifiLabelFor(%.1f) = %q, want %q", tt.score, got, tt.wifiLabel)
		}
	}
}

func TestParseNoiseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  NoiseLevel
		ok    bool
	}{
		{"Quiet", Quiet, true},
		{"quiet", Quiet, true},
		{" MODERATE ", Moderate, true},
		{"buzzing", Buzzing, true},
		{"loud", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseNoiseLevel(tt.input)
		if ok != tt.ok {
			t.Errorf("ParseNoiseLevel(%q) ok = %v, want %v", tt.input, ok, tt.ok)
		}
		if ok && got != tt.want {
			t.Errorf("ParseNoiseLevel(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseWifiSpeed(t *testing.T) {
	if got, ok := ParseWifiSpeed("FAST"); !ok || got != Fast {
		t.Errorf("ParseWifiSpeed(FAST) = %q, %v", got, ok)
	}
	if _, ok := ParseWifiSpeed("turbo"); ok {
		t.Error("expected turbo to be rejected")
	}
}

func TestStars(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{3.0, "★★★"},
		{2.5, "★★★"},
		{1.9, "★★☆"},
		{1.0, "★☆☆"},
		{0, "☆☆☆"},
	}
	for _, tt := range tests {
		if got := Stars(tt.score); got != tt.want {
			t.Errorf("Stars(%.1f) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestScoreColor(t *testing.T) {
	if got := ScoreColor(2.5); got != "#2e7d32" {
		t.Errorf("expected green at 2.5, got %s", got)
	}
	if got := ScoreColor(2.0); got != "#f9a825" {
		t.Errorf("expected yellow at 2.0, got %s", got)
	}
	if got := ScoreColor(1.2); got != "#e65100" {
		t.Errorf("expected orange at 1.2, got %s", got)
	}
}
