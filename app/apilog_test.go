package app

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestRecordAPICall(t *testing.T) {
	RecordAPICall("overpass", "POST", "https://overpass-api.de/api/interpreter", 200, 120*time.Millisecond, nil)
	RecordAPICall("ip-api", "GET", "http://ip-api.com/json/", 0, 5*time.Second, errors.New("timeout"))

	calls := GetAPILog()
	if len(calls) < 2 {
		t.Fatalf("expected at least 2 recorded calls, got %d", len(calls))
	}

	// Newest first.
	if calls[0].Service != "ip-api" {
		t.Errorf("expected newest call first, got %q", calls[0].Service)
	}
	if calls[0].Error != "timeout" {
		t.Errorf("expected error captured, got %q", calls[0].Error)
	}
	if calls[1].Service != "overpass" || calls[1].Status != 200 {
		t.Errorf("unexpected second entry: %+v", calls[1])
	}
}

func TestRecordAPICallFailureHitsSysLog(t *testing.T) {
	RecordAPICall("rating-store", "POST", "https://store.example.com/checkin", 0, time.Second, errors.New("connection refused"))

	found := false
	for _, e := range GetSysLog() {
		if e.Package == "rating-store" {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected the failed call in the system log")
	}
}

func TestAPILogCap(t *testing.T) {
	for i := 0; i < apiLogCap+25; i++ {
		RecordAPICall("overpass", "POST", fmt.Sprintf("https://example.com/%d", i), 200, time.Millisecond, nil)
	}

	calls := GetAPILog()
	if len(calls) != apiLogCap {
		t.Fatalf("expected log capped at %d, got %d", apiLogCap, len(calls))
	}
	// The newest entry survived the trim.
	want := fmt.Sprintf("https://example.com/%d", apiLogCap+24)
	if calls[0].URL != want {
		t.Errorf("expected newest entry %q first, got %q", want, calls[0].URL)
	}
}
