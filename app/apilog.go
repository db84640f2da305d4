package app

import (
	"sync"
	"time"
)

// apiLogCap bounds the in-memory call log. The app talks to the Overpass
// feed, IP geolocation and an optional remote rating store; a few hundred
// entries covers hours of traffic through the cache.
const apiLogCap = 250

// APICall is one recorded external request.
type APICall struct {
	At       time.Time
	Service  string
	Method   string
	URL      string
	Status   int
	Duration time.Duration
	Error    string
}

var (
	apiMu    sync.Mutex
	apiCalls []APICall
)

// RecordAPICall notes an external request in the call log. Failed calls
// also land in the system log so they show up alongside the rest of the
// app's logging.
func RecordAPICall(service, method, url string, status int, duration time.Duration, callErr error) {
	call := APICall{
		At:       time.Now(),
		Service:  service,
		Method:   method,
		URL:      url,
		Status:   status,
		Duration: duration,
	}
	if callErr != nil {
		call.Error = callErr.Error()
		appendSysLog(service, "%s %s failed: %v", method, url, callErr)
	}
	apiMu.Lock()
	apiCalls = append(apiCalls, call)
	if len(apiCalls) > apiLogCap {
		apiCalls = apiCalls[len(apiCalls)-apiLogCap:]
	}
	apiMu.Unlock()
}

// GetAPILog returns the recorded calls, newest first.
func GetAPILog() []APICall {
	apiMu.Lock()
	defer apiMu.Unlock()
	out := make([]APICall, len(apiCalls))
	for i, c := range apiCalls {
		out[len(apiCalls)-1-i] = c
	}
	return out
}
