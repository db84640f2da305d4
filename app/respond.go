package app

import (
	"encoding/json"
	"net/http"
	"strings"
)

// WantsJSON reports whether the client asked for a JSON response.
func WantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	if strings.Contains(accept, "application/json") {
		return true
	}
	return r.URL.Query().Get("format") == "json"
}

// SendsJSON reports whether the request body is JSON.
func SendsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}

// RespondJSON writes v as a JSON response.
func RespondJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		Log("app", "RespondJSON encode: %v", err)
	}
}

// RespondError writes a JSON error response with the given status code.
func RespondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// BadRequest responds with a 400 in the format the client asked for.
func BadRequest(w http.ResponseWriter, r *http.Request, message string) {
	if WantsJSON(r) {
		RespondError(w, http.StatusBadRequest, message)
		return
	}
	http.Error(w, message, http.StatusBadRequest)
}

// ServerError responds with a 500 in the format the client asked for.
func ServerError(w http.ResponseWriter, r *http.Request, message string) {
	if WantsJSON(r) {
		RespondError(w, http.StatusInternalServerError, message)
		return
	}
	http.Error(w, message, http.StatusInternalServerError)
}

// MethodNotAllowed responds with a 405.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	if WantsJSON(r) {
		RespondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}
