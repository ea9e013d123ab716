package server

import (
	"encoding/json"
	"net/http"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *ShowServer) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	mux.HandleFunc("GET /v1/show", s.handleGetShow)
	mux.HandleFunc("POST /v1/show/start", s.handleStartShow)
	mux.HandleFunc("POST /v1/show/reset", s.handleResetShow)
	mux.HandleFunc("GET /v1/broadcast", s.handleGetBroadcast)
	mux.HandleFunc("GET /v1/cues", s.handleListCues)
	mux.HandleFunc("GET /v1/cues/{id}", s.handleGetCue)
	mux.HandleFunc("GET /v1/session", s.handleSession)
	mux.HandleFunc("POST /v1/session/answer", s.handleSubmitAnswer)
	mux.HandleFunc("GET /v1/participants/roster", s.handleParticipantRoster)
	mux.HandleFunc("GET /v1/events/stream", s.handleEventStream)
	return AuthMiddleware(authToken, mux)
}

// handleHealth handles GET /v1/health.
func (s *ShowServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
