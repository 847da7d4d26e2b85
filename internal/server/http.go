package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/alfredjeanlab/querydsl/internal/metrics"
	"github.com/alfredjeanlab/querydsl/internal/model"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health and
// GET /metrics) must include a valid Authorization: Bearer <token> header.
func (s *MemberServer) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()

	// Search: v1 returns every match, v2 and v3 return one page counted with
	// the simple and optimized strategies.
	mux.HandleFunc("GET /v1/members", s.handleSearchMembers)
	mux.HandleFunc("GET /v2/members", s.handleSearchPage(model.CountSimple))
	mux.HandleFunc("GET /v3/members", s.handleSearchPage(model.CountOptimized))

	mux.HandleFunc("POST /v1/members", s.handleCreateMember)
	mux.HandleFunc("POST /v1/members/bulk", s.handleBulk)
	mux.HandleFunc("GET /v1/members/{id}", s.handleGetMember)
	mux.HandleFunc("PATCH /v1/members/{id}", s.handleUpdateMember)
	mux.HandleFunc("DELETE /v1/members/{id}", s.handleDeleteMember)
	mux.HandleFunc("GET /v1/members/by-username/{username}", s.handleFindByUsername)

	mux.HandleFunc("POST /v1/teams", s.handleCreateTeam)
	mux.HandleFunc("GET /v1/teams", s.handleListTeams)
	mux.HandleFunc("GET /v1/teams/stats", s.handleTeamStats)
	mux.HandleFunc("GET /v1/teams/{id}", s.handleGetTeam)

	mux.HandleFunc("GET /v1/reports/oldest", s.handleOldest)
	mux.HandleFunc("GET /v1/reports/above-average-age", s.handleAboveAverageAge)
	mux.HandleFunc("GET /v1/reports/older-than", s.handleOlderThan)
	mux.HandleFunc("GET /v1/reports/named-like-teams", s.handleNamedLikeTeams)
	mux.HandleFunc("GET /v1/reports/team-join", s.handleFilteredJoin)
	mux.HandleFunc("GET /v1/reports/age-brackets", s.handleAgeBrackets)
	mux.HandleFunc("GET /v1/reports/username-replace", s.handleUsernameReplace)

	mux.HandleFunc("GET /v1/health", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	return RequestIDMiddleware(metrics.Middleware(AuthMiddleware(authToken, mux)))
}

// handleHealth handles GET /v1/health.
func (s *MemberServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// pathID parses the {id} path value.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, inputError("id must be a positive integer")
	}
	return id, nil
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

// writeFailure maps an operation error to a response: bad input is 400 (with
// per-field detail for validation failures), a missing row is 404, anything
// else is logged and reported as 500 without its detail.
func writeFailure(w http.ResponseWriter, r *http.Request, err error, resource string) {
	var (
		ie inputError
		ve *model.ValidationError
	)
	switch {
	case errors.As(err, &ie):
		writeError(w, http.StatusBadRequest, ie.Error())
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  ve.Error(),
			"fields": ve.Errors,
		})
	case errors.Is(err, sql.ErrNoRows):
		writeError(w, http.StatusNotFound, resource+" not found")
	default:
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", RequestIDFromContext(r.Context()),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeBody decodes a JSON request body into v, rejecting unknown fields.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return inputError("invalid JSON body: " + err.Error())
	}
	return nil
}
