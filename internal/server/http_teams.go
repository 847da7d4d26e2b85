package server

import (
	"net/http"
	"strconv"

	"github.com/alfredjeanlab/querydsl/internal/model"
)

// handleCreateTeam handles POST /v1/teams.
func (s *MemberServer) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	var in createTeamInput
	if err := decodeBody(r, &in); err != nil {
		writeFailure(w, r, err, "team")
		return
	}

	team, err := s.createTeam(r.Context(), in)
	if err != nil {
		writeFailure(w, r, err, "team")
		return
	}
	writeJSON(w, http.StatusCreated, team)
}

// handleListTeams handles GET /v1/teams.
func (s *MemberServer) handleListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := s.store.ListTeams(r.Context())
	if err != nil {
		writeFailure(w, r, err, "team")
		return
	}
	if teams == nil {
		teams = []*model.Team{}
	}
	writeJSON(w, http.StatusOK, teams)
}

// handleGetTeam handles GET /v1/teams/{id}.
func (s *MemberServer) handleGetTeam(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeFailure(w, r, err, "team")
		return
	}

	team, err := s.store.GetTeam(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err, "team")
		return
	}
	writeJSON(w, http.StatusOK, team)
}

// handleTeamStats handles GET /v1/teams/stats.
func (s *MemberServer) handleTeamStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.TeamAgeStats(r.Context())
	if err != nil {
		writeFailure(w, r, err, "team")
		return
	}
	if stats == nil {
		stats = []*model.TeamStats{}
	}
	writeJSON(w, http.StatusOK, stats)
}

// --- reports ---

// handleOldest handles GET /v1/reports/oldest.
func (s *MemberServer) handleOldest(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.OldestMembers(r.Context())
	writeList(w, r, rows, err)
}

// handleAboveAverageAge handles GET /v1/reports/above-average-age.
func (s *MemberServer) handleAboveAverageAge(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.MembersAtLeastAverageAge(r.Context())
	writeList(w, r, rows, err)
}

// handleOlderThan handles GET /v1/reports/older-than?age=N.
func (s *MemberServer) handleOlderThan(w http.ResponseWriter, r *http.Request) {
	age, err := strconv.Atoi(r.URL.Query().Get("age"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "age must be an integer")
		return
	}
	rows, err := s.store.MembersOlderThanWithSubquery(r.Context(), age)
	writeList(w, r, rows, err)
}

// handleNamedLikeTeams handles GET /v1/reports/named-like-teams.
func (s *MemberServer) handleNamedLikeTeams(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.MembersNamedLikeTeams(r.Context())
	writeList(w, r, rows, err)
}

// handleFilteredJoin handles GET /v1/reports/team-join?teamName=X.
func (s *MemberServer) handleFilteredJoin(w http.ResponseWriter, r *http.Request) {
	teamName := r.URL.Query().Get("teamName")
	if !model.HasText(teamName) {
		writeError(w, http.StatusBadRequest, "teamName is required")
		return
	}
	rows, err := s.store.MembersWithTeamFilteredJoin(r.Context(), teamName)
	writeList(w, r, rows, err)
}

// handleAgeBrackets handles GET /v1/reports/age-brackets.
func (s *MemberServer) handleAgeBrackets(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.AgeBrackets(r.Context())
	writeList(w, r, rows, err)
}

// handleUsernameReplace handles GET /v1/reports/username-replace?from=X&to=Y.
func (s *MemberServer) handleUsernameReplace(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("from") == "" {
		writeError(w, http.StatusBadRequest, "from is required")
		return
	}
	rows, err := s.store.ReplaceInUsernames(r.Context(), q.Get("from"), q.Get("to"))
	writeList(w, r, rows, err)
}

// writeList writes rows as a JSON array, never null.
func writeList[T any](w http.ResponseWriter, r *http.Request, rows []T, err error) {
	if err != nil {
		writeFailure(w, r, err, "report")
		return
	}
	if rows == nil {
		rows = []T{}
	}
	writeJSON(w, http.StatusOK, rows)
}
