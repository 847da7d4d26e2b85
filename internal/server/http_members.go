package server

import (
	"net/http"

	"github.com/alfredjeanlab/querydsl/internal/model"
)

// handleSearchMembers handles GET /v1/members.
func (s *MemberServer) handleSearchMembers(w http.ResponseWriter, r *http.Request) {
	cond, err := conditionFromQuery(r.URL.Query())
	if err != nil {
		writeFailure(w, r, err, "member")
		return
	}

	rows, err := s.store.Search(r.Context(), cond)
	if err != nil {
		writeFailure(w, r, err, "member")
		return
	}
	if rows == nil {
		rows = []*model.MemberTeam{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// handleSearchPage handles GET /v2/members and GET /v3/members.
func (s *MemberServer) handleSearchPage(strategy model.CountStrategy) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		cond, err := conditionFromQuery(q)
		if err != nil {
			writeFailure(w, r, err, "member")
			return
		}
		page, err := pageFromQuery(q)
		if err != nil {
			writeFailure(w, r, err, "member")
			return
		}

		p, err := s.searchPage(r.Context(), searchPageInput{Condition: cond, Page: page, Strategy: string(strategy)})
		if err != nil {
			writeFailure(w, r, err, "member")
			return
		}
		writeJSON(w, http.StatusOK, pageToBody(p))
	}
}

// handleCreateMember handles POST /v1/members.
func (s *MemberServer) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	var in createMemberInput
	if err := decodeBody(r, &in); err != nil {
		writeFailure(w, r, err, "member")
		return
	}

	m, err := s.createMember(r.Context(), in)
	if err != nil {
		writeFailure(w, r, err, "member")
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// handleGetMember handles GET /v1/members/{id}.
func (s *MemberServer) handleGetMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeFailure(w, r, err, "member")
		return
	}

	m, err := s.store.GetMember(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err, "member")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// handleUpdateMember handles PATCH /v1/members/{id}.
func (s *MemberServer) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeFailure(w, r, err, "member")
		return
	}
	var in updateMemberInput
	if err := decodeBody(r, &in); err != nil {
		writeFailure(w, r, err, "member")
		return
	}

	m, err := s.updateMember(r.Context(), id, in)
	if err != nil {
		writeFailure(w, r, err, "member")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// handleDeleteMember handles DELETE /v1/members/{id}.
func (s *MemberServer) handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeFailure(w, r, err, "member")
		return
	}

	if err := s.deleteMember(r.Context(), id); err != nil {
		writeFailure(w, r, err, "member")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleFindByUsername handles GET /v1/members/by-username/{username}.
func (s *MemberServer) handleFindByUsername(w http.ResponseWriter, r *http.Request) {
	members, err := s.store.FindMembersByUsername(r.Context(), r.PathValue("username"))
	if err != nil {
		writeFailure(w, r, err, "member")
		return
	}
	if members == nil {
		members = []*model.Member{}
	}
	writeJSON(w, http.StatusOK, members)
}

// handleBulk handles POST /v1/members/bulk.
func (s *MemberServer) handleBulk(w http.ResponseWriter, r *http.Request) {
	var in bulkInput
	if err := decodeBody(r, &in); err != nil {
		writeFailure(w, r, err, "member")
		return
	}

	res, err := s.bulk(r.Context(), in)
	if err != nil {
		writeFailure(w, r, err, "member")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
