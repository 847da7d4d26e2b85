package model

// Team groups members. Members is a derived view filled by the store when
// a team is loaded; it is never written back.
type Team struct {
	ID      int64     `json:"id"`
	Name    string    `json:"name"`
	Members []*Member `json:"members,omitempty"`
}

// Member belongs to at most one team.
type Member struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Age      int    `json:"age"`
	TeamID   *int64 `json:"team_id,omitempty"`

	// Team is resolved eagerly through a join when the store loads it.
	Team *Team `json:"team,omitempty"`
}

// ChangeTeam moves m to t, or detaches it when t is nil. t.Members is left
// alone; the store rebuilds it on the next load.
func (m *Member) ChangeTeam(t *Team) {
	m.Team = t
	if t == nil {
		m.TeamID = nil
		return
	}
	id := t.ID
	m.TeamID = &id
}

// MemberTeam is the flattened member/team projection returned by searches.
// Team fields are nil for members without a team.
type MemberTeam struct {
	MemberID int64   `json:"member_id"`
	Username string  `json:"username"`
	Age      int     `json:"age"`
	TeamID   *int64  `json:"team_id,omitempty"`
	TeamName *string `json:"team_name,omitempty"`
}

// MemberSummary is the username/age projection.
type MemberSummary struct {
	Username string `json:"username"`
	Age      int    `json:"age"`
}

// TeamStats aggregates member ages per team.
type TeamStats struct {
	TeamName   string  `json:"team_name"`
	Members    int64   `json:"members"`
	AgeSum     int64   `json:"age_sum"`
	AverageAge float64 `json:"average_age"`
	MaxAge     int     `json:"max_age"`
	MinAge     int     `json:"min_age"`
}

// AgeBracket labels a member with the age range it falls into.
type AgeBracket struct {
	Username string `json:"username"`
	Bracket  string `json:"bracket"`
}

// BulkResult reports the rows touched by a bulk statement.
type BulkResult struct {
	Affected int64 `json:"affected"`
}
