package sqlstore

import (
	"database/sql"

	"github.com/alfredjeanlab/querydsl/internal/model"
)

// scannable is satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanMember scans a member row, with the team columns of a left join when
// withTeam is set: id, username, age, team_id[, team.id, team.name].
func scanMember(s scannable, withTeam bool) (*model.Member, error) {
	var (
		m        model.Member
		username sql.NullString
		teamID   sql.NullInt64
		joinedID sql.NullInt64
		teamName sql.NullString
	)
	dest := []any{&m.ID, &username, &m.Age, &teamID}
	if withTeam {
		dest = append(dest, &joinedID, &teamName)
	}
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	m.Username = username.String
	m.TeamID = int64Ptr(teamID)
	if joinedID.Valid {
		m.Team = &model.Team{ID: joinedID.Int64, Name: teamName.String}
	}
	return &m, nil
}

func scanTeam(s scannable) (*model.Team, error) {
	var t model.Team
	if err := s.Scan(&t.ID, &t.Name); err != nil {
		return nil, err
	}
	return &t, nil
}

func scanSummary(s scannable) (*model.MemberSummary, error) {
	var (
		ms       model.MemberSummary
		username sql.NullString
	)
	if err := s.Scan(&username, &ms.Age); err != nil {
		return nil, err
	}
	ms.Username = username.String
	return &ms, nil
}

func scanTeamStats(s scannable) (*model.TeamStats, error) {
	var ts model.TeamStats
	if err := s.Scan(&ts.TeamName, &ts.Members, &ts.AgeSum, &ts.AverageAge, &ts.MaxAge, &ts.MinAge); err != nil {
		return nil, err
	}
	return &ts, nil
}

func scanAgeBracket(s scannable) (*model.AgeBracket, error) {
	var (
		ab       model.AgeBracket
		username sql.NullString
	)
	if err := s.Scan(&username, &ab.Bracket); err != nil {
		return nil, err
	}
	ab.Username = username.String
	return &ab, nil
}

// nullString converts an empty string to SQL NULL.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullInt64 converts a nil *int64 to SQL NULL.
func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
