// Package search builds and runs the member/team search: optional criteria
// become predicates, predicates are assembled onto a fixed left-join
// projection, and paged searches count totals under a chosen strategy.
package search

import "github.com/alfredjeanlab/querydsl/internal/query"

// Table paths shared by every member/team query.
var (
	Member = query.NewTable("member", "m")
	Team   = query.NewTable("team", "t")
)

// Column paths.
var (
	MemberID       = Member.Col("id")
	MemberUsername = Member.Col("username")
	MemberAge      = Member.Col("age")
	MemberTeamID   = Member.Col("team_id")
	TeamID         = Team.Col("id")
	TeamName       = Team.Col("name")
)

// MemberTeamJoin is the member-to-team relation path.
func MemberTeamJoin() query.Predicate {
	return MemberTeamID.Eq(TeamID)
}
