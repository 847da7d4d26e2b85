package store

import (
	"context"

	"github.com/alfredjeanlab/querydsl/internal/model"
)

// Store defines the persistence interface for members and teams.
// Lookups of a missing row return sql.ErrNoRows.
type Store interface {
	// Teams
	CreateTeam(ctx context.Context, team *model.Team) error
	GetTeam(ctx context.Context, id int64) (*model.Team, error) // includes members
	ListTeams(ctx context.Context) ([]*model.Team, error)

	// Members
	CreateMember(ctx context.Context, member *model.Member) error
	GetMember(ctx context.Context, id int64) (*model.Member, error) // includes team
	ListMembers(ctx context.Context) ([]*model.Member, error)
	FindMembersByUsername(ctx context.Context, username string) ([]*model.Member, error)
	UpdateMember(ctx context.Context, member *model.Member) error
	DeleteMember(ctx context.Context, id int64) error

	// Search
	Search(ctx context.Context, cond model.MemberSearchCondition) ([]*model.MemberTeam, error)
	SearchPage(ctx context.Context, cond model.MemberSearchCondition, page model.PageRequest, strategy model.CountStrategy) (*model.Page[*model.MemberTeam], error)

	// Reports
	TeamAgeStats(ctx context.Context) ([]*model.TeamStats, error)
	OldestMembers(ctx context.Context) ([]*model.MemberSummary, error)
	MembersAtLeastAverageAge(ctx context.Context) ([]*model.MemberSummary, error)
	MembersOlderThanWithSubquery(ctx context.Context, age int) ([]*model.MemberSummary, error)
	MembersNamedLikeTeams(ctx context.Context) ([]*model.Member, error)
	MembersWithTeamFilteredJoin(ctx context.Context, teamName string) ([]*model.MemberTeam, error)
	AgeBrackets(ctx context.Context) ([]*model.AgeBracket, error)
	ReplaceInUsernames(ctx context.Context, from, to string) ([]string, error)

	// Bulk statements; each returns the number of rows touched.
	RenameMembersYoungerThan(ctx context.Context, age int, username string) (int64, error)
	AddAgeToAll(ctx context.Context, delta int) (int64, error)
	DeleteMembersOlderThan(ctx context.Context, age int) (int64, error)

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
