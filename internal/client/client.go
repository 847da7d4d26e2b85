// Package client provides a transport-agnostic interface for the querydsl
// member service, with HTTP/JSON and gRPC implementations.
package client

import (
	"context"

	"github.com/alfredjeanlab/querydsl/internal/model"
)

// MembersClient is the interface the qd CLI uses to talk to a server. It is
// implemented by HTTPClient (default) and GRPCClient.
type MembersClient interface {
	// Search
	Search(ctx context.Context, cond model.MemberSearchCondition) ([]*model.MemberTeam, error)
	SearchPage(ctx context.Context, req *SearchPageRequest) (*Page, error)

	// Members
	GetMember(ctx context.Context, id int64) (*model.Member, error)
	CreateMember(ctx context.Context, req *CreateMemberRequest) (*model.Member, error)

	// Teams
	CreateTeam(ctx context.Context, name string) (*model.Team, error)

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// SearchPageRequest selects one page of search results.
type SearchPageRequest struct {
	Condition model.MemberSearchCondition `json:"condition"`
	Page      model.PageRequest           `json:"page"`
	Strategy  model.CountStrategy         `json:"strategy,omitempty"`
}

// Page is one page of search results as returned by the server.
type Page struct {
	Content       []*model.MemberTeam `json:"content"`
	TotalElements int64               `json:"total_elements"`
	TotalPages    int                 `json:"total_pages"`
	Page          int                 `json:"page"`
	Size          int                 `json:"size"`
	Last          bool                `json:"last"`
}

// CreateMemberRequest holds parameters for creating a member.
type CreateMemberRequest struct {
	Username string `json:"username"`
	Age      int    `json:"age"`
	TeamID   *int64 `json:"team_id,omitempty"`
}

// UpdateMemberRequest holds the fields to change on a member. Nil fields are
// left as they are.
type UpdateMemberRequest struct {
	Username  *string `json:"username,omitempty"`
	Age       *int    `json:"age,omitempty"`
	TeamID    *int64  `json:"team_id,omitempty"`
	ClearTeam bool    `json:"clear_team,omitempty"`
}

// BulkRequest runs one set-based update or delete.
type BulkRequest struct {
	Operation string `json:"operation"`
	Age       *int   `json:"age,omitempty"`
	Username  string `json:"username,omitempty"`
	Delta     *int   `json:"delta,omitempty"`
}
