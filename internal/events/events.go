package events

import (
	"context"

	"github.com/alfredjeanlab/querydsl/internal/model"
)

// Event topic constants
const (
	TopicTeamCreated   = "querydsl.team.created"
	TopicMemberCreated = "querydsl.member.created"
	TopicMemberUpdated = "querydsl.member.updated"
	TopicMemberDeleted = "querydsl.member.deleted"
	TopicMembersBulk   = "querydsl.members.bulk"

	// TopicAll matches every topic above.
	TopicAll = "querydsl.>"
)

// Event types

type TeamCreated struct {
	Team *model.Team `json:"team"`
}

type MemberCreated struct {
	Member *model.Member `json:"member"`
}

type MemberUpdated struct {
	Member *model.Member `json:"member"`
}

type MemberDeleted struct {
	MemberID int64 `json:"member_id"`
}

// Bulk operation names carried by MembersBulk.
const (
	BulkRename = "rename"
	BulkAddAge = "add_age"
	BulkDelete = "delete"
)

// MembersBulk reports a set-based update or delete. Individual member IDs
// are not known to the statement, only the row count.
type MembersBulk struct {
	Operation string `json:"operation"`
	Affected  int64  `json:"affected"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
