// Package server exposes member search and team/member management over
// HTTP and gRPC. Both transports share the operations in this file.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alfredjeanlab/querydsl/internal/events"
	"github.com/alfredjeanlab/querydsl/internal/model"
	"github.com/alfredjeanlab/querydsl/internal/store"
)

// MemberServer serves member and team operations backed by a store.
type MemberServer struct {
	store     store.Store
	publisher events.Publisher
}

// NewMemberServer returns a MemberServer backed by the given store and publisher.
func NewMemberServer(s store.Store, p events.Publisher) *MemberServer {
	return &MemberServer{store: s, publisher: p}
}

// publish emits a change event. Failures are logged and never fail the
// request that caused them.
func (s *MemberServer) publish(ctx context.Context, topic string, event any) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		slog.Warn("failed to publish event", "topic", topic, "request_id", RequestIDFromContext(ctx), "error", err)
	}
}

// inputError indicates invalid user input.
// Transport layers map this to 400 / InvalidArgument.
type inputError string

func (e inputError) Error() string { return string(e) }

type createTeamInput struct {
	Name string `json:"name"`
}

type createMemberInput struct {
	Username string `json:"username"`
	Age      *int   `json:"age"`
	TeamID   *int64 `json:"team_id,omitempty"`
}

type updateMemberInput struct {
	Username  *string `json:"username,omitempty"`
	Age       *int    `json:"age,omitempty"`
	TeamID    *int64  `json:"team_id,omitempty"`
	ClearTeam bool    `json:"clear_team,omitempty"`
}

// bulkInput selects one set-based statement:
//
//	rename:  members younger than Age get Username
//	add_age: every member's age grows by Delta
//	delete:  members older than Age are removed
type bulkInput struct {
	Operation string `json:"operation"`
	Age       *int   `json:"age,omitempty"`
	Username  string `json:"username,omitempty"`
	Delta     *int   `json:"delta,omitempty"`
}

type searchPageInput struct {
	Condition model.MemberSearchCondition `json:"condition"`
	Page      model.PageRequest           `json:"page"`
	Strategy  string                      `json:"strategy,omitempty"`
}

func (s *MemberServer) createTeam(ctx context.Context, in createTeamInput) (*model.Team, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, inputError("name is required")
	}
	team := &model.Team{Name: strings.TrimSpace(in.Name)}
	if err := s.store.CreateTeam(ctx, team); err != nil {
		return nil, err
	}
	s.publish(ctx, events.TopicTeamCreated, events.TeamCreated{Team: team})
	return team, nil
}

// lookupTeam loads the team a member is being moved to. A missing team is
// the caller's mistake, not a missing resource.
func lookupTeam(ctx context.Context, st store.Store, id int64) (*model.Team, error) {
	team, err := st.GetTeam(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, inputError(fmt.Sprintf("team %d not found", id))
	}
	if err != nil {
		return nil, err
	}
	team.Members = nil
	return team, nil
}

func (s *MemberServer) createMember(ctx context.Context, in createMemberInput) (*model.Member, error) {
	if in.Age == nil {
		return nil, inputError("age is required")
	}
	m := &model.Member{Username: in.Username, Age: *in.Age}

	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		if in.TeamID != nil {
			team, err := lookupTeam(ctx, tx, *in.TeamID)
			if err != nil {
				return err
			}
			m.ChangeTeam(team)
		}
		return tx.CreateMember(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.TopicMemberCreated, events.MemberCreated{Member: m})
	return m, nil
}

func (s *MemberServer) updateMember(ctx context.Context, id int64, in updateMemberInput) (*model.Member, error) {
	if in.ClearTeam && in.TeamID != nil {
		return nil, inputError("team_id and clear_team are mutually exclusive")
	}

	var m *model.Member
	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		var err error
		m, err = tx.GetMember(ctx, id)
		if err != nil {
			return err
		}
		if in.Username != nil {
			m.Username = *in.Username
		}
		if in.Age != nil {
			m.Age = *in.Age
		}
		switch {
		case in.ClearTeam:
			m.ChangeTeam(nil)
		case in.TeamID != nil:
			team, err := lookupTeam(ctx, tx, *in.TeamID)
			if err != nil {
				return err
			}
			m.ChangeTeam(team)
		}
		return tx.UpdateMember(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.TopicMemberUpdated, events.MemberUpdated{Member: m})
	return m, nil
}

func (s *MemberServer) deleteMember(ctx context.Context, id int64) error {
	if err := s.store.DeleteMember(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.TopicMemberDeleted, events.MemberDeleted{MemberID: id})
	return nil
}

func (s *MemberServer) bulk(ctx context.Context, in bulkInput) (*model.BulkResult, error) {
	var (
		n   int64
		err error
	)
	switch in.Operation {
	case events.BulkRename:
		if in.Age == nil {
			return nil, inputError("age is required for rename")
		}
		n, err = s.store.RenameMembersYoungerThan(ctx, *in.Age, in.Username)
	case events.BulkAddAge:
		if in.Delta == nil {
			return nil, inputError("delta is required for add_age")
		}
		n, err = s.store.AddAgeToAll(ctx, *in.Delta)
	case events.BulkDelete:
		if in.Age == nil {
			return nil, inputError("age is required for delete")
		}
		n, err = s.store.DeleteMembersOlderThan(ctx, *in.Age)
	default:
		return nil, inputError(fmt.Sprintf("unknown operation %q (want rename, add_age or delete)", in.Operation))
	}
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.TopicMembersBulk, events.MembersBulk{Operation: in.Operation, Affected: n})
	return &model.BulkResult{Affected: n}, nil
}

func (s *MemberServer) searchPage(ctx context.Context, in searchPageInput) (*model.Page[*model.MemberTeam], error) {
	strategy, err := model.ParseCountStrategy(in.Strategy)
	if err != nil {
		return nil, err
	}
	return s.store.SearchPage(ctx, in.Condition, in.Page, strategy)
}
