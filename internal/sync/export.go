package sync

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/alfredjeanlab/querydsl/internal/model"
)

// Source is the part of the store an export reads.
type Source interface {
	ListTeams(ctx context.Context) ([]*model.Team, error)
	ListMembers(ctx context.Context) ([]*model.Member, error)
}

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version     string    `json:"version"`
	Type        string    `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	TeamCount   int       `json:"team_count"`
	MemberCount int       `json:"member_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Summary describes one export.
type Summary struct {
	Teams   int
	Members int
	// Digest is the SHA-256 of the team and member records. The header is
	// excluded so unchanged data keeps the same digest across exports.
	Digest string
}

// ExportJSONL writes every team and then every member as JSONL to w, each
// group sorted by ID. Teams are written without their member lists; members
// reference their team by team_id.
func ExportJSONL(ctx context.Context, s Source, w io.Writer) (Summary, error) {
	teams, err := s.ListTeams(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list teams: %w", err)
	}
	members, err := s.ListMembers(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list members: %w", err)
	}

	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })

	if err := json.NewEncoder(w).Encode(header{
		Version:     "1",
		Type:        "header",
		Timestamp:   time.Now().UTC(),
		TeamCount:   len(teams),
		MemberCount: len(members),
	}); err != nil {
		return Summary{}, fmt.Errorf("encode header: %w", err)
	}

	digest := sha256.New()
	enc := json.NewEncoder(io.MultiWriter(w, digest))
	enc.SetEscapeHTML(false)

	for _, t := range teams {
		flat := model.Team{ID: t.ID, Name: t.Name}
		if err := enc.Encode(record{Type: "team", Data: flat}); err != nil {
			return Summary{}, fmt.Errorf("encode team %d: %w", t.ID, err)
		}
	}

	for _, m := range members {
		flat := model.Member{ID: m.ID, Username: m.Username, Age: m.Age, TeamID: m.TeamID}
		if err := enc.Encode(record{Type: "member", Data: flat}); err != nil {
			return Summary{}, fmt.Errorf("encode member %d: %w", m.ID, err)
		}
	}

	return Summary{
		Teams:   len(teams),
		Members: len(members),
		Digest:  hex.EncodeToString(digest.Sum(nil)),
	}, nil
}
