// Package seed loads sample teams and members into a store.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/alfredjeanlab/querydsl/internal/model"
	"github.com/alfredjeanlab/querydsl/internal/store"
)

// ErrNotEmpty is returned by ApplyIfEmpty when the store already holds members.
var ErrNotEmpty = errors.New("seed: store already has members")

// Fixture is a list of teams and a list of members. Members are inserted in
// list order, so their IDs follow it.
type Fixture struct {
	Teams   []TeamFixture   `yaml:"teams"`
	Members []MemberFixture `yaml:"members"`
}

// TeamFixture is one team.
type TeamFixture struct {
	Name string `yaml:"name"`
}

// MemberFixture is one member. Username may be empty; Team names a team
// from the same fixture, or is empty for a member without a team.
type MemberFixture struct {
	Username string `yaml:"username"`
	Age      int    `yaml:"age"`
	Team     string `yaml:"team,omitempty"`
}

// Result counts the rows a seed inserted.
type Result struct {
	Teams   int
	Members int
}

// Default returns the sample data served by the local profile: teamA and
// teamB, with member0..member99 aged 0..99, even numbers in teamA and odd
// numbers in teamB.
func Default() *Fixture {
	f := &Fixture{Teams: []TeamFixture{{Name: "teamA"}, {Name: "teamB"}}}
	for i := 0; i < 100; i++ {
		team := "teamB"
		if i%2 == 0 {
			team = "teamA"
		}
		f.Members = append(f.Members, MemberFixture{Username: "member" + strconv.Itoa(i), Age: i, Team: team})
	}
	return f
}

// Load reads a YAML fixture. Unknown fields are rejected so typos surface.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var f Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}
	return &f, nil
}

// Validate checks every team and member with the model rules, and that
// member team references resolve.
func (f *Fixture) Validate() error {
	var ve model.ValidationError
	seen := make(map[string]bool, len(f.Teams))
	for i, t := range f.Teams {
		field := fmt.Sprintf("teams[%d]", i)
		if err := model.ValidateTeam(&model.Team{Name: t.Name}); err != nil {
			ve.Errors = append(ve.Errors, prefixed(field, err)...)
		}
		if seen[t.Name] {
			ve.Errors = append(ve.Errors, model.FieldError{Field: field + ".name", Message: "duplicates team " + strconv.Quote(t.Name)})
		}
		seen[t.Name] = true
	}
	for i, m := range f.Members {
		field := fmt.Sprintf("members[%d]", i)
		if err := model.ValidateMember(&model.Member{Username: m.Username, Age: m.Age}); err != nil {
			ve.Errors = append(ve.Errors, prefixed(field, err)...)
		}
		if m.Team != "" && !seen[m.Team] {
			ve.Errors = append(ve.Errors, model.FieldError{Field: field + ".team", Message: "unknown team " + strconv.Quote(m.Team)})
		}
	}
	if ve.HasErrors() {
		return &ve
	}
	return nil
}

func prefixed(prefix string, err error) []model.FieldError {
	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		return []model.FieldError{{Field: prefix, Message: err.Error()}}
	}
	out := make([]model.FieldError, len(ve.Errors))
	for i, fe := range ve.Errors {
		out[i] = model.FieldError{Field: prefix + "." + fe.Field, Message: fe.Message}
	}
	return out
}

// Apply inserts the fixture in one transaction; nothing is written if any
// insert fails.
func Apply(ctx context.Context, s store.Store, f *Fixture) (Result, error) {
	var res Result
	err := s.RunInTransaction(ctx, func(tx store.Store) error {
		res = Result{}
		teams := make(map[string]*model.Team, len(f.Teams))
		for _, tf := range f.Teams {
			team := &model.Team{Name: tf.Name}
			if err := tx.CreateTeam(ctx, team); err != nil {
				return fmt.Errorf("create team %s: %w", tf.Name, err)
			}
			teams[tf.Name] = team
			res.Teams++
		}
		for _, mf := range f.Members {
			m := &model.Member{Username: mf.Username, Age: mf.Age}
			if mf.Team != "" {
				team, ok := teams[mf.Team]
				if !ok {
					return fmt.Errorf("member %q: unknown team %q", mf.Username, mf.Team)
				}
				m.ChangeTeam(team)
			}
			if err := tx.CreateMember(ctx, m); err != nil {
				return fmt.Errorf("create member %q: %w", mf.Username, err)
			}
			res.Members++
		}
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("seed: %w", err)
	}
	return res, nil
}

// ApplyIfEmpty applies f only when the store has no members yet, so a
// restarted local server does not duplicate its sample data.
func ApplyIfEmpty(ctx context.Context, s store.Store, f *Fixture) (Result, error) {
	existing, err := s.ListMembers(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("seed: %w", err)
	}
	if len(existing) > 0 {
		return Result{}, ErrNotEmpty
	}
	return Apply(ctx, s, f)
}
