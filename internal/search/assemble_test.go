package search

import (
	"errors"
	"reflect"
	"testing"

	"github.com/alfredjeanlab/querydsl/internal/model"
	"github.com/alfredjeanlab/querydsl/internal/query"
)

const selectMemberTeam = "SELECT m.id AS member_id, m.username, m.age, t.id AS team_id, t.name AS team_name " +
	"FROM member m LEFT OUTER JOIN team t ON m.team_id = t.id"

var teamBOver35 = model.MemberSearchCondition{TeamName: "teamB", AgeGoe: intPtr(35), AgeLoe: intPtr(40)}

func TestContentQuery(t *testing.T) {
	q, err := ContentQuery(teamBOver35, nil)
	if err != nil {
		t.Fatal(err)
	}
	sql, args, err := q.Build(query.Postgres)
	if err != nil {
		t.Fatal(err)
	}
	want := selectMemberTeam + " WHERE t.name = $1 AND m.age >= $2 AND m.age <= $3 ORDER BY m.id ASC"
	if sql != want {
		t.Errorf("sql =\n  %s\nwant\n  %s", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"teamB", 35, 40}) {
		t.Errorf("args = %v", args)
	}
}

func TestContentQuery_NoCriteria(t *testing.T) {
	q, err := ContentQuery(model.MemberSearchCondition{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	sql, args, err := q.Build(query.SQLite)
	if err != nil {
		t.Fatal(err)
	}
	if want := selectMemberTeam + " ORDER BY m.id ASC"; sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want none", args)
	}
}

func TestPageQuery(t *testing.T) {
	q, err := PageQuery(teamBOver35, model.PageRequest{Index: 2, Size: 3})
	if err != nil {
		t.Fatal(err)
	}
	sql, args, err := q.Build(query.Postgres)
	if err != nil {
		t.Fatal(err)
	}
	want := selectMemberTeam + " WHERE t.name = $1 AND m.age >= $2 AND m.age <= $3 ORDER BY m.id ASC LIMIT $4 OFFSET $5"
	if sql != want {
		t.Errorf("sql =\n  %s\nwant\n  %s", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"teamB", 35, 40, 3, 6}) {
		t.Errorf("args = %v", args)
	}
}

func TestPageQuery_Sorted(t *testing.T) {
	page := model.PageRequest{Size: 5, Sort: []model.SortOrder{
		{Property: model.SortAge, Desc: true},
		{Property: model.SortTeamName},
	}}
	q, err := PageQuery(model.MemberSearchCondition{}, page)
	if err != nil {
		t.Fatal(err)
	}
	sql, _, err := q.Build(query.Postgres)
	if err != nil {
		t.Fatal(err)
	}
	want := selectMemberTeam + " ORDER BY m.age DESC, t.name ASC NULLS LAST, m.id ASC LIMIT $1"
	if sql != want {
		t.Errorf("sql =\n  %s\nwant\n  %s", sql, want)
	}
}

func TestPageQuery_SortByIDHasNoTieBreaker(t *testing.T) {
	page := model.PageRequest{Size: 5, Sort: []model.SortOrder{{Property: model.SortID, Desc: true}}}
	q, err := PageQuery(model.MemberSearchCondition{}, page)
	if err != nil {
		t.Fatal(err)
	}
	sql, _, err := q.Build(query.Postgres)
	if err != nil {
		t.Fatal(err)
	}
	if want := selectMemberTeam + " ORDER BY m.id DESC LIMIT $1"; sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
}

func TestPageQuery_Invalid(t *testing.T) {
	for _, page := range []model.PageRequest{
		{Index: -1, Size: 3},
		{Index: 0, Size: 0},
		{Size: 3, Sort: []model.SortOrder{{Property: "password"}}},
	} {
		_, err := PageQuery(model.MemberSearchCondition{}, page)
		var ve *model.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("PageQuery(%+v) err = %v, want *ValidationError", page, err)
		}
	}
}

func TestCountQuery(t *testing.T) {
	sql, args, err := CountQuery(teamBOver35).Build(query.Postgres)
	if err != nil {
		t.Fatal(err)
	}
	want := "SELECT COUNT(*) FROM member m LEFT OUTER JOIN team t ON m.team_id = t.id WHERE t.name = $1 AND m.age >= $2 AND m.age <= $3"
	if sql != want {
		t.Errorf("sql =\n  %s\nwant\n  %s", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"teamB", 35, 40}) {
		t.Errorf("args = %v", args)
	}
}
