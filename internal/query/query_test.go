package query

import (
	"errors"
	"reflect"
	"testing"
)

var (
	member = NewTable("member", "m")
	team   = NewTable("team", "t")
)

func TestSelectBuild(t *testing.T) {
	for _, tc := range []struct {
		name     string
		q        *SelectQuery
		d        Dialect
		wantSQL  string
		wantArgs []any
	}{
		{
			name: "left join with filters and paging",
			q: Select(member.Col("id"), member.Col("username")).
				From(member).
				LeftJoin(team, member.Col("team_id").Eq(team.Col("id"))).
				Where(member.Col("username").Eq("member1"), nil, member.Col("age").Goe(10)).
				OrderBy(member.Col("age").Desc()).
				Limit(3).
				Offset(6),
			d:        Postgres,
			wantSQL:  "SELECT m.id, m.username FROM member m LEFT OUTER JOIN team t ON m.team_id = t.id WHERE m.username = $1 AND m.age >= $2 ORDER BY m.age DESC LIMIT $3 OFFSET $4",
			wantArgs: []any{"member1", 10, 3, 6},
		},
		{
			name: "sqlite placeholders",
			q: Select(member.Col("id")).
				From(member).
				Where(member.Col("age").Between(10, 20)).
				Limit(2),
			d:        SQLite,
			wantSQL:  "SELECT m.id FROM member m WHERE m.age BETWEEN ? AND ? LIMIT ?",
			wantArgs: []any{10, 20, 2},
		},
		{
			name:     "sqlite offset without limit",
			q:        Select(member.Col("id")).From(member).Offset(5),
			d:        SQLite,
			wantSQL:  "SELECT m.id FROM member m LIMIT -1 OFFSET ?",
			wantArgs: []any{5},
		},
		{
			name:     "zero offset omitted",
			q:        Select(member.Col("id")).From(member).Limit(10).Offset(0),
			d:        Postgres,
			wantSQL:  "SELECT m.id FROM member m LIMIT $1",
			wantArgs: []any{10},
		},
		{
			name: "nested disjunction is parenthesized",
			q: Select(member.Col("id")).
				From(member).
				Where(AnyOf(member.Col("age").Lt(10), member.Col("age").Gt(90)), member.Col("username").IsNotNull()),
			d:        Postgres,
			wantSQL:  "SELECT m.id FROM member m WHERE (m.age < $1 OR m.age > $2) AND m.username IS NOT NULL",
			wantArgs: []any{10, 90},
		},
		{
			name: "negation and null check",
			q: Select(member.Col("id")).
				From(member).
				Where(Not{Predicate: member.Col("age").Lt(18)}, member.Col("team_id").IsNull()),
			d:        Postgres,
			wantSQL:  "SELECT m.id FROM member m WHERE NOT (m.age < $1) AND m.team_id IS NULL",
			wantArgs: []any{18},
		},
		{
			name: "theta join",
			q: SelectFrom(member).
				From(team).
				Where(member.Col("username").Eq(team.Col("name"))),
			d:       Postgres,
			wantSQL: "SELECT m.* FROM member m, team t WHERE m.username = t.name",
		},
		{
			name: "in list and concat",
			q: Select(Concat(member.Col("username"), "_", Cast(member.Col("age"), "VARCHAR"))).
				From(member).
				Where(member.Col("age").In(10, 20, 30)),
			d:        Postgres,
			wantSQL:  "SELECT ((m.username || $1) || CAST(m.age AS VARCHAR)) FROM member m WHERE m.age IN ($2, $3, $4)",
			wantArgs: []any{"_", 10, 20, 30},
		},
		{
			name: "nulls last ordering",
			q: Select(member.Col("username")).
				From(member).
				OrderBy(member.Col("age").Desc(), member.Col("username").Asc().WithNullsLast()),
			d:       Postgres,
			wantSQL: "SELECT m.username FROM member m ORDER BY m.age DESC, m.username ASC NULLS LAST",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			sql, args, err := tc.q.Build(tc.d)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if sql != tc.wantSQL {
				t.Errorf("sql =\n  %s\nwant\n  %s", sql, tc.wantSQL)
			}
			if len(args) != 0 || len(tc.wantArgs) != 0 {
				if !reflect.DeepEqual(args, tc.wantArgs) {
					t.Errorf("args = %v, want %v", args, tc.wantArgs)
				}
			}
		})
	}
}

func TestBuildErrors(t *testing.T) {
	if _, _, err := Select().From(member).Build(Postgres); !errors.Is(err, errNoProjection) {
		t.Errorf("empty projection: err = %v, want %v", err, errNoProjection)
	}
	if _, _, err := Select(member.Col("id")).Build(Postgres); !errors.Is(err, errNoFrom) {
		t.Errorf("no from: err = %v, want %v", err, errNoFrom)
	}
	if _, _, err := Select(member.Col("id")).From(member).Where(member.Col("age").In()).Build(Postgres); !errors.Is(err, errEmptyIn) {
		t.Errorf("empty in: err = %v, want %v", err, errEmptyIn)
	}
	if _, _, err := Select(Case().Otherwise(1)).From(member).Build(Postgres); !errors.Is(err, errEmptyCase) {
		t.Errorf("empty case: err = %v, want %v", err, errEmptyCase)
	}
	if _, _, err := Update(member).Build(Postgres); !errors.Is(err, errNoAssignment) {
		t.Errorf("empty update: err = %v, want %v", err, errNoAssignment)
	}
}

func TestAllOfDropsNil(t *testing.T) {
	if p := AllOf(nil, nil); p != nil {
		t.Errorf("AllOf(nil, nil) = %v, want nil", p)
	}
	single := member.Col("age").Eq(1)
	if p := AllOf(nil, single); !reflect.DeepEqual(p, single) {
		t.Errorf("AllOf(nil, p) = %v, want p", p)
	}
	if p := AnyOf(); p != nil {
		t.Errorf("AnyOf() = %v, want nil", p)
	}
}

func TestEmptyJunctions(t *testing.T) {
	sql, _, err := Select(member.Col("id")).From(member).Where(Or{}).Build(Postgres)
	if err != nil {
		t.Fatal(err)
	}
	if want := "SELECT m.id FROM member m WHERE 1 = 0"; sql != want {
		t.Errorf("empty Or: %q, want %q", sql, want)
	}
	sql, _, err = Select(member.Col("id")).From(member).Where(And{}).Build(Postgres)
	if err != nil {
		t.Fatal(err)
	}
	if want := "SELECT m.id FROM member m WHERE 1 = 1"; sql != want {
		t.Errorf("empty And: %q, want %q", sql, want)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	base := Select(member.Col("id")).From(member).Where(member.Col("age").Goe(10))
	paged := base.Clone().OrderBy(member.Col("id").Asc()).Limit(5)
	base.Where(member.Col("age").Loe(20))

	got, _, err := paged.Build(Postgres)
	if err != nil {
		t.Fatal(err)
	}
	if want := "SELECT m.id FROM member m WHERE m.age >= $1 ORDER BY m.id ASC LIMIT $2"; got != want {
		t.Errorf("clone = %q, want %q", got, want)
	}
}

func TestCountQuery(t *testing.T) {
	content := Select(member.Col("id"), team.Col("name")).
		From(member).
		LeftJoin(team, member.Col("team_id").Eq(team.Col("id"))).
		Where(team.Col("name").Eq("teamB")).
		OrderBy(member.Col("age").Desc()).
		Limit(3).
		Offset(3)

	sql, args, err := content.CountQuery().Build(Postgres)
	if err != nil {
		t.Fatal(err)
	}
	want := "SELECT COUNT(*) FROM member m LEFT OUTER JOIN team t ON m.team_id = t.id WHERE t.name = $1"
	if sql != want {
		t.Errorf("count sql = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"teamB"}) {
		t.Errorf("count args = %v", args)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	sql, args, err := Update(member).
		Set(member.Col("username"), "non-member").
		Where(member.Col("age").Lt(28)).
		Build(SQLite)
	if err != nil {
		t.Fatal(err)
	}
	if want := "UPDATE member SET username = ? WHERE age < ?"; sql != want {
		t.Errorf("update = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"non-member", 28}) {
		t.Errorf("update args = %v", args)
	}

	sql, args, err = Delete(member).Where(member.Col("age").Gt(18)).Build(Postgres)
	if err != nil {
		t.Fatal(err)
	}
	if want := "DELETE FROM member WHERE age > $1"; sql != want {
		t.Errorf("delete = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{18}) {
		t.Errorf("delete args = %v", args)
	}
}

func TestInsert(t *testing.T) {
	sql, args, err := Insert(team).Value(team.Col("name"), "teamA").Returning(team.Col("id")).Build(Postgres)
	if err != nil {
		t.Fatal(err)
	}
	if want := "INSERT INTO team (name) VALUES ($1) RETURNING id"; sql != want {
		t.Errorf("insert = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"teamA"}) {
		t.Errorf("insert args = %v", args)
	}
	if _, _, err := Insert(team).Build(Postgres); !errors.Is(err, errNoAssignment) {
		t.Errorf("empty insert: err = %v, want %v", err, errNoAssignment)
	}
}

func TestDialectFor(t *testing.T) {
	for _, tc := range []struct {
		driver string
		want   Dialect
		ok     bool
	}{
		{"postgres", Postgres, true},
		{"pgx", Postgres, true},
		{"sqlite3", SQLite, true},
		{"mysql", nil, false},
	} {
		got, ok := DialectFor(tc.driver)
		if ok != tc.ok || got != tc.want {
			t.Errorf("DialectFor(%q) = %v, %v; want %v, %v", tc.driver, got, ok, tc.want, tc.ok)
		}
	}
}
