package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alfredjeanlab/querydsl/internal/model"
	"github.com/alfredjeanlab/querydsl/internal/query"
	"github.com/alfredjeanlab/querydsl/internal/search"
)

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// statement is any query builder: select, insert, update or delete.
type statement interface {
	Build(d query.Dialect) (string, []any, error)
}

// conn pairs an executor with the dialect statements are rendered in.
type conn struct {
	db executor
	d  query.Dialect
}

func (c conn) query(ctx context.Context, st statement) (*sql.Rows, error) {
	sqlText, args, err := st.Build(c.d)
	if err != nil {
		return nil, err
	}
	return c.db.QueryContext(ctx, sqlText, args...)
}

func (c conn) queryRow(ctx context.Context, st statement) (*sql.Row, error) {
	sqlText, args, err := st.Build(c.d)
	if err != nil {
		return nil, err
	}
	return c.db.QueryRowContext(ctx, sqlText, args...), nil
}

func (c conn) exec(ctx context.Context, st statement) (int64, error) {
	sqlText, args, err := st.Build(c.d)
	if err != nil {
		return 0, err
	}
	res, err := c.db.ExecContext(ctx, sqlText, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// collect drains rows through scan.
func collect[T any](rows *sql.Rows, scan func(scannable) (T, error)) ([]T, error) {
	defer rows.Close()
	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

var (
	member = search.Member
	team   = search.Team
	// sub is a second path over member for subqueries that must not
	// shadow the outer alias.
	sub = search.Member.As("ms")
)

func memberColumns() []query.Expr {
	return []query.Expr{search.MemberID, search.MemberUsername, search.MemberAge, search.MemberTeamID}
}

func memberWithTeam() *query.SelectQuery {
	cols := append(memberColumns(), search.TeamID, search.TeamName)
	return query.Select(cols...).From(member).LeftJoin(team, search.MemberTeamJoin())
}

func scanMemberRow(s scannable) (*model.Member, error)         { return scanMember(s, false) }
func scanMemberWithTeamRow(s scannable) (*model.Member, error) { return scanMember(s, true) }

// --- teams ---

func queryCreateTeam(ctx context.Context, c conn, t *model.Team) error {
	if err := model.ValidateTeam(t); err != nil {
		return err
	}
	row, err := c.queryRow(ctx, query.Insert(team).
		Value(search.TeamName, t.Name).
		Returning(search.TeamID))
	if err != nil {
		return fmt.Errorf("create team: %w", err)
	}
	if err := row.Scan(&t.ID); err != nil {
		return fmt.Errorf("create team: %w", err)
	}
	return nil
}

func queryGetTeam(ctx context.Context, c conn, id int64) (*model.Team, error) {
	row, err := c.queryRow(ctx, query.Select(search.TeamID, search.TeamName).
		From(team).
		Where(search.TeamID.Eq(id)))
	if err != nil {
		return nil, fmt.Errorf("get team: %w", err)
	}
	t, err := scanTeam(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get team: %w", err)
	}

	rows, err := c.query(ctx, query.Select(memberColumns()...).
		From(member).
		Where(search.MemberTeamID.Eq(id)).
		OrderBy(search.MemberID.Asc()))
	if err != nil {
		return nil, fmt.Errorf("get team members: %w", err)
	}
	t.Members, err = collect(rows, scanMemberRow)
	if err != nil {
		return nil, fmt.Errorf("get team members: %w", err)
	}
	return t, nil
}

func queryListTeams(ctx context.Context, c conn) ([]*model.Team, error) {
	rows, err := c.query(ctx, query.Select(search.TeamID, search.TeamName).
		From(team).
		OrderBy(search.TeamID.Asc()))
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	teams, err := collect(rows, scanTeam)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	if len(teams) == 0 {
		return teams, nil
	}

	rows, err = c.query(ctx, query.Select(memberColumns()...).
		From(member).
		Where(search.MemberTeamID.IsNotNull()).
		OrderBy(search.MemberID.Asc()))
	if err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	members, err := collect(rows, scanMemberRow)
	if err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}

	byID := make(map[int64]*model.Team, len(teams))
	for _, t := range teams {
		byID[t.ID] = t
	}
	for _, m := range members {
		if t, ok := byID[*m.TeamID]; ok {
			t.Members = append(t.Members, m)
		}
	}
	return teams, nil
}

// --- members ---

func queryCreateMember(ctx context.Context, c conn, m *model.Member) error {
	if err := model.ValidateMember(m); err != nil {
		return err
	}
	row, err := c.queryRow(ctx, query.Insert(member).
		Value(search.MemberUsername, nullString(m.Username)).
		Value(search.MemberAge, m.Age).
		Value(search.MemberTeamID, nullInt64(m.TeamID)).
		Returning(search.MemberID))
	if err != nil {
		return fmt.Errorf("create member: %w", err)
	}
	if err := row.Scan(&m.ID); err != nil {
		return fmt.Errorf("create member: %w", err)
	}
	return nil
}

func queryGetMember(ctx context.Context, c conn, id int64) (*model.Member, error) {
	row, err := c.queryRow(ctx, memberWithTeam().Where(search.MemberID.Eq(id)))
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	m, err := scanMember(row, true)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

func queryListMembers(ctx context.Context, c conn) ([]*model.Member, error) {
	rows, err := c.query(ctx, memberWithTeam().OrderBy(search.MemberID.Asc()))
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	members, err := collect(rows, scanMemberWithTeamRow)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

func queryFindMembersByUsername(ctx context.Context, c conn, username string) ([]*model.Member, error) {
	rows, err := c.query(ctx, memberWithTeam().
		Where(search.MemberUsername.Eq(username)).
		OrderBy(search.MemberID.Asc()))
	if err != nil {
		return nil, fmt.Errorf("find members: %w", err)
	}
	members, err := collect(rows, scanMemberWithTeamRow)
	if err != nil {
		return nil, fmt.Errorf("find members: %w", err)
	}
	return members, nil
}

func queryUpdateMember(ctx context.Context, c conn, m *model.Member) error {
	if err := model.ValidateMember(m); err != nil {
		return err
	}
	n, err := c.exec(ctx, query.Update(member).
		Set(search.MemberUsername, nullString(m.Username)).
		Set(search.MemberAge, m.Age).
		Set(search.MemberTeamID, nullInt64(m.TeamID)).
		Where(search.MemberID.Eq(m.ID)))
	if err != nil {
		return fmt.Errorf("update member: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryDeleteMember(ctx context.Context, c conn, id int64) error {
	n, err := c.exec(ctx, query.Delete(member).Where(search.MemberID.Eq(id)))
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// --- reports ---

func queryTeamAgeStats(ctx context.Context, c conn) ([]*model.TeamStats, error) {
	rows, err := c.query(ctx, query.Select(
		search.TeamName,
		query.Count(search.MemberID),
		query.Sum(search.MemberAge),
		query.Cast(query.Avg(search.MemberAge), "DOUBLE PRECISION"),
		query.Max(search.MemberAge),
		query.Min(search.MemberAge),
	).
		From(member).
		Join(team, search.MemberTeamJoin()).
		GroupBy(search.TeamName).
		OrderBy(search.TeamName.Asc()))
	if err != nil {
		return nil, fmt.Errorf("team age stats: %w", err)
	}
	stats, err := collect(rows, scanTeamStats)
	if err != nil {
		return nil, fmt.Errorf("team age stats: %w", err)
	}
	return stats, nil
}

func summaries(ctx context.Context, c conn, op string, where query.Predicate) ([]*model.MemberSummary, error) {
	rows, err := c.query(ctx, query.Select(search.MemberUsername, search.MemberAge).
		From(member).
		Where(where).
		OrderBy(search.MemberID.Asc()))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out, err := collect(rows, scanSummary)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func queryOldestMembers(ctx context.Context, c conn) ([]*model.MemberSummary, error) {
	oldest := query.Select(query.Max(sub.Col("age"))).From(sub)
	return summaries(ctx, c, "oldest members", search.MemberAge.Eq(oldest))
}

func queryMembersAtLeastAverageAge(ctx context.Context, c conn) ([]*model.MemberSummary, error) {
	avg := query.Select(query.Avg(sub.Col("age"))).From(sub)
	return summaries(ctx, c, "members at least average age", search.MemberAge.Goe(avg))
}

func queryMembersOlderThanWithSubquery(ctx context.Context, c conn, age int) ([]*model.MemberSummary, error) {
	older := query.Select(sub.Col("age")).From(sub).Where(sub.Col("age").Gt(age))
	return summaries(ctx, c, "members older than", search.MemberAge.In(older))
}

func queryMembersNamedLikeTeams(ctx context.Context, c conn) ([]*model.Member, error) {
	rows, err := c.query(ctx, query.Select(memberColumns()...).
		From(member, team).
		Where(search.MemberUsername.Eq(search.TeamName)).
		OrderBy(search.MemberID.Asc()))
	if err != nil {
		return nil, fmt.Errorf("members named like teams: %w", err)
	}
	members, err := collect(rows, scanMemberRow)
	if err != nil {
		return nil, fmt.Errorf("members named like teams: %w", err)
	}
	return members, nil
}

// queryMembersWithTeamFilteredJoin returns every member; team columns are
// filled only for members of teamName, because the filter sits in the ON
// clause of the outer join rather than in WHERE.
func queryMembersWithTeamFilteredJoin(ctx context.Context, c conn, teamName string) ([]*model.MemberTeam, error) {
	rows, err := c.query(ctx, query.Select(search.Projection()...).
		From(member).
		LeftJoin(team, search.MemberTeamJoin(), search.TeamName.Eq(teamName)).
		OrderBy(search.MemberID.Asc()))
	if err != nil {
		return nil, fmt.Errorf("members with filtered join: %w", err)
	}
	out, err := collect(rows, func(s scannable) (*model.MemberTeam, error) { return search.ScanMemberTeam(s) })
	if err != nil {
		return nil, fmt.Errorf("members with filtered join: %w", err)
	}
	return out, nil
}

// Age brackets reported by AgeBrackets.
const (
	BracketChild = "0~20"
	BracketYoung = "21~30"
	BracketOther = "other"
)

func queryAgeBrackets(ctx context.Context, c conn) ([]*model.AgeBracket, error) {
	bracket := query.Case().
		When(search.MemberAge.Between(0, 20), BracketChild).
		When(search.MemberAge.Between(21, 30), BracketYoung).
		Otherwise(BracketOther)
	rows, err := c.query(ctx, query.Select(search.MemberUsername, query.As(bracket, "bracket")).
		From(member).
		OrderBy(search.MemberID.Asc()))
	if err != nil {
		return nil, fmt.Errorf("age brackets: %w", err)
	}
	out, err := collect(rows, scanAgeBracket)
	if err != nil {
		return nil, fmt.Errorf("age brackets: %w", err)
	}
	return out, nil
}

func queryReplaceInUsernames(ctx context.Context, c conn, from, to string) ([]string, error) {
	rows, err := c.query(ctx, query.Select(query.Replace(search.MemberUsername, from, to)).
		From(member).
		Where(search.MemberUsername.IsNotNull()).
		OrderBy(search.MemberID.Asc()))
	if err != nil {
		return nil, fmt.Errorf("replace in usernames: %w", err)
	}
	out, err := collect(rows, func(s scannable) (string, error) {
		var v string
		err := s.Scan(&v)
		return v, err
	})
	if err != nil {
		return nil, fmt.Errorf("replace in usernames: %w", err)
	}
	return out, nil
}

// --- bulk statements ---

func queryRenameMembersYoungerThan(ctx context.Context, c conn, age int, username string) (int64, error) {
	n, err := c.exec(ctx, query.Update(member).
		Set(search.MemberUsername, nullString(username)).
		Where(search.MemberAge.Lt(age)))
	if err != nil {
		return 0, fmt.Errorf("rename members: %w", err)
	}
	return n, nil
}

func queryAddAgeToAll(ctx context.Context, c conn, delta int) (int64, error) {
	n, err := c.exec(ctx, query.Update(member).
		Set(search.MemberAge, search.MemberAge.Add(delta)))
	if err != nil {
		return 0, fmt.Errorf("add age: %w", err)
	}
	return n, nil
}

func queryDeleteMembersOlderThan(ctx context.Context, c conn, age int) (int64, error) {
	n, err := c.exec(ctx, query.Delete(member).Where(search.MemberAge.Gt(age)))
	if err != nil {
		return 0, fmt.Errorf("delete members: %w", err)
	}
	return n, nil
}
