package search

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/alfredjeanlab/querydsl/internal/metrics"
	"github.com/alfredjeanlab/querydsl/internal/model"
	"github.com/alfredjeanlab/querydsl/internal/query"
)

// newMockDB creates a sqlmock database with automatic cleanup and expectation checking.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

var memberTeamColumns = []string{"member_id", "username", "age", "team_id", "team_name"}

// memberRows returns n rows, member1..memberN, all in team 1.
func memberRows(n int) *sqlmock.Rows {
	rows := sqlmock.NewRows(memberTeamColumns)
	for i := 1; i <= n; i++ {
		rows.AddRow(int64(i), "member"+string(rune('0'+i)), i*10, int64(1), "teamA")
	}
	return rows
}

var (
	contentSQL = regexp.QuoteMeta(selectMemberTeam + " ORDER BY m.id ASC LIMIT $1")
	countSQL   = regexp.QuoteMeta("SELECT COUNT(*) FROM member m LEFT OUTER JOIN team t ON m.team_id = t.id")
)

func TestSearch_ScansNullTeam(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectMemberTeam+" ORDER BY m.id ASC")).
		WillReturnRows(sqlmock.NewRows(memberTeamColumns).
			AddRow(int64(1), "member1", 10, int64(1), "teamA").
			AddRow(int64(2), nil, 20, nil, nil))

	got, err := NewService(db, query.Postgres).Search(context.Background(), model.MemberSearchCondition{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	if got[0].TeamName == nil || *got[0].TeamName != "teamA" {
		t.Errorf("row 0 team = %v, want teamA", got[0].TeamName)
	}
	if got[1].TeamID != nil || got[1].TeamName != nil || got[1].Username != "" {
		t.Errorf("row 1 = %+v, want no team and empty username", got[1])
	}
}

func TestSearch_StorageErrorPropagates(t *testing.T) {
	db, mock := newMockDB(t)
	boom := errors.New("connection reset")
	mock.ExpectQuery("SELECT .+ FROM member m").WillReturnError(boom)

	_, err := NewService(db, query.Postgres).Search(context.Background(), model.MemberSearchCondition{})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
}

func TestSearchPageSimple_AlwaysCounts(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(contentSQL).WithArgs(10).WillReturnRows(memberRows(4))
	mock.ExpectQuery(countSQL).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(4)))

	page, err := NewService(db, query.Postgres).SearchPageSimple(context.Background(), model.MemberSearchCondition{}, model.PageRequest{Size: 10})
	if err != nil {
		t.Fatalf("SearchPageSimple: %v", err)
	}
	if len(page.Content) != 4 || page.TotalElements != 4 {
		t.Errorf("page = %d rows / %d total, want 4 / 4", len(page.Content), page.TotalElements)
	}
}

func TestSearchPageOptimized_SkipsCountOnShortFirstPage(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(contentSQL).WithArgs(10).WillReturnRows(memberRows(4))

	before := testutil.ToFloat64(metrics.CountQueriesSkipped)
	page, err := NewService(db, query.Postgres).SearchPageOptimized(context.Background(), model.MemberSearchCondition{}, model.PageRequest{Size: 10})
	if err != nil {
		t.Fatalf("SearchPageOptimized: %v", err)
	}
	if len(page.Content) != 4 || page.TotalElements != 4 {
		t.Errorf("page = %d rows / %d total, want 4 / 4", len(page.Content), page.TotalElements)
	}
	if got := testutil.ToFloat64(metrics.CountQueriesSkipped) - before; got != 1 {
		t.Errorf("skipped counter moved by %v, want 1", got)
	}
}

func TestSearchPageOptimized_FullFirstPageCounts(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(contentSQL).WithArgs(3).WillReturnRows(memberRows(3))
	mock.ExpectQuery(countSQL).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(4)))

	page, err := NewService(db, query.Postgres).SearchPageOptimized(context.Background(), model.MemberSearchCondition{}, model.PageRequest{Size: 3})
	if err != nil {
		t.Fatalf("SearchPageOptimized: %v", err)
	}
	if len(page.Content) != 3 || page.TotalElements != 4 {
		t.Errorf("page = %d rows / %d total, want 3 / 4", len(page.Content), page.TotalElements)
	}
}

func TestSearchPageOptimized_LaterPageCounts(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectMemberTeam+" ORDER BY m.id ASC LIMIT $1 OFFSET $2")).
		WithArgs(3, 3).
		WillReturnRows(memberRows(1))
	mock.ExpectQuery(countSQL).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(4)))

	page, err := NewService(db, query.Postgres).SearchPageOptimized(context.Background(), model.MemberSearchCondition{}, model.PageRequest{Index: 1, Size: 3})
	if err != nil {
		t.Fatalf("SearchPageOptimized: %v", err)
	}
	if page.TotalElements != 4 || page.PageIndex != 1 {
		t.Errorf("page = index %d total %d, want 1 / 4", page.PageIndex, page.TotalElements)
	}
}

func TestSearchPage_CountErrorPropagates(t *testing.T) {
	db, mock := newMockDB(t)
	boom := errors.New("statement timeout")
	mock.ExpectQuery(contentSQL).WithArgs(3).WillReturnRows(memberRows(3))
	mock.ExpectQuery(countSQL).WillReturnError(boom)

	_, err := NewService(db, query.Postgres).SearchPage(context.Background(), model.MemberSearchCondition{}, model.PageRequest{Size: 3}, model.CountSimple)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
}

func TestSearchPage_UnknownStrategy(t *testing.T) {
	db, _ := newMockDB(t)
	_, err := NewService(db, query.Postgres).SearchPage(context.Background(), model.MemberSearchCondition{}, model.PageRequest{Size: 3}, "fastest")
	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
}

func TestSearchPage_InvalidPageIssuesNoQuery(t *testing.T) {
	for _, tc := range []struct {
		name string
		page model.PageRequest
	}{
		{"zero size", model.PageRequest{Size: 0}},
		{"size above max", model.PageRequest{Size: model.MaxPageSize + 1}},
		{"offset overflow", model.PageRequest{Index: 1 << 62, Size: 4}},
	} {
		for _, strategy := range []model.CountStrategy{model.CountSimple, model.CountOptimized} {
			t.Run(tc.name+"/"+string(strategy), func(t *testing.T) {
				// No expectations: any query fails the test.
				db, _ := newMockDB(t)
				_, err := NewService(db, query.Postgres).SearchPage(context.Background(), model.MemberSearchCondition{}, tc.page, strategy)
				var ve *model.ValidationError
				if !errors.As(err, &ve) {
					t.Fatalf("err = %v, want *ValidationError", err)
				}
			})
		}
	}
}
