package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/alfredjeanlab/querydsl/internal/model"
	"github.com/alfredjeanlab/querydsl/internal/query"
	"github.com/alfredjeanlab/querydsl/internal/store"
)

// newMockStore creates a sqlmock-backed store with automatic cleanup and expectation checking.
func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
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
	return New(db, query.Postgres), mock
}

func TestParseURL(t *testing.T) {
	for _, tc := range []struct {
		driver, url         string
		wantDriver, wantDSN string
		wantErr             bool
	}{
		{"", "postgres://u:p@localhost/querydsl", "postgres", "postgres://u:p@localhost/querydsl", false},
		{"", "postgresql://localhost/querydsl", "postgres", "postgresql://localhost/querydsl", false},
		{"pgx", "postgres://localhost/querydsl", "pgx", "postgres://localhost/querydsl", false},
		{"", "sqlite://querydsl.db", "sqlite3", "querydsl.db", false},
		{"", "file:test.db?cache=shared", "sqlite3", "file:test.db?cache=shared", false},
		{"", ":memory:", "sqlite3", ":memory:", false},
		{"sqlite", "local.db", "sqlite3", "local.db", false},
		{"", "mysql://localhost", "", "", true},
		{"oracle", "anything", "", "", true},
	} {
		driver, dsn, err := ParseURL(tc.driver, tc.url)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseURL(%q, %q) err = %v, wantErr %v", tc.driver, tc.url, err, tc.wantErr)
			continue
		}
		if driver != tc.wantDriver || dsn != tc.wantDSN {
			t.Errorf("ParseURL(%q, %q) = %q, %q; want %q, %q", tc.driver, tc.url, driver, dsn, tc.wantDriver, tc.wantDSN)
		}
	}
}

func TestCreateTeam(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO team (name) VALUES ($1) RETURNING id")).
		WithArgs("teamA").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	team := &model.Team{Name: "teamA"}
	if err := s.CreateTeam(context.Background(), team); err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}
	if team.ID != 7 {
		t.Errorf("team.ID = %d, want 7", team.ID)
	}
}

func TestCreateTeam_Invalid(t *testing.T) {
	s, _ := newMockStore(t)
	err := s.CreateTeam(context.Background(), &model.Team{Name: " "})
	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
}

func TestCreateMember_NullTeam(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO member (username, age, team_id) VALUES ($1, $2, $3) RETURNING id")).
		WithArgs("member1", 10, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	m := &model.Member{Username: "member1", Age: 10}
	if err := s.CreateMember(context.Background(), m); err != nil {
		t.Fatalf("CreateMember: %v", err)
	}
	if m.ID != 1 {
		t.Errorf("m.ID = %d, want 1", m.ID)
	}
}

func TestGetMember_NotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("LEFT OUTER JOIN team t ON m.team_id = t.id WHERE m.id = $1")).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "age", "team_id", "id", "name"}))

	_, err := s.GetMember(context.Background(), 99)
	if err != sql.ErrNoRows {
		t.Fatalf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestGetMember_WithTeam(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT m.id, m.username, m.age, m.team_id, t.id, t.name FROM member m LEFT OUTER JOIN team t")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "age", "team_id", "id", "name"}).
			AddRow(int64(1), "member1", 10, int64(3), int64(3), "teamA"))

	m, err := s.GetMember(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetMember: %v", err)
	}
	if m.Team == nil || m.Team.Name != "teamA" || *m.TeamID != 3 {
		t.Errorf("member = %+v, want team teamA (3)", m)
	}
}

func TestDeleteMember_NotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM member WHERE id = $1")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.DeleteMember(context.Background(), 5); err != sql.ErrNoRows {
		t.Fatalf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestAddAgeToAll(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE member SET age = (age + $1)")).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := s.AddAgeToAll(context.Background(), 1)
	if err != nil {
		t.Fatalf("AddAgeToAll: %v", err)
	}
	if n != 4 {
		t.Errorf("affected = %d, want 4", n)
	}
}

func TestSearchPage_UsesReadOnlySnapshot(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY m.id ASC LIMIT $1")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"member_id", "username", "age", "team_id", "team_name"}).
			AddRow(int64(1), "member1", 10, int64(1), "teamA"))
	mock.ExpectCommit()

	page, err := s.SearchPage(context.Background(), model.MemberSearchCondition{}, model.PageRequest{Size: 3}, model.CountOptimized)
	if err != nil {
		t.Fatalf("SearchPage: %v", err)
	}
	if page.TotalElements != 1 {
		t.Errorf("TotalElements = %d, want 1", page.TotalElements)
	}
}

func TestSearchPage_RollsBackOnError(t *testing.T) {
	s, mock := newMockStore(t)
	boom := errors.New("connection refused")
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM member m").WillReturnError(boom)
	mock.ExpectRollback()

	_, err := s.SearchPage(context.Background(), model.MemberSearchCondition{}, model.PageRequest{Size: 3}, model.CountSimple)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
}

func TestRunInTransaction_Rollback(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("abort")
	err := s.RunInTransaction(context.Background(), func(tx store.Store) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}
