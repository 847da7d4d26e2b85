// Package sqlstore implements the store.Store interface on database/sql,
// backed by PostgreSQL (lib/pq or pgx) or SQLite.
package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/alfredjeanlab/querydsl/internal/model"
	"github.com/alfredjeanlab/querydsl/internal/query"
	"github.com/alfredjeanlab/querydsl/internal/search"
	"github.com/alfredjeanlab/querydsl/internal/store"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// SQLStore implements store.Store on a *sql.DB.
type SQLStore struct {
	db *sql.DB
	d  query.Dialect
}

// Compile-time check that SQLStore implements store.Store.
var _ store.Store = (*SQLStore)(nil)

// ParseURL splits a database URL into a database/sql driver name and the
// DSN that driver expects. An explicit driver overrides the URL scheme.
func ParseURL(driver, databaseURL string) (string, string, error) {
	switch {
	case driver == "pgx" || driver == "postgres":
		return driver, databaseURL, nil
	case driver == "sqlite3" || driver == "sqlite":
		return "sqlite3", strings.TrimPrefix(databaseURL, "sqlite://"), nil
	case driver != "":
		return "", "", fmt.Errorf("unsupported database driver %q", driver)
	}
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return "postgres", databaseURL, nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return "sqlite3", strings.TrimPrefix(databaseURL, "sqlite://"), nil
	case strings.HasPrefix(databaseURL, "file:"), databaseURL == ":memory:", strings.HasSuffix(databaseURL, ".db"):
		return "sqlite3", databaseURL, nil
	}
	return "", "", fmt.Errorf("cannot infer database driver from %q", databaseURL)
}

// Open connects to the database, configures the connection pool, and runs
// any pending migrations.
func Open(driver, dsn string) (*SQLStore, error) {
	d, ok := query.DialectFor(driver)
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if d == query.SQLite {
		// SQLite serializes writers; a single connection also keeps
		// :memory: databases alive for the life of the pool.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db, d); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLStore{db: db, d: d}, nil
}

// New wraps an already-migrated database.
func New(db *sql.DB, d query.Dialect) *SQLStore {
	return &SQLStore{db: db, d: d}
}

// Migrate applies pending migrations to db without opening a store.
func Migrate(db *sql.DB, d query.Dialect) error {
	return runMigrations(db, d)
}

func runMigrations(db *sql.DB, d query.Dialect) error {
	dir := "migrations/postgres"
	if d == query.SQLite {
		dir = "migrations/sqlite"
	}
	sourceDriver, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	var dbDriver migratedb.Driver
	if d == query.SQLite {
		dbDriver, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	} else {
		dbDriver, err = postgres.WithInstance(db, &postgres.Config{})
	}
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, d.Name(), dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// DB exposes the underlying pool for health checks.
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

// Dialect returns the SQL dialect the store speaks.
func (s *SQLStore) Dialect() query.Dialect {
	return s.d
}

// Close closes the underlying database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) conn() conn { return conn{db: s.db, d: s.d} }

func (s *SQLStore) CreateTeam(ctx context.Context, team *model.Team) error {
	return queryCreateTeam(ctx, s.conn(), team)
}

func (s *SQLStore) GetTeam(ctx context.Context, id int64) (*model.Team, error) {
	return queryGetTeam(ctx, s.conn(), id)
}

func (s *SQLStore) ListTeams(ctx context.Context) ([]*model.Team, error) {
	return queryListTeams(ctx, s.conn())
}

func (s *SQLStore) CreateMember(ctx context.Context, member *model.Member) error {
	return queryCreateMember(ctx, s.conn(), member)
}

func (s *SQLStore) GetMember(ctx context.Context, id int64) (*model.Member, error) {
	return queryGetMember(ctx, s.conn(), id)
}

func (s *SQLStore) ListMembers(ctx context.Context) ([]*model.Member, error) {
	return queryListMembers(ctx, s.conn())
}

func (s *SQLStore) FindMembersByUsername(ctx context.Context, username string) ([]*model.Member, error) {
	return queryFindMembersByUsername(ctx, s.conn(), username)
}

func (s *SQLStore) UpdateMember(ctx context.Context, member *model.Member) error {
	return queryUpdateMember(ctx, s.conn(), member)
}

func (s *SQLStore) DeleteMember(ctx context.Context, id int64) error {
	return queryDeleteMember(ctx, s.conn(), id)
}

func (s *SQLStore) Search(ctx context.Context, cond model.MemberSearchCondition) ([]*model.MemberTeam, error) {
	return search.NewService(s.db, s.d).Search(ctx, cond)
}

// SearchPage runs the content and count queries in one read-only
// transaction so the total and the content observe the same snapshot.
func (s *SQLStore) SearchPage(ctx context.Context, cond model.MemberSearchCondition, page model.PageRequest, strategy model.CountStrategy) (*model.Page[*model.MemberTeam], error) {
	tx, err := s.db.BeginTx(ctx, snapshotOptions(s.d))
	if err != nil {
		return nil, fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	result, err := search.NewService(tx, s.d).SearchPage(ctx, cond, page, strategy)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit snapshot: %w", err)
	}
	return result, nil
}

// snapshotOptions returns the isolation used for paged searches. SQLite
// transactions are already serializable.
func snapshotOptions(d query.Dialect) *sql.TxOptions {
	if d == query.SQLite {
		return nil
	}
	return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
}

func (s *SQLStore) TeamAgeStats(ctx context.Context) ([]*model.TeamStats, error) {
	return queryTeamAgeStats(ctx, s.conn())
}

func (s *SQLStore) OldestMembers(ctx context.Context) ([]*model.MemberSummary, error) {
	return queryOldestMembers(ctx, s.conn())
}

func (s *SQLStore) MembersAtLeastAverageAge(ctx context.Context) ([]*model.MemberSummary, error) {
	return queryMembersAtLeastAverageAge(ctx, s.conn())
}

func (s *SQLStore) MembersOlderThanWithSubquery(ctx context.Context, age int) ([]*model.MemberSummary, error) {
	return queryMembersOlderThanWithSubquery(ctx, s.conn(), age)
}

func (s *SQLStore) MembersNamedLikeTeams(ctx context.Context) ([]*model.Member, error) {
	return queryMembersNamedLikeTeams(ctx, s.conn())
}

func (s *SQLStore) MembersWithTeamFilteredJoin(ctx context.Context, teamName string) ([]*model.MemberTeam, error) {
	return queryMembersWithTeamFilteredJoin(ctx, s.conn(), teamName)
}

func (s *SQLStore) AgeBrackets(ctx context.Context) ([]*model.AgeBracket, error) {
	return queryAgeBrackets(ctx, s.conn())
}

func (s *SQLStore) ReplaceInUsernames(ctx context.Context, from, to string) ([]string, error) {
	return queryReplaceInUsernames(ctx, s.conn(), from, to)
}

func (s *SQLStore) RenameMembersYoungerThan(ctx context.Context, age int, username string) (int64, error) {
	return queryRenameMembersYoungerThan(ctx, s.conn(), age, username)
}

func (s *SQLStore) AddAgeToAll(ctx context.Context, delta int) (int64, error) {
	return queryAddAgeToAll(ctx, s.conn(), delta)
}

func (s *SQLStore) DeleteMembersOlderThan(ctx context.Context, age int) (int64, error) {
	return queryDeleteMembersOlderThan(ctx, s.conn(), age)
}

// RunInTransaction begins a database transaction, creates a txStore that
// delegates to it, calls fn, and commits on success or rolls back on error.
func (s *SQLStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txS := &txStore{tx: tx, d: s.d}
	if err := fn(txS); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore implements store.Store using a *sql.Tx.
type txStore struct {
	tx *sql.Tx
	d  query.Dialect
}

// Compile-time check that txStore implements store.Store.
var _ store.Store = (*txStore)(nil)

func (s *txStore) conn() conn { return conn{db: s.tx, d: s.d} }

func (s *txStore) CreateTeam(ctx context.Context, team *model.Team) error {
	return queryCreateTeam(ctx, s.conn(), team)
}

func (s *txStore) GetTeam(ctx context.Context, id int64) (*model.Team, error) {
	return queryGetTeam(ctx, s.conn(), id)
}

func (s *txStore) ListTeams(ctx context.Context) ([]*model.Team, error) {
	return queryListTeams(ctx, s.conn())
}

func (s *txStore) CreateMember(ctx context.Context, member *model.Member) error {
	return queryCreateMember(ctx, s.conn(), member)
}

func (s *txStore) GetMember(ctx context.Context, id int64) (*model.Member, error) {
	return queryGetMember(ctx, s.conn(), id)
}

func (s *txStore) ListMembers(ctx context.Context) ([]*model.Member, error) {
	return queryListMembers(ctx, s.conn())
}

func (s *txStore) FindMembersByUsername(ctx context.Context, username string) ([]*model.Member, error) {
	return queryFindMembersByUsername(ctx, s.conn(), username)
}

func (s *txStore) UpdateMember(ctx context.Context, member *model.Member) error {
	return queryUpdateMember(ctx, s.conn(), member)
}

func (s *txStore) DeleteMember(ctx context.Context, id int64) error {
	return queryDeleteMember(ctx, s.conn(), id)
}

func (s *txStore) Search(ctx context.Context, cond model.MemberSearchCondition) ([]*model.MemberTeam, error) {
	return search.NewService(s.tx, s.d).Search(ctx, cond)
}

// SearchPage runs inside the caller's transaction and inherits its isolation.
func (s *txStore) SearchPage(ctx context.Context, cond model.MemberSearchCondition, page model.PageRequest, strategy model.CountStrategy) (*model.Page[*model.MemberTeam], error) {
	return search.NewService(s.tx, s.d).SearchPage(ctx, cond, page, strategy)
}

func (s *txStore) TeamAgeStats(ctx context.Context) ([]*model.TeamStats, error) {
	return queryTeamAgeStats(ctx, s.conn())
}

func (s *txStore) OldestMembers(ctx context.Context) ([]*model.MemberSummary, error) {
	return queryOldestMembers(ctx, s.conn())
}

func (s *txStore) MembersAtLeastAverageAge(ctx context.Context) ([]*model.MemberSummary, error) {
	return queryMembersAtLeastAverageAge(ctx, s.conn())
}

func (s *txStore) MembersOlderThanWithSubquery(ctx context.Context, age int) ([]*model.MemberSummary, error) {
	return queryMembersOlderThanWithSubquery(ctx, s.conn(), age)
}

func (s *txStore) MembersNamedLikeTeams(ctx context.Context) ([]*model.Member, error) {
	return queryMembersNamedLikeTeams(ctx, s.conn())
}

func (s *txStore) MembersWithTeamFilteredJoin(ctx context.Context, teamName string) ([]*model.MemberTeam, error) {
	return queryMembersWithTeamFilteredJoin(ctx, s.conn(), teamName)
}

func (s *txStore) AgeBrackets(ctx context.Context) ([]*model.AgeBracket, error) {
	return queryAgeBrackets(ctx, s.conn())
}

func (s *txStore) ReplaceInUsernames(ctx context.Context, from, to string) ([]string, error) {
	return queryReplaceInUsernames(ctx, s.conn(), from, to)
}

func (s *txStore) RenameMembersYoungerThan(ctx context.Context, age int, username string) (int64, error) {
	return queryRenameMembersYoungerThan(ctx, s.conn(), age, username)
}

func (s *txStore) AddAgeToAll(ctx context.Context, delta int) (int64, error) {
	return queryAddAgeToAll(ctx, s.conn(), delta)
}

func (s *txStore) DeleteMembersOlderThan(ctx context.Context, age int) (int64, error) {
	return queryDeleteMembersOlderThan(ctx, s.conn(), age)
}

// RunInTransaction on a txStore reuses the existing transaction (no nesting).
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// Close is a no-op for a transaction store; the parent store owns the connection.
func (s *txStore) Close() error {
	return nil
}
