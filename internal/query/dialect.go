package query

import "strconv"

// Dialect captures the SQL differences between the supported databases.
type Dialect interface {
	// Name returns the database/sql driver family ("postgres", "sqlite3").
	Name() string
	// Placeholder returns the bind marker for the n-th argument (1-based).
	Placeholder(n int) string
}

var (
	// Postgres numbers its bind parameters: $1, $2, ...
	Postgres Dialect = postgresDialect{}
	// SQLite uses positional ? markers.
	SQLite Dialect = sqliteDialect{}
)

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgres" }

func (postgresDialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite3" }

func (sqliteDialect) Placeholder(int) string { return "?" }

// DialectFor returns the dialect for a database/sql driver name.
// The pgx stdlib driver speaks the postgres dialect.
func DialectFor(driver string) (Dialect, bool) {
	switch driver {
	case "postgres", "pgx":
		return Postgres, true
	case "sqlite3", "sqlite":
		return SQLite, true
	}
	return nil, false
}
