package planner

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"model-graphql/internal/sqlutil"
)

// Dialect captures the SQL differences between the supported databases.
type Dialect struct {
	Name        string
	Placeholder sq.PlaceholderFormat
	quote       func(string) string
	// Returning is true when INSERT ... RETURNING reports generated keys instead of LastInsertId.
	Returning bool
	// emptyInsert is the VALUES clause for an insert with no columns.
	emptyInsert string
	// substring renders a case-sensitive match of a quoted column against a LIKE pattern.
	substring func(column, pattern string) sq.Sqlizer
}

var (
	// MySQL uses backtick quoting and ? placeholders.
	MySQL = Dialect{
		Name:        "mysql",
		Placeholder: sq.Question,
		quote:       sqlutil.QuoteIdentifier,
		emptyInsert: "() VALUES ()",
		// BINARY compares bytes, ignoring the column's case-insensitive collation.
		substring: func(column, pattern string) sq.Sqlizer {
			return sq.Expr(column+" LIKE BINARY ? ESCAPE '!'", pattern)
		},
	}
	// Postgres uses ANSI quoting, $n placeholders and RETURNING.
	Postgres = Dialect{
		Name:        "postgres",
		Placeholder: sq.Dollar,
		quote:       sqlutil.QuoteANSIIdentifier,
		Returning:   true,
		emptyInsert: "DEFAULT VALUES",
	}
	// SQLite uses ANSI quoting and ? placeholders.
	SQLite = Dialect{
		Name:        "sqlite",
		Placeholder: sq.Question,
		quote:       sqlutil.QuoteANSIIdentifier,
		emptyInsert: "DEFAULT VALUES",
		// SQLite's LIKE folds ASCII case, instr does not.
		substring: func(column, pattern string) sq.Sqlizer {
			return sq.Expr("instr("+column+", ?) > 0", likeSubstring(pattern))
		},
	}
)

// DialectFor returns the dialect for a database/sql driver name.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "mysql", "tidb":
		return MySQL, nil
	case "postgres", "postgresql", "pq":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Quote quotes an identifier for this dialect.
func (d Dialect) Quote(name string) string {
	if d.quote == nil {
		return sqlutil.QuoteIdentifier(name)
	}
	return d.quote(name)
}

// Substring renders a case-sensitive substring match of a quoted column against a
// LIKE pattern from Compile. PostgreSQL's LIKE is case-sensitive as is.
func (d Dialect) Substring(column, pattern string) sq.Sqlizer {
	if d.substring != nil {
		return d.substring(column, pattern)
	}
	return sq.Expr(column+" LIKE ? ESCAPE '!'", pattern)
}
