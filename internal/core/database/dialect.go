package db

import (
	"strconv"
	"strings"
)

// dialect captures what differs between the SQL backends.
type dialect struct {
	name            string
	driver          string
	script          string
	metaExistsQuery string
	dollarParams    bool
	vectors         bool
}

var (
	postgresDialect = dialect{
		name:   "postgres",
		driver: "pgx",
		script: "scripts/postgres.sql",
		metaExistsQuery: `
			SELECT EXISTS (
			  SELECT 1 FROM information_schema.tables
			  WHERE table_name = 'content_processor_meta'
			)`,
		dollarParams: true,
		vectors:      true,
	}

	sqliteDialect = dialect{
		name:   "sqlite",
		driver: "sqlite",
		script: "scripts/sqlite.sql",
		metaExistsQuery: `
			SELECT EXISTS (
			  SELECT 1 FROM sqlite_master
			  WHERE type = 'table' AND name = 'content_processor_meta'
			)`,
	}
)

// rebind rewrites ? placeholders to $1, $2, ... for dialects that need it.
// Queries must not contain literal question marks.
func (d dialect) rebind(q string) string {
	if !d.dollarParams {
		return q
	}
	var sb strings.Builder
	sb.Grow(len(q) + 8)
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteByte(q[i])
	}
	return sb.String()
}
