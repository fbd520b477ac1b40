package discovery

import (
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/reloquent/entitycheck/internal/config"
)

var postgresDialect = dialect{
	source: config.SourcePostgreSQL,
	driver: "pgx",
	columns: `
		SELECT c.table_name, c.column_name, c.data_type
		FROM information_schema.columns c
		JOIN information_schema.tables t
		  ON t.table_schema = c.table_schema
		  AND t.table_name = c.table_name
		WHERE c.table_schema = $1
		  AND t.table_type = 'BASE TABLE'
		ORDER BY c.table_name, c.ordinal_position`,
	primaryKeys: `
		SELECT kcu.table_name, kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name
		  AND tc.table_schema = kcu.table_schema
		  AND tc.table_name = kcu.table_name
		WHERE tc.constraint_type = 'PRIMARY KEY'
		  AND tc.table_schema = $1
		ORDER BY kcu.table_name, kcu.ordinal_position`,
	foreignKeys: `
		SELECT kcu.table_name, kcu.constraint_name, kcu.column_name,
		       ref.table_name AS referenced_table, ref.column_name AS referenced_column
		FROM information_schema.referential_constraints rc
		JOIN information_schema.key_column_usage kcu
		  ON kcu.constraint_schema = rc.constraint_schema
		  AND kcu.constraint_name = rc.constraint_name
		JOIN information_schema.key_column_usage ref
		  ON ref.constraint_schema = rc.unique_constraint_schema
		  AND ref.constraint_name = rc.unique_constraint_name
		  AND ref.ordinal_position = kcu.position_in_unique_constraint
		WHERE kcu.table_schema = $1
		ORDER BY kcu.table_name, kcu.constraint_name, kcu.ordinal_position`,
}

// NewPostgres creates a PostgreSQL discoverer. The schema defaults to "public".
func NewPostgres(cfg *config.LiveConfig) *SQL {
	s := cfg.Schema
	if s == "" {
		s = "public"
	}
	return &SQL{dialect: postgresDialect, dsn: PostgresDSN(cfg), database: cfg.Database, schema: s}
}

// PostgresDSN builds a keyword/value connection string for pgx. Values are
// single-quoted so they may contain spaces and quotes.
func PostgresDSN(cfg *config.LiveConfig) string {
	dsn := fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s default_query_exec_mode=simple_protocol",
		dsnValue(cfg.Host), cfg.Port, dsnValue(cfg.Database), dsnValue(cfg.Username), dsnValue(cfg.Password),
	)
	if cfg.SSL {
		return dsn + " sslmode=require"
	}
	return dsn + " sslmode=disable"
}

var dsnEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func dsnValue(v string) string {
	return "'" + dsnEscaper.Replace(v) + "'"
}
