package discovery

import (
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"

	"github.com/reloquent/entitycheck/internal/config"
)

var mysqlDialect = dialect{
	source: config.SourceMySQL,
	driver: "mysql",
	columns: `
		SELECT c.table_name, c.column_name, c.data_type
		FROM information_schema.columns c
		JOIN information_schema.tables t
		  ON t.table_schema = c.table_schema
		  AND t.table_name = c.table_name
		WHERE c.table_schema = ?
		  AND t.table_type = 'BASE TABLE'
		ORDER BY c.table_name, c.ordinal_position`,
	primaryKeys: `
		SELECT table_name, column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ?
		  AND constraint_name = 'PRIMARY'
		ORDER BY table_name, ordinal_position`,
	foreignKeys: `
		SELECT table_name, constraint_name, column_name,
		       referenced_table_name, referenced_column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ?
		  AND referenced_table_name IS NOT NULL
		ORDER BY table_name, constraint_name, ordinal_position`,
}

// NewMySQL creates a MySQL discoverer. MySQL has no schemas inside a database,
// so live.schema defaults to the database name.
func NewMySQL(cfg *config.LiveConfig) *SQL {
	s := cfg.Schema
	if s == "" {
		s = cfg.Database
	}
	return &SQL{dialect: mysqlDialect, dsn: MySQLDSN(cfg), database: cfg.Database, schema: s}
}

// MySQLDSN builds a go-sql-driver/mysql data source name.
func MySQLDSN(cfg *config.LiveConfig) string {
	mc := mysql.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mc.DBName = cfg.Database
	if cfg.SSL {
		mc.TLSConfig = "true"
	}
	return mc.FormatDSN()
}
