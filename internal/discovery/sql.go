package discovery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/reloquent/entitycheck/internal/schema"
)

// dialect holds the driver name and information_schema queries for one database.
// Every query takes the schema name as its only argument.
type dialect struct {
	source      string
	driver      string
	columns     string
	primaryKeys string
	foreignKeys string
}

// SQL implements Discoverer over database/sql.
type SQL struct {
	dialect  dialect
	dsn      string
	database string
	schema   string
	db       *sql.DB
}

// NewWithDB returns a discoverer that uses an already opened database handle.
func NewWithDB(db *sql.DB, source, schemaName string) (*SQL, error) {
	d, ok := dialects[source]
	if !ok {
		return nil, &UnsupportedDBError{DBType: source}
	}
	return &SQL{dialect: d, database: schemaName, schema: schemaName, db: db}, nil
}

var dialects = map[string]dialect{
	postgresDialect.source: postgresDialect,
	mysqlDialect.source:    mysqlDialect,
}

func (d *SQL) Connect(ctx context.Context) error {
	if d.db == nil {
		db, err := sql.Open(d.dialect.driver, d.dsn)
		if err != nil {
			return fmt.Errorf("opening %s connection: %w", d.dialect.source, err)
		}
		// Discovery issues a handful of sequential queries.
		db.SetMaxOpenConns(1)
		d.db = db
	}
	if err := d.db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging %s: %w", d.dialect.source, err)
	}
	return nil
}

func (d *SQL) Discover(ctx context.Context) (*schema.Schema, error) {
	if d.db == nil {
		return nil, errors.New("not connected; call Connect first")
	}

	s := schema.New(d.dialect.source)
	s.Database = d.database

	tables, err := d.discoverColumns(ctx)
	if err != nil {
		return nil, fmt.Errorf("discovering columns: %w", err)
	}
	if err := d.discoverPrimaryKeys(ctx, tables); err != nil {
		return nil, fmt.Errorf("discovering primary keys: %w", err)
	}
	if err := d.discoverForeignKeys(ctx, tables); err != nil {
		return nil, fmt.Errorf("discovering foreign keys: %w", err)
	}

	for _, t := range tables.order {
		s.Add(*t)
	}
	return s, nil
}

func (d *SQL) Close() error {
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

// tableSet keeps discovered tables in query order.
type tableSet struct {
	byName map[string]*schema.Table
	order  []*schema.Table
}

func (ts *tableSet) get(name string) *schema.Table {
	if t, ok := ts.byName[name]; ok {
		return t
	}
	t := &schema.Table{Name: name, ClassName: ClassName(name)}
	ts.byName[name] = t
	ts.order = append(ts.order, t)
	return t
}

func (d *SQL) discoverColumns(ctx context.Context) (*tableSet, error) {
	rows, err := d.db.QueryContext(ctx, d.dialect.columns, d.schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := &tableSet{byName: make(map[string]*schema.Table)}
	for rows.Next() {
		var tableName, colName, dataType string
		if err := rows.Scan(&tableName, &colName, &dataType); err != nil {
			return nil, err
		}
		tables.get(tableName).SetColumn(schema.Column{Name: colName, DbType: dataType})
	}
	return tables, rows.Err()
}

func (d *SQL) discoverPrimaryKeys(ctx context.Context, tables *tableSet) error {
	rows, err := d.db.QueryContext(ctx, d.dialect.primaryKeys, d.schema)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var tableName, colName string
		if err := rows.Scan(&tableName, &colName); err != nil {
			return err
		}
		t, ok := tables.byName[tableName]
		if !ok {
			continue
		}
		for i := range t.Columns {
			if t.Columns[i].Name == colName {
				t.Columns[i].IsPrimaryKey = true
			}
		}
	}
	return rows.Err()
}

// discoverForeignKeys groups constraint rows so a composite key becomes one
// association with comma-separated key lists, the way DBML spells them.
func (d *SQL) discoverForeignKeys(ctx context.Context, tables *tableSet) error {
	rows, err := d.db.QueryContext(ctx, d.dialect.foreignKeys, d.schema)
	if err != nil {
		return err
	}
	defer rows.Close()

	type fkKey struct{ table, constraint string }
	type fk struct {
		columns, refColumns []string
		refTable            string
	}
	grouped := make(map[fkKey]*fk)
	var order []fkKey

	for rows.Next() {
		var tableName, constraintName, colName, refTable, refColumn string
		if err := rows.Scan(&tableName, &constraintName, &colName, &refTable, &refColumn); err != nil {
			return err
		}
		k := fkKey{tableName, constraintName}
		g, ok := grouped[k]
		if !ok {
			g = &fk{refTable: refTable}
			grouped[k] = g
			order = append(order, k)
		}
		g.columns = append(g.columns, colName)
		g.refColumns = append(g.refColumns, refColumn)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, k := range order {
		t, ok := tables.byName[k.table]
		if !ok {
			continue
		}
		g := grouped[k]
		otherType := ClassName(g.refTable)
		member := otherType
		if len(g.columns) == 1 {
			member = MemberName(g.columns[0], otherType)
		}
		t.Associations = append(t.Associations, schema.Association{
			ThisKey:   strings.Join(g.columns, ","),
			OtherKey:  strings.Join(g.refColumns, ","),
			OtherType: otherType,
			Member:    member,
		})
	}
	return nil
}
