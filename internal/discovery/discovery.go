package discovery

import (
	"context"

	"github.com/reloquent/entitycheck/internal/config"
	"github.com/reloquent/entitycheck/internal/schema"
)

// Discoverer reads a table model from a live database.
type Discoverer interface {
	// Connect opens a connection to the database and verifies it is reachable.
	Connect(ctx context.Context) error

	// Discover reads tables, columns, primary keys and foreign keys.
	Discover(ctx context.Context) (*schema.Schema, error)

	// Close closes the database connection.
	Close() error
}

// New creates a Discoverer for the configured schema source.
func New(cfg *config.Config) (Discoverer, error) {
	switch cfg.Schema.Source {
	case config.SourcePostgreSQL:
		return NewPostgres(&cfg.Live), nil
	case config.SourceMySQL:
		return NewMySQL(&cfg.Live), nil
	default:
		return nil, &UnsupportedDBError{DBType: cfg.Schema.Source}
	}
}

// UnsupportedDBError is returned when the schema source is not a live database.
type UnsupportedDBError struct {
	DBType string
}

func (e *UnsupportedDBError) Error() string {
	return "unsupported database type: " + e.DBType
}
