//go:build integration

package integration

import (
	"fmt"
	"os"
	"testing"

	"github.com/reloquent/entitycheck/internal/config"
)

func pgHost(t *testing.T) string {
	t.Helper()
	return envOrDefault("ENTITYCHECK_TEST_PG_HOST", "localhost")
}

func pgPort(t *testing.T) int {
	t.Helper()
	p := envOrDefault("ENTITYCHECK_TEST_PG_PORT", "25432")
	var port int
	fmt.Sscanf(p, "%d", &port)
	return port
}

func pgDatabase(t *testing.T) string {
	t.Helper()
	return envOrDefault("ENTITYCHECK_TEST_PG_DATABASE", "entitycheck_test")
}

func pgUser(t *testing.T) string {
	t.Helper()
	return envOrDefault("ENTITYCHECK_TEST_PG_USER", "postgres")
}

func pgPassword(t *testing.T) string {
	t.Helper()
	return envOrDefault("ENTITYCHECK_TEST_PG_PASSWORD", "postgres")
}

// pgConfig returns a config whose schema comes from the test database.
func pgConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Schema.Source = config.SourcePostgreSQL
	cfg.Live = config.LiveConfig{
		Host:     pgHost(t),
		Port:     pgPort(t),
		Database: pgDatabase(t),
		Schema:   "public",
		Username: pgUser(t),
		Password: pgPassword(t),
	}
	return cfg
}

func skipIfNoPostgres(t *testing.T) {
	t.Helper()
	if os.Getenv("ENTITYCHECK_TEST_PG_HOST") == "" && os.Getenv("ENTITYCHECK_TEST_PG_PORT") == "" {
		t.Skip("skipping: ENTITYCHECK_TEST_PG_HOST/PORT not set")
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
