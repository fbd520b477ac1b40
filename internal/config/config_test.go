package config

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, "entitycheck.yaml", `version: 1
schema:
  path: model/SsrDbModel.dbml
entities:
  dir: src/Entities
  extension: cs
  recursive: true
report:
  path: out/report.json
  format: json
checks:
  types: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Schema.Source != SourceFile {
		t.Errorf("expected default source file, got %s", cfg.Schema.Source)
	}
	if cfg.Schema.Path != "model/SsrDbModel.dbml" {
		t.Errorf("unexpected schema path %s", cfg.Schema.Path)
	}
	if cfg.Entities.Extension != ".cs" {
		t.Errorf("expected extension normalized to .cs, got %s", cfg.Entities.Extension)
	}
	if !cfg.Entities.Recursive || !cfg.Checks.Types {
		t.Error("boolean settings not loaded")
	}
	if cfg.Report.Format != "json" {
		t.Errorf("expected json format, got %s", cfg.Report.Format)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logging.Level)
	}
}

func TestLoadTOMLConfig(t *testing.T) {
	path := writeConfig(t, "entitycheck.toml", `version = 1

[schema]
source = "mysql"

[live]
database = "shop"
username = "reader"

[report]
path = "drift.md"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.IsLive() {
		t.Error("expected live schema source")
	}
	if cfg.Live.Port != 3306 {
		t.Errorf("expected default mysql port 3306, got %d", cfg.Live.Port)
	}
	if cfg.Report.Path != "drift.md" {
		t.Errorf("unexpected report path %s", cfg.Report.Path)
	}
	if cfg.Entities.Dir != DefaultEntitiesDir {
		t.Errorf("expected default entities dir, got %s", cfg.Entities.Dir)
	}
}

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Schema.Path != DefaultSchemaPath || cfg.Entities.Dir != DefaultEntitiesDir || cfg.Report.Path != DefaultReportPath {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for an explicit missing config file")
	}
}

func TestLoadInvalidVersion(t *testing.T) {
	path := writeConfig(t, "entitycheck.yaml", "version: 99\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid version")
	}
}

func TestLoadInvalidSource(t *testing.T) {
	path := writeConfig(t, "entitycheck.yaml", "version: 1\nschema:\n  source: oracle\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unsupported schema source")
	}
}

func TestLoadLiveRequiresDatabase(t *testing.T) {
	path := writeConfig(t, "entitycheck.yaml", "version: 1\nschema:\n  source: postgresql\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error when live.database is missing")
	}
}

func TestSaveAndReload(t *testing.T) {
	cfg := Default()
	cfg.Checks.Types = true
	path := filepath.Join(t.TempDir(), "nested", "entitycheck.yaml")

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !loaded.Checks.Types {
		t.Error("checks.types not preserved")
	}
}

func TestResolveEnvSecret(t *testing.T) {
	t.Setenv("TEST_SECRET", "mysecret")
	val, err := ResolveValue("${ENV:TEST_SECRET}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != "mysecret" {
		t.Errorf("expected mysecret, got %s", val)
	}
}

func TestResolveEnvSecretMissing(t *testing.T) {
	t.Setenv("TEST_SECRET_UNSET", "")
	if _, err := ResolveValue("${ENV:TEST_SECRET_UNSET}"); err == nil {
		t.Error("expected error for unset variable")
	}
}

func TestResolvePlainValue(t *testing.T) {
	val, err := ResolveValue("plaintext")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != "plaintext" {
		t.Errorf("expected plaintext, got %s", val)
	}
}

func TestLoadResolvesLivePassword(t *testing.T) {
	t.Setenv("ENTITYCHECK_TEST_PW", "s3cret")
	path := writeConfig(t, "entitycheck.yaml", `version: 1
schema:
  source: postgresql
live:
  database: shop
  password: ${ENV:ENTITYCHECK_TEST_PW}
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Live.Password != "s3cret" {
		t.Errorf("expected resolved password, got %q", cfg.Live.Password)
	}
}

func TestResolveVault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/secret/data/entitycheck" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("X-Vault-Token") != "test-token" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"data": map[string]interface{}{"db_pass": "hunter2"},
			},
		})
	}))
	defer server.Close()

	t.Setenv("VAULT_ADDR", server.URL)
	t.Setenv("VAULT_TOKEN", "test-token")

	val, err := ResolveValue("${VAULT:secret/data/entitycheck#db_pass}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != "hunter2" {
		t.Errorf("expected 'hunter2', got %q", val)
	}

	if _, err := resolveVault("secret/data/entitycheck#nonexistent"); err == nil {
		t.Error("expected error for missing key")
	}
}

func TestResolveVault_InvalidReference(t *testing.T) {
	t.Setenv("VAULT_ADDR", "http://localhost:8200")
	t.Setenv("VAULT_TOKEN", "test-token")

	if _, err := resolveVault("no-hash-separator"); err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestResolveVault_MissingEnv(t *testing.T) {
	t.Setenv("VAULT_ADDR", "")
	t.Setenv("VAULT_TOKEN", "")

	if _, err := resolveVault("secret/data/path#key"); err == nil {
		t.Error("expected error when VAULT_ADDR not set")
	}
}

func TestResolveAWSSecretsManager_NoCredentials(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	t.Setenv("AWS_PROFILE", "entitycheck-test-nonexistent")
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	if _, err := ResolveValue("${AWS_SM:nonexistent-secret}"); err == nil {
		t.Error("expected error when AWS credentials are not configured")
	}
}
