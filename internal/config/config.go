package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	CurrentVersion = 1
	DefaultPath    = "entitycheck.yaml"

	DefaultSchemaPath   = "SsrDbModel.dbml"
	DefaultEntitiesDir  = "Entities"
	DefaultExtension    = ".cs"
	DefaultReportPath   = "verification_report.md"
	DefaultReportFormat = "markdown"
)

// Schema sources.
const (
	SourceFile       = "file"
	SourcePostgreSQL = "postgresql"
	SourceMySQL      = "mysql"
)

// Config is the top-level configuration.
type Config struct {
	Version  int            `yaml:"version" toml:"version"`
	Schema   SchemaConfig   `yaml:"schema" toml:"schema"`
	Entities EntitiesConfig `yaml:"entities" toml:"entities"`
	Report   ReportConfig   `yaml:"report" toml:"report"`
	Checks   ChecksConfig   `yaml:"checks,omitempty" toml:"checks"`
	Live     LiveConfig     `yaml:"live,omitempty" toml:"live"`
	Logging  LogConfig      `yaml:"logging,omitempty" toml:"logging"`
}

// SchemaConfig selects the schema the entities are verified against.
type SchemaConfig struct {
	Source string `yaml:"source,omitempty" toml:"source"` // file, postgresql or mysql
	Path   string `yaml:"path,omitempty" toml:"path"`     // DBML or YAML file when source is file
}

// EntitiesConfig locates the entity declarations.
type EntitiesConfig struct {
	Dir       string `yaml:"dir" toml:"dir"`
	Extension string `yaml:"extension,omitempty" toml:"extension"`
	Recursive bool   `yaml:"recursive,omitempty" toml:"recursive"`
}

// ReportConfig defines the report output.
type ReportConfig struct {
	Path   string `yaml:"path" toml:"path"`
	Format string `yaml:"format,omitempty" toml:"format"` // markdown or json
}

// ChecksConfig enables optional checks.
type ChecksConfig struct {
	Types   bool   `yaml:"types,omitempty" toml:"types"`
	TypeMap string `yaml:"type_map,omitempty" toml:"type_map"` // YAML overrides for column type families
}

// LiveConfig defines a live database connection used instead of a manifest.
type LiveConfig struct {
	Host     string `yaml:"host,omitempty" toml:"host"`
	Port     int    `yaml:"port,omitempty" toml:"port"`
	Database string `yaml:"database,omitempty" toml:"database"`
	Schema   string `yaml:"schema,omitempty" toml:"schema"`
	Username string `yaml:"username,omitempty" toml:"username"`
	Password string `yaml:"password,omitempty" toml:"password"`
	SSL      bool   `yaml:"ssl,omitempty" toml:"ssl"`
}

// LogConfig defines logging settings.
type LogConfig struct {
	Level string `yaml:"level,omitempty" toml:"level"` // debug, info, warn, error
	File  string `yaml:"file,omitempty" toml:"file"`   // optional log file in addition to stdout
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{Version: CurrentVersion}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses the config file at path. YAML and TOML are accepted,
// chosen by extension. An empty path loads DefaultPath when present and
// falls back to Default otherwise.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	path = ExpandHome(path)

	cfg := &Config{}
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		_, err = toml.DecodeFile(path, cfg)
	default:
		var data []byte
		data, err = os.ReadFile(path)
		if err == nil {
			err = yaml.Unmarshal(data, cfg)
		}
	}
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentVersion)
	}

	if err := cfg.resolveSecrets(); err != nil {
		return nil, fmt.Errorf("resolving secrets: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to the given path as YAML.
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultPath
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(path, data, 0o600)
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Schema.Source {
	case SourceFile, SourcePostgreSQL, SourceMySQL:
	default:
		return fmt.Errorf("unsupported schema source %q (expected file, postgresql or mysql)", c.Schema.Source)
	}
	switch strings.ToLower(c.Report.Format) {
	case "markdown", "md", "json":
	default:
		return fmt.Errorf("unsupported report format %q (expected markdown or json)", c.Report.Format)
	}
	if c.IsLive() && c.Live.Database == "" {
		return fmt.Errorf("live schema source %s requires live.database", c.Schema.Source)
	}
	return nil
}

// IsLive reports whether the schema is read from a live database.
func (c *Config) IsLive() bool {
	return c.Schema.Source == SourcePostgreSQL || c.Schema.Source == SourceMySQL
}

func (c *Config) applyDefaults() {
	if c.Schema.Source == "" {
		c.Schema.Source = SourceFile
	}
	if c.Schema.Path == "" {
		c.Schema.Path = DefaultSchemaPath
	}
	if c.Entities.Dir == "" {
		c.Entities.Dir = DefaultEntitiesDir
	}
	if c.Entities.Extension == "" {
		c.Entities.Extension = DefaultExtension
	}
	if !strings.HasPrefix(c.Entities.Extension, ".") {
		c.Entities.Extension = "." + c.Entities.Extension
	}
	if c.Report.Path == "" {
		c.Report.Path = DefaultReportPath
	}
	if c.Report.Format == "" {
		c.Report.Format = DefaultReportFormat
	}
	if c.Live.Host == "" {
		c.Live.Host = "localhost"
	}
	if c.Live.Port == 0 {
		switch c.Schema.Source {
		case SourceMySQL:
			c.Live.Port = 3306
		default:
			c.Live.Port = 5432
		}
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// ExpandHome expands ~ to the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
