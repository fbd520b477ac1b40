package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/reloquent/entitycheck/internal/config"
	"github.com/reloquent/entitycheck/internal/discovery"
)

var (
	discoverType     string
	discoverHost     string
	discoverPort     int
	discoverDatabase string
	discoverSchema   string
	discoverUser     string
	discoverPassword string
	discoverSSL      bool
	discoverOutput   string
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover a live database schema and write it as YAML",
	Long: `Connect to a PostgreSQL or MySQL database and read tables, columns,
primary keys and foreign keys from information_schema. The YAML output can be
used as schema.path for verify. Connection settings come from the live section
of the config file; flags override them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := applyDiscoverFlags(cmd, cfg); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		d, err := discovery.New(cfg)
		if err != nil {
			return fmt.Errorf("initializing discoverer: %w", err)
		}
		defer d.Close()

		ctx := context.Background()
		progress := progressWriter(cmd, discoverOutput)

		fmt.Fprintf(progress, "Connecting to %s at %s:%d/%s...\n",
			cfg.Schema.Source, cfg.Live.Host, cfg.Live.Port, cfg.Live.Database)
		if err := d.Connect(ctx); err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}

		fmt.Fprintln(progress, "Discovering schema...")
		s, err := d.Discover(ctx)
		if err != nil {
			return fmt.Errorf("discovering schema: %w", err)
		}

		fmt.Fprintln(progress, s.Summary())

		if discoverOutput == "-" {
			data, err := s.ToYAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := s.WriteYAML(discoverOutput); err != nil {
			return fmt.Errorf("writing schema: %w", err)
		}
		fmt.Fprintf(progress, "\nSchema written to %s\n", discoverOutput)
		return nil
	},
}

// progressWriter is where status lines go. They move to stderr when the
// schema itself is written to stdout.
func progressWriter(cmd *cobra.Command, output string) io.Writer {
	if output == "-" {
		return cmd.ErrOrStderr()
	}
	return cmd.OutOrStdout()
}

func applyDiscoverFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	if f.Changed("type") {
		// A port still at the previous source's default follows the new
		// type; one set in the config file is kept.
		prev := cfg.Schema.Source
		cfg.Schema.Source = discoverType
		if !f.Changed("port") && cfg.Live.Port == defaultPort(prev) {
			cfg.Live.Port = defaultPort(discoverType)
		}
	}
	if f.Changed("host") {
		cfg.Live.Host = discoverHost
	}
	if f.Changed("port") {
		cfg.Live.Port = discoverPort
	}
	if f.Changed("database") {
		cfg.Live.Database = discoverDatabase
	}
	if f.Changed("schema") {
		cfg.Live.Schema = discoverSchema
	}
	if f.Changed("user") {
		cfg.Live.Username = discoverUser
	}
	if f.Changed("password") {
		pw, err := config.ResolveValue(discoverPassword)
		if err != nil {
			return fmt.Errorf("resolving --password: %w", err)
		}
		cfg.Live.Password = pw
	}
	if f.Changed("ssl") {
		cfg.Live.SSL = discoverSSL
	}
	return nil
}

func defaultPort(dbType string) int {
	if dbType == config.SourceMySQL {
		return 3306
	}
	return 5432
}

func addDiscoverFlags(c *cobra.Command) {
	f := c.Flags()
	f.StringVar(&discoverType, "type", "", "database type: postgresql or mysql (default: schema.source)")
	f.StringVar(&discoverHost, "host", "", "database host")
	f.IntVar(&discoverPort, "port", 0, "database port")
	f.StringVar(&discoverDatabase, "database", "", "database name")
	f.StringVar(&discoverSchema, "schema", "", "schema to read (postgresql default: public)")
	f.StringVar(&discoverUser, "user", "", "username")
	f.StringVar(&discoverPassword, "password", "", "password or a ${ENV:NAME}, ${VAULT:path#key} or ${AWS_SM:name} reference")
	f.BoolVar(&discoverSSL, "ssl", false, "require TLS")
	f.StringVarP(&discoverOutput, "output", "o", "schema.yaml", "output path for schema YAML, - for stdout")
}

func init() {
	addDiscoverFlags(discoverCmd)
	rootCmd.AddCommand(discoverCmd)
}
