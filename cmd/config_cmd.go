package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reloquent/entitycheck/internal/config"
	"github.com/reloquent/entitycheck/internal/typemap"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and validate entitycheck configuration and column type mappings.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective config (secrets masked)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		fmt.Println("Current configuration:")
		fmt.Println()
		fmt.Printf("  Schema:\n")
		fmt.Printf("    Source:         %s\n", cfg.Schema.Source)
		if cfg.IsLive() {
			fmt.Printf("    Host:           %s\n", cfg.Live.Host)
			fmt.Printf("    Port:           %d\n", cfg.Live.Port)
			fmt.Printf("    Database:       %s\n", cfg.Live.Database)
			fmt.Printf("    Schema:         %s\n", cfg.Live.Schema)
			fmt.Printf("    Username:       %s\n", cfg.Live.Username)
			fmt.Printf("    Password:       %s\n", maskSecret(cfg.Live.Password))
			fmt.Printf("    SSL:            %t\n", cfg.Live.SSL)
		} else {
			fmt.Printf("    Path:           %s\n", cfg.Schema.Path)
		}
		fmt.Println()
		fmt.Printf("  Entities:\n")
		fmt.Printf("    Directory:      %s\n", cfg.Entities.Dir)
		fmt.Printf("    Extension:      %s\n", cfg.Entities.Extension)
		fmt.Printf("    Recursive:      %t\n", cfg.Entities.Recursive)
		fmt.Println()
		fmt.Printf("  Report:\n")
		fmt.Printf("    Path:           %s\n", cfg.Report.Path)
		fmt.Printf("    Format:         %s\n", cfg.Report.Format)
		fmt.Println()
		fmt.Printf("  Checks:\n")
		fmt.Printf("    Types:          %t\n", cfg.Checks.Types)
		if cfg.Checks.TypeMap != "" {
			fmt.Printf("    Type map:       %s\n", cfg.Checks.TypeMap)
		}
		fmt.Println()
		fmt.Printf("  Logging:\n")
		fmt.Printf("    Level:          %s\n", cfg.Logging.Level)
		if cfg.Logging.File != "" {
			fmt.Printf("    File:           %s\n", cfg.Logging.File)
		}

		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := config.Load(cfgFile); err != nil {
			return fmt.Errorf("config invalid: %w", err)
		}
		fmt.Println("Configuration is valid.")
		return nil
	},
}

var typeMapOutput string

var configTypeMapCmd = &cobra.Command{
	Use:   "type-map",
	Short: "Print the column type families used by --check-types",
	Long: `Print the column type → property type family table for the configured
schema source, with checks.type_map overrides applied. With -o the table is
written as YAML, ready to edit and use as checks.type_map.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		source := cfg.Schema.Source
		tm := typemap.ForDatabase(source)
		if cfg.Checks.TypeMap != "" {
			tm, err = typemap.LoadOverrides(cfg.Checks.TypeMap, source)
			if err != nil {
				return err
			}
		}

		if typeMapOutput != "" {
			if err := tm.WriteYAML(typeMapOutput); err != nil {
				return err
			}
			fmt.Printf("Type map written to %s\n", typeMapOutput)
			return nil
		}

		for _, t := range tm.SortedTypes() {
			marker := ""
			if tm.IsOverridden(t) {
				marker = " (override)"
			}
			fmt.Printf("  %-28s %s%s\n", t, tm.Resolve(t), marker)
		}
		return nil
	},
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}

func init() {
	configTypeMapCmd.Flags().StringVarP(&typeMapOutput, "output", "o", "", "write the type map as YAML to this path")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configTypeMapCmd)
	rootCmd.AddCommand(configCmd)
}
