package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reloquent/entitycheck/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file interactively",
	Long:  `Walk through prompts to create an entitycheck configuration file at ./` + config.DefaultPath + `.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := bufio.NewReader(os.Stdin)

		fmt.Println("entitycheck Configuration Setup")
		fmt.Println("===============================")
		fmt.Println()

		cfg := config.Default()

		fmt.Println("Schema")
		fmt.Println("------")
		cfg.Schema.Source = prompt(reader, "Source (file/postgresql/mysql)", config.SourceFile)
		if cfg.IsLive() {
			cfg.Live.Host = prompt(reader, "Host", "localhost")
			portStr := prompt(reader, "Port", strconv.Itoa(defaultPort(cfg.Schema.Source)))
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return fmt.Errorf("invalid port: %s", portStr)
			}
			cfg.Live.Port = port
			cfg.Live.Database = prompt(reader, "Database name", "")
			if cfg.Schema.Source == config.SourcePostgreSQL {
				cfg.Live.Schema = prompt(reader, "Schema", "public")
			}
			cfg.Live.Username = prompt(reader, "Username", "")
			cfg.Live.Password = prompt(reader, "Password (or ${ENV:NAME})", "")
		} else {
			cfg.Schema.Path = prompt(reader, "DBML or YAML schema file", config.DefaultSchemaPath)
		}
		fmt.Println()

		fmt.Println("Entities")
		fmt.Println("--------")
		cfg.Entities.Dir = prompt(reader, "Entity directory", config.DefaultEntitiesDir)
		cfg.Entities.Extension = prompt(reader, "File extension", config.DefaultExtension)
		cfg.Entities.Recursive = strings.HasPrefix(strings.ToLower(prompt(reader, "Scan subdirectories (y/n)", "n")), "y")
		fmt.Println()

		fmt.Println("Report")
		fmt.Println("------")
		cfg.Report.Path = prompt(reader, "Report path", config.DefaultReportPath)
		cfg.Report.Format = prompt(reader, "Format (markdown/json)", config.DefaultReportFormat)
		cfg.Checks.Types = strings.HasPrefix(strings.ToLower(prompt(reader, "Check column types (y/n)", "n")), "y")
		fmt.Println()

		if err := cfg.Validate(); err != nil {
			return err
		}

		cfgPath := config.DefaultPath
		if cfgFile != "" {
			cfgPath = cfgFile
		}
		if err := cfg.Save(cfgPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		fmt.Printf("Config written to %s\n", cfgPath)
		fmt.Println()
		fmt.Println("Next steps:")
		if cfg.IsLive() {
			fmt.Println("  entitycheck discover   Snapshot the database schema as YAML")
		}
		fmt.Println("  entitycheck            Verify the entities and write the report")
		fmt.Println("  entitycheck review     Browse the findings interactively")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func prompt(reader *bufio.Reader, label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("  %s [%s]: ", label, defaultVal)
	} else {
		fmt.Printf("  %s: ", label)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	return input
}
