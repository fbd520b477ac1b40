package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/reloquent/entitycheck/internal/config"
	"github.com/reloquent/entitycheck/internal/engine"
)

var (
	verifySchema     string
	verifyEntities   string
	verifyExt        string
	verifyRecursive  bool
	verifyOutput     string
	verifyFormat     string
	verifyCheckTypes bool
	verifyTypeMap    string
	verifyWatch      bool
	verifyDebounce   time.Duration
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify entity classes against the schema and write a report",
	Long: `Load the schema manifest and scan the entity directory, then write a
report of discrepancies. Missing inputs are reported as diagnostics; the
command only fails when the configuration is invalid or the report cannot
be written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVerify(cmd)
	},
}

func addVerifyFlags(c *cobra.Command) {
	f := c.Flags()
	f.StringVar(&verifySchema, "schema", "", "schema manifest, .dbml or .yaml (default: "+config.DefaultSchemaPath+")")
	f.StringVar(&verifyEntities, "entities", "", "entity class directory (default: "+config.DefaultEntitiesDir+")")
	f.StringVar(&verifyExt, "ext", "", "entity file extension (default: "+config.DefaultExtension+")")
	f.BoolVar(&verifyRecursive, "recursive", false, "scan entity subdirectories")
	f.StringVarP(&verifyOutput, "output", "o", "", "report path (default: "+config.DefaultReportPath+")")
	f.StringVar(&verifyFormat, "format", "", "report format: markdown or json")
	f.BoolVar(&verifyCheckTypes, "check-types", false, "compare column types with property types")
	f.StringVar(&verifyTypeMap, "type-map", "", "YAML file with column type family overrides")
	f.BoolVar(&verifyWatch, "watch", false, "re-run whenever the schema or an entity file changes")
	f.DurationVar(&verifyDebounce, "debounce", engine.DefaultDebounce, "wait this long after the last change before re-running")
}

func applyVerifyFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Lookup("schema") == nil {
		return
	}
	if f.Changed("schema") {
		cfg.Schema.Source = config.SourceFile
		cfg.Schema.Path = verifySchema
	}
	if f.Changed("entities") {
		cfg.Entities.Dir = verifyEntities
	}
	if f.Changed("ext") {
		cfg.Entities.Extension = verifyExt
	}
	if f.Changed("recursive") {
		cfg.Entities.Recursive = verifyRecursive
	}
	if f.Changed("output") {
		cfg.Report.Path = verifyOutput
	}
	if f.Changed("format") {
		cfg.Report.Format = verifyFormat
	}
	if f.Changed("check-types") {
		cfg.Checks.Types = verifyCheckTypes
	}
	if f.Changed("type-map") {
		cfg.Checks.TypeMap = verifyTypeMap
		cfg.Checks.Types = true
	}
}

func runVerify(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closer, err := setupLogger(cfg, os.Stdout)
	if err != nil {
		return err
	}
	defer closer.Close()

	eng := engine.New(cfg, logger)

	if verifyWatch {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info("Watching for changes (Ctrl+C to stop)")
		return eng.Watch(ctx, verifyDebounce, func(out *engine.Outcome, err error) {
			if err != nil {
				logger.Error("Verification failed", "error", err)
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(out))
		})
	}

	out, err := eng.Run(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderSummary(out))
	return nil
}

func init() {
	addVerifyFlags(verifyCmd)
	rootCmd.AddCommand(verifyCmd)
}
