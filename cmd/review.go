package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/reloquent/entitycheck/internal/engine"
	"github.com/reloquent/entitycheck/internal/report"
	"github.com/reloquent/entitycheck/internal/review"
)

var reviewReport string

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Browse findings interactively",
	Long: `Run verification and open an interactive browser over the findings.
With --report, browse a previously written JSON report instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if reviewReport != "" {
			doc, err := report.ReadJSON(reviewReport)
			if err != nil {
				return err
			}
			return review.Run(doc.Groups, doc.Diagnostics)
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		// The TUI owns the terminal; log records only go to the log file.
		logger, closer, err := setupLogger(cfg, io.Discard)
		if err != nil {
			return err
		}
		defer closer.Close()

		out, err := engine.New(cfg, logger).Run(cmd.Context())
		if err != nil {
			return err
		}
		if err := review.Run(out.Result.Groups, out.Result.Diagnostics.Items); err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, renderSummary(out))
		return nil
	},
}

func init() {
	reviewCmd.Flags().StringVar(&reviewReport, "report", "", "JSON report to browse instead of running verification")
	addVerifyFlags(reviewCmd)
	rootCmd.AddCommand(reviewCmd)
}
