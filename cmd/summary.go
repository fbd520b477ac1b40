package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/reloquent/entitycheck/internal/engine"
	"github.com/reloquent/entitycheck/internal/report"
)

var (
	headStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// renderSummary formats a run outcome for the console.
func renderSummary(out *engine.Outcome) string {
	var b strings.Builder
	c := out.Counts

	b.WriteString(headStyle.Render("Verification summary") + "\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %d tables checked against %d entity classes in %d files",
		out.Schema.Len(), out.Model.Len(), out.Model.Files)) + "\n")

	switch {
	case c.Tables == 0:
		b.WriteString(okStyle.Render("  "+report.Summary(out.Result.Groups)) + "\n")
	default:
		line := "  " + report.Summary(out.Result.Groups)
		if c.Errors > 0 {
			b.WriteString(errStyle.Render(line) + "\n")
		} else {
			b.WriteString(warnStyle.Render(line) + "\n")
		}
	}

	if n := out.Result.Diagnostics.Len(); n > 0 {
		style := warnStyle
		if out.Result.Diagnostics.HasErrors() {
			style = errStyle
		}
		b.WriteString(style.Render(fmt.Sprintf("  %d diagnostics, see the report", n)) + "\n")
	}
	b.WriteString(fmt.Sprintf("  Report: %s (%s)", out.ReportPath, out.Format))
	return b.String()
}
