// Package review is an interactive terminal browser over verification findings.
package review

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/reloquent/entitycheck/internal/diag"
	"github.com/reloquent/entitycheck/internal/verify"
)

// SeverityFilter limits the findings shown by minimum severity.
type SeverityFilter int

const (
	ShowAll SeverityFilter = iota
	ShowWarnings
	ShowErrors
)

func (f SeverityFilter) String() string {
	switch f {
	case ShowWarnings:
		return "warnings and errors"
	case ShowErrors:
		return "errors only"
	default:
		return "all"
	}
}

func (f SeverityFilter) admits(s diag.Severity) bool {
	switch f {
	case ShowWarnings:
		return s >= diag.Warning
	case ShowErrors:
		return s >= diag.Error
	default:
		return true
	}
}

// entry is one finding together with the group it belongs to.
type entry struct {
	group   *verify.Group
	finding verify.Finding
}

// Model is the bubbletea model for browsing findings.
type Model struct {
	entries     []entry
	diagnostics []diag.Diagnostic
	counts      verify.Counts

	cursor      int
	severity    SeverityFilter
	filter      textinput.Model
	filtering   bool
	showDiags   bool
	visibleIdxs []int

	done   bool
	width  int
	height int
}

// New creates a browser over groups and diagnostics.
func New(groups []verify.Group, diagnostics []diag.Diagnostic) Model {
	ti := textinput.New()
	ti.Prompt = "Filter: "
	ti.Placeholder = "table, class, column or kind"
	ti.CharLimit = 128

	m := Model{
		diagnostics: diagnostics,
		counts:      verify.Count(groups),
		filter:      ti,
		width:       100,
		height:      24,
	}
	for i := range groups {
		for _, f := range groups[i].Findings {
			m.entries = append(m.entries, entry{group: &groups[i], finding: f})
		}
	}
	m.recomputeVisible()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.done = true
		return m, tea.Quit

	case "up", "k":
		m.moveCursor(-1)

	case "down", "j":
		m.moveCursor(1)

	case "pgup":
		m.moveCursor(-m.listHeight())

	case "pgdown":
		m.moveCursor(m.listHeight())

	case "home", "g":
		if len(m.visibleIdxs) > 0 {
			m.cursor = 0
		}

	case "end", "G":
		if len(m.visibleIdxs) > 0 {
			m.cursor = len(m.visibleIdxs) - 1
		}

	case "f":
		m.severity = (m.severity + 1) % 3
		m.recomputeVisible()

	case "d":
		m.showDiags = !m.showDiags

	case "/":
		m.filtering = true
		m.filter.SetValue("")
		m.recomputeVisible()
		return m, m.filter.Focus()
	}
	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.recomputeVisible()
		return m, nil

	case "enter":
		m.filtering = false
		m.filter.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.recomputeVisible()
	return m, cmd
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Schema Verification Findings") + "\n\n")

	if m.filtering {
		b.WriteString("  " + m.filter.View() + "\n\n")
	} else if v := m.filter.Value(); v != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  Filter: %s (/ to change, esc in filter to clear)", v)) + "\n\n")
	}

	listHeight := m.listHeight()
	start := 0
	if m.cursor >= listHeight {
		start = m.cursor - listHeight + 1
	}
	end := min(start+listHeight, len(m.visibleIdxs))

	if len(m.visibleIdxs) == 0 {
		if len(m.entries) == 0 {
			b.WriteString(successStyle.Render("  No discrepancies found") + "\n")
		} else {
			b.WriteString(dimStyle.Render("  No findings match the filter") + "\n")
		}
	}

	lastTable := ""
	for vi := start; vi < end; vi++ {
		e := m.entries[m.visibleIdxs[vi]]
		if e.group.Table != lastTable || vi == start {
			b.WriteString(groupStyle.Render(groupHeading(e.group)) + "\n")
			lastTable = e.group.Table
		}

		cursor := "  "
		textStyle := lipgloss.NewStyle()
		if vi == m.cursor {
			cursor = highlightStyle.Render("> ")
			textStyle = textStyle.Bold(true)
		}
		line := fmt.Sprintf("%s  %s %s", cursor,
			severityBadge(e.finding.Severity), textStyle.Render(Describe(e.finding)))
		b.WriteString(line + "\n")
	}

	if len(m.visibleIdxs) > listHeight {
		pct := 0
		if len(m.visibleIdxs) > 1 {
			pct = m.cursor * 100 / (len(m.visibleIdxs) - 1)
		}
		b.WriteString(dimStyle.Render(fmt.Sprintf("\n  Showing %d-%d of %d (%d%%)",
			start+1, end, len(m.visibleIdxs), pct)) + "\n")
	}

	b.WriteString("\n")
	summary := fmt.Sprintf("  %d tables: %d errors, %d warnings, %d notes",
		m.counts.Tables, m.counts.Errors, m.counts.Warnings, m.counts.Infos)
	b.WriteString(summaryStyle.Render(summary) + "\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("  Showing: %s (%d)", m.severity, m.visible())) + "\n")
	if f, ok := m.selected(); ok {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  Selected: %s (%s) %s", f.Table, f.Class, f.Kind)) + "\n")
	}

	if len(m.diagnostics) > 0 {
		if m.showDiags {
			b.WriteString("\n")
			for _, d := range m.diagnostics {
				b.WriteString("  " + severityBadge(d.Severity) + " " + d.String() + "\n")
			}
		} else {
			b.WriteString(warnStyle.Render(fmt.Sprintf("  %d diagnostics (d to show)", len(m.diagnostics))) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  ↑/↓ move • f severity • / filter • d diagnostics • q quit") + "\n")

	return b.String()
}

// selected returns the finding under the cursor.
func (m Model) selected() (verify.Finding, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visibleIdxs) {
		return verify.Finding{}, false
	}
	return m.entries[m.visibleIdxs[m.cursor]].finding, true
}

// visible returns the number of findings passing the current filters.
func (m Model) visible() int {
	return len(m.visibleIdxs)
}

// Run shows the browser full screen until the user quits.
func Run(groups []verify.Group, diagnostics []diag.Diagnostic) error {
	p := tea.NewProgram(New(groups, diagnostics), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m Model) listHeight() int {
	h := m.height - 12
	if h < 5 {
		h = 5
	}
	return h
}

func (m *Model) moveCursor(delta int) {
	if len(m.visibleIdxs) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.visibleIdxs) {
		m.cursor = len(m.visibleIdxs) - 1
	}
}

func (m *Model) recomputeVisible() {
	query := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	var idxs []int
	for i, e := range m.entries {
		if !m.severity.admits(e.finding.Severity) {
			continue
		}
		if query != "" && !matches(e, query) {
			continue
		}
		idxs = append(idxs, i)
	}
	m.visibleIdxs = idxs
	if m.cursor >= len(m.visibleIdxs) {
		m.cursor = max(len(m.visibleIdxs)-1, 0)
	}
}

func matches(e entry, query string) bool {
	f := e.finding
	for _, s := range []string{e.group.Table, e.group.Class, f.Column, f.Member, f.OtherType, string(f.Kind)} {
		if s != "" && strings.Contains(strings.ToLower(s), query) {
			return true
		}
	}
	return false
}

func groupHeading(g *verify.Group) string {
	if !g.Mapped {
		return fmt.Sprintf("  %s (unmapped)", g.Table)
	}
	return fmt.Sprintf("  %s → %s", g.Table, g.Class)
}

func severityBadge(s diag.Severity) string {
	switch s {
	case diag.Error:
		return errStyle.Render("ERROR")
	case diag.Warning:
		return warnStyle.Render("WARN ")
	default:
		return dimStyle.Render("INFO ")
	}
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).BorderStyle(lipgloss.DoubleBorder()).BorderBottom(true).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	summaryStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	groupStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
)
