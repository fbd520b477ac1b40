package review

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/reloquent/entitycheck/internal/diag"
	"github.com/reloquent/entitycheck/internal/verify"
)

func testGroups() []verify.Group {
	return []verify.Group{
		{Table: "Orders", Class: "Order", Mapped: true, Findings: []verify.Finding{
			{Kind: verify.KindMissingColumn, Severity: diag.Warning, Table: "Orders", Class: "Order", Column: "ShippedAt"},
			{Kind: verify.KindWrongFKColumn, Severity: diag.Error, Table: "Orders", Class: "Order", Column: "CustomerID", Member: "Customer", Detail: "ClientID"},
		}},
		{Table: "Invoices", Class: "Invoice", Findings: []verify.Finding{
			{Kind: verify.KindUnmappedTable, Severity: diag.Warning, Table: "Invoices", Class: "Invoice"},
			{Kind: verify.KindMissingEntity, Severity: diag.Info, Table: "Invoices", Class: "Invoice"},
		}},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(Model)
	}
	return m
}

func TestNew(t *testing.T) {
	m := New(testGroups(), nil)
	if len(m.entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(m.entries))
	}
	if m.visible() != 4 {
		t.Errorf("expected 4 visible, got %d", m.visible())
	}
	if m.counts.Errors != 1 || m.counts.Warnings != 2 || m.counts.Infos != 1 {
		t.Errorf("unexpected counts %+v", m.counts)
	}
}

func TestCursorBounds(t *testing.T) {
	m := New(testGroups(), nil)
	m = press(m, "k")
	if m.cursor != 0 {
		t.Errorf("cursor should stay at 0, got %d", m.cursor)
	}
	m = press(m, "j", "j", "j", "j", "j")
	if m.cursor != 3 {
		t.Errorf("cursor should stop at 3, got %d", m.cursor)
	}
	m = press(m, "g")
	if m.cursor != 0 {
		t.Errorf("g should jump to top, got %d", m.cursor)
	}
	f, ok := m.selected()
	if !ok || f.Column != "ShippedAt" {
		t.Errorf("unexpected selection %+v", f)
	}
	v := m.View()
	if !strings.Contains(v, "Selected: Orders (Order) missing-column") {
		t.Error("view should describe the selected finding")
	}
	if !strings.Contains(v, "Showing: all (4)") {
		t.Error("view should count visible findings")
	}
}

func TestSeverityCycle(t *testing.T) {
	m := New(testGroups(), nil)

	m = press(m, "f")
	if m.severity != ShowWarnings || m.visible() != 3 {
		t.Errorf("warnings filter: severity=%v visible=%d", m.severity, m.visible())
	}
	m = press(m, "f")
	if m.severity != ShowErrors || m.visible() != 1 {
		t.Errorf("errors filter: severity=%v visible=%d", m.severity, m.visible())
	}
	f, _ := m.selected()
	if f.Kind != verify.KindWrongFKColumn {
		t.Errorf("expected the wrong-fk finding, got %s", f.Kind)
	}
	m = press(m, "f")
	if m.severity != ShowAll || m.visible() != 4 {
		t.Errorf("cycle should return to all: severity=%v visible=%d", m.severity, m.visible())
	}
}

func TestCursorClampedByFilter(t *testing.T) {
	m := New(testGroups(), nil)
	m = press(m, "G")
	if m.cursor != 3 {
		t.Fatalf("G should jump to bottom, got %d", m.cursor)
	}
	m = press(m, "f", "f")
	if m.cursor != 0 {
		t.Errorf("cursor should be clamped to the only visible finding, got %d", m.cursor)
	}
}

func TestTextFilter(t *testing.T) {
	m := New(testGroups(), nil)

	m = press(m, "/")
	if !m.filtering {
		t.Fatal("expected filter mode")
	}
	m = press(m, "i", "n", "v")
	if m.visible() != 2 {
		t.Errorf("expected 2 invoice findings, got %d", m.visible())
	}

	m = press(m, "enter")
	if m.filtering {
		t.Error("enter should leave filter mode")
	}
	if m.visible() != 2 {
		t.Errorf("filter should stay applied, got %d visible", m.visible())
	}
	if !strings.Contains(m.View(), "Filter: inv") {
		t.Error("view should show the applied filter")
	}

	m = press(m, "/", "z", "z", "esc")
	if m.visible() != 4 {
		t.Errorf("esc should clear the filter, got %d visible", m.visible())
	}
}

func TestTextFilterMatchesKind(t *testing.T) {
	m := New(testGroups(), nil)
	m = press(m, "/", "w", "r", "o", "n", "g", "enter")
	if m.visible() != 1 {
		t.Errorf("expected 1 match on kind, got %d", m.visible())
	}
}

func TestQuit(t *testing.T) {
	m := New(testGroups(), nil)
	next, cmd := m.Update(key("q"))
	if !next.(Model).done {
		t.Error("q should finish the model")
	}
	if cmd == nil {
		t.Error("q should return tea.Quit")
	}
}

func TestViewEmpty(t *testing.T) {
	m := New(nil, nil)
	if !strings.Contains(m.View(), "No discrepancies found") {
		t.Error("empty view should say no discrepancies")
	}
	if _, ok := m.selected(); ok {
		t.Error("nothing should be selected")
	}
}

func TestViewDiagnostics(t *testing.T) {
	diags := []diag.Diagnostic{{Severity: diag.Error, Code: diag.CodeSchemaNotFound, Source: "Shop.dbml", Message: "no such file"}}
	m := New(testGroups(), diags)

	v := m.View()
	if !strings.Contains(v, "1 diagnostics (d to show)") {
		t.Error("collapsed view should count diagnostics")
	}
	if !strings.Contains(v, "Orders → Order") || !strings.Contains(v, "Invoices (unmapped)") {
		t.Error("view should show group headings")
	}

	m = press(m, "d")
	if !strings.Contains(m.View(), "[schema-not-found] no such file") {
		t.Error("expanded view should list diagnostics")
	}
}

func TestDescribe(t *testing.T) {
	f := verify.Finding{Kind: verify.KindWrongFKColumn, Member: "Customer", Detail: "ClientID", Column: "CustomerID"}
	if got := Describe(f); got != "navigation Customer points to ClientID, schema expects CustomerID" {
		t.Errorf("Describe = %q", got)
	}
}
