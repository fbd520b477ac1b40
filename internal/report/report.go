// Package report renders reconciliation results as a Markdown or JSON report.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/reloquent/entitycheck/internal/diag"
	"github.com/reloquent/entitycheck/internal/verify"
)

// Format selects the report encoding.
type Format string

const (
	Markdown Format = "markdown"
	JSON     Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case Markdown, "md", "":
		return Markdown, nil
	case JSON:
		return JSON, nil
	default:
		return "", fmt.Errorf("unsupported report format %q (expected markdown or json)", s)
	}
}

// Document is the JSON form of a report.
type Document struct {
	Version     string            `json:"version"`
	Counts      verify.Counts     `json:"counts"`
	Groups      []verify.Group    `json:"groups"`
	Diagnostics []diag.Diagnostic `json:"diagnostics,omitempty"`
}

// NewDocument builds a report document. It carries no timestamp so repeated
// runs on unchanged inputs produce identical output.
func NewDocument(res verify.Result) *Document {
	groups := res.Groups
	if groups == nil {
		groups = []verify.Group{}
	}
	return &Document{
		Version:     "1",
		Counts:      verify.Count(res.Groups),
		Groups:      groups,
		Diagnostics: res.Diagnostics.Items,
	}
}

// Write renders the result in the given format and writes it to path,
// replacing any previous report.
func Write(path string, format Format, res verify.Result) error {
	switch format {
	case JSON:
		return WriteJSON(NewDocument(res), path)
	default:
		return WriteMarkdown(res, path)
	}
}

// WriteJSON writes the report as JSON.
func WriteJSON(doc *Document, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// ReadJSON reads a report from a JSON file.
func ReadJSON(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parsing report: %w", err)
	}
	return doc, nil
}

// WriteMarkdown writes the report as Markdown.
func WriteMarkdown(res verify.Result, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	return os.WriteFile(path, []byte(FormatMarkdown(res)), 0o644)
}

// FormatMarkdown renders the report as Markdown.
func FormatMarkdown(res verify.Result) string {
	var b strings.Builder

	b.WriteString("# Schema Verification Report\n\n")
	b.WriteString("## Table Verification\n")

	for _, g := range res.Groups {
		if g.Mapped {
			writeTableSection(&b, g)
		} else {
			writeUnmapped(&b, g)
		}
	}

	if len(res.Diagnostics.Items) > 0 {
		b.WriteString("\n## Diagnostics\n")
		for _, d := range res.Diagnostics.Items {
			b.WriteString(fmt.Sprintf("- [%s] %s\n", strings.ToUpper(d.Severity.String()), d.String()))
		}
	}

	return b.String()
}

func writeUnmapped(b *strings.Builder, g verify.Group) {
	for _, f := range g.Findings {
		switch f.Kind {
		case verify.KindUnmappedTable:
			b.WriteString(fmt.Sprintf("- [WARNING] Table `%s` found in DBML but not mapped to an Entity with `[Table(\"%s\")]`.\n", f.Table, f.Table))
		case verify.KindSuspectEntity:
			b.WriteString(fmt.Sprintf("  - Found suspect entity `%s` but it maps to table `%s`.\n", f.Class, f.Detail))
		case verify.KindMissingEntity:
			b.WriteString(fmt.Sprintf("  - No corresponding entity class `%s` found.\n", f.Class))
		}
	}
}

func writeTableSection(b *strings.Builder, g verify.Group) {
	b.WriteString(fmt.Sprintf("\n### Table: `%s` (Class: `%s`)\n", g.Table, g.Class))

	var last verify.Kind
	for _, f := range g.Findings {
		switch f.Kind {
		case verify.KindMissingColumn:
			if last != f.Kind {
				b.WriteString("  - **Missing Columns in Entity:**\n")
			}
			b.WriteString(fmt.Sprintf("    - `%s`\n", f.Column))
		case verify.KindExtraProperty:
			if last != f.Kind {
				b.WriteString("  - **Extra Properties in Entity (Possible DB Mismatch):**\n")
			}
			b.WriteString(fmt.Sprintf("    - `%s`\n", f.Column))
		case verify.KindMissingFKColumn:
			b.WriteString(fmt.Sprintf("  - **Missing FK Column for Relationship:** `%s` (Relationship to `%s`)\n", f.Column, f.OtherType))
		case verify.KindMissingFKAnnotation:
			b.WriteString(fmt.Sprintf("    - [WARNING] Navigation `%s` for FK `%s` missing explicit `[ForeignKey]` attribute.\n", f.Member, f.Column))
		case verify.KindWrongFKColumn:
			b.WriteString(fmt.Sprintf("    - [ERROR] Navigation `%s` points to FK `%s` but DB expects `%s`.\n", f.Member, f.Detail, f.Column))
		case verify.KindTypeMismatch:
			b.WriteString(fmt.Sprintf("  - [WARNING] Column `%s` type mismatch: %s\n", f.Column, f.Detail))
		}
		last = f.Kind
	}
}

// Summary returns a one-line count of findings.
func Summary(groups []verify.Group) string {
	c := verify.Count(groups)
	if c.Tables == 0 {
		return "No discrepancies found"
	}
	return fmt.Sprintf("%d tables with findings: %d errors, %d warnings, %d notes",
		c.Tables, c.Errors, c.Warnings, c.Infos)
}
