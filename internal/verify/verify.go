// Package verify reconciles a schema model against entity declarations.
package verify

import (
	"fmt"
	"sort"

	"github.com/reloquent/entitycheck/internal/diag"
	"github.com/reloquent/entitycheck/internal/entity"
	"github.com/reloquent/entitycheck/internal/schema"
	"github.com/reloquent/entitycheck/internal/typemap"
)

// Kind identifies the type of a finding.
type Kind string

const (
	KindUnmappedTable       Kind = "unmapped-table"
	KindSuspectEntity       Kind = "suspect-entity"
	KindMissingEntity       Kind = "missing-entity"
	KindMissingColumn       Kind = "missing-column"
	KindExtraProperty       Kind = "extra-property"
	KindMissingFKColumn     Kind = "missing-fk-column"
	KindMissingFKAnnotation Kind = "missing-fk-annotation"
	KindWrongFKColumn       Kind = "wrong-fk-column"
	KindTypeMismatch        Kind = "type-mismatch"
)

// Finding is one detected mismatch between the schema and the declarations.
type Finding struct {
	Kind     Kind          `json:"kind"`
	Severity diag.Severity `json:"severity"`
	Table    string        `json:"table"`
	Class    string        `json:"class,omitempty"`
	// Column is the schema column, property column or foreign-key column involved.
	Column string `json:"column,omitempty"`
	// Member is the navigation property involved.
	Member string `json:"member,omitempty"`
	// OtherType is the referenced entity type of a relationship.
	OtherType string `json:"other_type,omitempty"`
	// Detail carries kind-specific text: the mapped table of a suspect class,
	// the linked column of a navigation, the declared type of a property.
	Detail string `json:"detail,omitempty"`
}

// Group holds the findings for one schema table.
type Group struct {
	Table string `json:"table"`
	Class string `json:"class"`
	// Mapped is false when no declaration maps the table.
	Mapped   bool      `json:"mapped"`
	Findings []Finding `json:"findings"`
}

// Options controls optional checks.
type Options struct {
	// CheckTypes compares column types with declared property types.
	CheckTypes bool
	// TypeMap resolves column types; derived from the schema source when nil.
	TypeMap *typemap.TypeMap
}

// Result is the outcome of a reconciliation.
type Result struct {
	Groups      []Group          `json:"groups"`
	Diagnostics diag.Diagnostics `json:"diagnostics"`
}

// Reconcile compares every schema table, in schema order, with the entity
// declaration mapped to it. Tables without findings produce no group.
func Reconcile(s *schema.Schema, m *entity.Model, opts Options) Result {
	var res Result
	if s == nil || s.Len() == 0 {
		return res
	}
	if m == nil {
		m = entity.NewModel()
	}
	if opts.CheckTypes && opts.TypeMap == nil {
		opts.TypeMap = typemap.ForDatabase(s.Source)
	}

	tableToClass := make(map[string]string, m.Len())
	for _, d := range m.Declarations {
		if prev, ok := tableToClass[d.TableName]; ok && prev != d.ClassName {
			res.Diagnostics.AddWarning(diag.CodeDuplicateMapping, d.TableName,
				fmt.Sprintf("classes %s and %s both map to table %q; %s is verified", prev, d.ClassName, d.TableName, d.ClassName))
		}
		tableToClass[d.TableName] = d.ClassName
	}

	for i := range s.Tables {
		t := &s.Tables[i]
		className, ok := tableToClass[t.Name]
		if !ok {
			res.Groups = append(res.Groups, unmapped(t, m))
			continue
		}
		d, _ := m.Lookup(className)
		g := Group{Table: t.Name, Class: className, Mapped: true}
		g.Findings = compareTable(t, d, opts)
		if len(g.Findings) > 0 {
			res.Groups = append(res.Groups, g)
		}
	}
	return res
}

func unmapped(t *schema.Table, m *entity.Model) Group {
	g := Group{Table: t.Name, Class: t.ClassName}
	g.Findings = append(g.Findings, Finding{
		Kind:     KindUnmappedTable,
		Severity: diag.Warning,
		Table:    t.Name,
		Class:    t.ClassName,
	})
	if d, ok := m.Lookup(t.ClassName); ok {
		g.Findings = append(g.Findings, Finding{
			Kind:     KindSuspectEntity,
			Severity: diag.Info,
			Table:    t.Name,
			Class:    d.ClassName,
			Detail:   d.TableName,
		})
	} else {
		g.Findings = append(g.Findings, Finding{
			Kind:     KindMissingEntity,
			Severity: diag.Info,
			Table:    t.Name,
			Class:    t.ClassName,
		})
	}
	return g
}

func compareTable(t *schema.Table, d *entity.Declaration, opts Options) []Finding {
	var findings []Finding
	add := func(f Finding) {
		f.Table = t.Name
		f.Class = d.ClassName
		findings = append(findings, f)
	}

	schemaCols := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		schemaCols[c.Name] = true
	}
	entityCols := make(map[string]bool, len(d.Properties))
	for _, p := range d.Properties {
		entityCols[p.Column] = true
	}

	for _, c := range difference(schemaCols, entityCols) {
		add(Finding{Kind: KindMissingColumn, Severity: diag.Warning, Column: c})
	}
	for _, c := range difference(entityCols, schemaCols) {
		add(Finding{Kind: KindExtraProperty, Severity: diag.Warning, Column: c})
	}

	for _, a := range t.Associations {
		if a.ThisKey != "" && !d.HasColumn(a.ThisKey) {
			add(Finding{
				Kind:      KindMissingFKColumn,
				Severity:  diag.Error,
				Column:    a.ThisKey,
				Member:    a.Member,
				OtherType: a.OtherType,
			})
		}

		nav, ok := d.Navigation(a.Member)
		if !ok {
			continue
		}
		switch {
		case nav.ForeignKey == "":
			// Linked by convention when the key is named after the member.
			if a.ThisKey != nav.PropertyName+"ID" && a.ThisKey != nav.PropertyName+"Id" {
				add(Finding{
					Kind:      KindMissingFKAnnotation,
					Severity:  diag.Warning,
					Column:    a.ThisKey,
					Member:    nav.PropertyName,
					OtherType: a.OtherType,
				})
			}
		case nav.ForeignKey != a.ThisKey:
			add(Finding{
				Kind:      KindWrongFKColumn,
				Severity:  diag.Error,
				Column:    a.ThisKey,
				Member:    nav.PropertyName,
				OtherType: a.OtherType,
				Detail:    nav.ForeignKey,
			})
		}
	}

	if opts.CheckTypes {
		for _, c := range t.Columns {
			p, ok := d.Property(c.Name)
			if !ok || opts.TypeMap.Compatible(c.DbType, p.DeclaredType) {
				continue
			}
			add(Finding{
				Kind:     KindTypeMismatch,
				Severity: diag.Warning,
				Column:   c.Name,
				Member:   p.PropertyName,
				Detail:   fmt.Sprintf("%s vs %s", c.DbType, p.DeclaredType),
			})
		}
	}
	return findings
}

// difference returns the keys of a that are not in b, sorted.
func difference(a, b map[string]bool) []string {
	var out []string
	for k := range a {
		if !b[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Counts tallies findings by severity.
type Counts struct {
	Tables   int `json:"tables"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
}

// Count tallies the findings of groups.
func Count(groups []Group) Counts {
	c := Counts{Tables: len(groups)}
	for _, g := range groups {
		for _, f := range g.Findings {
			switch f.Severity {
			case diag.Error:
				c.Errors++
			case diag.Warning:
				c.Warnings++
			default:
				c.Infos++
			}
		}
	}
	return c
}
