package schema

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/reloquent/entitycheck/internal/diag"
)

// DBMLNamespace is the XML namespace of LINQ to SQL mapping files.
const DBMLNamespace = "http://schemas.microsoft.com/linqtosql/dbml/2007"

type dbmlDocument struct {
	Name   string      `xml:"Name,attr"`
	Tables []dbmlTable `xml:"http://schemas.microsoft.com/linqtosql/dbml/2007 Table"`
}

type dbmlTable struct {
	Name string    `xml:"Name,attr"`
	Type *dbmlType `xml:"http://schemas.microsoft.com/linqtosql/dbml/2007 Type"`
}

type dbmlType struct {
	Name         string            `xml:"Name,attr"`
	Columns      []dbmlColumn      `xml:"http://schemas.microsoft.com/linqtosql/dbml/2007 Column"`
	Associations []dbmlAssociation `xml:"http://schemas.microsoft.com/linqtosql/dbml/2007 Association"`
}

type dbmlColumn struct {
	Name         string `xml:"Name,attr"`
	DbType       string `xml:"DbType,attr"`
	IsPrimaryKey string `xml:"IsPrimaryKey,attr"`
}

type dbmlAssociation struct {
	Name         string `xml:"Name,attr"`
	Member       string `xml:"Member,attr"`
	ThisKey      string `xml:"ThisKey,attr"`
	OtherKey     string `xml:"OtherKey,attr"`
	Type         string `xml:"Type,attr"`
	IsForeignKey string `xml:"IsForeignKey,attr"`
}

// LoadDBML reads a DBML manifest. A missing file yields an error wrapping
// fs.ErrNotExist; malformed XML yields a parse error. Duplicate table names are
// reported as diagnostics, the later declaration winning.
func LoadDBML(path string) (*Schema, diag.Diagnostics, error) {
	var diags diag.Diagnostics

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, diags, fmt.Errorf("reading schema file: %w", err)
	}

	return ParseDBML(data)
}

// ParseDBML parses DBML document bytes.
func ParseDBML(data []byte) (*Schema, diag.Diagnostics, error) {
	var diags diag.Diagnostics

	doc := &dbmlDocument{}
	if err := xml.Unmarshal(data, doc); err != nil {
		return nil, diags, fmt.Errorf("parsing schema: %w", err)
	}

	s := New("dbml")
	s.Database = doc.Name
	for _, dt := range doc.Tables {
		// A table without a type definition cannot yield a class mapping.
		if dt.Type == nil || dt.Name == "" {
			continue
		}
		t := Table{
			Name:      bareName(dt.Name),
			ClassName: dt.Type.Name,
		}
		for _, dc := range dt.Type.Columns {
			t.SetColumn(Column{
				Name:         dc.Name,
				DbType:       dc.DbType,
				IsPrimaryKey: dc.IsPrimaryKey == "true",
			})
		}
		for _, da := range dt.Type.Associations {
			// The principal side is reconciled from the dependent table.
			if da.IsForeignKey != "true" {
				continue
			}
			t.Associations = append(t.Associations, Association{
				ThisKey:   da.ThisKey,
				OtherKey:  da.OtherKey,
				OtherType: da.Type,
				Member:    da.Member,
			})
		}
		if s.Add(t) {
			diags.AddWarning(diag.CodeDuplicateTable, t.Name,
				fmt.Sprintf("table %q declared more than once; the last declaration (%s) is used", t.Name, dt.Name))
		}
	}
	return s, diags, nil
}

// Load reads a schema file, choosing the format by extension: .yaml/.yml files
// hold the YAML model, anything else is parsed as DBML.
func Load(path string) (*Schema, diag.Diagnostics, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		s, err := LoadYAML(path)
		return s, diag.Diagnostics{}, err
	default:
		return LoadDBML(path)
	}
}

func bareName(qualified string) string {
	parts := strings.Split(qualified, ".")
	return parts[len(parts)-1]
}
