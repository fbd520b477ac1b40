// Package typemap relates database column types to the families of declared
// property types that can hold them.
package typemap

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Family is a group of interchangeable value types.
type Family string

const (
	FamilyInt      Family = "int"
	FamilyLong     Family = "long"
	FamilyDecimal  Family = "decimal"
	FamilyFloat    Family = "float"
	FamilyDouble   Family = "double"
	FamilyString   Family = "string"
	FamilyChar     Family = "char"
	FamilyBool     Family = "bool"
	FamilyDateTime Family = "datetime"
	FamilyGuid     Family = "guid"
	FamilyBinary   Family = "binary"
	FamilyUnknown  Family = ""
)

// compatible lists the declared families that may hold a column family in
// addition to the family itself.
var compatible = map[Family][]Family{
	FamilyInt:    {FamilyLong},
	FamilyFloat:  {FamilyDouble},
	FamilyString: {FamilyChar},
	FamilyChar:   {FamilyString},
}

// declaredFamilies maps declared property types to their family.
var declaredFamilies = map[string]Family{
	"int":      FamilyInt,
	"Int32":    FamilyInt,
	"long":     FamilyLong,
	"Int64":    FamilyLong,
	"decimal":  FamilyDecimal,
	"Decimal":  FamilyDecimal,
	"float":    FamilyFloat,
	"Single":   FamilyFloat,
	"double":   FamilyDouble,
	"Double":   FamilyDouble,
	"string":   FamilyString,
	"String":   FamilyString,
	"char":     FamilyChar,
	"Char":     FamilyChar,
	"bool":     FamilyBool,
	"Boolean":  FamilyBool,
	"DateTime": FamilyDateTime,
	"Guid":     FamilyGuid,
	"byte[]":   FamilyBinary,
	"Byte[]":   FamilyBinary,
}

// TypeMap holds the mapping from column base types to families.
type TypeMap struct {
	Mappings  map[string]Family `yaml:"mappings"`
	Overrides map[string]Family `yaml:"overrides,omitempty"`
	defaults  map[string]Family // not serialized; populated by ForDatabase
}

// DefaultSQLServer returns the mapping for DBML DbType spellings.
func DefaultSQLServer() *TypeMap {
	m := map[string]Family{
		"int":              FamilyInt,
		"smallint":         FamilyInt,
		"tinyint":          FamilyInt,
		"bigint":           FamilyLong,
		"decimal":          FamilyDecimal,
		"numeric":          FamilyDecimal,
		"money":            FamilyDecimal,
		"smallmoney":       FamilyDecimal,
		"real":             FamilyFloat,
		"float":            FamilyDouble,
		"char":             FamilyString,
		"nchar":            FamilyString,
		"varchar":          FamilyString,
		"nvarchar":         FamilyString,
		"text":             FamilyString,
		"ntext":            FamilyString,
		"xml":              FamilyString,
		"bit":              FamilyBool,
		"date":             FamilyDateTime,
		"datetime":         FamilyDateTime,
		"datetime2":        FamilyDateTime,
		"smalldatetime":    FamilyDateTime,
		"uniqueidentifier": FamilyGuid,
		"binary":           FamilyBinary,
		"varbinary":        FamilyBinary,
		"image":            FamilyBinary,
		"timestamp":        FamilyBinary,
		"rowversion":       FamilyBinary,
	}
	return &TypeMap{Mappings: m}
}

// DefaultPostgres returns the mapping for PostgreSQL information_schema types.
func DefaultPostgres() *TypeMap {
	m := map[string]Family{
		"integer":                     FamilyInt,
		"smallint":                    FamilyInt,
		"serial":                      FamilyInt,
		"bigint":                      FamilyLong,
		"bigserial":                   FamilyLong,
		"numeric":                     FamilyDecimal,
		"decimal":                     FamilyDecimal,
		"money":                       FamilyDecimal,
		"real":                        FamilyFloat,
		"double precision":            FamilyDouble,
		"character varying":           FamilyString,
		"varchar":                     FamilyString,
		"text":                        FamilyString,
		"character":                   FamilyString,
		"char":                        FamilyString,
		"boolean":                     FamilyBool,
		"date":                        FamilyDateTime,
		"timestamp":                   FamilyDateTime,
		"timestamp with time zone":    FamilyDateTime,
		"timestamp without time zone": FamilyDateTime,
		"uuid":                        FamilyGuid,
		"bytea":                       FamilyBinary,
	}
	return &TypeMap{Mappings: m}
}

// DefaultMySQL returns the mapping for MySQL information_schema types.
func DefaultMySQL() *TypeMap {
	m := map[string]Family{
		"int":        FamilyInt,
		"mediumint":  FamilyInt,
		"smallint":   FamilyInt,
		"bigint":     FamilyLong,
		"decimal":    FamilyDecimal,
		"float":      FamilyFloat,
		"double":     FamilyDouble,
		"char":       FamilyString,
		"varchar":    FamilyString,
		"text":       FamilyString,
		"mediumtext": FamilyString,
		"longtext":   FamilyString,
		"tinyint":    FamilyBool,
		"bit":        FamilyBool,
		"date":       FamilyDateTime,
		"datetime":   FamilyDateTime,
		"timestamp":  FamilyDateTime,
		"binary":     FamilyBinary,
		"varbinary":  FamilyBinary,
		"blob":       FamilyBinary,
	}
	return &TypeMap{Mappings: m}
}

// ForDatabase returns a TypeMap with defaults for the given schema source.
func ForDatabase(source string) *TypeMap {
	var tm *TypeMap
	switch source {
	case "postgresql":
		tm = DefaultPostgres()
	case "mysql":
		tm = DefaultMySQL()
	default:
		tm = DefaultSQLServer()
	}
	tm.defaults = make(map[string]Family, len(tm.Mappings))
	for k, v := range tm.Mappings {
		tm.defaults[k] = v
	}
	if tm.Overrides == nil {
		tm.Overrides = make(map[string]Family)
	}
	return tm
}

// Resolve returns the family of a column type such as "NVarChar(50) NOT NULL",
// or FamilyUnknown.
func (tm *TypeMap) Resolve(dbType string) Family {
	base := BaseType(dbType)
	if f, ok := tm.Overrides[base]; ok {
		return f
	}
	if f, ok := tm.Mappings[base]; ok {
		return f
	}
	return FamilyUnknown
}

// BaseType lowercases a column type and strips size and constraint suffixes.
// Multi-word types known to PostgreSQL keep their words.
func BaseType(dbType string) string {
	t := strings.ToLower(strings.TrimSpace(dbType))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = t[:i]
	}
	for _, multi := range []string{
		"timestamp with time zone", "timestamp without time zone",
		"double precision", "character varying",
	} {
		if strings.HasPrefix(t, multi) {
			return multi
		}
	}
	if i := strings.IndexByte(t, ' '); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(t)
}

// DeclaredFamily returns the family of a declared property type.
func DeclaredFamily(declaredType string) Family {
	t := strings.TrimSuffix(strings.TrimSpace(declaredType), "?")
	t = strings.TrimPrefix(t, "System.")
	return declaredFamilies[t]
}

// Compatible reports whether a property declared as declaredType can hold a
// column of type dbType. Unknown types on either side are compatible.
func (tm *TypeMap) Compatible(dbType, declaredType string) bool {
	col := tm.Resolve(dbType)
	decl := DeclaredFamily(declaredType)
	if col == FamilyUnknown || decl == FamilyUnknown || col == decl {
		return true
	}
	for _, f := range compatible[col] {
		if f == decl {
			return true
		}
	}
	return false
}

// Override applies a user override for a column base type.
func (tm *TypeMap) Override(baseType string, f Family) {
	tm.Mappings[baseType] = f
	if tm.Overrides == nil {
		tm.Overrides = make(map[string]Family)
	}
	if tm.defaults != nil {
		if def, ok := tm.defaults[baseType]; ok && def == f {
			delete(tm.Overrides, baseType)
			return
		}
	}
	tm.Overrides[baseType] = f
}

// IsOverridden returns true if the base type has been overridden from its default.
func (tm *TypeMap) IsOverridden(baseType string) bool {
	_, ok := tm.Overrides[baseType]
	return ok
}

// SortedTypes returns the column base type names sorted alphabetically.
func (tm *TypeMap) SortedTypes() []string {
	types := make([]string, 0, len(tm.Mappings))
	for k := range tm.Mappings {
		types = append(types, k)
	}
	sort.Strings(types)
	return types
}

// WriteYAML writes the type mapping to a YAML file.
func (tm *TypeMap) WriteYAML(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	data, err := yaml.Marshal(tm)
	if err != nil {
		return fmt.Errorf("marshaling type map: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// LoadOverrides reads a YAML type map and applies its mappings and overrides on
// top of the defaults for source.
func LoadOverrides(path, source string) (*TypeMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading type map file: %w", err)
	}
	custom := &TypeMap{}
	if err := yaml.Unmarshal(data, custom); err != nil {
		return nil, fmt.Errorf("parsing type map: %w", err)
	}

	tm := ForDatabase(source)
	for k, v := range custom.Mappings {
		tm.Override(strings.ToLower(k), v)
	}
	for k, v := range custom.Overrides {
		tm.Override(strings.ToLower(k), v)
	}
	return tm, nil
}
