package entity

import "strings"

// scalarTypes is the closed set of declared types stored as columns.
var scalarTypes = map[string]bool{
	"int":            true,
	"uint":           true,
	"long":           true,
	"ulong":          true,
	"string":         true,
	"bool":           true,
	"decimal":        true,
	"float":          true,
	"double":         true,
	"DateTime":       true,
	"DateTimeOffset": true,
	"Guid":           true,
	"byte[]":         true,
	"char":           true,

	"Int32":   true,
	"UInt32":  true,
	"Int64":   true,
	"UInt64":  true,
	"String":  true,
	"Boolean": true,
	"Decimal": true,
	"Single":  true,
	"Double":  true,
	"Char":    true,
	"Byte[]":  true,
}

// IsScalar reports whether a declared type denotes a stored column rather
// than a relationship. The match is on exact type identity after removing a
// nullable marker and a System qualifier, so IntegerList or List<int> are not
// scalar.
func IsScalar(declaredType string) bool {
	return scalarTypes[normalizeType(declaredType)]
}

// normalizeType strips whitespace, a trailing nullable marker and a System
// namespace qualifier from a declared type.
func normalizeType(t string) string {
	t = strings.Join(strings.Fields(t), "")
	t = strings.TrimSuffix(t, "?")
	t = strings.TrimPrefix(t, "global::")
	t = strings.TrimPrefix(t, "System.")
	if strings.HasPrefix(t, "Nullable<") && strings.HasSuffix(t, ">") {
		t = strings.TrimPrefix(t[len("Nullable<"):len(t)-1], "System.")
	}
	return t
}
