package discovery

import (
	"strings"

	"github.com/go-openapi/inflect"
)

// ClassName returns the entity class name conventionally mapped to a table:
// "order_lines" becomes "OrderLine".
func ClassName(table string) string {
	return inflect.Camelize(inflect.Singularize(table))
}

// fkSuffixes are stripped from a key column to name its navigation member.
var fkSuffixes = []string{"_id", "ID", "Id"}

// MemberName derives the navigation member for a single-column foreign key.
// "customer_id" becomes "Customer". When nothing is left after stripping the
// suffix, the referenced class name is used.
func MemberName(column, otherType string) string {
	base := column
	for _, suffix := range fkSuffixes {
		if trimmed, ok := strings.CutSuffix(column, suffix); ok {
			base = trimmed
			break
		}
	}
	base = strings.TrimRight(base, "_")
	if base == "" {
		return otherType
	}
	return inflect.Camelize(base)
}
