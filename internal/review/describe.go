package review

import (
	"fmt"

	"github.com/reloquent/entitycheck/internal/verify"
)

// Describe returns a one-line description of a finding.
func Describe(f verify.Finding) string {
	switch f.Kind {
	case verify.KindUnmappedTable:
		return fmt.Sprintf("table %s is not mapped by any entity", f.Table)
	case verify.KindSuspectEntity:
		return fmt.Sprintf("class %s exists but maps to table %s", f.Class, f.Detail)
	case verify.KindMissingEntity:
		return fmt.Sprintf("no entity class %s", f.Class)
	case verify.KindMissingColumn:
		return fmt.Sprintf("column %s has no property", f.Column)
	case verify.KindExtraProperty:
		return fmt.Sprintf("property column %s is not in the schema", f.Column)
	case verify.KindMissingFKColumn:
		return fmt.Sprintf("FK column %s (relationship to %s) has no property", f.Column, f.OtherType)
	case verify.KindMissingFKAnnotation:
		return fmt.Sprintf("navigation %s for FK %s lacks [ForeignKey]", f.Member, f.Column)
	case verify.KindWrongFKColumn:
		return fmt.Sprintf("navigation %s points to %s, schema expects %s", f.Member, f.Detail, f.Column)
	case verify.KindTypeMismatch:
		return fmt.Sprintf("column %s type mismatch: %s", f.Column, f.Detail)
	default:
		return string(f.Kind)
	}
}
