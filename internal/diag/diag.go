// Package diag collects conditions raised while loading inputs or reconciling
// them that are not themselves schema/entity discrepancies: unreadable files,
// duplicate table names, colliding table mappings.
package diag

import "fmt"

// Severity is the severity level of a diagnostic.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText renders the severity by name in JSON and YAML output.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a severity name.
func (s *Severity) UnmarshalText(b []byte) error {
	switch string(b) {
	case "info":
		*s = Info
	case "warning":
		*s = Warning
	case "error":
		*s = Error
	default:
		return fmt.Errorf("unknown severity %q", b)
	}
	return nil
}

// Codes used by the loaders and the reconciler.
const (
	CodeSchemaNotFound   = "schema-not-found"
	CodeSchemaParse      = "schema-parse"
	CodeSchemaDiscovery  = "schema-discovery"
	CodeDuplicateTable   = "duplicate-table"
	CodeDuplicateMapping = "duplicate-mapping"
	CodeFileUnreadable   = "file-unreadable"
	CodeNoEntityFiles    = "no-entity-files"
)

// Diagnostic is a single diagnostic message.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	// Source is the file or table the diagnostic relates to (if any).
	Source string `json:"source,omitempty"`
}

// Diagnostics holds diagnostics in the order they were raised.
type Diagnostics struct {
	Items []Diagnostic `json:"items,omitempty"`
}

// Add appends a diagnostic.
func (d *Diagnostics) Add(sev Severity, code, source, message string) {
	d.Items = append(d.Items, Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  message,
		Source:   source,
	})
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, source, message string) {
	d.Add(Error, code, source, message)
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, source, message string) {
	d.Add(Warning, code, source, message)
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, source, message string) {
	d.Add(Info, code, source, message)
}

// Merge appends all diagnostics of other.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Items = append(d.Items, other.Items...)
}

// Len returns the number of diagnostics.
func (d Diagnostics) Len() int {
	return len(d.Items)
}

// HasErrors returns true if there are any error diagnostics.
func (d Diagnostics) HasErrors() bool {
	for _, it := range d.Items {
		if it.Severity == Error {
			return true
		}
	}
	return false
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}
	if d.Source != "" {
		return d.Source + ": " + msg
	}
	return msg
}
