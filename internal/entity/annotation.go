package entity

import (
	"strings"
)

// annotation is one attribute of an attribute list, e.g. Column("OrderID").
type annotation struct {
	Name string // as written, possibly namespace qualified
	Args string // text between the parentheses, without them
}

// is reports whether the attribute has the given simple name, accepting the
// Attribute suffix and namespace qualification.
func (a annotation) is(name string) bool {
	n := a.Name
	if i := strings.LastIndex(n, "."); i >= 0 {
		n = n[i+1:]
	}
	n = strings.TrimSuffix(n, "Attribute")
	return n == name
}

// literal returns the first positional argument when it is a string literal
// or a nameof() expression.
func (a annotation) literal() (string, bool) {
	for _, arg := range splitTopLevel(a.Args) {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		if isNamedArg(arg) {
			return "", false
		}
		return literalValue(arg)
	}
	return "", false
}

func literalValue(arg string) (string, bool) {
	verbatim := strings.HasPrefix(arg, "@")
	arg = strings.TrimPrefix(arg, "@")
	if len(arg) >= 2 && arg[0] == '"' && arg[len(arg)-1] == '"' {
		v := arg[1 : len(arg)-1]
		if verbatim {
			v = strings.ReplaceAll(v, `""`, `"`)
		}
		if v == "" {
			return "", false
		}
		return v, true
	}
	if strings.HasPrefix(arg, "nameof(") && strings.HasSuffix(arg, ")") {
		v := strings.TrimSpace(arg[len("nameof(") : len(arg)-1])
		if i := strings.LastIndex(v, "."); i >= 0 {
			v = v[i+1:]
		}
		return v, v != ""
	}
	return "", false
}

// isNamedArg reports whether arg has the form Name = value.
func isNamedArg(arg string) bool {
	eq := indexOutsideQuotes(arg, '=')
	if eq <= 0 {
		return false
	}
	name := strings.TrimSpace(arg[:eq])
	for _, r := range name {
		if !isIdentRune(r) {
			return false
		}
	}
	return name != ""
}

// parseAnnotations splits the body of an attribute list into attributes.
func parseAnnotations(body string) []annotation {
	var out []annotation
	for _, item := range splitTopLevel(body) {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		// Attribute targets such as "property:" or "return:".
		if colon := indexOutsideQuotes(item, ':'); colon > 0 && !strings.Contains(item[:colon], "(") {
			item = strings.TrimSpace(item[colon+1:])
		}
		a := annotation{Name: item}
		if open := strings.IndexByte(item, '('); open >= 0 {
			a.Name = strings.TrimSpace(item[:open])
			a.Args = item[open+1:]
			if close := strings.LastIndexByte(a.Args, ')'); close >= 0 {
				a.Args = a.Args[:close]
			}
		}
		out = append(out, a)
	}
	return out
}

// splitTopLevel splits s on commas that are outside parentheses, brackets,
// angle brackets and literals.
func splitTopLevel(s string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		if end, ok := skipLiteral(s, i); ok {
			i = end
			continue
		}
		switch s[i] {
		case '(', '[', '<', '{':
			depth++
		case ')', ']', '>', '}':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// closingBracket returns the index of the ']' closing the '[' at s[0], or -1
// when the list continues past the end of s.
func closingBracket(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		if end, ok := skipLiteral(s, i); ok {
			i = end
			continue
		}
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func indexOutsideQuotes(s string, target byte) int {
	for i := 0; i < len(s); i++ {
		if end, ok := skipLiteral(s, i); ok {
			i = end
			continue
		}
		if s[i] == target {
			return i
		}
	}
	return -1
}

// skipLiteral reports whether a string or char literal starts at s[i] and
// returns the index of its closing quote, or len(s) when it runs past the end
// of s. Verbatim strings (@"...") take no backslash escapes and double their
// quotes; interpolation prefixes ($, $@, @$) are accepted.
func skipLiteral(s string, i int) (int, bool) {
	verbatim := false
	j := i
	for j < len(s) && j-i < 2 && (s[j] == '@' || s[j] == '$') {
		verbatim = verbatim || s[j] == '@'
		j++
	}
	if j >= len(s) {
		return i, false
	}
	quote := s[j]
	switch {
	case quote == '"':
	case quote == '\'' && j == i:
	default:
		return i, false
	}
	for k := j + 1; k < len(s); k++ {
		switch s[k] {
		case '\\':
			if !verbatim {
				k++
			}
		case quote:
			if verbatim && k+1 < len(s) && s[k+1] == quote {
				k++
				continue
			}
			return k, true
		}
	}
	return len(s), true
}

func isIdentRune(r rune) bool {
	return r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
}
