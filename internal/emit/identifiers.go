package emit

import (
	"strings"
	"unicode"
)

// snakeCase lowers a Go identifier to snake case, inserting an underscore
// before every interior uppercase rune.
func snakeCase(ident string) string {
	var b strings.Builder
	for i, ch := range ident {
		if i > 0 && unicode.IsUpper(ch) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(ch))
	}
	return b.String()
}

// throwBase derives the throw-builder base name from a type or variant
// identifier: snake-case it, strip trailing _error segments, and export
// it back to camel case. The derivation is the single naming authority
// for every throw builder.
func throwBase(ident string) string {
	snake := snakeCase(ident)
	for {
		trimmed := strings.TrimSuffix(snake, "_error")
		if trimmed == snake || trimmed == "" {
			break
		}
		snake = trimmed
	}
	return exportCamel(snake)
}

// exportCamel converts a snake-case name to an exported identifier.
func exportCamel(snake string) string {
	var b strings.Builder
	for _, part := range strings.Split(snake, "_") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

// goKeywords are identifiers that cannot be used as parameter names.
var goKeywords = map[string]struct{}{
	"break": {}, "case": {}, "chan": {}, "const": {}, "continue": {},
	"default": {}, "defer": {}, "else": {}, "fallthrough": {}, "for": {},
	"func": {}, "go": {}, "goto": {}, "if": {}, "import": {},
	"interface": {}, "map": {}, "package": {}, "range": {}, "return": {},
	"select": {}, "struct": {}, "switch": {}, "type": {}, "var": {},
}

// argName derives a throw-builder parameter name from a field name,
// stepping around the fixed parameter names and Go keywords.
func argName(field string) string {
	name := strings.ToLower(field[:1]) + field[1:]
	if _, kw := goKeywords[name]; kw {
		return name + "Arg"
	}
	switch name {
	case "val", "err", "supply":
		return name + "Arg"
	}
	return name
}

// returnParam picks the success-value type parameter name for throw
// builders, avoiding the enclosing type's own parameters.
func returnParam(taken map[string]struct{}) string {
	for _, candidate := range []string{"R", "RET", "RV"} {
		if _, used := taken[candidate]; !used {
			return candidate
		}
	}
	return "R_"
}
