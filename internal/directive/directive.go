// Package directive scans errgen's annotation surface: //errgen:
// directive comments, errgen struct-tag roles, and display templates.
package directive

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/cruffinoni/errgen/internal/diagnostics"
)

// Prefix introduces a directive comment.
const Prefix = "//errgen:"

// Kind is the directive name following the prefix.
type Kind string

const (
	KindError       Kind = "error"
	KindUnion       Kind = "union"
	KindVariant     Kind = "variant"
	KindDisplay     Kind = "display"
	KindTransparent Kind = "transparent"
)

// Directive is one parsed //errgen: comment line.
type Directive struct {
	Kind    Kind
	PosLine int
	PosCol  int
	Raw     string

	// Template is the unquoted display template (display only).
	Template string
	// Of is the union identifier a variant belongs to (variant only).
	Of string
}

// splitNameArgs splits a directive body into name and trailing arguments.
func splitNameArgs(body string) (string, string) {
	body = strings.TrimSpace(body)
	i := 0
	for i < len(body) {
		if unicode.IsSpace(rune(body[i])) {
			break
		}
		i++
	}
	return body[:i], strings.TrimSpace(body[i:])
}

// ParseComment parses one comment line. It returns nil when the line is
// not an errgen directive.
func ParseComment(file string, line int, col int, text string) (*Directive, error) {
	if !strings.HasPrefix(text, Prefix) {
		return nil, nil
	}
	body := text[len(Prefix):]
	name, args := splitNameArgs(body)

	d := &Directive{
		Kind:    Kind(name),
		PosLine: line,
		PosCol:  col,
		Raw:     text,
	}

	switch d.Kind {
	case KindError, KindUnion, KindTransparent:
		if args != "" {
			return nil, diagnostics.New(diagnostics.CodeDirectiveSyntax, file, line, col,
				fmt.Sprintf("directive %q takes no arguments", name), text)
		}
		return d, nil

	case KindDisplay:
		tpl, err := strconv.Unquote(args)
		if err != nil {
			return nil, diagnostics.New(diagnostics.CodeDirectiveSyntax, file, line, col,
				"display directive requires a quoted template string", text)
		}
		d.Template = tpl
		return d, nil

	case KindVariant:
		of, ok := strings.CutPrefix(args, "of=")
		of = strings.TrimSpace(of)
		if !ok || of == "" {
			return nil, diagnostics.New(diagnostics.CodeDirectiveSyntax, file, line, col,
				"variant directive must be '//errgen:variant of=<Union>'", text)
		}
		d.Of = of
		return d, nil

	default:
		return nil, diagnostics.New(diagnostics.CodeDirectiveSyntax, file, line, col,
			fmt.Sprintf("unknown directive %q", name), text)
	}
}

// Roles are the field-level role flags carried by an errgen struct tag.
type Roles struct {
	Source    bool
	From      bool
	Backtrace bool
}

// ParseTag extracts errgen roles from a raw struct-tag literal as it
// appears in source, including the surrounding quotes. The second result
// reports whether an errgen key was present at all.
func ParseTag(file string, line int, col int, raw string) (Roles, bool, error) {
	var roles Roles
	if raw == "" {
		return roles, false, nil
	}
	unquoted, err := strconv.Unquote(raw)
	if err != nil {
		return roles, false, diagnostics.New(diagnostics.CodeTagSyntax, file, line, col,
			"malformed struct tag", raw)
	}
	value, ok := reflect.StructTag(unquoted).Lookup("errgen")
	if !ok {
		return roles, false, nil
	}

	for _, part := range strings.Split(value, ",") {
		switch strings.TrimSpace(part) {
		case "source":
			roles.Source = true
		case "from":
			roles.From = true
			roles.Source = true
		case "backtrace":
			roles.Backtrace = true
		case "":
			// trailing comma tolerated
		default:
			return roles, true, diagnostics.New(diagnostics.CodeTagSyntax, file, line, col,
				fmt.Sprintf("unknown errgen role %q", strings.TrimSpace(part)), raw)
		}
	}
	return roles, true, nil
}

// Interp is one unresolved template interpolation.
type Interp struct {
	// Ref is a field name or a decimal declaration index.
	Ref  string
	Verb string
}

// Template is a scanned display template: a fmt format string with one
// verb per interpolation, in source order.
type Template struct {
	Source  string
	Format  string
	Interps []Interp
}

var validVerbs = map[string]struct{}{
	"v": {}, "s": {}, "q": {}, "d": {}, "x": {}, "X": {}, "t": {}, "f": {},
}

// ParseTemplate scans a display template. {Name} and {0} interpolate a
// field by name or declaration index with an optional ':verb' suffix;
// {{ and }} escape literal braces.
func ParseTemplate(file string, line int, col int, src string) (Template, error) {
	t := Template{Source: src}
	var out strings.Builder

	for i := 0; i < len(src); {
		ch := src[i]
		switch ch {
		case '{':
			if i+1 < len(src) && src[i+1] == '{' {
				out.WriteByte('{')
				i += 2
				continue
			}
			end := strings.IndexByte(src[i:], '}')
			if end < 0 {
				return Template{}, diagnostics.New(diagnostics.CodeTemplateSyntax, file, line, col,
					"unclosed interpolation in display template", src)
			}
			end += i
			ref := src[i+1 : end]
			verb := "v"
			if colon := strings.IndexByte(ref, ':'); colon >= 0 {
				verb = ref[colon+1:]
				ref = ref[:colon]
			}
			ref = strings.TrimSpace(ref)
			if ref == "" {
				return Template{}, diagnostics.New(diagnostics.CodeTemplateSyntax, file, line, col,
					"empty interpolation in display template", src)
			}
			if _, ok := validVerbs[verb]; !ok {
				return Template{}, diagnostics.New(diagnostics.CodeTemplateSyntax, file, line, col,
					fmt.Sprintf("unsupported template verb %q", verb), src)
			}
			t.Interps = append(t.Interps, Interp{Ref: ref, Verb: verb})
			out.WriteByte('%')
			out.WriteString(verb)
			i = end + 1
		case '}':
			if i+1 < len(src) && src[i+1] == '}' {
				out.WriteByte('}')
				i += 2
				continue
			}
			return Template{}, diagnostics.New(diagnostics.CodeTemplateSyntax, file, line, col,
				"unmatched '}' in display template", src)
		case '%':
			out.WriteString("%%")
			i++
		default:
			out.WriteByte(ch)
			i++
		}
	}

	t.Format = out.String()
	return t, nil
}
