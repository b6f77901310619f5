package emit

import (
	"strconv"
	"strings"

	"github.com/cruffinoni/errgen/internal/bounds"
)

// emitDisplay generates the Error method from the display template,
// transparent forwarding, or the single-field variant fallback. It
// reports whether a method was emitted.
func (e *emitter) emitDisplay(sh shape, isVariant bool) (bool, error) {
	if sh.attrs.Transparent {
		sole := &sh.fields[0]
		if err := e.requireCap(sh, sole, bounds.CapError, "transparent display forwarding"); err != nil {
			return false, err
		}
		ref := fieldRef(sole)
		if sole.Type.Optional && sole.GenericParam != "" {
			ref = "(*" + ref + ")"
		}
		e.frag.printf("// Error forwards formatting to the wrapped %s.\n", sole.Member.Name)
		e.frag.printf("func (e *%s) Error() string {\n", sh.typeRef)
		e.frag.printf("\treturn %s.Error()\n", ref)
		e.frag.printf("}\n\n")
		return true, nil
	}

	if tpl := sh.attrs.Display; tpl != nil {
		e.frag.printf("// Error renders the message %s.\n", strconv.Quote(tpl.Source))
		e.frag.printf("func (e *%s) Error() string {\n", sh.typeRef)
		if len(tpl.Args) == 0 {
			literal := strings.ReplaceAll(tpl.Format, "%%", "%")
			e.frag.printf("\treturn %s\n}\n\n", strconv.Quote(literal))
			return true, nil
		}

		args := make([]string, 0, len(tpl.Args))
		for _, arg := range tpl.Args {
			field := &sh.fields[arg.Member.Index]
			ref := fieldRef(field)
			if arg.AsString {
				if err := e.requireCap(sh, field, bounds.CapStringer, "as-string interpolation"); err != nil {
					return false, err
				}
				ref += ".String()"
			}
			args = append(args, ref)
		}
		e.frag.addImport("fmt")
		e.frag.printf("\treturn fmt.Sprintf(%s, %s)\n}\n\n", strconv.Quote(tpl.Format), strings.Join(args, ", "))
		return true, nil
	}

	if isVariant && len(sh.fields) == 1 {
		sole := &sh.fields[0]
		e.frag.addImport("fmt")
		e.frag.printf("// Error forwards formatting to the sole field %s.\n", sole.Member.Name)
		e.frag.printf("func (e *%s) Error() string {\n", sh.typeRef)
		e.frag.printf("\treturn fmt.Sprint(%s)\n", fieldRef(sole))
		e.frag.printf("}\n\n")
		return true, nil
	}

	// No template, no transparency: manually written conformance is the
	// caller's business.
	return false, nil
}
