package emit

import (
	"github.com/cruffinoni/errgen/internal/bounds"
	"github.com/cruffinoni/errgen/internal/model"
)

// emitErrorImpl generates the cause-lookup (Unwrap) and trace-provision
// (StackTrace) methods. It fires whenever a causal field, a backtrace
// field, or transparent forwarding exists.
func (e *emitter) emitErrorImpl(sh shape) error {
	if sh.attrs.Transparent {
		if err := e.emitTransparentUnwrap(sh); err != nil {
			return err
		}
	} else if source := sh.fields.SourceField(); source != nil {
		if err := e.emitUnwrap(sh, source); err != nil {
			return err
		}
	}

	if backtrace := sh.fields.BacktraceField(); backtrace != nil {
		e.emitStackTrace(sh, backtrace)
	}
	return nil
}

// emitTransparentUnwrap recurses into the sole field's own cause lookup
// rather than returning the field itself.
func (e *emitter) emitTransparentUnwrap(sh shape) error {
	sole := &sh.fields[0]
	if err := e.requireCap(sh, sole, bounds.CapError, "transparent forwarding"); err != nil {
		return err
	}
	e.frag.addImport("errors")
	e.frag.printf("// Unwrap forwards cause lookup to the wrapped %s.\n", sole.Member.Name)
	e.frag.printf("func (e *%s) Unwrap() error {\n", sh.typeRef)
	ref := fieldRef(sole)
	if sole.Type.Optional && sole.GenericParam != "" {
		e.frag.printf("\tif %s == nil {\n\t\treturn nil\n\t}\n", ref)
		ref = "*" + ref
	}
	e.frag.printf("\treturn errors.Unwrap(%s)\n", ref)
	e.frag.printf("}\n\n")
	return nil
}

func (e *emitter) emitUnwrap(sh shape, source *model.Field) error {
	if err := e.requireCap(sh, source, bounds.CapError, "cause lookup"); err != nil {
		return err
	}
	e.frag.printf("// Unwrap returns the underlying cause of the error.\n")
	e.frag.printf("func (e *%s) Unwrap() error {\n", sh.typeRef)
	ref := fieldRef(source)
	if source.Type.Optional {
		e.frag.printf("\tif %s == nil {\n\t\treturn nil\n\t}\n", ref)
		if source.GenericParam != "" {
			// A pointer to a type parameter never implements error
			// itself, even when the parameter does.
			ref = "*" + ref
		}
	}
	e.frag.printf("\treturn %s\n", ref)
	e.frag.printf("}\n\n")
	return nil
}

// emitStackTrace registers the stored trace with trace requests. When a
// distinct causal field exists the request is forwarded to it first, so
// nested causes can supply their own traces; the directly stored trace
// is offered only as a fallback. A causal field doubling as the
// backtrace carrier forwards only.
func (e *emitter) emitStackTrace(sh shape, backtrace *model.Field) {
	e.frag.addImport(errtracePath)
	source := sh.fields.SourceField()

	e.frag.printf("// StackTrace reports the trace captured closest to the root cause.\n")
	e.frag.printf("func (e *%s) StackTrace() *errtrace.Trace {\n", sh.typeRef)

	if backtrace.IsSource {
		if backtrace.Type.Optional {
			e.frag.printf("\tif %s == nil {\n\t\treturn nil\n\t}\n", fieldRef(backtrace))
		}
		e.frag.printf("\treturn errtrace.From(%s)\n", fieldRef(backtrace))
		e.frag.printf("}\n\n")
		return
	}

	if source != nil {
		if source.Type.Optional {
			e.frag.printf("\tif %s != nil {\n", fieldRef(source))
			e.frag.printf("\t\tif t := errtrace.From(%s); t != nil {\n\t\t\treturn t\n\t\t}\n", fieldRef(source))
			e.frag.printf("\t}\n")
		} else {
			e.frag.printf("\tif t := errtrace.From(%s); t != nil {\n\t\treturn t\n\t}\n", fieldRef(source))
		}
	}

	if backtrace.Type.Optional {
		e.frag.printf("\treturn %s\n", fieldRef(backtrace))
	} else {
		e.frag.printf("\treturn &%s\n", fieldRef(backtrace))
	}
	e.frag.printf("}\n\n")
}
