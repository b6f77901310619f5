package emit

// emitConversion generates the constructor wrapping an inner failure
// value into the enclosing type. It fires only for fields carrying the
// from role and re-optionalizes the argument when the field is declared
// as a pointer.
func (e *emitter) emitConversion(sh shape) {
	from := sh.fields.FromField()
	if from == nil {
		return
	}
	e.importFieldType(from)

	store := "source"
	if from.Type.Optional {
		store = "&source"
	}
	backtrace := sh.fields.DistinctBacktraceField()

	if backtrace != nil {
		e.frag.printf("// %s wraps source into a new %s, capturing the call-site stack trace.\n", sh.ctorName, sh.ident)
	} else {
		e.frag.printf("// %s wraps source into a new %s.\n", sh.ctorName, sh.ident)
	}
	e.frag.printf("func %s%s(source %s) *%s {\n", sh.ctorName, e.paramClause(sh), from.Type.Unoptional(), sh.typeRef)
	e.frag.printf("\treturn &%s{\n", sh.typeRef)
	e.frag.printf("\t\t%s: %s,\n", from.Member.Name, store)
	if backtrace != nil {
		e.frag.addImport(errtracePath)
		capture := "errtrace.Capture()"
		if !backtrace.Type.Optional {
			capture = "*errtrace.Capture()"
		}
		e.frag.printf("\t\t%s: %s,\n", backtrace.Member.Name, capture)
	}
	e.frag.printf("\t}\n}\n\n")
}
