// Package emit turns validated inputs into generated Go declarations.
// Each emitter is a pure function of the input model; emitters never
// communicate, and their fragments are concatenated in a fixed order so
// identical inputs yield byte-identical output.
package emit

import (
	"fmt"
	"go/format"
	"strings"

	"github.com/cruffinoni/errgen/internal/bounds"
	"github.com/cruffinoni/errgen/internal/diagnostics"
	"github.com/cruffinoni/errgen/internal/model"
	"github.com/cruffinoni/errgen/internal/parser"
)

const header = "// Code generated by errgen. DO NOT EDIT.\n\n"

// Generator renders companion source for one parsed file.
type Generator struct{}

// NewGenerator builds a stateless generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate emits the gofmt-formatted companion file content for every
// annotated type in f, or nil when f holds none. Any error means no
// output at all: partial fragments are never produced.
func (g *Generator) Generate(f *parser.File) ([]byte, error) {
	if len(f.Inputs) == 0 {
		return nil, nil
	}

	frag := newFragment()
	for _, input := range f.Inputs {
		e := &emitter{src: f, frag: frag, set: bounds.NewSet()}
		var err error
		switch in := input.(type) {
		case *model.Struct:
			err = e.emitStruct(in)
		case *model.Enum:
			err = e.emitEnum(in)
		}
		if err != nil {
			return nil, err
		}
	}

	var out strings.Builder
	out.WriteString(header)
	out.WriteString("package " + f.Package + "\n\n")
	out.WriteString(frag.importBlock())
	out.WriteString(frag.buf.String())

	formatted, err := format.Source([]byte(out.String()))
	if err != nil {
		return nil, fmt.Errorf("format generated code for %q: %w", f.Name, err)
	}
	return formatted, nil
}

// emitter drives the four emitters over one validated input.
type emitter struct {
	src  *parser.File
	frag *fragment
	set  *bounds.Set
}

// shape is the shared field-sequence view a struct and an enum variant
// both reduce to; every emitter is written once against it.
type shape struct {
	ident    string
	typeRef  string
	ctorName string
	baseName string
	params   []model.TypeParam
	fields   model.Fields
	attrs    model.Attrs
}

func (e *emitter) emitStruct(s *model.Struct) error {
	sh := shape{
		ident:    s.Ident,
		typeRef:  typeRef(s.Ident, s.TypeParams),
		ctorName: "New" + s.Ident,
		baseName: throwBase(s.Ident),
		params:   s.TypeParams,
		fields:   s.Fields,
		attrs:    s.Attrs,
	}
	return e.emitShape(sh, false)
}

func (e *emitter) emitEnum(en *model.Enum) error {
	// Marker-method stubs tie every variant to its union; the listing
	// materializes the exhaustive case analysis (and stays legal, if
	// empty, for uninhabited unions).
	for i := range en.Variants {
		v := &en.Variants[i]
		e.frag.printf("func (%s) %s() {}\n\n", "*"+typeRef(v.Ident, en.TypeParams), en.Marker)
	}
	if len(en.TypeParams) == 0 {
		e.frag.printf("var _ = []%s{", en.Ident)
		for i := range en.Variants {
			if i > 0 {
				e.frag.printf(", ")
			}
			e.frag.printf("(*%s)(nil)", en.Variants[i].Ident)
		}
		e.frag.printf("}\n\n")
	}

	for i := range en.Variants {
		v := &en.Variants[i]
		sh := shape{
			ident:    v.Ident,
			typeRef:  typeRef(v.Ident, en.TypeParams),
			ctorName: "New" + en.Ident + v.Ident,
			baseName: en.Ident + throwBase(v.Ident),
			params:   en.TypeParams,
			fields:   v.Fields,
			attrs:    v.Attrs,
		}
		if err := e.emitShape(sh, true); err != nil {
			return err
		}
	}
	return nil
}

func (e *emitter) emitShape(sh shape, isVariant bool) error {
	if err := e.emitErrorImpl(sh); err != nil {
		return err
	}
	displayed, err := e.emitDisplay(sh, isVariant)
	if err != nil {
		return err
	}
	e.emitConversion(sh)
	e.emitThrow(sh)

	// The error interface has no supertraits in Go; the enclosing-type
	// obligation surfaces as a satisfaction assertion, which only exists
	// for non-parameterized types.
	if displayed && len(sh.params) == 0 {
		e.frag.printf("var _ error = (*%s)(nil)\n\n", sh.ident)
	}
	return nil
}

// typeRef renders a type identifier with its type arguments.
func typeRef(ident string, params []model.TypeParam) string {
	if len(params) == 0 {
		return ident
	}
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return ident + "[" + strings.Join(names, ", ") + "]"
}

// constraintOf returns the declared constraint of one type parameter.
func constraintOf(params []model.TypeParam, name string) string {
	for _, p := range params {
		if p.Name == name {
			return p.Constraint
		}
	}
	return "any"
}

// requireCap records a capability obligation for a generic field and,
// when the field is a type parameter (bare or behind a pointer) feeding
// a generated method, verifies the declared constraint already implies
// the capability.
// Method receivers cannot be augmented the way generated functions can.
func (e *emitter) requireCap(sh shape, f *model.Field, cap bounds.Capability, context string) error {
	if !f.ContainsGeneric {
		return nil
	}
	e.set.Insert(f.Type.Unoptional(), cap)
	if f.GenericParam == "" {
		return nil
	}
	declared := constraintOf(sh.params, f.GenericParam)
	if !bounds.Implies(declared, cap) {
		return diagnostics.New(diagnostics.CodeUnconstrained, e.src.Name, f.Position.Line, f.Position.Column,
			fmt.Sprintf("%s: %s requires type parameter %s to satisfy %s; declare it as [%s %s]",
				sh.ident, context, f.GenericParam, cap, f.GenericParam, bounds.Augment(declared, []bounds.Capability{cap})), "")
	}
	return nil
}

// paramClause renders the type-parameter list for a generated generic
// function, augmenting each declared constraint with the accumulated
// obligations. extra parameters are appended verbatim.
func (e *emitter) paramClause(sh shape, extra ...string) string {
	if len(sh.params) == 0 && len(extra) == 0 {
		return ""
	}
	var parts []string
	for _, p := range sh.params {
		e.frag.addQualified(p.Qualifiers, e.src.Imports)
		parts = append(parts, p.Name+" "+bounds.Augment(p.Constraint, e.set.ForParam(p.Name)))
	}
	parts = append(parts, extra...)
	return "[" + strings.Join(parts, ", ") + "]"
}

// fieldRef renders access to one field of the receiver.
func fieldRef(f *model.Field) string {
	return "e." + f.Member.Name
}

// importFieldType records the imports a field type mentions so emitted
// signatures referencing it stay compilable.
func (e *emitter) importFieldType(f *model.Field) {
	e.frag.addQualified(f.Type.Qualifiers, e.src.Imports)
}
