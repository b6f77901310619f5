// Package model holds the validated input consumed by every emitter.
// One Input is built per annotated type, read many times, never mutated.
package model

// Position is a 1-based source position within a Go file.
type Position struct {
	Line   int
	Column int
}

// Input is the validated shape of one annotated type definition:
// either a *Struct or an *Enum.
type Input interface {
	input()
	Pos() Position
	Name() string
}

// Struct is a single annotated record type.
type Struct struct {
	File       string
	Position   Position
	Ident      string
	TypeParams []TypeParam
	Fields     Fields
	Attrs      Attrs
}

func (s *Struct) input()        {}
func (s *Struct) Pos() Position { return s.Position }
func (s *Struct) Name() string  { return s.Ident }

// Enum is a tagged union: a marker interface plus its variant records.
type Enum struct {
	File       string
	Position   Position
	Ident      string
	TypeParams []TypeParam
	Marker     string
	Variants   []Variant
}

func (e *Enum) input()        {}
func (e *Enum) Pos() Position { return e.Position }
func (e *Enum) Name() string  { return e.Ident }

// Variant is one record of an Enum.
type Variant struct {
	Position Position
	Ident    string
	Fields   Fields
	Attrs    Attrs
}

// Attrs are the type-level role tags of a record or variant.
type Attrs struct {
	Display     *DisplayTemplate
	Transparent bool
}

// TypeParam is one generic type parameter with its declared constraint
// expression, both kept as source text. Qualifiers lists the package
// qualifiers the constraint mentions.
type TypeParam struct {
	Name       string
	Constraint string
	Qualifiers []string
}

// Member references a field by name and declaration index. Templates may
// interpolate either form.
type Member struct {
	Name  string
	Index int
}

// TypeExpr is a declared field type kept as source text plus the package
// qualifiers it references, so emitted signatures can carry the right
// imports over from the input file.
type TypeExpr struct {
	Text       string
	Qualifiers []string
	Optional   bool
	Elem       string
}

// Unoptional returns the element type for pointer fields and the declared
// type otherwise.
func (t TypeExpr) Unoptional() string {
	if t.Optional {
		return t.Elem
	}
	return t.Text
}

// Field is one record member with its resolved role flags.
type Field struct {
	Position        Position
	Member          Member
	Type            TypeExpr
	IsSource        bool
	IsBacktrace     bool
	IsFrom          bool
	ContainsGeneric bool
	// GenericParam is the type-parameter name when the declared type is
	// exactly one enclosing parameter or a pointer to one, empty
	// otherwise. Type.Optional distinguishes the two shapes.
	GenericParam string
}

// Fields is the shared field-sequence view both shapes reduce to.
type Fields []Field

// SourceField returns the causal field, or nil.
func (fs Fields) SourceField() *Field {
	for i := range fs {
		if fs[i].IsSource {
			return &fs[i]
		}
	}
	return nil
}

// BacktraceField returns the backtrace field, or nil.
func (fs Fields) BacktraceField() *Field {
	for i := range fs {
		if fs[i].IsBacktrace {
			return &fs[i]
		}
	}
	return nil
}

// FromField returns the conversion-source field, or nil.
func (fs Fields) FromField() *Field {
	for i := range fs {
		if fs[i].IsFrom {
			return &fs[i]
		}
	}
	return nil
}

// DistinctBacktraceField returns the backtrace field only when it is not
// also the causal field.
func (fs Fields) DistinctBacktraceField() *Field {
	bt := fs.BacktraceField()
	if bt == nil || bt.IsSource {
		return nil
	}
	return bt
}

// ExtraFields returns the non-causal fields in declaration order. These
// become throw-builder parameters.
func (fs Fields) ExtraFields() []Field {
	var out []Field
	for _, f := range fs {
		if !f.IsSource {
			out = append(out, f)
		}
	}
	return out
}

// ByMember resolves a template reference by name or declaration index.
func (fs Fields) ByMember(name string, index int) *Field {
	for i := range fs {
		if name != "" && fs[i].Member.Name == name {
			return &fs[i]
		}
		if name == "" && fs[i].Member.Index == index {
			return &fs[i]
		}
	}
	return nil
}

// DisplayTemplate is a resolved literal template. Format is a fmt format
// string with one verb per Args entry, in order.
type DisplayTemplate struct {
	Position Position
	Source   string
	Format   string
	Args     []TemplateArg
}

// TemplateArg is one interpolation of the template.
type TemplateArg struct {
	Member Member
	Verb   string
	// AsString marks a bare type-parameter field interpolated with the s
	// verb; it is rendered through an explicit String() call and adds a
	// fmt.Stringer obligation on that parameter.
	AsString bool
}
