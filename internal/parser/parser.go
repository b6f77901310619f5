// Package parser builds validated models from annotated Go type
// declarations. Validation is all-or-nothing per file: any diagnostic
// aborts generation for every type in the file.
package parser

import (
	"fmt"
	goast "go/ast"
	goparser "go/parser"
	"go/token"
	"go/types"
	"strconv"
	"strings"

	"github.com/cruffinoni/errgen/internal/diagnostics"
	"github.com/cruffinoni/errgen/internal/directive"
	"github.com/cruffinoni/errgen/internal/model"
)

const (
	traceType = "errtrace.Trace"
	tracePath = "github.com/cruffinoni/errgen/errtrace"
)

// File is the parse result for one Go source file.
type File struct {
	Name    string
	Package string
	// Imports maps package qualifiers to import paths so emitted
	// signatures can carry the input file's imports over.
	Imports map[string]string
	Inputs  []model.Input
}

// ParseFile parses one annotated Go source file into validated inputs.
// Files without errgen annotations yield an empty input list.
func ParseFile(filename string, src []byte) (*File, error) {
	fset := token.NewFileSet()
	parsed, err := goparser.ParseFile(fset, filename, src, goparser.ParseComments|goparser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", filename, err)
	}

	b := &builder{
		fset: fset,
		file: filename,
		out: &File{
			Name:    filename,
			Package: parsed.Name.Name,
			Imports: importMap(parsed),
		},
		unions: map[string]*model.Enum{},
	}
	if err := b.build(parsed); err != nil {
		return nil, err
	}
	return b.out, nil
}

type builder struct {
	fset   *token.FileSet
	file   string
	out    *File
	unions map[string]*model.Enum
}

// typeDecl pairs one type spec with the errgen directives on its doc
// comment.
type typeDecl struct {
	spec *goast.TypeSpec
	dirs []*directive.Directive
}

func importMap(f *goast.File) map[string]string {
	out := map[string]string{}
	for _, imp := range f.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		name := path
		if i := strings.LastIndexByte(path, '/'); i >= 0 {
			name = path[i+1:]
		}
		if imp.Name != nil {
			name = imp.Name.Name
		}
		out[name] = path
	}
	return out
}

func (b *builder) pos(p token.Pos) model.Position {
	position := b.fset.Position(p)
	return model.Position{Line: position.Line, Column: position.Column}
}

func (b *builder) build(f *goast.File) error {
	decls, err := b.collectDecls(f)
	if err != nil {
		return err
	}

	// Unions first so variants can attach regardless of declaration order.
	for _, decl := range decls {
		if hasKind(decl.dirs, directive.KindUnion) {
			if err := b.buildUnion(decl); err != nil {
				return err
			}
		}
	}
	for _, decl := range decls {
		switch {
		case hasKind(decl.dirs, directive.KindUnion):
			// handled above
		case hasKind(decl.dirs, directive.KindVariant):
			if err := b.buildVariant(decl); err != nil {
				return err
			}
		case hasKind(decl.dirs, directive.KindError):
			if err := b.buildStruct(decl); err != nil {
				return err
			}
		default:
			d := decl.dirs[0]
			return diagnostics.New(diagnostics.CodeInvalidShape, b.file, d.PosLine, d.PosCol,
				fmt.Sprintf("directive %q needs an accompanying errgen:error, errgen:union, or errgen:variant directive", d.Kind), d.Raw)
		}
	}
	return nil
}

// collectDecls finds type declarations carrying errgen directives, in
// source order.
func (b *builder) collectDecls(f *goast.File) ([]typeDecl, error) {
	var decls []typeDecl
	for _, raw := range f.Decls {
		gen, ok := raw.(*goast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts, ok := spec.(*goast.TypeSpec)
			if !ok {
				continue
			}
			groups := []*goast.CommentGroup{ts.Doc}
			if len(gen.Specs) == 1 {
				groups = append(groups, gen.Doc)
			}
			var dirs []*directive.Directive
			for _, group := range groups {
				if group == nil {
					continue
				}
				for _, c := range group.List {
					p := b.pos(c.Pos())
					d, err := directive.ParseComment(b.file, p.Line, p.Column, c.Text)
					if err != nil {
						return nil, err
					}
					if d != nil {
						dirs = append(dirs, d)
					}
				}
			}
			if len(dirs) > 0 {
				decls = append(decls, typeDecl{spec: ts, dirs: dirs})
			}
		}
	}
	return decls, nil
}

func hasKind(dirs []*directive.Directive, kind directive.Kind) bool {
	for _, d := range dirs {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

func findKind(dirs []*directive.Directive, kind directive.Kind) *directive.Directive {
	for _, d := range dirs {
		if d.Kind == kind {
			return d
		}
	}
	return nil
}

func (b *builder) buildUnion(decl typeDecl) error {
	ts := decl.spec
	d := findKind(decl.dirs, directive.KindUnion)
	for _, other := range decl.dirs {
		if other.Kind != directive.KindUnion {
			return diagnostics.New(diagnostics.CodeInvalidShape, b.file, other.PosLine, other.PosCol,
				fmt.Sprintf("directive %q cannot be combined with errgen:union; annotate the variants instead", other.Kind), other.Raw)
		}
	}

	iface, ok := ts.Type.(*goast.InterfaceType)
	if !ok {
		return diagnostics.New(diagnostics.CodeInvalidShape, b.file, d.PosLine, d.PosCol,
			fmt.Sprintf("errgen:union requires an interface type, %s is not one", ts.Name.Name), d.Raw)
	}

	marker, err := b.markerMethod(ts.Name.Name, iface, d)
	if err != nil {
		return err
	}

	enum := &model.Enum{
		File:       b.file,
		Position:   b.pos(ts.Pos()),
		Ident:      ts.Name.Name,
		TypeParams: b.typeParams(ts),
		Marker:     marker,
	}
	b.unions[enum.Ident] = enum
	b.out.Inputs = append(b.out.Inputs, enum)
	return nil
}

// markerMethod validates the union interface shape: exactly one
// unexported niladic method and nothing else.
func (b *builder) markerMethod(ident string, iface *goast.InterfaceType, d *directive.Directive) (string, error) {
	invalid := func(msg string) error {
		return diagnostics.New(diagnostics.CodeInvalidUnion, b.file, d.PosLine, d.PosCol,
			fmt.Sprintf("union %s: %s", ident, msg), d.Raw)
	}
	if iface.Methods == nil || len(iface.Methods.List) != 1 {
		return "", invalid("interface must declare exactly one unexported marker method")
	}
	m := iface.Methods.List[0]
	ft, ok := m.Type.(*goast.FuncType)
	if !ok || len(m.Names) != 1 {
		return "", invalid("interface must declare exactly one unexported marker method")
	}
	name := m.Names[0].Name
	if goast.IsExported(name) {
		return "", invalid(fmt.Sprintf("marker method %s must be unexported", name))
	}
	if (ft.Params != nil && len(ft.Params.List) > 0) || (ft.Results != nil && len(ft.Results.List) > 0) {
		return "", invalid(fmt.Sprintf("marker method %s must take and return nothing", name))
	}
	return name, nil
}

func (b *builder) buildStruct(decl typeDecl) error {
	ts := decl.spec
	d := findKind(decl.dirs, directive.KindError)
	if bad := findKind(decl.dirs, directive.KindVariant); bad != nil {
		return diagnostics.New(diagnostics.CodeInvalidShape, b.file, bad.PosLine, bad.PosCol,
			"a type cannot be both a standalone error and a union variant", bad.Raw)
	}

	st, ok := ts.Type.(*goast.StructType)
	if !ok {
		return diagnostics.New(diagnostics.CodeInvalidShape, b.file, d.PosLine, d.PosCol,
			fmt.Sprintf("errgen:error requires a struct type, %s is not one", ts.Name.Name), d.Raw)
	}

	params := b.typeParams(ts)
	fields, err := b.buildFields(st, paramSet(params))
	if err != nil {
		return err
	}
	if err := b.resolveRoles(ts.Name.Name, fields); err != nil {
		return err
	}
	attrs, err := b.buildAttrs(ts.Name.Name, decl.dirs, fields, false)
	if err != nil {
		return err
	}

	b.out.Inputs = append(b.out.Inputs, &model.Struct{
		File:       b.file,
		Position:   b.pos(ts.Pos()),
		Ident:      ts.Name.Name,
		TypeParams: params,
		Fields:     fields,
		Attrs:      attrs,
	})
	return nil
}

func (b *builder) buildVariant(decl typeDecl) error {
	ts := decl.spec
	d := findKind(decl.dirs, directive.KindVariant)

	enum, ok := b.unions[d.Of]
	if !ok {
		return diagnostics.New(diagnostics.CodeUnknownUnion, b.file, d.PosLine, d.PosCol,
			fmt.Sprintf("variant %s references union %s, which is not declared with errgen:union in this file", ts.Name.Name, d.Of), d.Raw)
	}

	st, ok := ts.Type.(*goast.StructType)
	if !ok {
		return diagnostics.New(diagnostics.CodeInvalidShape, b.file, d.PosLine, d.PosCol,
			fmt.Sprintf("errgen:variant requires a struct type, %s is not one", ts.Name.Name), d.Raw)
	}

	params := b.typeParams(ts)
	if !sameParams(params, enum.TypeParams) {
		return diagnostics.New(diagnostics.CodeInvalidUnion, b.file, d.PosLine, d.PosCol,
			fmt.Sprintf("variant %s must declare the same type parameters as union %s", ts.Name.Name, enum.Ident), d.Raw)
	}

	fields, err := b.buildFields(st, paramSet(params))
	if err != nil {
		return err
	}
	if err := b.resolveRoles(ts.Name.Name, fields); err != nil {
		return err
	}
	attrs, err := b.buildAttrs(ts.Name.Name, decl.dirs, fields, true)
	if err != nil {
		return err
	}

	enum.Variants = append(enum.Variants, model.Variant{
		Position: b.pos(ts.Pos()),
		Ident:    ts.Name.Name,
		Fields:   fields,
		Attrs:    attrs,
	})
	return nil
}

func (b *builder) typeParams(ts *goast.TypeSpec) []model.TypeParam {
	if ts.TypeParams == nil {
		return nil
	}
	var out []model.TypeParam
	for _, f := range ts.TypeParams.List {
		constraint := types.ExprString(f.Type)
		qualifiers := exprQualifiers(f.Type)
		for _, name := range f.Names {
			out = append(out, model.TypeParam{Name: name.Name, Constraint: constraint, Qualifiers: qualifiers})
		}
	}
	return out
}

func paramSet(params []model.TypeParam) map[string]struct{} {
	set := make(map[string]struct{}, len(params))
	for _, p := range params {
		set[p.Name] = struct{}{}
	}
	return set
}

func sameParams(a, b []model.TypeParam) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || a[i].Constraint != b[i].Constraint {
			return false
		}
	}
	return true
}

func (b *builder) buildFields(st *goast.StructType, params map[string]struct{}) (model.Fields, error) {
	var fields model.Fields
	for _, fld := range st.Fields.List {
		expr := b.typeExpr(fld.Type)
		generic := mentionsParam(fld.Type, params)
		bare := ""
		switch t := fld.Type.(type) {
		case *goast.Ident:
			if _, isParam := params[t.Name]; isParam {
				bare = t.Name
			}
		case *goast.StarExpr:
			if id, ok := t.X.(*goast.Ident); ok {
				if _, isParam := params[id.Name]; isParam {
					bare = id.Name
				}
			}
		}

		var roles directive.Roles
		if fld.Tag != nil {
			p := b.pos(fld.Tag.Pos())
			r, _, err := directive.ParseTag(b.file, p.Line, p.Column, fld.Tag.Value)
			if err != nil {
				return nil, err
			}
			roles = r
		}

		names := fld.Names
		if len(names) == 0 {
			// Embedded field: addressed by its base type name.
			names = []*goast.Ident{{Name: embeddedName(fld.Type), NamePos: fld.Type.Pos()}}
		}
		for _, name := range names {
			fields = append(fields, model.Field{
				Position:        b.pos(name.Pos()),
				Member:          model.Member{Name: name.Name, Index: len(fields)},
				Type:            expr,
				IsSource:        roles.Source,
				IsFrom:          roles.From,
				IsBacktrace:     roles.Backtrace,
				ContainsGeneric: generic,
				GenericParam:    bare,
			})
		}
	}
	return fields, nil
}

func embeddedName(expr goast.Expr) string {
	switch e := expr.(type) {
	case *goast.Ident:
		return e.Name
	case *goast.StarExpr:
		return embeddedName(e.X)
	case *goast.SelectorExpr:
		return e.Sel.Name
	case *goast.IndexExpr:
		return embeddedName(e.X)
	case *goast.IndexListExpr:
		return embeddedName(e.X)
	default:
		return types.ExprString(expr)
	}
}

func (b *builder) typeExpr(expr goast.Expr) model.TypeExpr {
	out := model.TypeExpr{
		Text:       types.ExprString(expr),
		Qualifiers: exprQualifiers(expr),
	}
	if star, ok := expr.(*goast.StarExpr); ok {
		out.Optional = true
		out.Elem = types.ExprString(star.X)
	}
	return out
}

// exprQualifiers lists the package qualifiers a type expression mentions,
// in order of appearance.
func exprQualifiers(expr goast.Expr) []string {
	var out []string
	seen := map[string]struct{}{}
	goast.Inspect(expr, func(n goast.Node) bool {
		sel, ok := n.(*goast.SelectorExpr)
		if !ok {
			return true
		}
		if id, ok := sel.X.(*goast.Ident); ok {
			if _, dup := seen[id.Name]; !dup {
				seen[id.Name] = struct{}{}
				out = append(out, id.Name)
			}
			return false
		}
		return true
	})
	return out
}

// mentionsParam reports whether a type expression references any of the
// enclosing type parameters. Selector members never count: a package
// qualifier cannot be a type parameter.
func mentionsParam(expr goast.Expr, params map[string]struct{}) bool {
	if len(params) == 0 {
		return false
	}
	found := false
	goast.Inspect(expr, func(n goast.Node) bool {
		if found {
			return false
		}
		if _, ok := n.(*goast.SelectorExpr); ok {
			return false
		}
		if id, ok := n.(*goast.Ident); ok {
			if _, isParam := params[id.Name]; isParam {
				found = true
			}
		}
		return true
	})
	return found
}

// resolveRoles applies the implicit Source member rule and enforces the
// one-source/one-backtrace invariants plus the backtrace type shape.
func (b *builder) resolveRoles(ident string, fields model.Fields) error {
	var sources []*model.Field
	for i := range fields {
		f := &fields[i]
		if f.IsSource {
			sources = append(sources, f)
			continue
		}
		if f.Member.Name == "Source" {
			f.IsSource = true
			sources = append(sources, f)
		}
	}
	if len(sources) > 1 {
		dup := sources[1]
		return diagnostics.New(diagnostics.CodeConflictingSource, b.file, dup.Position.Line, dup.Position.Column,
			fmt.Sprintf("%s: conflicting causal field %s; %s is already the causal field", ident, dup.Member.Name, sources[0].Member.Name), "")
	}

	var traces []*model.Field
	for i := range fields {
		if fields[i].IsBacktrace {
			traces = append(traces, &fields[i])
		}
	}
	if len(traces) > 1 {
		dup := traces[1]
		return diagnostics.New(diagnostics.CodeConflictingTrace, b.file, dup.Position.Line, dup.Position.Column,
			fmt.Sprintf("%s: conflicting backtrace field %s; %s is already the backtrace field", ident, dup.Member.Name, traces[0].Member.Name), "")
	}
	if len(traces) == 1 {
		bt := traces[0]
		// A causal field may double as the trace carrier: the wrapped
		// error then supplies its own trace.
		if !bt.IsSource && !b.isTraceType(bt.Type.Unoptional()) {
			return diagnostics.New(diagnostics.CodeBacktraceType, b.file, bt.Position.Line, bt.Position.Column,
				fmt.Sprintf("%s: backtrace field %s must be declared %s or *%s, got %s", ident, bt.Member.Name, traceType, traceType, bt.Type.Text), "")
		}
	}
	return nil
}

// isTraceType reports whether the type text names the trace type. The
// package qualifier is resolved through the file's imports, so aliased
// imports of the trace package are recognized and same-named types from
// other packages are not.
func (b *builder) isTraceType(text string) bool {
	qual, name, ok := strings.Cut(text, ".")
	if !ok || name != "Trace" {
		return false
	}
	return b.out.Imports[qual] == tracePath
}

// buildAttrs resolves display/transparent directives against the field
// list and enforces the shape invariants tied to them.
func (b *builder) buildAttrs(ident string, dirs []*directive.Directive, fields model.Fields, isVariant bool) (model.Attrs, error) {
	var attrs model.Attrs

	displayDir := findKind(dirs, directive.KindDisplay)
	transparentDir := findKind(dirs, directive.KindTransparent)

	if transparentDir != nil {
		if displayDir != nil {
			return attrs, diagnostics.New(diagnostics.CodeIllegalTransparent, b.file, transparentDir.PosLine, transparentDir.PosCol,
				fmt.Sprintf("%s: transparent forwarding excludes a display template", ident), transparentDir.Raw)
		}
		if len(fields) != 1 {
			return attrs, diagnostics.New(diagnostics.CodeIllegalTransparent, b.file, transparentDir.PosLine, transparentDir.PosCol,
				fmt.Sprintf("%s: transparent forwarding requires exactly one field, got %d", ident, len(fields)), transparentDir.Raw)
		}
		attrs.Transparent = true
		return attrs, nil
	}

	if displayDir != nil {
		tpl, err := b.resolveTemplate(ident, displayDir, fields)
		if err != nil {
			return attrs, err
		}
		attrs.Display = tpl
		return attrs, nil
	}

	// No template and no transparency: standalone structs simply omit the
	// Error method; a variant falls back to its sole field or fails.
	if isVariant && len(fields) != 1 {
		pos := findKind(dirs, directive.KindVariant)
		return attrs, diagnostics.New(diagnostics.CodeMissingDisplay, b.file, pos.PosLine, pos.PosCol,
			fmt.Sprintf("variant %s needs a display template: only single-field variants can forward display to their field", ident), pos.Raw)
	}
	return attrs, nil
}

func (b *builder) resolveTemplate(ident string, d *directive.Directive, fields model.Fields) (*model.DisplayTemplate, error) {
	scanned, err := directive.ParseTemplate(b.file, d.PosLine, d.PosCol, d.Template)
	if err != nil {
		return nil, err
	}

	tpl := &model.DisplayTemplate{
		Position: model.Position{Line: d.PosLine, Column: d.PosCol},
		Source:   scanned.Source,
		Format:   scanned.Format,
	}
	for _, interp := range scanned.Interps {
		var field *model.Field
		if idx, err := strconv.Atoi(interp.Ref); err == nil {
			field = fields.ByMember("", idx)
		} else {
			field = fields.ByMember(interp.Ref, -1)
		}
		if field == nil {
			return nil, diagnostics.New(diagnostics.CodeTemplateDangling, b.file, d.PosLine, d.PosCol,
				fmt.Sprintf("%s: display template references unknown field %q", ident, interp.Ref), d.Raw)
		}
		asString := interp.Verb == "s" && field.GenericParam != "" && !field.Type.Optional
		tpl.Args = append(tpl.Args, model.TemplateArg{
			Member:   field.Member,
			Verb:     interp.Verb,
			AsString: asString,
		})
	}
	return tpl, nil
}
