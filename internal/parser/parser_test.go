package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cruffinoni/errgen/internal/diagnostics"
	"github.com/cruffinoni/errgen/internal/model"
)

func parse(t *testing.T, src string) *File {
	t.Helper()
	f, err := ParseFile("input.go", []byte(src))
	require.NoError(t, err)
	return f
}

func parseErrCode(t *testing.T, src string) diagnostics.Diagnostic {
	t.Helper()
	_, err := ParseFile("input.go", []byte(src))
	require.Error(t, err)
	var diag diagnostics.Diagnostic
	require.True(t, errors.As(err, &diag), "want a diagnostic, got %v", err)
	return diag
}

func TestParseStructRolesAndTemplate(t *testing.T) {
	f := parse(t, `package sample

import "github.com/cruffinoni/errgen/errtrace"

//errgen:error
//errgen:display "read {Path:q} failed: {0}"
type ReadError struct {
	Path   string
	Source error          `+"`errgen:\"from\"`"+`
	Stack  *errtrace.Trace `+"`errgen:\"backtrace\"`"+`
}
`)

	require.Len(t, f.Inputs, 1)
	st, ok := f.Inputs[0].(*model.Struct)
	require.True(t, ok)
	require.Equal(t, "ReadError", st.Ident)

	source := st.Fields.SourceField()
	require.NotNil(t, source)
	require.Equal(t, "Source", source.Member.Name)
	require.True(t, source.IsFrom)

	bt := st.Fields.BacktraceField()
	require.NotNil(t, bt)
	require.True(t, bt.Type.Optional)
	require.Equal(t, "errtrace.Trace", bt.Type.Unoptional())

	require.NotNil(t, st.Attrs.Display)
	require.Equal(t, "read %q failed: %v", st.Attrs.Display.Format)
	require.Len(t, st.Attrs.Display.Args, 2)
	require.Equal(t, "Path", st.Attrs.Display.Args[0].Member.Name)
	// {0} resolves by declaration index.
	require.Equal(t, "Path", st.Attrs.Display.Args[1].Member.Name)

	require.Equal(t, "github.com/cruffinoni/errgen/errtrace", f.Imports["errtrace"])
}

func TestParseImplicitSourceMember(t *testing.T) {
	f := parse(t, `package sample

//errgen:error
//errgen:display "wrapped"
type WrapError struct {
	Source error
}
`)

	st := f.Inputs[0].(*model.Struct)
	source := st.Fields.SourceField()
	require.NotNil(t, source)
	require.Equal(t, "Source", source.Member.Name)
	require.False(t, source.IsFrom)
}

func TestParseUnionAttachesVariantsInAnyOrder(t *testing.T) {
	f := parse(t, `package sample

//errgen:variant of=StoreError
//errgen:display "key {Key} missing"
type KeyMissing struct {
	Key string
}

//errgen:union
type StoreError interface {
	storeError()
}
`)

	require.Len(t, f.Inputs, 1)
	en, ok := f.Inputs[0].(*model.Enum)
	require.True(t, ok)
	require.Equal(t, "StoreError", en.Ident)
	require.Equal(t, "storeError", en.Marker)
	require.Len(t, en.Variants, 1)
	require.Equal(t, "KeyMissing", en.Variants[0].Ident)
}

func TestParsePlainFileHasNoInputs(t *testing.T) {
	f := parse(t, "package sample\n\ntype Plain struct{ X int }\n")
	require.Empty(t, f.Inputs)
}

func TestParseConflictingSource(t *testing.T) {
	diag := parseErrCode(t, `package sample

//errgen:error
//errgen:display "x"
type E struct {
	A error `+"`errgen:\"source\"`"+`
	B error `+"`errgen:\"source\"`"+`
}
`)
	require.Equal(t, diagnostics.CodeConflictingSource, diag.Code)
}

func TestParseConflictingBacktrace(t *testing.T) {
	diag := parseErrCode(t, `package sample

import "github.com/cruffinoni/errgen/errtrace"

//errgen:error
//errgen:display "x"
type E struct {
	A errtrace.Trace `+"`errgen:\"backtrace\"`"+`
	B errtrace.Trace `+"`errgen:\"backtrace\"`"+`
}
`)
	require.Equal(t, diagnostics.CodeConflictingTrace, diag.Code)
}

func TestParseBacktraceTypeShape(t *testing.T) {
	diag := parseErrCode(t, `package sample

//errgen:error
//errgen:display "x"
type E struct {
	Stack []uintptr `+"`errgen:\"backtrace\"`"+`
}
`)
	require.Equal(t, diagnostics.CodeBacktraceType, diag.Code)
}

func TestParseBacktraceAliasedImport(t *testing.T) {
	f := parse(t, `package sample

import et "github.com/cruffinoni/errgen/errtrace"

//errgen:error
//errgen:display "x"
type E struct {
	Stack et.Trace `+"`errgen:\"backtrace\"`"+`
}
`)
	st := f.Inputs[0].(*model.Struct)
	bt := st.Fields.BacktraceField()
	require.NotNil(t, bt)
	require.Equal(t, "et.Trace", bt.Type.Unoptional())
}

func TestParseBacktraceForeignTraceType(t *testing.T) {
	diag := parseErrCode(t, `package sample

import errtrace "example.com/other/errtrace"

//errgen:error
//errgen:display "x"
type E struct {
	Stack errtrace.Trace `+"`errgen:\"backtrace\"`"+`
}
`)
	require.Equal(t, diagnostics.CodeBacktraceType, diag.Code)
}

func TestParseSourceMayCarryBacktrace(t *testing.T) {
	f := parse(t, `package sample

//errgen:error
//errgen:display "x"
type E struct {
	Source error `+"`errgen:\"source,backtrace\"`"+`
}
`)
	st := f.Inputs[0].(*model.Struct)
	bt := st.Fields.BacktraceField()
	require.NotNil(t, bt)
	require.True(t, bt.IsSource)
	require.Nil(t, st.Fields.DistinctBacktraceField())
}

func TestParseIllegalTransparent(t *testing.T) {
	diag := parseErrCode(t, `package sample

//errgen:error
//errgen:transparent
type E struct {
	A error
	B int
}
`)
	require.Equal(t, diagnostics.CodeIllegalTransparent, diag.Code)

	diag = parseErrCode(t, `package sample

//errgen:error
//errgen:transparent
//errgen:display "x"
type E struct {
	A error
}
`)
	require.Equal(t, diagnostics.CodeIllegalTransparent, diag.Code)
}

func TestParseVariantNeedsDisplay(t *testing.T) {
	diag := parseErrCode(t, `package sample

//errgen:union
type U interface {
	u()
}

//errgen:variant of=U
type V struct {
	A int
	B int
}
`)
	require.Equal(t, diagnostics.CodeMissingDisplay, diag.Code)
}

func TestParseUnknownUnion(t *testing.T) {
	diag := parseErrCode(t, `package sample

//errgen:variant of=Nowhere
//errgen:display "x"
type V struct {
	A int
}
`)
	require.Equal(t, diagnostics.CodeUnknownUnion, diag.Code)
}

func TestParseInvalidUnionMarker(t *testing.T) {
	diag := parseErrCode(t, `package sample

//errgen:union
type U interface {
	Exported()
}
`)
	require.Equal(t, diagnostics.CodeInvalidUnion, diag.Code)

	diag = parseErrCode(t, `package sample

//errgen:union
type U interface {
	u()
	v()
}
`)
	require.Equal(t, diagnostics.CodeInvalidUnion, diag.Code)
}

func TestParseUnionRequiresInterface(t *testing.T) {
	diag := parseErrCode(t, `package sample

//errgen:union
type U struct{}
`)
	require.Equal(t, diagnostics.CodeInvalidShape, diag.Code)
}

func TestParseVariantParamMismatch(t *testing.T) {
	diag := parseErrCode(t, `package sample

//errgen:union
type U[T error] interface {
	u()
}

//errgen:variant of=U
//errgen:display "x"
type V struct {
	A int
}
`)
	require.Equal(t, diagnostics.CodeInvalidUnion, diag.Code)
}

func TestParseDanglingDirective(t *testing.T) {
	diag := parseErrCode(t, `package sample

//errgen:display "x"
type E struct {
	A int
}
`)
	require.Equal(t, diagnostics.CodeInvalidShape, diag.Code)
}

func TestParseDanglingTemplateRef(t *testing.T) {
	diag := parseErrCode(t, `package sample

//errgen:error
//errgen:display "oops {Missing}"
type E struct {
	A int
}
`)
	require.Equal(t, diagnostics.CodeTemplateDangling, diag.Code)
}

func TestParseGenericFields(t *testing.T) {
	f := parse(t, `package sample

//errgen:error
//errgen:display "stage failed: {Source}"
type StageError[E error] struct {
	Source E
	Prev   *E
	Tags   []E
	Count  int
}
`)
	st := f.Inputs[0].(*model.Struct)
	require.Len(t, st.TypeParams, 1)
	require.Equal(t, "error", st.TypeParams[0].Constraint)

	require.Equal(t, "E", st.Fields[0].GenericParam)
	require.True(t, st.Fields[0].ContainsGeneric)
	require.Equal(t, "E", st.Fields[1].GenericParam)
	require.True(t, st.Fields[1].Type.Optional)
	require.Empty(t, st.Fields[2].GenericParam)
	require.True(t, st.Fields[2].ContainsGeneric)
	require.False(t, st.Fields[3].ContainsGeneric)
}
