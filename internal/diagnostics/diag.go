package diagnostics

import "fmt"

// Validation error codes shared by the directive scanner and the parser.
// Every code aborts generation for the whole file it appears in.
const (
	CodeDirectiveSyntax    = "ERRGEN_DIRECTIVE_SYNTAX"
	CodeTagSyntax          = "ERRGEN_TAG_SYNTAX"
	CodeTemplateSyntax     = "ERRGEN_TEMPLATE_SYNTAX"
	CodeTemplateDangling   = "ERRGEN_TEMPLATE_DANGLING_REF"
	CodeConflictingSource  = "ERRGEN_CONFLICTING_SOURCE"
	CodeConflictingTrace   = "ERRGEN_CONFLICTING_BACKTRACE"
	CodeIllegalTransparent = "ERRGEN_ILLEGAL_TRANSPARENT"
	CodeMissingDisplay     = "ERRGEN_MISSING_DISPLAY"
	CodeBacktraceType      = "ERRGEN_BACKTRACE_TYPE"
	CodeUnknownUnion       = "ERRGEN_UNKNOWN_UNION"
	CodeInvalidUnion       = "ERRGEN_INVALID_UNION"
	CodeInvalidShape       = "ERRGEN_INVALID_SHAPE"
	CodeUnconstrained      = "ERRGEN_UNCONSTRAINED_PARAM"
)

// Diagnostic is a structured validation or generation error tied to the
// source construct that caused it.
type Diagnostic struct {
	Code    string
	Message string
	File    string
	Line    int
	Column  int
	Snippet string
}

// Error implements the error interface with location and error code formatting.
func (d Diagnostic) Error() string {
	location := d.File
	if d.Line > 0 {
		location = fmt.Sprintf("%s:%d:%d", d.File, d.Line, d.Column)
	}
	if d.Code == "" {
		return fmt.Sprintf("%s: %s", location, d.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", location, d.Code, d.Message)
}

// New constructs a Diagnostic value.
func New(code string, file string, line int, column int, msg string, snippet string) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: msg,
		File:    file,
		Line:    line,
		Column:  column,
		Snippet: snippet,
	}
}
