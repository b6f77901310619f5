// Package errtrace captures call-site stack traces for generated error
// types and forwards trace requests along causal chains.
package errtrace

import (
	"fmt"
	"runtime"
	"strings"
)

const maxDepth = 64

// Trace holds the program counters captured at one call site.
type Trace struct {
	pcs []uintptr
}

// Frame describes one resolved stack frame.
type Frame struct {
	Function string
	File     string
	Line     int
}

// Capture records the current call stack, excluding Capture itself.
func Capture() *Trace {
	var pcs [maxDepth]uintptr
	n := runtime.Callers(2, pcs[:])
	return &Trace{pcs: append([]uintptr(nil), pcs[:n]...)}
}

// Frames resolves captured program counters into frames.
func (t *Trace) Frames() []Frame {
	if t == nil || len(t.pcs) == 0 {
		return nil
	}
	frames := runtime.CallersFrames(t.pcs)
	out := make([]Frame, 0, len(t.pcs))
	for {
		fr, more := frames.Next()
		out = append(out, Frame{
			Function: fr.Function,
			File:     fr.File,
			Line:     fr.Line,
		})
		if !more {
			break
		}
	}
	return out
}

// String renders one frame per line in function\n\tfile:line form.
func (t *Trace) String() string {
	var b strings.Builder
	for _, fr := range t.Frames() {
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", fr.Function, fr.File, fr.Line)
	}
	return b.String()
}

// tracer is the structural interface generated StackTrace methods satisfy.
type tracer interface {
	StackTrace() *Trace
}

// From forwards a trace request to v when v can supply its own trace.
// It returns nil when v carries no trace, so callers can fall back to
// directly stored traces.
func From(v any) *Trace {
	if v == nil {
		return nil
	}
	if t, ok := v.(tracer); ok {
		return t.StackTrace()
	}
	return nil
}
