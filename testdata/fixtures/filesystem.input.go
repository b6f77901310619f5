package sample

import "github.com/cruffinoni/errgen/errtrace"

//errgen:error
//errgen:display "read {Path:q} failed at offset {Offset:d}"
type ReadError struct {
	Path   string
	Offset int64
	Source error          `errgen:"from"`
	Stack  errtrace.Trace `errgen:"backtrace"`
}

//errgen:error
//errgen:transparent
type PassThrough struct {
	Inner error
}
