// Package gencheck re-validates generated companion source before it is
// written to disk.
package gencheck

import (
	"bytes"
	"fmt"
	"go/format"
	"go/parser"
	"go/token"
)

// Verify confirms generated source parses as Go and is already in
// canonical gofmt form.
func Verify(name string, src []byte) error {
	fset := token.NewFileSet()
	if _, err := parser.ParseFile(fset, name, src, parser.ParseComments); err != nil {
		return fmt.Errorf("parse generated code for %q: %w", name, err)
	}

	formatted, err := format.Source(src)
	if err != nil {
		return fmt.Errorf("format generated code for %q: %w", name, err)
	}
	if !bytes.Equal(formatted, src) {
		return fmt.Errorf("generated code for %q is not gofmt-canonical", name)
	}
	return nil
}
