package emit

import (
	"fmt"
	"sort"
	"strings"
)

// errtracePath is the runtime support package generated code leans on for
// trace capture and forwarding.
const errtracePath = "github.com/cruffinoni/errgen/errtrace"

// fragment accumulates generated declarations and the imports they need.
type fragment struct {
	buf     strings.Builder
	imports map[string]struct{}
}

func newFragment() *fragment {
	return &fragment{imports: map[string]struct{}{}}
}

func (f *fragment) printf(format string, args ...any) {
	fmt.Fprintf(&f.buf, format, args...)
}

func (f *fragment) addImport(path string) {
	f.imports[path] = struct{}{}
}

// addQualified records imports for the package qualifiers a type
// expression mentions, resolved against the input file's import table.
// Qualifiers without a known import are same-package identifiers.
func (f *fragment) addQualified(qualifiers []string, table map[string]string) {
	for _, q := range qualifiers {
		if path, ok := table[q]; ok {
			f.addImport(path)
		}
	}
}

// importBlock renders the deterministic import declaration: standard
// library first, then module-path imports, each group sorted.
func (f *fragment) importBlock() string {
	if len(f.imports) == 0 {
		return ""
	}
	var std, rest []string
	for path := range f.imports {
		head := path
		if i := strings.IndexByte(path, '/'); i >= 0 {
			head = path[:i]
		}
		if strings.ContainsRune(head, '.') {
			rest = append(rest, path)
		} else {
			std = append(std, path)
		}
	}
	sort.Strings(std)
	sort.Strings(rest)

	var b strings.Builder
	b.WriteString("import (\n")
	for _, path := range std {
		fmt.Fprintf(&b, "\t%q\n", path)
	}
	if len(std) > 0 && len(rest) > 0 {
		b.WriteString("\n")
	}
	for _, path := range rest {
		fmt.Fprintf(&b, "\t%q\n", path)
	}
	b.WriteString(")\n\n")
	return b.String()
}
