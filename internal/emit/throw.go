package emit

import (
	"strconv"
	"strings"

	"github.com/cruffinoni/errgen/internal/model"
)

// emitThrow generates the throw-builder pair: an eager function taking
// the extra context fields as arguments, and a deferred one taking a
// zero-argument supplier invoked only at failure time. Both apply the
// identical causal-field substitution and pass the success value through
// unchanged.
func (e *emitter) emitThrow(sh shape) {
	source := sh.fields.SourceField()
	if source == nil {
		return
	}
	e.importFieldType(source)

	extras := sh.fields.ExtraFields()
	names := extraNames(extras)
	for i := range extras {
		e.importFieldType(&extras[i])
	}

	taken := map[string]struct{}{}
	for _, p := range sh.params {
		taken[p.Name] = struct{}{}
	}
	ret := returnParam(taken)
	clause := e.paramClause(sh, ret+" any")
	throwName := "Throw" + sh.baseName

	inits := make([]string, 0, len(extras)+1)
	inits = append(inits, source.Member.Name+": err")
	for i, x := range extras {
		inits = append(inits, x.Member.Name+": "+names[i])
	}
	composite := "&" + sh.typeRef + "{" + strings.Join(inits, ", ") + "}"

	// A bare type-parameter source cannot be compared to nil directly:
	// its type set contains non-nilable types. Boxing it first keeps the
	// check compilable for every instantiation.
	failed := "err != nil"
	if source.GenericParam != "" && !source.Type.Optional {
		failed = "error(err) != nil"
	}

	var decl []string
	var kinds []string
	for i, x := range extras {
		decl = append(decl, names[i]+" "+x.Type.Text)
		kinds = append(kinds, x.Type.Text)
	}
	eagerArgs := ""
	if len(decl) > 0 {
		eagerArgs = ", " + strings.Join(decl, ", ")
	}

	e.frag.printf("// %s wraps a failing (val, err) pair into a %s, setting the extra\n", throwName, sh.ident)
	e.frag.printf("// context fields eagerly. A nil err passes val through unchanged.\n")
	e.frag.printf("func %s%s(val %s, err %s%s) (%s, error) {\n", throwName, clause, ret, source.Type.Text, eagerArgs, ret)
	e.frag.printf("\tif %s {\n", failed)
	e.frag.printf("\t\treturn val, %s\n", composite)
	e.frag.printf("\t}\n")
	e.frag.printf("\treturn val, nil\n}\n\n")

	if len(extras) == 0 {
		return
	}

	results := strings.Join(kinds, ", ")
	if len(kinds) > 1 {
		results = "(" + results + ")"
	}
	e.frag.printf("// %sWith is %s with the extra context fields produced by a\n", throwName, throwName)
	e.frag.printf("// supplier invoked only at failure time.\n")
	e.frag.printf("func %sWith%s(val %s, err %s, supply func() %s) (%s, error) {\n",
		throwName, clause, ret, source.Type.Text, results, ret)
	e.frag.printf("\tif %s {\n", failed)
	e.frag.printf("\t\t%s := supply()\n", strings.Join(names, ", "))
	e.frag.printf("\t\treturn val, %s\n", composite)
	e.frag.printf("\t}\n")
	e.frag.printf("\treturn val, nil\n}\n\n")
}

// extraNames derives collision-free parameter names for the extra
// fields.
func extraNames(extras []model.Field) []string {
	names := make([]string, len(extras))
	used := map[string]struct{}{}
	for i, x := range extras {
		name := argName(x.Member.Name)
		if _, dup := used[name]; dup {
			name += strconv.Itoa(x.Member.Index)
		}
		used[name] = struct{}{}
		names[i] = name
	}
	return names
}
