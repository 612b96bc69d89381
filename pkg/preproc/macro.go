package preproc

import (
	"github.com/armakit/armakit/pkg/diag"
	"github.com/armakit/armakit/pkg/source"
)

// Built-in pseudo-macro names, seeded before user definitions.
const (
	builtinFile = "__FILE__"
	builtinLine = "__LINE__"
)

// Definition is one macro definition. Function-like versus object-like is
// fixed at definition time.
type Definition struct {
	// Name is the macro name.
	Name string

	// Params are the parameter names; nil for object-like macros.
	Params []string

	// Function marks a function-like macro. A function-like macro with no
	// parameters is distinct from an object-like one.
	Function bool

	// Body is the replacement token list, leading and trailing spacing
	// trimmed.
	Body []source.Token

	// Loc is the definition site.
	Loc source.Location

	builtin bool
}

// Table maps macro names to definitions for one preprocessing run. It is
// owned by a single run and never shared across concurrent runs. Names are
// case-sensitive.
type Table struct {
	defs  map[string]*Definition
	diags *diag.Collector
}

// NewTable creates a macro table with the built-in pseudo-macros seeded.
func NewTable(diags *diag.Collector) *Table {
	t := &Table{
		defs:  make(map[string]*Definition),
		diags: diags,
	}
	t.defs[builtinFile] = &Definition{Name: builtinFile, builtin: true}
	t.defs[builtinLine] = &Definition{Name: builtinLine, builtin: true}
	return t
}

// Define installs a definition. Redefining a macro with an identical token
// sequence is silent; a differing body emits a MacroRedefined warning
// referencing both locations and the new definition wins. Shadowing a
// built-in pseudo-macro is allowed with a diagnostic.
func (t *Table) Define(def *Definition) {
	existing, ok := t.defs[def.Name]
	if ok {
		switch {
		case existing.builtin:
			t.diags.Warnf(diag.CodeBuiltinShadowed, def.Loc, nil,
				"definition of %s shadows the built-in pseudo-macro", def.Name)
		case !sameDefinition(existing, def):
			t.diags.Warnf(diag.CodeMacroRedefined, def.Loc, nil,
				"macro %s redefined with a different body", def.Name).
				Relate("previous definition here", existing.Loc)
		default:
			return
		}
	}
	t.defs[def.Name] = def
}

// Undefine removes a definition. Undefining an unknown name is silent,
// matching textual-inclusion semantics.
func (t *Table) Undefine(name string) {
	delete(t.defs, name)
}

// Lookup returns the definition for a name.
func (t *Table) Lookup(name string) (*Definition, bool) {
	def, ok := t.defs[name]
	return def, ok
}

// IsDefined reports whether a name is defined, including built-ins.
func (t *Table) IsDefined(name string) bool {
	_, ok := t.defs[name]
	return ok
}

// sameDefinition compares two definitions by shape and significant body
// token sequence.
func sameDefinition(a, b *Definition) bool {
	if a.Function != b.Function || len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if a.Params[i] != b.Params[i] {
			return false
		}
	}

	bodyA := significant(a.Body)
	bodyB := significant(b.Body)
	if len(bodyA) != len(bodyB) {
		return false
	}
	for i := range bodyA {
		if bodyA[i].Kind != bodyB[i].Kind || bodyA[i].Text() != bodyB[i].Text() {
			return false
		}
	}
	return true
}

// significant filters spacing tokens out of a token list.
func significant(tokens []source.Token) []source.Token {
	out := make([]source.Token, 0, len(tokens))
	for _, tok := range tokens {
		if !tok.IsSpacing() && tok.Kind != source.TokEOF {
			out = append(out, tok)
		}
	}
	return out
}
