package schema

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/openfroyo/confmix/pkg/diag"
)

// rootPath is how the root value is named in error trails.
const rootPath = "(root)"

// path is the location of a value inside the validated tree.
type path []string

func (p path) String() string {
	if len(p) == 0 {
		return rootPath
	}
	var b strings.Builder
	for i, seg := range p {
		if i > 0 && !strings.HasPrefix(seg, "[") {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

func (p path) key(k string) path {
	return append(p[:len(p):len(p)], k)
}

func (p path) index(i int) path {
	return append(p[:len(p):len(p)], fmt.Sprintf("[%d]", i))
}

// Validate checks value against the definition named root in doc and returns
// every violation found. An empty root selects doc.Root. Unexpected faults
// are recovered into a single internal record appended to the violations
// collected so far.
func Validate(doc *Document, root string, value interface{}) (errs diag.List) {
	if root == "" && doc != nil {
		root = doc.Root
	}

	w := &walker{doc: doc}
	defer func() {
		if r := recover(); r != nil {
			errs = append(w.errs, diag.Internal([]string{root}, r, debug.Stack()))
		}
	}()

	if root == "" {
		return diag.List{diag.New(diag.ClassSchema, "", rootPath, "no root schema given")}
	}
	def, ok := doc.Lookup(root)
	if !ok {
		return diag.List{diag.Newf(diag.ClassSchema, []string{root, rootPath}, "unknown schema '%s'", root)}
	}

	w.walk(root, def, nil, value, value != nil, false)
	return w.errs
}

// walker accumulates violations for one Validate call.
type walker struct {
	doc  *Document
	errs diag.List

	// refs holds the schema references followed for the current value.
	refs []string
}

// descend validates a child value with a fresh reference chain.
func (w *walker) descend(fn func()) {
	saved := w.refs
	w.refs = nil
	fn()
	w.refs = saved
}

func (w *walker) following(name string) bool {
	for _, r := range w.refs {
		if r == name {
			return true
		}
	}
	return false
}

func (w *walker) schemaError(schema string, p path, format string, args ...interface{}) {
	w.errs = append(w.errs, diag.Newf(diag.ClassSchema, []string{schema, p.String()}, format, args...))
}

func (w *walker) valueError(schema string, p path, format string, args ...interface{}) {
	w.errs = append(w.errs, diag.Newf(diag.ClassValue, []string{schema, p.String()}, format, args...))
}

// walk validates one value against one definition. Recursion into
// definitions is driven by the value tree, so recursive schemas terminate;
// a reference chain that revisits a name without consuming a value is
// reported as a cycle. trusted skips the
// definition check for synthesized definitions already checked by their
// parent.
func (w *walker) walk(schema string, def *Definition, p path, value interface{}, present, trusted bool) {
	if !trusted {
		if problems := def.check(); len(problems) > 0 {
			for _, problem := range problems {
				w.schemaError(schema, p, "%s", problem)
			}
			return
		}
	}

	if !present {
		if def.Required {
			w.valueError(schema, p, "required value is missing")
		}
		return
	}

	if def.NonEmpty && isEmpty(value) {
		w.valueError(schema, p, "value must not be empty")
	}

	if def.Schema != "" {
		ref, ok := w.doc.Lookup(def.Schema)
		if !ok {
			w.schemaError(schema, p, "unknown schema '%s'", def.Schema)
			return
		}
		if w.following(def.Schema) {
			w.schemaError(schema, p, "schema reference cycle through '%s'", def.Schema)
			return
		}
		w.refs = append(w.refs, def.Schema)
		w.walk(def.Schema, ref, p, value, true, false)
		w.refs = w.refs[:len(w.refs)-1]
		return
	}

	typeOK := true
	switch def.Type {
	case TypeUnknown:
	case TypePrimitive:
		typeOK = isScalar(value)
	case TypeStr:
		_, typeOK = value.(string)
	case TypeBool:
		_, typeOK = value.(bool)
	case TypeInt:
		_, typeOK = asInt(value)
	case TypeFloat:
		_, typeOK = asFloat(value)
	case TypeList:
		var l []interface{}
		if l, typeOK = asList(value); typeOK {
			w.elements(schema, def, p, l)
		}
	case TypeMap:
		var m map[string]interface{}
		if m, typeOK = asMap(value); typeOK {
			w.entries(schema, def, p, m)
		}
	case TypeDict:
		var m map[string]interface{}
		if m, typeOK = asMap(value); typeOK {
			w.props(schema, def, p, m)
		}
	case TypeSimpleDict:
		if _, isMap := asMap(value); isMap {
			w.walk(schema, def.mainDefinition(), p, value, true, true)
		} else {
			w.walk(schema, def.alternativeDefinition(), p, value, true, true)
		}
	case TypeSimpleMap:
		if m, isMap := asMap(value); isMap {
			w.entries(schema, def, p, m)
		} else {
			w.walk(schema, def.elemDefinition(), p, value, true, true)
		}
	case TypeSimpleList:
		if l, isList := asList(value); isList {
			w.elements(schema, def, p, l)
		} else {
			w.walk(schema, def.elemDefinition(), p, value, true, true)
		}
	}

	if !typeOK {
		w.valueError(schema, p, "expected %s, got %s", def.Type, kindOf(value))
		return
	}

	if def.Type.PrimitiveLike() {
		w.constraints(schema, def, p, value)
	}
}

func (w *walker) elements(schema string, def *Definition, p path, l []interface{}) {
	elem := def.elemDefinition()
	for i, v := range l {
		w.descend(func() { w.walk(schema, elem, p.index(i), v, v != nil, true) })
	}
}

func (w *walker) entries(schema string, def *Definition, p path, m map[string]interface{}) {
	elem := def.elemDefinition()
	for _, k := range sortedKeys(m) {
		v := m[k]
		w.descend(func() { w.walk(schema, elem, p.key(k), v, v != nil, true) })
	}
}

func (w *walker) props(schema string, def *Definition, p path, m map[string]interface{}) {
	for _, name := range sortedProps(def.Props) {
		prop := def.Props[name]
		if prop == nil {
			w.schemaError(schema, p.key(name), "empty definition")
			continue
		}
		v, present := m[name]
		w.descend(func() { w.walk(schema, prop, p.key(name), v, present && v != nil, false) })
	}

	if def.Lax {
		return
	}
	declared := sortedProps(def.Props)
	for _, k := range sortedKeys(m) {
		if _, ok := def.Props[k]; !ok {
			w.valueError(schema, p.key(k), "unknown key '%s'%s", k, diag.DidYouMean(k, declared))
		}
	}
}

func (w *walker) constraints(schema string, def *Definition, p path, value interface{}) {
	if len(def.Choices) > 0 {
		found := false
		for _, c := range def.Choices {
			if sameScalar(value, c) {
				found = true
				break
			}
		}
		if !found {
			opts := make([]string, len(def.Choices))
			for i, c := range def.Choices {
				opts[i] = fmt.Sprint(c)
			}
			w.valueError(schema, p, "value '%v' is not one of [%s]", value, strings.Join(opts, ", "))
		}
	}

	if def.Regex != "" {
		if s, ok := value.(string); ok {
			re, err := compilePattern(def.Regex)
			if err != nil {
				w.schemaError(schema, p, "invalid regex '%s': %v", def.Regex, err)
			} else if !re.MatchString(s) {
				w.valueError(schema, p, "value '%s' does not match regex '%s'", s, def.Regex)
			}
		}
	}

	if def.Min == nil && def.Max == nil {
		return
	}
	n, ok := measure(value)
	if !ok {
		return
	}
	what := "value"
	if _, isStr := value.(string); isStr {
		what = "length"
	}
	if def.Min != nil && n < *def.Min {
		w.valueError(schema, p, "%s %s is less than minimum %s", what, formatBound(n), formatBound(*def.Min))
	}
	if def.Max != nil && n > *def.Max {
		w.valueError(schema, p, "%s %s is greater than maximum %s", what, formatBound(n), formatBound(*def.Max))
	}
}
