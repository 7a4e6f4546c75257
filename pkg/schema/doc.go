// Package schema implements the dynamic schema validator.
//
// A schema Document is a registry of named Definitions plus the name of a
// root definition. A Definition either carries a type tag or refers to another
// definition by name through the schema field, never both.
//
// # Types
//
//	unknown      any value
//	primitive    any scalar (string, bool, integer, float)
//	str          string
//	bool         boolean
//	int          integer; booleans and floats are rejected
//	float        integer or float
//	dict         map with declared keys (props); undeclared keys are errors unless lax
//	map          map with arbitrary keys; values follow the elem_* rules
//	list         list; elements follow the elem_* rules
//	simple_dict  dict, or a scalar validated by the alternative_* rules
//	simple_map   map, or a single value validated by the elem_* rules
//	simple_list  list, or a single value validated by the elem_* rules
//
// # Constraints
//
// choices, regex, min and max apply to primitive-like types. regex is a search
// anywhere in the string; anchor it explicitly to match whole values. min and
// max bound the rune length of strings and the value of numbers. required
// rejects absent values, where a nil value counts as absent, and non_empty
// additionally rejects empty strings, lists and maps.
//
// # Errors
//
// Validate never stops at the first problem. Every violation becomes a
// diag.Error whose trail is the schema name in effect, the path of the
// offending value and a message:
//
//	[value] account: tier: required value is missing
//	[value] account: limits[1]: expected int, got str
//	[schema] account: (root): regex is only allowed for type 'str'
//
// Map keys are visited in sorted order so reports are deterministic.
//
// # Meta-schema
//
// Schema documents are themselves validated by a bootstrap meta-schema
// embedded in the package (MetaDocument). Compile runs that check, decodes
// the document and verifies its root:
//
//	doc, errs := schema.Compile(raw)
//	if len(errs) > 0 {
//	    return errs
//	}
//	errs = schema.Validate(doc, "", value)
package schema
