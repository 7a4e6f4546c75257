package schema

// Type is the type tag of a schema definition.
type Type string

const (
	TypeUnknown    Type = "unknown"
	TypePrimitive  Type = "primitive"
	TypeStr        Type = "str"
	TypeBool       Type = "bool"
	TypeInt        Type = "int"
	TypeFloat      Type = "float"
	TypeDict       Type = "dict"
	TypeMap        Type = "map"
	TypeList       Type = "list"
	TypeSimpleDict Type = "simple_dict"
	TypeSimpleMap  Type = "simple_map"
	TypeSimpleList Type = "simple_list"
)

// Types lists every valid type tag in declaration order.
var Types = []Type{
	TypeUnknown, TypePrimitive, TypeStr, TypeBool, TypeInt, TypeFloat,
	TypeDict, TypeMap, TypeList, TypeSimpleDict, TypeSimpleMap, TypeSimpleList,
}

// Valid reports whether t is a known type tag.
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// DictLike reports whether values of this type are validated through props.
func (t Type) DictLike() bool {
	return t == TypeDict || t == TypeSimpleDict
}

// MapLike reports whether values of this type may be maps.
func (t Type) MapLike() bool {
	return t == TypeDict || t == TypeMap || t == TypeSimpleDict || t == TypeSimpleMap
}

// Collection reports whether the type carries element rules.
func (t Type) Collection() bool {
	return t == TypeList || t == TypeMap || t == TypeSimpleMap || t == TypeSimpleList
}

// PrimitiveLike reports whether the type describes a scalar.
func (t Type) PrimitiveLike() bool {
	switch t {
	case TypePrimitive, TypeStr, TypeBool, TypeInt, TypeFloat:
		return true
	}
	return false
}

// Bounded reports whether min/max constraints apply to the type.
func (t Type) Bounded() bool {
	return t == TypeStr || t == TypeInt || t == TypeFloat
}

// Definition describes the constraints for one value shape.
// Exactly one of Type or Schema must be set.
type Definition struct {
	// Type is the inline type tag.
	Type Type `json:"type,omitempty" yaml:"type,omitempty" mapstructure:"type"`

	// Schema names another definition in the document.
	Schema string `json:"schema,omitempty" yaml:"schema,omitempty" mapstructure:"schema"`

	// Description is free-form documentation and is never interpreted.
	Description string `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`

	// Props declares the keys of a dict-like value.
	Props map[string]*Definition `json:"props,omitempty" yaml:"props,omitempty" mapstructure:"props"`

	// MainSchema names the definition used for the map form of a simple_dict.
	MainSchema string `json:"main_schema,omitempty" yaml:"main_schema,omitempty" mapstructure:"main_schema"`

	ElemType     Type          `json:"elem_type,omitempty" yaml:"elem_type,omitempty" mapstructure:"elem_type"`
	ElemSchema   string        `json:"elem_schema,omitempty" yaml:"elem_schema,omitempty" mapstructure:"elem_schema"`
	ElemRequired bool          `json:"elem_required,omitempty" yaml:"elem_required,omitempty" mapstructure:"elem_required"`
	ElemNonEmpty bool          `json:"elem_non_empty,omitempty" yaml:"elem_non_empty,omitempty" mapstructure:"elem_non_empty"`
	ElemChoices  []interface{} `json:"elem_choices,omitempty" yaml:"elem_choices,omitempty" mapstructure:"elem_choices"`
	ElemRegex    string        `json:"elem_regex,omitempty" yaml:"elem_regex,omitempty" mapstructure:"elem_regex"`
	ElemMin      *float64      `json:"elem_min,omitempty" yaml:"elem_min,omitempty" mapstructure:"elem_min"`
	ElemMax      *float64      `json:"elem_max,omitempty" yaml:"elem_max,omitempty" mapstructure:"elem_max"`

	AlternativeType    Type          `json:"alternative_type,omitempty" yaml:"alternative_type,omitempty" mapstructure:"alternative_type"`
	AlternativeSchema  string        `json:"alternative_schema,omitempty" yaml:"alternative_schema,omitempty" mapstructure:"alternative_schema"`
	AlternativeChoices []interface{} `json:"alternative_choices,omitempty" yaml:"alternative_choices,omitempty" mapstructure:"alternative_choices"`
	AlternativeRegex   string        `json:"alternative_regex,omitempty" yaml:"alternative_regex,omitempty" mapstructure:"alternative_regex"`
	AlternativeMin     *float64      `json:"alternative_min,omitempty" yaml:"alternative_min,omitempty" mapstructure:"alternative_min"`
	AlternativeMax     *float64      `json:"alternative_max,omitempty" yaml:"alternative_max,omitempty" mapstructure:"alternative_max"`

	Choices  []interface{} `json:"choices,omitempty" yaml:"choices,omitempty" mapstructure:"choices"`
	Regex    string        `json:"regex,omitempty" yaml:"regex,omitempty" mapstructure:"regex"`
	Min      *float64      `json:"min,omitempty" yaml:"min,omitempty" mapstructure:"min"`
	Max      *float64      `json:"max,omitempty" yaml:"max,omitempty" mapstructure:"max"`
	Required bool          `json:"required,omitempty" yaml:"required,omitempty" mapstructure:"required"`
	NonEmpty bool          `json:"non_empty,omitempty" yaml:"non_empty,omitempty" mapstructure:"non_empty"`
	Lax      bool          `json:"lax,omitempty" yaml:"lax,omitempty" mapstructure:"lax"`
}

// Document is a schema registry with its designated root.
type Document struct {
	// Root is the name of the definition used when no root is given.
	Root string `json:"root" yaml:"root" mapstructure:"root"`

	// Schemas maps names to definitions.
	Schemas map[string]*Definition `json:"schemas" yaml:"schemas" mapstructure:"schemas"`
}

// Lookup returns the named definition.
func (d *Document) Lookup(name string) (*Definition, bool) {
	if d == nil {
		return nil, false
	}
	def, ok := d.Schemas[name]
	return def, ok && def != nil
}
