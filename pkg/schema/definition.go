package schema

import (
	"fmt"
	"regexp"
	"sync"
)

// patterns memoizes compiled regular expressions by pattern string.
var patterns sync.Map

// compilePattern returns the compiled form of pattern, caching it.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	if re, ok := patterns.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	actual, _ := patterns.LoadOrStore(pattern, re)
	return actual.(*regexp.Regexp), nil
}

func (d *Definition) hasElemRules() bool {
	return d.ElemType != "" || d.ElemSchema != "" || d.ElemRequired || d.ElemNonEmpty ||
		len(d.ElemChoices) > 0 || d.ElemRegex != "" || d.ElemMin != nil || d.ElemMax != nil
}

func (d *Definition) hasAlternativeRules() bool {
	return d.AlternativeType != "" || d.AlternativeSchema != "" || len(d.AlternativeChoices) > 0 ||
		d.AlternativeRegex != "" || d.AlternativeMin != nil || d.AlternativeMax != nil
}

// elemDefinition synthesizes the definition applied to each element of a
// list or map-like value. Without elem_type or elem_schema elements are
// unconstrained.
func (d *Definition) elemDefinition() *Definition {
	elem := &Definition{
		Type:     d.ElemType,
		Schema:   d.ElemSchema,
		Required: d.ElemRequired,
		NonEmpty: d.ElemNonEmpty,
		Choices:  d.ElemChoices,
		Regex:    d.ElemRegex,
		Min:      d.ElemMin,
		Max:      d.ElemMax,
	}
	if elem.Type == "" && elem.Schema == "" {
		elem.Type = TypeUnknown
	}
	return elem
}

// alternativeDefinition synthesizes the definition applied to the non-map
// form of a simple_dict value.
func (d *Definition) alternativeDefinition() *Definition {
	return &Definition{
		Type:    d.AlternativeType,
		Schema:  d.AlternativeSchema,
		Choices: d.AlternativeChoices,
		Regex:   d.AlternativeRegex,
		Min:     d.AlternativeMin,
		Max:     d.AlternativeMax,
	}
}

// mainDefinition synthesizes the definition applied to the map form of a
// simple_dict value.
func (d *Definition) mainDefinition() *Definition {
	if d.MainSchema != "" {
		return &Definition{Schema: d.MainSchema}
	}
	return &Definition{Type: TypeDict, Props: d.Props, Lax: d.Lax}
}

// check returns the schema-definition problems of d. Synthesized element and
// alternative definitions are checked here too, so the walker can trust them.
func (d *Definition) check() []string {
	var problems []string

	switch {
	case d.Type != "" && d.Schema != "":
		return []string{"only one of 'type' and 'schema' may be set"}
	case d.Type == "" && d.Schema == "":
		return []string{"one of 'type' or 'schema' must be set"}
	case d.Type != "" && !d.Type.Valid():
		return []string{fmt.Sprintf("unknown type '%s'", d.Type)}
	}

	t := d.Type

	if len(d.Props) > 0 && !t.DictLike() {
		problems = append(problems, "'props' is only allowed on dict and simple_dict")
	}

	if d.MainSchema != "" {
		if t != TypeSimpleDict {
			problems = append(problems, "'main_schema' is only allowed on simple_dict")
		} else if len(d.Props) > 0 {
			problems = append(problems, "'main_schema' and 'props' are mutually exclusive")
		}
	}

	if d.hasElemRules() {
		if !t.Collection() {
			problems = append(problems, "'elem_*' fields are only allowed on list, map, simple_map and simple_list")
		} else if d.ElemType != "" && d.ElemSchema != "" {
			problems = append(problems, "only one of 'elem_type' and 'elem_schema' may be set")
		} else {
			for _, p := range d.elemDefinition().check() {
				problems = append(problems, "element: "+p)
			}
		}
	}

	if t == TypeSimpleDict {
		switch {
		case d.AlternativeType == "" && d.AlternativeSchema == "":
			problems = append(problems, "simple_dict requires one of 'alternative_type' or 'alternative_schema'")
		case d.AlternativeType != "" && d.AlternativeSchema != "":
			problems = append(problems, "only one of 'alternative_type' and 'alternative_schema' may be set")
		case d.AlternativeType != "" && d.AlternativeType.MapLike():
			problems = append(problems, fmt.Sprintf("alternative_type '%s' is not allowed", d.AlternativeType))
		default:
			for _, p := range d.alternativeDefinition().check() {
				problems = append(problems, "alternative: "+p)
			}
		}
	} else if d.hasAlternativeRules() {
		problems = append(problems, "'alternative_*' fields are only allowed on simple_dict")
	}

	if len(d.Choices) > 0 && !t.PrimitiveLike() {
		problems = append(problems, "'choices' is only allowed on primitive types")
	}

	if d.Regex != "" {
		if t != TypeStr {
			problems = append(problems, "'regex' is only allowed on str")
		} else if _, err := compilePattern(d.Regex); err != nil {
			problems = append(problems, fmt.Sprintf("invalid regex '%s': %v", d.Regex, err))
		}
	}

	if d.Min != nil || d.Max != nil {
		if !t.Bounded() {
			problems = append(problems, "'min' and 'max' are only allowed on str, int and float")
		} else if d.Min != nil && d.Max != nil && *d.Min > *d.Max {
			problems = append(problems, "'min' is greater than 'max'")
		}
	}

	return problems
}
