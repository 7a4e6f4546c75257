package params

import (
	"github.com/openfroyo/confmix/pkg/diag"
)

// Layers holds the three payload layers and the four dictionaries combined
// by Mix.
type Layers struct {
	// Params is merged verbatim and has the highest precedence.
	Params map[string]interface{} `json:"params,omitempty" yaml:"params,omitempty" mapstructure:"params"`

	// GroupParams maps entry names to keys of GroupParamsDict.
	GroupParams map[string]string `json:"group_params,omitempty" yaml:"group_params,omitempty" mapstructure:"group_params"`

	// SharedParams lists keys of SharedParamsDict, merged left to right.
	SharedParams []string `json:"shared_params,omitempty" yaml:"shared_params,omitempty" mapstructure:"shared_params"`

	// SharedGroupParams is a key of SharedGroupParamsDict whose entries are
	// expanded like GroupParams.
	SharedGroupParams string `json:"shared_group_params,omitempty" yaml:"shared_group_params,omitempty" mapstructure:"shared_group_params"`

	GroupParamsDict       map[string]map[string]interface{} `json:"group_params_dict,omitempty" yaml:"group_params_dict,omitempty" mapstructure:"group_params_dict"`
	SharedParamsDict      map[string]map[string]interface{} `json:"shared_params_dict,omitempty" yaml:"shared_params_dict,omitempty" mapstructure:"shared_params_dict"`
	SharedGroupParamsDict map[string]map[string]string      `json:"shared_group_params_dict,omitempty" yaml:"shared_group_params_dict,omitempty" mapstructure:"shared_group_params_dict"`
}

// Dictionaries are the lookup tables shared by every node of a stack.
type Dictionaries struct {
	GroupParamsDict       map[string]map[string]interface{} `json:"group_params_dict,omitempty" yaml:"group_params_dict,omitempty" mapstructure:"group_params_dict"`
	SharedParamsDict      map[string]map[string]interface{} `json:"shared_params_dict,omitempty" yaml:"shared_params_dict,omitempty" mapstructure:"shared_params_dict"`
	SharedGroupParamsDict map[string]map[string]string      `json:"shared_group_params_dict,omitempty" yaml:"shared_group_params_dict,omitempty" mapstructure:"shared_group_params_dict"`
}

// Apply returns l with its dictionaries taken from d.
func (d Dictionaries) Apply(l Layers) Layers {
	l.GroupParamsDict = d.GroupParamsDict
	l.SharedParamsDict = d.SharedParamsDict
	l.SharedGroupParamsDict = d.SharedGroupParamsDict
	return l
}

// Result is the outcome of Resolve. Result is nil whenever Errors is not
// empty.
type Result struct {
	Result map[string]interface{} `json:"result,omitempty" yaml:"result,omitempty"`
	Errors diag.List              `json:"errors" yaml:"errors"`
}

// OK reports whether the mix produced no errors.
func (r Result) OK() bool {
	return len(r.Errors) == 0
}
