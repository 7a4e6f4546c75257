// Package engine resolves a stack of nodes by running the parameter mixer,
// the schema validator and the dependency window resolver over it.
package engine

import (
	"time"

	"github.com/openfroyo/confmix/pkg/depwindow"
	"github.com/openfroyo/confmix/pkg/params"
)

// NodeConfig is one node of a stack document.
type NodeConfig struct {
	// Name identifies the node and must be unique within the stack.
	Name string `json:"name" yaml:"name" mapstructure:"name" validate:"required"`

	// Schema names the definition the mixed parameters are validated
	// against. Empty selects the document root.
	Schema string `json:"schema,omitempty" yaml:"schema,omitempty" mapstructure:"schema"`

	Params            map[string]interface{} `json:"params,omitempty" yaml:"params,omitempty" mapstructure:"params"`
	GroupParams       map[string]string      `json:"group_params,omitempty" yaml:"group_params,omitempty" mapstructure:"group_params"`
	SharedParams      []string               `json:"shared_params,omitempty" yaml:"shared_params,omitempty" mapstructure:"shared_params"`
	SharedGroupParams string                 `json:"shared_group_params,omitempty" yaml:"shared_group_params,omitempty" mapstructure:"shared_group_params"`

	// ActiveHostsAmount is the number of replica instances.
	ActiveHostsAmount int `json:"active_hosts_amount" yaml:"active_hosts_amount" mapstructure:"active_hosts_amount" validate:"gte=0"`

	// Dependencies are the named backend dependencies of every instance.
	Dependencies map[string]depwindow.Spec `json:"dependencies,omitempty" yaml:"dependencies,omitempty" mapstructure:"dependencies"`
}

// Layers returns the node's parameter layers combined with dictionaries.
func (n NodeConfig) Layers(dicts params.Dictionaries) params.Layers {
	return dicts.Apply(params.Layers{
		Params:            n.Params,
		GroupParams:       n.GroupParams,
		SharedParams:      n.SharedParams,
		SharedGroupParams: n.SharedGroupParams,
	})
}

// Window returns the node as seen by the dependency window resolver.
func (n NodeConfig) Window() depwindow.Node {
	return depwindow.Node{
		ActiveHostsAmount: n.ActiveHostsAmount,
		Dependencies:      n.Dependencies,
	}
}

// Stack is a set of nodes sharing parameter dictionaries and a host
// topology.
type Stack struct {
	Nodes []NodeConfig `json:"nodes" yaml:"nodes" mapstructure:"nodes" validate:"dive"`

	params.Dictionaries `yaml:",inline" mapstructure:",squash"`

	Hosts depwindow.HostsData `json:"hosts,omitempty" yaml:"hosts,omitempty" mapstructure:"hosts"`
}

// Status is the outcome of a resolution.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// NodeResolution is the outcome for one node.
type NodeResolution struct {
	Name string `json:"name" yaml:"name"`

	// Params is the mixed parameter map, nil when mixing failed.
	Params map[string]interface{} `json:"params,omitempty" yaml:"params,omitempty"`

	// Valid reports whether the mixed parameters passed validation.
	Valid bool `json:"valid" yaml:"valid"`

	// Instances holds the dependency assignments of each replica.
	Instances []depwindow.Instance `json:"instances" yaml:"instances"`
}

// Resolution is the outcome of resolving one stack.
type Resolution struct {
	// RunID uniquely identifies the resolution.
	RunID string `json:"run_id" yaml:"run_id"`

	Status    Status           `json:"status" yaml:"status"`
	StartedAt time.Time        `json:"started_at" yaml:"started_at"`
	Duration  time.Duration    `json:"duration" yaml:"duration"`
	Nodes     []NodeResolution `json:"nodes" yaml:"nodes"`
}

// Node returns the resolution of the named node.
func (r *Resolution) Node(name string) (NodeResolution, bool) {
	for _, n := range r.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return NodeResolution{}, false
}
