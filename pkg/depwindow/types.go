package depwindow

// DependencyType selects how candidate hosts are interpreted.
type DependencyType string

const (
	// TypeNode candidates are host names projected through HostsData.
	TypeNode DependencyType = "node"

	// TypeIP candidates are addresses used verbatim.
	TypeIP DependencyType = "ip"

	// TypeOther candidates are opaque strings, never decorated.
	TypeOther DependencyType = "other"
)

// DefaultNodeIPType is the address field used when a spec names none.
const DefaultNodeIPType = "private"

// RequireAll is the Required value demanding a full window.
const RequireAll = -1

// Spec describes one named dependency of a node.
type Spec struct {
	// Type is node, ip or other.
	Type DependencyType `json:"type" yaml:"type" mapstructure:"type" validate:"required,oneof=node ip other"`

	// Hosts are the ordered candidates.
	Hosts []string `json:"hosts" yaml:"hosts" mapstructure:"hosts" validate:"dive,required"`

	// Limit is the window size; 0 selects every candidate.
	Limit int `json:"limit,omitempty" yaml:"limit,omitempty" mapstructure:"limit" validate:"gte=0"`

	// Required is 0 (no check), N > 0 (at least N hosts) or -1 (full window).
	Required int `json:"required,omitempty" yaml:"required,omitempty" mapstructure:"required" validate:"gte=-1"`

	// Protocol and Port decorate node and ip hosts.
	Protocol string `json:"protocol,omitempty" yaml:"protocol,omitempty" mapstructure:"protocol" validate:"omitempty,excludesall=:/"`
	Port     int    `json:"port,omitempty" yaml:"port,omitempty" mapstructure:"port" validate:"gte=0,lte=65535"`

	// NodeIPType is the HostsData address field used for node candidates.
	NodeIPType string `json:"node_ip_type,omitempty" yaml:"node_ip_type,omitempty" mapstructure:"node_ip_type"`
}

// ipType returns the configured address field or the default.
func (s Spec) ipType() string {
	if s.NodeIPType == "" {
		return DefaultNodeIPType
	}
	return s.NodeIPType
}

// Node is a horizontally replicated unit with named dependencies.
type Node struct {
	ActiveHostsAmount int             `json:"active_hosts_amount" yaml:"active_hosts_amount" mapstructure:"active_hosts_amount" validate:"gte=0"`
	Dependencies      map[string]Spec `json:"dependencies,omitempty" yaml:"dependencies,omitempty" mapstructure:"dependencies"`
}

// HostInfo is the topology entry of one host.
type HostInfo struct {
	// Addresses maps an IP type (private, public, ...) to an address.
	Addresses map[string]string `json:"addresses,omitempty" yaml:"addresses,omitempty" mapstructure:"addresses"`

	// Local marks hosts that are expected to lack some address fields.
	Local bool `json:"local,omitempty" yaml:"local,omitempty" mapstructure:"local"`

	// Fields holds IP types given flat beside local, as in
	// {private: 10.0.0.1, local: true}. Addresses wins on conflicts.
	Fields map[string]interface{} `json:"-" yaml:",inline" mapstructure:",remain"`
}

// address returns the address for ipType from Addresses or Fields.
func (i HostInfo) address(ipType string) (string, bool) {
	if addr, ok := i.Addresses[ipType]; ok {
		return addr, true
	}
	if v, ok := i.Fields[ipType]; ok && v != nil {
		addr, isStr := v.(string)
		return addr, isStr
	}
	return "", false
}

// HostsData is the externally supplied host topology.
type HostsData map[string]HostInfo

// Assignment is the outcome for one instance and one dependency.
type Assignment struct {
	// Host is the primary host of the instance.
	Host string `json:"host" yaml:"host"`

	// HostList is the full window.
	HostList []string `json:"host_list" yaml:"host_list"`
}

// Instance maps dependency names to assignments for one replica.
type Instance map[string]Assignment

// Result maps node names to their instances; index 0 is instance 1.
type Result map[string][]Instance
