package depwindow

import (
	"net"
	"sort"
	"strconv"
	"strings"
)

// Address returns the address of host for ipType. known is false when the
// host is not in the topology.
func (h HostsData) Address(host, ipType string) (addr string, known, ok bool) {
	info, known := h[host]
	if !known {
		return "", false, false
	}
	addr, ok = info.address(ipType)
	return addr, true, ok && addr != ""
}

// IsLocal reports whether host is marked local.
func (h HostsData) IsLocal(host string) bool {
	return h[host].Local
}

// Names returns the host names in sorted order.
func (h HostsData) Names() []string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// projection is the outcome of mapping node candidates to addresses.
type projection struct {
	addresses []string

	// missing lists candidates without the address field.
	missing []missingHost
}

type missingHost struct {
	name  string
	known bool
	local bool
}

// project maps candidate host names to their ipType addresses. Local hosts
// without the field are skipped, other hosts without it are reported.
func (h HostsData) project(candidates []string, ipType string) projection {
	var p projection
	for _, name := range candidates {
		addr, known, ok := h.Address(name, ipType)
		if ok {
			p.addresses = append(p.addresses, addr)
			continue
		}
		local := known && h.IsLocal(name)
		p.missing = append(p.missing, missingHost{name: name, known: known, local: local})
	}
	return p
}

// decorate renders host as protocol://host:port, host:port, protocol://host
// or host. IPv6 literals are bracketed whenever a port or protocol is added.
func decorate(host, protocol string, port int) string {
	addr := host
	switch {
	case port > 0:
		addr = net.JoinHostPort(host, strconv.Itoa(port))
	case protocol != "" && strings.Contains(host, ":"):
		addr = "[" + host + "]"
	}
	if protocol != "" {
		addr = protocol + "://" + addr
	}
	return addr
}
