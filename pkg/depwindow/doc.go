// Package depwindow assigns shared backend dependencies to the replica
// instances of horizontally scaled nodes.
//
// For instance i of a node and a dependency with H candidates and limit L,
// the window is centered at (i-1) mod H:
//
//	center = (i-1) mod H
//	half   = L mod 2
//	start  = max(center-half, 0)
//	end    = min(start+L, H)
//	start  = max(end-L, 0)
//
// L = 0 selects every candidate. The primary host of the instance is always
// candidates[center].
//
// Candidates of type node are host names projected through HostsData using
// node_ip_type (default private). Hosts without that address are skipped;
// under required = -1 they are errors unless marked local.
//
// Required = -1 demands a window of exactly L hosts. It is checked against
// the window, not against the full candidate list, so with L = 2 and ten
// candidates it is satisfied by two. Since every window holds min(L, H)
// hosts, it fails only when H < L, and then already at instance 1.
//
// Errors of sibling dependencies of one instance accumulate, while the first
// failing instance stops the evaluation of the remaining instances of that
// node. Other nodes are unaffected.
package depwindow
