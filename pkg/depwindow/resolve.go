package depwindow

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/openfroyo/confmix/pkg/diag"
	"github.com/openfroyo/confmix/pkg/telemetry"
)

// Window is the slice of candidates selected for one instance.
type Window struct {
	// Start and End bound the window within the candidates.
	Start, End int

	// Center is the index of the primary host, or -1 without candidates.
	Center int
}

// Size returns the realized window size.
func (w Window) Size() int {
	return w.End - w.Start
}

// ComputeWindow selects the window of instance i (1-based) over hosts
// candidates. limit 0 selects every candidate. The window is shifted back at
// the end of the list so that it holds limit hosts whenever hosts >= limit;
// a required = -1 dependency can therefore only fail when hosts < limit.
// For limit 1 the window starts one before the center, so it holds the
// predecessor of the primary host.
func ComputeWindow(i, hosts, limit int) Window {
	if hosts <= 0 {
		return Window{Center: -1}
	}
	center := (i - 1) % hosts
	if center < 0 {
		center += hosts
	}
	if limit <= 0 {
		return Window{Start: 0, End: hosts, Center: center}
	}
	half := limit % 2
	start := max(center-half, 0)
	end := min(start+limit, hosts)
	start = max(end-limit, 0)
	return Window{Start: start, End: end, Center: center}
}

// Resolver computes dependency windows for replicated nodes.
type Resolver struct {
	logger   *telemetry.Logger
	metrics  *telemetry.Metrics
	validate *validator.Validate
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *telemetry.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(metrics *telemetry.Metrics) Option {
	return func(r *Resolver) {
		r.metrics = metrics
	}
}

// NewResolver creates a Resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		logger:   telemetry.NopLogger(),
		validate: diag.NewValidator(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.NewComponentLogger("depwindow")
	return r
}

// Resolve computes the assignments of every node with a default Resolver.
func Resolve(nodes map[string]Node, hosts HostsData) (Result, diag.List) {
	return NewResolver().Resolve(context.Background(), nodes, hosts)
}

// Resolve computes, for every node, instance and dependency, the assigned
// hosts. Nodes are visited in sorted order. Errors of one dependency do not
// stop its siblings, but the first failing instance of a node halts the
// remaining instances of that node.
func (r *Resolver) Resolve(ctx context.Context, nodes map[string]Node, hosts HostsData) (Result, diag.List) {
	op := telemetry.StartOperation(ctx, "depwindow.resolve",
		telemetry.AttrNodeCount.Int(len(nodes)),
		telemetry.AttrHostCount.Int(len(hosts)),
	)

	names := make([]string, 0, len(nodes))
	for name := range nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make(Result, len(nodes))
	var errs diag.List
	for _, name := range names {
		instances, nodeErrs := r.ResolveNode(ctx, name, nodes[name], hosts)
		result[name] = instances
		errs = append(errs, nodeErrs...)
	}

	op.End(len(errs), errs.Err())
	r.metrics.RecordWindowResolution(errs, op.Timer.Duration())
	return result, errs
}

// ResolveNode computes the instances of one node. Errors carry the node name
// as their first trail element. Instances after the first failing one are
// not evaluated and the failing instance is not returned.
func (r *Resolver) ResolveNode(ctx context.Context, name string, node Node, hosts HostsData) ([]Instance, diag.List) {
	logger := r.logger.WithNode(name)

	if err := r.validate.Struct(node); err != nil {
		return nil, diag.FromValidation(diag.ClassDependency, err).Within(name)
	}

	deps := make([]string, 0, len(node.Dependencies))
	for dep := range node.Dependencies {
		deps = append(deps, dep)
	}
	sort.Strings(deps)

	instances := make([]Instance, 0, node.ActiveHostsAmount)
	for i := 1; i <= node.ActiveHostsAmount; i++ {
		inst := make(Instance, len(deps))
		var instErrs diag.List
		for _, dep := range deps {
			a, depErrs := r.resolveDependency(logger, i, node.Dependencies[dep], hosts)
			if len(depErrs) > 0 {
				instErrs = append(instErrs, depErrs.Within(dep)...)
				continue
			}
			inst[dep] = a
		}
		if len(instErrs) > 0 {
			z := logger.Zerolog()
			z.Debug().Int("instance", i).Int("errors", len(instErrs)).Msg("instance failed, skipping remaining instances")
			return instances, instErrs.Within(name, fmt.Sprintf("instance %d", i))
		}
		instances = append(instances, inst)
	}
	return instances, nil
}

// resolveDependency computes the assignment of instance i for one spec.
// Trails of returned errors start below the dependency name.
func (r *Resolver) resolveDependency(logger *telemetry.Logger, i int, spec Spec, hosts HostsData) (Assignment, diag.List) {
	if err := r.validate.Struct(spec); err != nil {
		return Assignment{}, diag.FromValidation(diag.ClassDependency, err)
	}

	candidates := spec.Hosts
	if spec.Type == TypeNode {
		p := hosts.project(spec.Hosts, spec.ipType())
		var errs diag.List
		for _, m := range p.missing {
			switch {
			case m.local:
				// local hosts may lack public fields
			case spec.Required == RequireAll && !m.known:
				errs = append(errs, diag.Newf(diag.ClassDependency, nil, "unknown host '%s'", m.name))
			case spec.Required == RequireAll:
				errs = append(errs, diag.Newf(diag.ClassDependency, nil,
					"host '%s' has no '%s' address", m.name, spec.ipType()))
			default:
				z := logger.Zerolog()
				z.Debug().Str("host", m.name).Str("ip_type", spec.ipType()).Bool("known", m.known).
					Msg("skipping host without address")
			}
		}
		if len(errs) > 0 {
			return Assignment{}, errs
		}
		candidates = p.addresses
	}

	w := ComputeWindow(i, len(candidates), spec.Limit)
	realized := w.Size()

	switch {
	case spec.Required == RequireAll && realized < spec.Limit:
		return Assignment{}, diag.List{diag.Newf(diag.ClassDependency, nil,
			"insufficient hosts: window not fully satisfied, %d of %d", realized, spec.Limit)}
	case spec.Required > 0 && realized < spec.Required:
		return Assignment{}, diag.List{diag.Newf(diag.ClassDependency, nil,
			"insufficient hosts: %d of %d required", realized, spec.Required)}
	}

	a := Assignment{HostList: append(make([]string, 0, realized), candidates[w.Start:w.End]...)}
	if w.Center >= 0 {
		a.Host = candidates[w.Center]
	}

	if spec.Type == TypeNode || spec.Type == TypeIP {
		if a.Host != "" {
			a.Host = decorate(a.Host, spec.Protocol, spec.Port)
		}
		for j, h := range a.HostList {
			a.HostList[j] = decorate(h, spec.Protocol, spec.Port)
		}
	}
	return a, nil
}
