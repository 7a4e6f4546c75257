package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/openfroyo/confmix/pkg/depwindow"
	"github.com/openfroyo/confmix/pkg/diag"
	"github.com/openfroyo/confmix/pkg/params"
	"github.com/openfroyo/confmix/pkg/schema"
	"github.com/openfroyo/confmix/pkg/telemetry"
)

// Resolver resolves stacks against an optional schema document.
type Resolver struct {
	logger   *telemetry.Logger
	metrics  *telemetry.Metrics
	validate *validator.Validate

	mixer     *params.Mixer
	validator *schema.Validator
	windows   *depwindow.Resolver
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger shared by all engines.
func WithLogger(logger *telemetry.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithMetrics sets the metrics collector shared by all engines.
func WithMetrics(metrics *telemetry.Metrics) Option {
	return func(r *Resolver) {
		r.metrics = metrics
	}
}

// NewResolver creates a Resolver. A nil doc disables parameter validation.
func NewResolver(doc *schema.Document, opts ...Option) *Resolver {
	r := &Resolver{
		logger:   telemetry.NopLogger(),
		validate: diag.NewValidator(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.mixer = params.NewMixer(params.WithLogger(r.logger), params.WithMetrics(r.metrics))
	r.windows = depwindow.NewResolver(depwindow.WithLogger(r.logger), depwindow.WithMetrics(r.metrics))
	if doc != nil {
		r.validator = schema.NewValidator(doc, schema.WithLogger(r.logger), schema.WithMetrics(r.metrics))
	}
	r.logger = r.logger.NewComponentLogger("engine")
	return r
}

// usedNames records the node names claimed within one Resolve call.
type usedNames map[string]struct{}

// claim records name and reports whether it was still free.
func (u usedNames) claim(name string) bool {
	if _, taken := u[name]; taken {
		return false
	}
	u[name] = struct{}{}
	return true
}

// Resolve mixes and validates the parameters of every node, then computes
// the dependency windows of all nodes. Errors of one node never stop the
// others. A node whose name was already used is reported and skipped.
func (r *Resolver) Resolve(ctx context.Context, stack *Stack) (*Resolution, diag.List) {
	res := &Resolution{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
	}
	logger := r.logger.WithRunID(res.RunID)

	op := telemetry.StartOperation(ctx, "stack.resolve",
		telemetry.AttrRunID.String(res.RunID),
		telemetry.AttrNodeCount.Int(len(stack.Nodes)),
		telemetry.AttrHostCount.Int(len(stack.Hosts)),
	)
	ctx = op.Ctx

	z := logger.Zerolog()
	z.Info().Int("nodes", len(stack.Nodes)).Msg("resolving stack")

	var errs diag.List
	used := make(usedNames, len(stack.Nodes))
	windowNodes := make(map[string]depwindow.Node, len(stack.Nodes))
	index := make(map[string]int, len(stack.Nodes))

	for i, node := range stack.Nodes {
		if err := r.validate.Struct(node); err != nil {
			label := node.Name
			if label == "" {
				label = fmt.Sprintf("nodes[%d]", i)
			}
			errs = append(errs, diag.FromValidation(diag.ClassValue, err).Within(label)...)
			r.metrics.RecordNode(telemetry.ResultFailed)
			continue
		}
		if !used.claim(node.Name) {
			errs = append(errs, diag.New(diag.ClassDuplicate, node.Name, "duplicate node name"))
			r.metrics.RecordNode(telemetry.ResultFailed)
			continue
		}

		nr, nodeErrs := r.resolveParams(ctx, node, stack.Dictionaries)
		errs = append(errs, nodeErrs...)
		r.metrics.RecordNode(telemetry.ResultOf(nodeErrs))

		index[node.Name] = len(res.Nodes)
		res.Nodes = append(res.Nodes, nr)
		windowNodes[node.Name] = node.Window()
	}

	windows, windowErrs := r.windows.Resolve(ctx, windowNodes, stack.Hosts)
	errs = append(errs, windowErrs...)
	for name, instances := range windows {
		res.Nodes[index[name]].Instances = instances
	}

	op.End(len(errs), errs.Err())
	res.Duration = op.Timer.Duration()
	res.Status = StatusSucceeded
	if len(errs) > 0 {
		res.Status = StatusFailed
	}

	z.Info().
		Str("status", string(res.Status)).
		Int("errors", len(errs)).
		Dur("duration", res.Duration).
		Msg("stack resolved")

	return res, errs
}

// resolveParams mixes the node's layers and validates the result. Errors
// carry the node name as their first trail element.
func (r *Resolver) resolveParams(ctx context.Context, node NodeConfig, dicts params.Dictionaries) (NodeResolution, diag.List) {
	nr := NodeResolution{Name: node.Name}

	mixed, errs := r.mixer.Mix(ctx, node.Layers(dicts))
	if len(errs) > 0 {
		return nr, errs.Within(node.Name)
	}
	nr.Params = mixed

	if r.validator == nil {
		nr.Valid = true
		return nr, nil
	}
	if errs := r.validator.Validate(ctx, node.Schema, mixed); len(errs) > 0 {
		return nr, errs.Within(node.Name)
	}
	nr.Valid = true
	return nr, nil
}
