// Package params merges configuration parameters from precedence layers.
//
// Precedence, lowest first: shared_group_params (expanded through
// group_params_dict), shared_params (merged left to right), group_params
// (expanded through group_params_dict) and params (verbatim). Every merge is
// a shallow key-wise overwrite.
package params

import (
	"context"
	"fmt"
	"sort"

	"github.com/openfroyo/confmix/pkg/diag"
	"github.com/openfroyo/confmix/pkg/telemetry"
)

// Layer names used in error trails.
const (
	LayerParams            = "params"
	LayerGroupParams       = "group_params"
	LayerSharedParams      = "shared_params"
	LayerSharedGroupParams = "shared_group_params"
)

// SummaryTitle heads the summary record added by Resolve.
const SummaryTitle = "parameter mixing failed"

// Mix merges the layers and returns the best-effort result together with
// every missing-key error. Callers must discard the map when errors are
// returned. The inputs are not modified.
func Mix(l Layers) (map[string]interface{}, diag.List) {
	var errs diag.List
	result := make(map[string]interface{})

	if l.SharedGroupParams != "" {
		groups, ok := l.SharedGroupParamsDict[l.SharedGroupParams]
		if !ok {
			errs = append(errs, missingKey([]string{LayerSharedGroupParams},
				"shared_group_params_dict", l.SharedGroupParams, dictKeys(l.SharedGroupParamsDict)))
		} else {
			expanded, groupErrs := expandGroups(groups, l.GroupParamsDict)
			merge(result, expanded)
			errs = append(errs, groupErrs.Within(LayerSharedGroupParams, l.SharedGroupParams)...)
		}
	}

	for i, key := range l.SharedParams {
		shared, ok := l.SharedParamsDict[key]
		if !ok {
			errs = append(errs, missingKey([]string{LayerSharedParams, fmt.Sprintf("[%d]", i)},
				"shared_params_dict", key, dictKeys(l.SharedParamsDict)))
			continue
		}
		merge(result, shared)
	}

	expanded, groupErrs := expandGroups(l.GroupParams, l.GroupParamsDict)
	merge(result, expanded)
	errs = append(errs, groupErrs.Within(LayerGroupParams)...)

	merge(result, l.Params)

	return result, errs
}

// Resolve mixes the layers and drops the map on failure. A non-empty error
// list is preceded by one summary record carrying the error count.
func Resolve(l Layers) Result {
	result, errs := Mix(l)
	if len(errs) > 0 {
		return Result{Errors: diag.Summarize(SummaryTitle, errs)}
	}
	return Result{Result: result}
}

// expandGroups resolves each entry of groups through dict in sorted entry
// order and merges the resolved dictionaries.
func expandGroups(groups map[string]string, dict map[string]map[string]interface{}) (map[string]interface{}, diag.List) {
	var errs diag.List
	out := make(map[string]interface{})

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		key := groups[name]
		values, ok := dict[key]
		if !ok {
			errs = append(errs, missingKey([]string{name}, "group_params_dict", key, dictKeys(dict)))
			continue
		}
		merge(out, values)
	}
	return out, errs
}

func missingKey(trail []string, dict, key string, known []string) *diag.Error {
	return diag.Newf(diag.ClassParam, trail, "unknown %s key '%s'%s", dict, key, diag.DidYouMean(key, known))
}

func merge(dst, src map[string]interface{}) {
	for k, v := range src {
		dst[k] = v
	}
}

func dictKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// Mixer runs Mix with logging, metrics and tracing.
type Mixer struct {
	logger  *telemetry.Logger
	metrics *telemetry.Metrics
}

// Option configures a Mixer.
type Option func(*Mixer)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *telemetry.Logger) Option {
	return func(m *Mixer) {
		m.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(metrics *telemetry.Metrics) Option {
	return func(m *Mixer) {
		m.metrics = metrics
	}
}

// NewMixer creates a Mixer.
func NewMixer(opts ...Option) *Mixer {
	m := &Mixer{logger: telemetry.NopLogger()}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.NewComponentLogger("params")
	return m
}

// Mix merges the layers like the package-level Mix.
func (m *Mixer) Mix(ctx context.Context, l Layers) (map[string]interface{}, diag.List) {
	op := telemetry.StartOperation(ctx, "params.mix")
	result, errs := Mix(l)
	op.End(len(errs), errs.Err())

	m.metrics.RecordMix(errs, op.Timer.Duration())
	z := m.logger.Zerolog()
	z.Debug().
		Int("keys", len(result)).
		Int("errors", len(errs)).
		Msg("parameters mixed")

	return result, errs
}

// Resolve mixes the layers like the package-level Resolve.
func (m *Mixer) Resolve(ctx context.Context, l Layers) Result {
	result, errs := m.Mix(ctx, l)
	if len(errs) > 0 {
		return Result{Errors: diag.Summarize(SummaryTitle, errs)}
	}
	return Result{Result: result}
}
