package schema

import (
	"context"

	"github.com/openfroyo/confmix/pkg/diag"
	"github.com/openfroyo/confmix/pkg/telemetry"
)

// Validator validates values against one compiled document and reports to
// telemetry.
type Validator struct {
	doc     *Document
	logger  *telemetry.Logger
	metrics *telemetry.Metrics
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *telemetry.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(metrics *telemetry.Metrics) Option {
	return func(v *Validator) {
		v.metrics = metrics
	}
}

// NewValidator creates a Validator for doc.
func NewValidator(doc *Document, opts ...Option) *Validator {
	v := &Validator{
		doc:    doc,
		logger: telemetry.NopLogger(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.NewComponentLogger("schema")
	return v
}

// Document returns the document the validator checks against.
func (v *Validator) Document() *Document {
	return v.doc
}

// Validate checks value against the definition named root. An empty root
// selects the document root.
func (v *Validator) Validate(ctx context.Context, root string, value interface{}) diag.List {
	if root == "" && v.doc != nil {
		root = v.doc.Root
	}

	op := telemetry.StartOperation(ctx, "schema.validate", telemetry.AttrSchemaRoot.String(root))
	errs := Validate(v.doc, root, value)
	op.End(len(errs), errs.Err())

	v.metrics.RecordValidation(errs, op.Timer.Duration())
	z := v.logger.Zerolog()
	z.Debug().
		Str("root", root).
		Int("errors", len(errs)).
		Dur("duration", op.Timer.Duration()).
		Msg("value validated")

	return errs
}
