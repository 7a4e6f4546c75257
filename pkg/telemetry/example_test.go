package telemetry_test

import (
	"context"
	"fmt"
	"time"

	"github.com/openfroyo/confmix/pkg/diag"
	"github.com/openfroyo/confmix/pkg/telemetry"
)

// Example_basicSetup demonstrates basic telemetry setup.
func Example_basicSetup() {
	cfg := telemetry.DefaultConfig()
	cfg.ServiceVersion = "1.0.0"

	tel, err := telemetry.NewTelemetry(cfg)
	if err != nil {
		panic(err)
	}
	defer tel.Shutdown(context.Background())

	ctx := tel.WithContext(context.Background())

	zl := telemetry.FromContext(ctx).Zerolog()
	zl.Info().Msg("Application started")

	// Output varies, no output specified
}

// Example_operation demonstrates instrumenting one operation.
func Example_operation() {
	tel := telemetry.Nop()
	ctx := tel.WithContext(context.Background())

	op := telemetry.StartOperation(ctx, "params.mix")
	errs := diag.List{diag.New(diag.ClassParam, "group_params", "env", "missing key 'prod'")}
	op.End(len(errs), errs.Err())

	fmt.Println(op.Timer.Duration() >= 0)
	// Output: true
}

// Example_metricsCollection demonstrates metrics collection.
func Example_metricsCollection() {
	cfg := telemetry.DefaultConfig()

	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	tel.Metrics.RecordValidation(nil, 2*time.Millisecond)
	tel.Metrics.RecordMix(diag.List{diag.New(diag.ClassParam, "x")}, time.Millisecond)
	tel.Metrics.RecordWindowResolution(nil, time.Millisecond)
	tel.Metrics.RecordDocumentLoad("yaml", false)

	fmt.Println("Metrics recorded successfully")
	// Output: Metrics recorded successfully
}
