// Package telemetry provides observability instrumentation for confmix.
//
// The package integrates structured logging (zerolog), tracing
// (OpenTelemetry) and metrics (Prometheus) behind one Telemetry value that is
// threaded through a context.
//
// # Usage
//
// Initialize telemetry at startup:
//
//	cfg := telemetry.DefaultConfig()
//	tel, err := telemetry.NewTelemetry(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(context.Background())
//
//	ctx = tel.WithContext(ctx)
//
// # Structured Logging
//
//	logger := tel.Logger.NewComponentLogger("depwindow")
//	zl := logger.WithNode("web").Zerolog()
//	zl.Debug().Int("instances", 3).Msg("resolving windows")
//
// Log levels: trace, debug, info, warn, error, fatal.
//
// # Tracing
//
// StartOperation opens a span, derives an operation logger and starts a
// timer. End records the number of error records on the span:
//
//	op := telemetry.StartOperation(ctx, "params.mix")
//	result, errs := params.Mix(layers)
//	op.End(len(errs), errs.Err())
//
// Supported exporters are stdout (pretty JSON on stderr) and none.
//
// # Metrics
//
// Each Metrics value owns a private registry, so several instances can live
// in one process and tests can gather from them directly. A nil *Metrics is
// valid and records nothing.
//
//	confmix_validations_total{result}
//	confmix_mixes_total{result}
//	confmix_window_resolutions_total{result}
//	confmix_nodes_resolved_total{result}
//	confmix_errors_total{component,class}
//	confmix_operation_duration_seconds{operation}
//	confmix_documents_loaded_total{format,cache}
//	confmix_document_cache_entries
package telemetry
