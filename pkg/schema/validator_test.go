package schema

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/openfroyo/confmix/pkg/telemetry"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestValidatorRecordsTelemetry(t *testing.T) {
	var buf bytes.Buffer
	logger := telemetry.NewLoggerWithWriter(telemetry.LoggingConfig{Level: "debug", Format: "json"}, &buf)
	metrics, err := telemetry.NewMetrics(telemetry.DefaultConfig().Metrics)
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}

	v := NewValidator(single("n", &Definition{Type: TypeInt}), WithLogger(logger), WithMetrics(metrics))

	if errs := v.Validate(context.Background(), "", 1); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
	if errs := v.Validate(context.Background(), "", "x"); len(errs) != 1 {
		t.Errorf("expected 1 error, got %v", errs)
	}

	if n, err := testutil.GatherAndCount(metrics.Registry(), "confmix_validations_total"); err != nil || n != 2 {
		t.Errorf("expected ok and failed series, got %d (%v)", n, err)
	}
	if !strings.Contains(buf.String(), `"component":"schema"`) {
		t.Errorf("expected component field in logs, got %s", buf.String())
	}
	if !strings.Contains(buf.String(), "value validated") {
		t.Errorf("expected debug log, got %s", buf.String())
	}
}

func TestValidatorWithoutOptions(t *testing.T) {
	v := NewValidator(single("s", &Definition{Type: TypeStr}))
	if v.Document().Root != "s" {
		t.Errorf("expected root s, got %s", v.Document().Root)
	}
	if errs := v.Validate(context.Background(), "s", "ok"); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}
