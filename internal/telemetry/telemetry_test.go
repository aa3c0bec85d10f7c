package telemetry

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestSetupWithoutEndpointIsNoop(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	shutdown := Setup("queue-client", zap.NewNop())
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("unexpected shutdown error: %v", err)
	}
}

func TestSampleRatio(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{raw: "", want: 1},
		{raw: "0.25", want: 0.25},
		{raw: "0", want: 0},
		{raw: "2", want: 1},
		{raw: "half", want: 1},
	}
	for _, tc := range cases {
		t.Setenv("OTEL_TRACES_SAMPLER_ARG", tc.raw)
		if got := sampleRatio(); got != tc.want {
			t.Fatalf("%q: got %v, want %v", tc.raw, got, tc.want)
		}
	}
}
