package telemetry

import (
	"context"
	"testing"
	"time"
)

func TestSetupWithoutEndpointIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), "", "sucursalpos", "test")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestTracesURLAcceptsBaseURLAndHostPort(t *testing.T) {
	cases := map[string]string{
		"http://collector:4318":         "http://collector:4318/v1/traces",
		"https://otel.example.com/":     "https://otel.example.com/v1/traces",
		"http://collector:4318/gateway": "http://collector:4318/gateway/v1/traces",
		"collector:4318":                "http://collector:4318/v1/traces",
		" localhost:4318 ":              "http://localhost:4318/v1/traces",
	}
	for in, want := range cases {
		got, err := tracesURL(in)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if got != want {
			t.Fatalf("%q: got %q, want %q", in, got, want)
		}
	}

	for _, bad := range []string{"grpc://collector:4317", "http://", "http://[::1"} {
		if _, err := tracesURL(bad); err == nil {
			t.Fatalf("%q: expected an error", bad)
		}
	}
}

func TestSetupWithURLEndpointBuildsExporter(t *testing.T) {
	shutdown, err := Setup(context.Background(), "http://127.0.0.1:4318", "sucursalpos", "test")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = shutdown(ctx)
}
