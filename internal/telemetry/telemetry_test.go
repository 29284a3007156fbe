package telemetry_test

import (
	"context"
	"testing"

	"lumen/internal/config"
	"lumen/internal/logging"
	"lumen/internal/telemetry"
)

func TestInitWithoutEndpointIsNoop(t *testing.T) {
	shutdown, err := telemetry.Init(context.Background(), config.Telemetry{ServiceName: "lumen"}, logging.NewNop())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	_, span := telemetry.Tracer("test").Start(context.Background(), "noop")
	span.End()
}
