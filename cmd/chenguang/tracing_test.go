package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitTracing(t *testing.T) {
	for _, stdout := range []bool{false, true} {
		shutdown, err := initTracing(stdout)
		require.NoError(t, err)

		_, span := otel.Tracer("test").Start(context.Background(), "span")
		span.End()
		shutdown(context.Background())
	}
}
