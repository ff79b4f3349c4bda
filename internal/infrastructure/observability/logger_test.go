package observability_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"

	"github.com/claimsage/backend/internal/infrastructure/observability"
)

func TestLoggerFromContext_AttachesTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = prev }()

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{0x01},
		SpanID:  trace.SpanID{0x02},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	observability.LoggerFromContext(ctx).Info().Msg("decision served")

	out := buf.String()
	assert.Contains(t, out, sc.TraceID().String())
	assert.Contains(t, out, sc.SpanID().String())
}

func TestLoggerFromContext_NoSpanNoTraceFields(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = prev }()

	observability.LoggerFromContext(context.Background()).Info().Msg("decision served")

	assert.NotContains(t, buf.String(), "trace_id")
}
