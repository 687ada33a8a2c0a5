package contextx_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"imhungri/pkg/contextx"
)

func TestTraceID(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	traceID, err := contextx.TraceIDFromContext(ctx)
	rq.Empty(traceID)
	rq.ErrorIs(err, contextx.ErrNoValue)
	rq.ErrorContains(err, "trace id: no value in context")

	testTraceID := contextx.TraceID("d0rt3chv0l2sloth1nng")

	ctx = contextx.WithTraceID(ctx, testTraceID)

	traceID, err = contextx.TraceIDFromContext(ctx)
	rq.Equal(testTraceID, traceID)
	rq.Equal("d0rt3chv0l2sloth1nng", traceID.String())
	rq.NoError(err)
}
