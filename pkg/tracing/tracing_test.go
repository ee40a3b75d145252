package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initTestTracer(t *testing.T) {
	t.Helper()
	shutdown, err := InitTracer("playchat-test", "localhost:4317", 1)
	require.NoError(t, err)
	t.Cleanup(func() {
		// collector不存在时导出会失败，这里只关心关闭流程不阻塞
		_ = shutdown(context.Background())
	})
}

func TestStartSpan_ChildSharesTraceID(t *testing.T) {
	initTestTracer(t)

	ctx, root := StartSpan(context.Background(), "member", "Root")
	defer root.End()
	require.True(t, root.SpanContext().IsValid())

	childCtx, child := StartSpan(ctx, "member", "Child")
	defer child.End()

	assert.Equal(t, ExtractTraceID(ctx), ExtractTraceID(childCtx))
	assert.NotEqual(t, ExtractSpanID(ctx), ExtractSpanID(childCtx))
}

func TestExtractTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, ExtractTraceID(context.Background()))
	assert.Empty(t, ExtractSpanID(context.Background()))
}
