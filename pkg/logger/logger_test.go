package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Get is process-global, so every test in this package shares the sink
// configured by the first call.
var testSink bytes.Buffer

func TestGet_WritesStructuredJSON(t *testing.T) {
	log := Get(0, &testSink)
	require.NotNil(t, log)

	log.Info("hello", "key", "value")
	out := testSink.String()
	assert.Contains(t, out, `"`+MessageKey+`":"hello"`)
	assert.Contains(t, out, `"key":"value"`)
	assert.Contains(t, out, `"`+VersionKey+`"`)
}

func TestGet_SecondCallReturnsSameLogger(t *testing.T) {
	first := Get(0, &testSink)
	second := Get(-3, nil)
	assert.Same(t, first, second)
}

func TestContextRoundTrip(t *testing.T) {
	log := GetNoopLogger()
	ctx := WithLogger(context.Background(), log)
	assert.Same(t, log, FromContext(ctx))

	// Attaching the same logger again returns the same context.
	assert.Equal(t, ctx, WithLogger(ctx, log))
}

func TestFromContext_FallsBack(t *testing.T) {
	log := FromContext(context.Background())
	require.NotNil(t, log)
	assert.NotPanics(t, func() { log.Info("no-op or global, never nil") })
}

func TestWithValues(t *testing.T) {
	log := Get(0, &testSink)
	child := WithValues(log, "component", "test")
	require.NotNil(t, child)
	assert.NotSame(t, log, child)

	before := testSink.Len()
	child.Info("tagged")
	out := testSink.String()[before:]
	assert.Contains(t, out, `"component":"test"`)
}

func TestSync_DoesNotPanic(t *testing.T) {
	Get(0, &testSink)
	assert.NotPanics(t, Sync)
}

func TestIsIgnorableSyncError(t *testing.T) {
	assert.False(t, isIgnorableSyncError(assertableError("disk exploded")))
	assert.True(t, isIgnorableSyncError(assertableError("sync /dev/stderr: The handle is invalid.")))
}

type assertableError string

func (e assertableError) Error() string { return string(e) }
