package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newDevLogger(t *testing.T) *zap.Logger {
	t.Helper()
	logger, err := NewForEnvironment("development")
	require.NoError(t, err)
	return logger
}

// newBufferedLogger returns a JSON logger writing into the returned buffer
func newBufferedLogger() (*zap.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(&buf), zapcore.DebugLevel)
	return zap.New(core), &buf
}

func TestWithContext(t *testing.T) {
	logger := newDevLogger(t)

	ctx := WithContext(context.Background(), logger)
	assert.NotNil(t, FromContext(ctx))
}

func TestFromContext_Fallbacks(t *testing.T) {
	t.Run("missing logger yields nop", func(t *testing.T) {
		logger := FromContext(context.Background())
		assert.NotNil(t, logger)
		assert.NotPanics(t, func() { logger.Info("invoice created") })
	})

	t.Run("wrong value type yields nop", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), LoggerKey, "not a logger")
		logger := FromContext(ctx)
		assert.NotNil(t, logger)
		assert.NotPanics(t, func() { logger.Info("payment recorded") })
	})
}

func TestWithRequestID(t *testing.T) {
	logger := newDevLogger(t)

	ctx, enriched := WithRequestID(context.Background(), logger, "req-inv-001")

	assert.NotNil(t, enriched)
	assert.Equal(t, "req-inv-001", GetRequestID(ctx))
}

func TestWithAccountID(t *testing.T) {
	logger := newDevLogger(t)

	ctx, enriched := WithAccountID(context.Background(), logger, "farm-account-42")

	assert.NotNil(t, enriched)
	assert.Equal(t, "farm-account-42", GetAccountID(ctx))
}

func TestWithUserID(t *testing.T) {
	logger := newDevLogger(t)

	ctx, enriched := WithUserID(context.Background(), logger, "farmer-7")

	assert.NotNil(t, enriched)
	assert.Equal(t, "farmer-7", GetUserID(ctx))
}

func TestContextGetters_Empty(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetAccountID(ctx))
	assert.Empty(t, GetUserID(ctx))
}

func TestContextChaining(t *testing.T) {
	logger := newDevLogger(t)
	ctx := context.Background()

	ctx, logger = WithRequestID(ctx, logger, "req-1")
	ctx, logger = WithAccountID(ctx, logger, "farm-account-1")
	ctx, logger = WithUserID(ctx, logger, "farmer-1")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "farm-account-1", GetAccountID(ctx))
	assert.Equal(t, "farmer-1", GetUserID(ctx))
	assert.NotNil(t, logger)
}

func TestContextKeysAreDistinct(t *testing.T) {
	assert.NotEqual(t, LoggerKey, RequestIDKey)
	assert.NotEqual(t, RequestIDKey, AccountIDKey)
	assert.NotEqual(t, AccountIDKey, UserIDKey)
	assert.NotEqual(t, LoggerKey, UserIDKey)
}

func TestLoggerFromEnrichedContext(t *testing.T) {
	baseLogger := newDevLogger(t)

	ctx, enriched := WithRequestID(context.Background(), baseLogger, "req-settle-9")

	assert.NotNil(t, FromContext(ctx))
	assert.NotEqual(t, baseLogger, enriched)
}

func TestWithRequestID_Override(t *testing.T) {
	logger := newDevLogger(t)
	ctx := context.Background()

	ctx, _ = WithRequestID(ctx, logger, "first-id")
	assert.Equal(t, "first-id", GetRequestID(ctx))

	ctx, _ = WithRequestID(ctx, logger, "second-id")
	assert.Equal(t, "second-id", GetRequestID(ctx))
}

// startNoopSpan opens a span from a noop tracer. Its span context is
// deliberately invalid, which is what the trace helpers must tolerate.
func startNoopSpan(t *testing.T) (context.Context, trace.Span) {
	t.Helper()
	tp := noop.NewTracerProvider()
	otel.SetTracerProvider(tp)
	tracer := tp.Tracer("billing-test")
	return tracer.Start(context.Background(), "allocate-payment")
}

func TestGetTraceID(t *testing.T) {
	t.Run("no span", func(t *testing.T) {
		assert.Empty(t, GetTraceID(context.Background()))
	})

	t.Run("invalid span context", func(t *testing.T) {
		ctx, span := startNoopSpan(t)
		defer span.End()

		require.False(t, trace.SpanFromContext(ctx).SpanContext().IsValid())
		assert.Empty(t, GetTraceID(ctx))
	})
}

func TestGetSpanID(t *testing.T) {
	t.Run("no span", func(t *testing.T) {
		assert.Empty(t, GetSpanID(context.Background()))
	})

	t.Run("invalid span context", func(t *testing.T) {
		ctx, span := startNoopSpan(t)
		defer span.End()

		require.False(t, trace.SpanFromContext(ctx).SpanContext().IsValid())
		assert.Empty(t, GetSpanID(ctx))
	})
}

func TestWithTraceContext(t *testing.T) {
	baseLogger := zap.NewNop()

	t.Run("no span returns same logger", func(t *testing.T) {
		assert.Equal(t, baseLogger, WithTraceContext(context.Background(), baseLogger))
	})

	t.Run("invalid span context returns same logger", func(t *testing.T) {
		ctx, span := startNoopSpan(t)
		defer span.End()

		assert.Equal(t, baseLogger, WithTraceContext(ctx, baseLogger))
	})
}

func TestL(t *testing.T) {
	t.Run("empty context", func(t *testing.T) {
		cl := L(context.Background())
		require.NotNil(t, cl)
		assert.NotNil(t, cl.ctx)
		assert.NotNil(t, cl.logger)
	})

	t.Run("logger in context", func(t *testing.T) {
		ctx := WithContext(context.Background(), newDevLogger(t))
		cl := L(ctx)
		require.NotNil(t, cl)
		assert.NotNil(t, cl.logger)
	})
}

func TestWithLogger_UsesProvidedLogger(t *testing.T) {
	baseLogger := newDevLogger(t)

	cl := WithLogger(context.Background(), baseLogger)

	require.NotNil(t, cl)
	assert.Equal(t, baseLogger, cl.logger)
}

func TestContextLogger_With(t *testing.T) {
	baseLogger, _ := newBufferedLogger()
	ctx := context.Background()

	cl := WithLogger(ctx, baseLogger)
	child := cl.With(zap.String("invoice_number", "INV-2026-0042"))

	require.NotNil(t, child)
	assert.Equal(t, ctx, child.ctx)
	assert.NotEqual(t, baseLogger, child.logger)
}

func TestContextLogger_LogLevels(t *testing.T) {
	cl := WithLogger(context.Background(), zap.NewNop())

	assert.NotPanics(t, func() {
		cl.Debug("allocation trace")
		cl.Info("payment recorded")
		cl.Warn("outstanding balance high")
		cl.Error("allocation failed")
	})
}

func TestContextLogger_Zap(t *testing.T) {
	cl := WithLogger(context.Background(), zap.NewNop())

	zapLogger := cl.Zap()
	require.NotNil(t, zapLogger)
	assert.NotPanics(t, func() { zapLogger.Info("invoice settled") })
}

func TestContextLogger_Sugar(t *testing.T) {
	cl := WithLogger(context.Background(), zap.NewNop())

	sugar := cl.Sugar()
	require.NotNil(t, sugar)
	assert.NotPanics(t, func() { sugar.Infof("settled %d invoices", 3) })
}

func TestContextLogger_EnrichesWithContextFields(t *testing.T) {
	baseLogger, buf := newBufferedLogger()

	ctx := context.Background()
	ctx, _ = WithRequestID(ctx, baseLogger, "req-123")
	ctx, _ = WithAccountID(ctx, baseLogger, "farm-account-456")
	ctx, _ = WithUserID(ctx, baseLogger, "farmer-789")
	ctx = WithContext(ctx, baseLogger)

	L(ctx).Info("payment allocated", zap.String("invoice_number", "INV-2026-0007"))

	output := buf.String()
	assert.Contains(t, output, `"request_id":"req-123"`)
	assert.Contains(t, output, `"account_id":"farm-account-456"`)
	assert.Contains(t, output, `"user_id":"farmer-789"`)
	assert.Contains(t, output, `"invoice_number":"INV-2026-0007"`)
	assert.Contains(t, output, `"msg":"payment allocated"`)
}

func TestContextLogger_NilLogger(t *testing.T) {
	cl := &ContextLogger{ctx: context.Background(), logger: nil}

	assert.NotPanics(t, func() { cl.Info("ledger updated") })
}

func TestContextLogger_WithAllContextFields(t *testing.T) {
	baseLogger, buf := newBufferedLogger()

	ctx := context.Background()
	ctx = context.WithValue(ctx, RequestIDKey, "req-aaa")
	ctx = context.WithValue(ctx, AccountIDKey, "farm-account-bbb")
	ctx = context.WithValue(ctx, UserIDKey, "farmer-ccc")

	WithLogger(ctx, baseLogger).Info("advance returned")

	output := buf.String()
	assert.Contains(t, output, `"request_id":"req-aaa"`)
	assert.Contains(t, output, `"account_id":"farm-account-bbb"`)
	assert.Contains(t, output, `"user_id":"farmer-ccc"`)
}

func TestContextLogger_EmptyContextFields(t *testing.T) {
	baseLogger, buf := newBufferedLogger()

	WithLogger(context.Background(), baseLogger).Info("status refreshed")

	// Fields absent from the context must not appear as empty strings
	output := buf.String()
	assert.Contains(t, output, `"msg":"status refreshed"`)
	assert.NotContains(t, output, `"request_id":""`)
	assert.NotContains(t, output, `"account_id":""`)
	assert.NotContains(t, output, `"user_id":""`)
}

func TestContextLogger_WithChaining(t *testing.T) {
	cl := WithLogger(context.Background(), zap.NewNop()).
		With(zap.String("contract_id", "ctr-100")).
		With(zap.String("channel", "CONTRACT"))

	require.NotNil(t, cl)
	assert.NotPanics(t, func() { cl.Info("contract advance held") })
}
