package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/marketplace/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// recordingProcessor keeps every emitted record in memory
type recordingProcessor struct {
	mu      sync.Mutex
	records []sdklog.Record
}

func (p *recordingProcessor) OnEmit(_ context.Context, r *sdklog.Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, r.Clone())
	return nil
}

func (p *recordingProcessor) Enabled(context.Context, sdklog.EnabledParameters) bool {
	return true
}

func (p *recordingProcessor) Shutdown(context.Context) error   { return nil }
func (p *recordingProcessor) ForceFlush(context.Context) error { return nil }

func (p *recordingProcessor) bodies() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.records))
	for _, r := range p.records {
		out = append(out, r.Body().AsString())
	}
	return out
}

func newRecordingLoggerProvider(t *testing.T) (*LoggerProvider, *recordingProcessor) {
	t.Helper()
	rec := &recordingProcessor{}
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(rec))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return &LoggerProvider{provider: provider, logger: zap.NewNop()}, rec
}

// =============================================================================
// Provider
// =============================================================================

func TestNewLoggerProvider_Disabled(t *testing.T) {
	for _, cfg := range []config.TelemetryConfig{
		{Enabled: false, LogsEnabled: true, CollectorEndpoint: "localhost:14317"},
		{Enabled: true, LogsEnabled: false, CollectorEndpoint: "localhost:14317"},
	} {
		lp, err := NewLoggerProvider(context.Background(), cfg, zap.NewNop())
		require.NoError(t, err)

		assert.False(t, lp.IsEnabled())
		assert.NoError(t, lp.Shutdown(context.Background()))
	}
}

// =============================================================================
// Zap bridge
// =============================================================================

func TestNewZapOTELCore_Disabled(t *testing.T) {
	core := NewZapOTELCore(&LoggerProvider{logger: zap.NewNop()}, "marketplace", zapcore.InfoLevel)
	assert.False(t, core.Enabled(zapcore.ErrorLevel))

	core = NewZapOTELCore(nil, "marketplace", zapcore.InfoLevel)
	assert.False(t, core.Enabled(zapcore.ErrorLevel))
}

func TestBridgeLogger_DisabledKeepsBase(t *testing.T) {
	base := zap.NewNop()
	assert.Same(t, base, BridgeLogger(base, &LoggerProvider{logger: zap.NewNop()}, "marketplace", zapcore.InfoLevel))
}

func TestBridgeLogger_WritesBoth(t *testing.T) {
	lp, rec := newRecordingLoggerProvider(t)
	observed, logs := observer.New(zapcore.DebugLevel)

	log := BridgeLogger(zap.New(observed), lp, "marketplace", zapcore.InfoLevel)
	log.Debug("local only")
	log.Info("App created", zap.String("app_code", "wpp-cloud"))
	log.With(zap.String("task", "sync")).Warn("Refresh skipped")

	assert.Equal(t, 3, logs.Len(), "the base core keeps its own level")
	assert.Equal(t, []string{"App created", "Refresh skipped"}, rec.bodies())

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.records, 2)
	assert.Equal(t, otellog.SeverityInfo, rec.records[0].Severity())
	assert.Equal(t, otellog.SeverityWarn, rec.records[1].Severity())

	var attrs []string
	rec.records[1].WalkAttributes(func(kv otellog.KeyValue) bool {
		attrs = append(attrs, kv.Key)
		return true
	})
	assert.Contains(t, attrs, "task")
}
