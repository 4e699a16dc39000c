package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerProvider_DisabledBridgeIsIdentity(t *testing.T) {
	lp, err := NewLoggerProvider(context.Background(), Config{ServiceName: "finops-test"}, nil)
	require.NoError(t, err)

	base := zap.NewExample()
	assert.Same(t, base, lp.Bridge(base))
	assert.NoError(t, lp.Shutdown(context.Background()))
}

func TestLevelFilterCore_FollowsBaseLevel(t *testing.T) {
	inner, recorded := observer.New(zapcore.DebugLevel)
	core := &levelFilterCore{Core: inner, enabler: zapcore.WarnLevel}
	log := zap.New(core)

	log.Info("dropped")
	log.Debug("dropped")
	log.Warn("kept")
	log.With(zap.String("k", "v")).Error("kept too")

	require.Equal(t, 2, recorded.Len())
	assert.Equal(t, "kept", recorded.All()[0].Message)
	assert.Equal(t, "v", recorded.All()[1].ContextMap()["k"])
}
