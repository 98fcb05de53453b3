package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestProfiler_Tick(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	p := NewProfiler()
	p.SetLogger(zap.New(core))
	p.SetInterval(time.Hour)

	assert.False(t, p.Tick(3))
	assert.Zero(t, logs.Len())

	p.SetInterval(time.Nanosecond)
	p.SetInterval(0)
	time.Sleep(time.Millisecond)
	require.True(t, p.Tick(3))

	entries := logs.FilterMessage("profiler").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, 3, fields["instances"])

	s := p.Last()
	assert.Equal(t, 3, s.Instances)
	assert.Greater(t, s.TPS, 0.0)
	assert.Greater(t, s.SysMB, 0.0)
	assert.GreaterOrEqual(t, s.CPUPercent, 0.0)
}
