package processor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestServiceMetrics(t *testing.T) {
	m := NewServiceMetrics()
	m.RecordSuccess(10 * time.Millisecond)
	m.RecordSuccess(30 * time.Millisecond)
	m.RecordFailure()

	stats := m.GetStats()
	assert.EqualValues(t, 2, stats.Processed)
	assert.EqualValues(t, 1, stats.Failed)
	assert.Equal(t, 20*time.Millisecond, stats.AvgDuration)
	assert.Positive(t, stats.Uptime)

	m.Reset()
	stats = m.GetStats()
	assert.Zero(t, stats.Processed)
	assert.Zero(t, stats.AvgDuration)
}
