package structure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCallStatsSnapshotPercentiles(t *testing.T) {
	stats := NewCallStats(time.Hour)
	for _, ms := range []int64{100, 200, 300, 400, 500} {
		stats.Record(time.Duration(ms)*time.Millisecond, StatusOK)
	}

	snap := stats.Snapshot()
	assert.Equal(t, 5, snap.Count)
	assert.Equal(t, int64(100), snap.MinMs)
	assert.Equal(t, int64(500), snap.MaxMs)
	assert.Equal(t, 300.0, snap.AvgMs)
	assert.Equal(t, 300.0, snap.P50Ms)
	assert.Equal(t, 480.0, snap.P95Ms)
	assert.Equal(t, 496.0, snap.P99Ms)
}

func TestCallStatsCountsOutcomes(t *testing.T) {
	stats := NewCallStats(time.Hour)
	stats.Record(time.Millisecond, StatusOK)
	stats.Record(time.Millisecond, StatusEmpty)
	stats.Record(time.Millisecond, StatusFailed)
	stats.Record(time.Millisecond, StatusFailed)

	snap := stats.Snapshot()
	assert.Equal(t, 1, snap.OK)
	assert.Equal(t, 1, snap.Empty)
	assert.Equal(t, 2, snap.Failed)
}

func TestCallStatsPrunesExpiredSamples(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	stats := NewCallStats(10 * time.Minute)
	stats.now = func() time.Time { return now }

	stats.Record(100*time.Millisecond, StatusOK)
	now = now.Add(11 * time.Minute)
	assert.Equal(t, 0, stats.Snapshot().Count)

	stats.Record(200*time.Millisecond, StatusOK)
	snap := stats.Snapshot()
	assert.Equal(t, 1, snap.Count)
	assert.Equal(t, int64(200), snap.MinMs)
	assert.Equal(t, int64(200), snap.MaxMs)
}

func TestCallStatsClampsNegativeDuration(t *testing.T) {
	stats := NewCallStats(time.Hour)
	stats.Record(-5*time.Millisecond, StatusOK)
	assert.Equal(t, int64(0), stats.Snapshot().MinMs)
}
