package scheduler

import (
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tyson-swetnam/raws-mcp/internal/cache"
)

type countingSweeper struct {
	sweeps atomic.Int32
}

func (c *countingSweeper) SweepExpired() int {
	c.sweeps.Add(1)
	return 1
}

func (c *countingSweeper) Stats() map[string]cache.Stats {
	return map[string]cache.Stats{"current": {Active: 1}}
}

func TestSchedulerRunsSweep(t *testing.T) {
	sweeper := &countingSweeper{}
	s, err := New(sweeper, 10*time.Millisecond, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool {
		return sweeper.sweeps.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSchedulerStopHaltsSweeping(t *testing.T) {
	sweeper := &countingSweeper{}
	s, err := New(sweeper, 10*time.Millisecond, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	s.Start()
	require.Eventually(t, func() bool {
		return sweeper.sweeps.Load() >= 1
	}, 2*time.Second, 5*time.Millisecond)
	s.Stop()

	before := sweeper.sweeps.Load()
	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, sweeper.sweeps.Load(), before+1, "at most one in-flight sweep may complete after Stop")
}
