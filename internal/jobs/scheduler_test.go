package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/skillquest-backend/internal/platform/logger"
)

type countingSweeper struct{ calls atomic.Int32 }

func (c *countingSweeper) Sweep(context.Context) (int64, error) {
	c.calls.Add(1)
	return 3, nil
}

func TestSchedulerRegisterAndRunNow(t *testing.T) {
	s := NewScheduler(logger.Nop(), nil)
	sweeper := &countingSweeper{}

	require.NoError(t, RegisterTokenSweep(s, "@hourly", sweeper))
	assert.Error(t, RegisterTokenSweep(s, "@hourly", sweeper))
	assert.Error(t, s.Register("bad", "not a cron spec", func(context.Context) error { return nil }))
	assert.Equal(t, []string{TaskTokenSweep}, s.Tasks())

	require.NoError(t, s.RunNow(context.Background(), TaskTokenSweep))
	assert.EqualValues(t, 1, sweeper.calls.Load())
	assert.Error(t, s.RunNow(context.Background(), "missing"))
}

func TestSchedulerRunsTasksUntilCancelled(t *testing.T) {
	s := NewScheduler(logger.Nop(), time.UTC)
	var runs atomic.Int32
	require.NoError(t, s.Register("tick", "@every 1s", func(context.Context) error {
		runs.Add(1)
		return errors.New("logged, not fatal")
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	require.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
