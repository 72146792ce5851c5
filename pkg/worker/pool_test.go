package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dbros-oss/lss-broker/pkg/logging"
)

func newTestLogger(t *testing.T) *logging.Logger {
	t.Helper()
	l, err := logging.New(false)
	require.NoError(t, err)
	return l
}

func TestPoolRunsTasksFIFO(t *testing.T) {
	logger := newTestLogger(t)
	pool := NewPool(1, 16, logger, logging.ComponentPublish)

	var order []int
	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		i := i
		pool.Submit(func() {
			order = append(order, i)
			if i == 4 {
				close(done)
			}
		})
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("tasks did not complete in time")
	}

	for i, v := range order {
		require.Equal(t, i, v)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, pool.Stop(ctx))
}

func TestPoolRecoversPanickingTask(t *testing.T) {
	logger := newTestLogger(t)
	pool := NewPool(1, 4, logger, logging.ComponentPublish)

	var ran atomic.Bool
	pool.Submit(func() { panic("boom") })
	pool.Submit(func() { ran.Store(true) })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, pool.Stop(ctx))
	require.True(t, ran.Load())
}

func TestPoolDropsSubmitAfterStop(t *testing.T) {
	logger := newTestLogger(t)
	pool := NewPool(1, 4, logger, logging.ComponentPublish)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, pool.Stop(ctx))

	var ran atomic.Bool
	pool.Submit(func() { ran.Store(true) })
	require.False(t, ran.Load())
}
