package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRefresher_StartupAndTrigger(t *testing.T) {
	var runs atomic.Int32
	r := NewRefresher(func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}, 0, time.Second, zap.NewNop())

	r.Start(context.Background())
	defer r.Stop()

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	r.Trigger()
	assert.Eventually(t, func() bool { return runs.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestRefresher_TriggersCoalesce(t *testing.T) {
	release := make(chan struct{})
	var runs atomic.Int32
	r := NewRefresher(func(ctx context.Context) error {
		if runs.Add(1) == 1 {
			<-release
		}
		return nil
	}, 0, 0, zap.NewNop())

	r.Start(context.Background())
	defer r.Stop()

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	for i := 0; i < 5; i++ {
		r.Trigger()
	}
	close(release)

	assert.Eventually(t, func() bool { return runs.Load() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(2), runs.Load())
}

func TestRefresher_Interval(t *testing.T) {
	var runs atomic.Int32
	r := NewRefresher(func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("backend down")
	}, 10*time.Millisecond, 0, zap.NewNop())

	r.Start(context.Background())
	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	r.Stop()

	stopped := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, runs.Load(), "no runs after Stop")
}

func TestRefresher_StopCancelsInFlight(t *testing.T) {
	started := make(chan struct{})
	r := NewRefresher(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}, 0, 0, zap.NewNop())

	r.Start(context.Background())
	<-started

	done := make(chan struct{})
	go func() {
		r.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
	r.Stop()
}
