package schedule

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func TestSchedulerRunsImmediatelyAndRepeatedly(t *testing.T) {
	log, _ := test.NewNullLogger()

	var runs int32

	s := New(log, Task{
		Name:     "count",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			atomic.AddInt32(&runs, 1)

			return nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())

	s.Start(ctx)
	s.Start(ctx)

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&runs) >= 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	s.Wait()

	stopped := atomic.LoadInt32(&runs)

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, atomic.LoadInt32(&runs))
}

func TestSchedulerKeepsRunningAfterError(t *testing.T) {
	log, hook := test.NewNullLogger()

	var runs int32

	s := New(log)
	s.Add(Task{
		Name:     "failing",
		Interval: 5 * time.Millisecond,
		Run: func(ctx context.Context) error {
			atomic.AddInt32(&runs, 1)

			return errors.New("upstream down")
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.Start(ctx)

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&runs) >= 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	s.Wait()

	found := false

	for _, e := range hook.AllEntries() {
		if e.Message == "Running background task" && e.Data["task"] == "failing" {
			found = true
		}
	}

	assert.True(t, found)
	assert.Len(t, s.Tasks(), 1)
}
