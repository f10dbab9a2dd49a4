package scheduler

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScheduler_AddTaskIn_RunsAfterDelay(t *testing.T) {
	s := NewScheduler()
	s.Start()
	defer s.Shutdown()

	var ran atomic.Bool
	s.AddTaskIn("t1", 20*time.Millisecond, func() { ran.Store(true) })

	require.Eventually(t, ran.Load, time.Second, time.Millisecond)
}

func TestScheduler_AddTaskIn_ReplacesExistingID(t *testing.T) {
	s := NewScheduler()
	s.Start()
	defer s.Shutdown()

	var calls atomic.Int32
	s.AddTaskIn("t1", time.Hour, func() { calls.Add(1) })
	s.AddTaskIn("t1", 10*time.Millisecond, func() { calls.Add(1) })

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, int32(1), calls.Load())
}

func TestScheduler_Hurry_RunsImmediately(t *testing.T) {
	s := NewScheduler()
	s.Start()
	defer s.Shutdown()

	var ran atomic.Bool
	s.AddTaskIn("t1", time.Hour, func() { ran.Store(true) })
	require.False(t, ran.Load())

	require.True(t, s.Hurry("t1"))
	require.Eventually(t, ran.Load, time.Second, time.Millisecond)
}

func TestScheduler_Hurry_UnknownIDReturnsFalse(t *testing.T) {
	s := NewScheduler()
	s.Start()
	defer s.Shutdown()

	require.False(t, s.Hurry("does-not-exist"))
}

func TestScheduler_Pending(t *testing.T) {
	s := NewScheduler()
	s.Start()
	defer s.Shutdown()

	s.AddTaskIn("t1", time.Hour, func() {})
	require.True(t, s.Pending("t1"))
	require.False(t, s.Pending("t2"))
}

func TestScheduler_MultipleTasksRunInOrder(t *testing.T) {
	s := NewScheduler()
	s.Start()
	defer s.Shutdown()

	var mu sync.Mutex
	var order []string

	var wg sync.WaitGroup
	wg.Add(3)
	record := func(id string) func() {
		return func() {
			mu.Lock()
			order = append(order, id)
			mu.Unlock()
			wg.Done()
		}
	}

	s.AddTaskIn("c", 30*time.Millisecond, record("c"))
	s.AddTaskIn("a", 10*time.Millisecond, record("a"))
	s.AddTaskIn("b", 20*time.Millisecond, record("b"))

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("tasks did not all run in time")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"a", "b", "c"}, order)
}

func TestScheduler_Shutdown_StopsWorker(t *testing.T) {
	s := NewScheduler()
	s.Start()
	s.Shutdown()

	var ran atomic.Bool
	s.AddTaskIn("t1", time.Millisecond, func() { ran.Store(true) })
	time.Sleep(30 * time.Millisecond)
	require.False(t, ran.Load())
}

func TestScheduler_PanickingTaskDoesNotStopWorker(t *testing.T) {
	s := NewScheduler()
	s.Start()
	defer s.Shutdown()

	s.AddTaskIn("panics", time.Millisecond, func() { panic("boom") })

	var ran atomic.Bool
	s.AddTaskIn("after", 20*time.Millisecond, func() { ran.Store(true) })

	require.Eventually(t, ran.Load, time.Second, time.Millisecond)
}
