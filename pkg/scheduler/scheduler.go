// Package scheduler implements a timed task queue: tasks are
// identified by string id, scheduled to run after a delay, and can be
// rescheduled to run immediately ("hurried") or cancelled by
// re-adding under the same id. Exactly one instance of each id is
// pending at a time.
package scheduler

import (
	"container/heap"
	"sync"
	"time"

	"github.com/mastermind-cluster/mastermind/pkg/log"
	"github.com/rs/zerolog"
)

// Task is one scheduled unit of work.
type Task struct {
	ID    string
	dueAt time.Time
	fn    func()
	index int // heap.Interface bookkeeping
}

type taskHeap []*Task

func (h taskHeap) Len() int            { return len(h) }
func (h taskHeap) Less(i, j int) bool  { return h[i].dueAt.Before(h[j].dueAt) }
func (h taskHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *taskHeap) Push(x any) {
	t := x.(*Task)
	t.index = len(*h)
	*h = append(*h, t)
}
func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// Scheduler is a single-goroutine timed task queue, ported from the
// original's TimedQueue: AddTaskIn schedules or reschedules a task by
// id, Hurry runs a pending task now, Shutdown stops the worker.
type Scheduler struct {
	logger zerolog.Logger

	mu      sync.Mutex
	heap    taskHeap
	byID    map[string]*Task
	timer   *time.Timer
	wake    chan struct{}
	stopCh  chan struct{}
	stopped bool
}

// NewScheduler constructs a Scheduler. Start must be called before any
// task becomes due.
func NewScheduler() *Scheduler {
	return &Scheduler{
		logger: log.WithComponent("scheduler"),
		byID:   make(map[string]*Task),
		wake:   make(chan struct{}, 1),
		stopCh: make(chan struct{}),
	}
}

// Start begins the worker goroutine.
func (s *Scheduler) Start() {
	go s.run()
}

// Shutdown stops the worker; pending tasks are discarded.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()
	close(s.stopCh)
}

// AddTaskIn schedules fn to run after delay under id, replacing any
// task already pending under the same id (matching add_task_in's
// reschedule-on-reinsert semantics).
func (s *Scheduler) AddTaskIn(id string, delay time.Duration, fn func()) {
	s.mu.Lock()
	if existing, ok := s.byID[id]; ok {
		heap.Remove(&s.heap, existing.index)
		delete(s.byID, id)
	}
	t := &Task{ID: id, dueAt: time.Now().Add(delay), fn: fn}
	heap.Push(&s.heap, t)
	s.byID[id] = t
	s.mu.Unlock()

	s.poke()
}

// Hurry reschedules the task under id to run immediately, if pending.
// Reports whether a task was found.
func (s *Scheduler) Hurry(id string) bool {
	s.mu.Lock()
	t, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	t.dueAt = time.Now()
	heap.Fix(&s.heap, t.index)
	s.mu.Unlock()

	s.poke()
	return true
}

// Pending reports whether a task is currently scheduled under id.
func (s *Scheduler) Pending(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byID[id]
	return ok
}

func (s *Scheduler) poke() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) run() {
	for {
		s.mu.Lock()
		var wait time.Duration
		if len(s.heap) == 0 {
			wait = time.Hour
		} else {
			wait = time.Until(s.heap[0].dueAt)
			if wait < 0 {
				wait = 0
			}
		}
		s.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-s.stopCh:
			timer.Stop()
			return
		case <-s.wake:
			timer.Stop()
		case <-timer.C:
		}

		s.runDue()
	}
}

func (s *Scheduler) runDue() {
	for {
		s.mu.Lock()
		if len(s.heap) == 0 || s.heap[0].dueAt.After(time.Now()) {
			s.mu.Unlock()
			return
		}
		t := heap.Pop(&s.heap).(*Task)
		delete(s.byID, t.ID)
		s.mu.Unlock()

		s.runTask(t)
	}
}

func (s *Scheduler) runTask(t *Task) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Str("task_id", t.ID).Interface("panic", r).Msg("scheduled task panicked")
		}
	}()
	t.fn()
}
