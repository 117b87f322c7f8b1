// Package scheduler drives load tasks to completion on the host's main
// execution thread. Scheduling is cooperative: each tick advances every
// pending task by exactly one step, interleaving mods so no single mod
// starves the host loop.
package scheduler

import (
	"github.com/kestrelgames/modkit/internal/logging"
	"github.com/kestrelgames/modkit/internal/task"
)

// StepFunc is posted after every processed unit so a progress view can
// follow along. taskName identifies the task; remaining is a lower bound
// (live collections can still grow).
type StepFunc func(taskName string)

// Scheduler owns the ordered set of in-flight load tasks.
type Scheduler struct {
	tasks  []*task.LoadTask
	logger *logging.Logger
	onStep StepFunc
}

// Option customizes the scheduler.
type Option func(*Scheduler)

// WithStepFunc installs a per-step callback.
func WithStepFunc(fn StepFunc) Option {
	return func(s *Scheduler) {
		if fn != nil {
			s.onStep = fn
		}
	}
}

// New builds a scheduler that logs task completion through logger.
func New(logger *logging.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add enqueues a task. Tasks are stepped in the order they were added;
// a task added mid-drain joins the current rotation.
func (s *Scheduler) Add(t *task.LoadTask) {
	if t == nil {
		return
	}
	s.tasks = append(s.tasks, t)
}

// Pending reports how many tasks have not finished.
func (s *Scheduler) Pending() int {
	pending := 0
	for _, t := range s.tasks {
		if !t.Done() {
			pending++
		}
	}
	return pending
}

// Tick advances every unfinished task by one step and reports whether any
// work remains. Tasks that finish during the tick are logged once.
func (s *Scheduler) Tick() bool {
	remaining := false
	for _, t := range s.tasks {
		if t.Done() {
			continue
		}
		switch t.Next() {
		case task.StepProcessed:
			remaining = true
			if s.onStep != nil {
				s.onStep(t.DisplayName())
			}
		case task.StepDone:
			s.logger.Infof("%s", t.Summary())
		}
	}
	return remaining
}

// Run ticks until every task reports done. Tasks run to their natural end;
// there is no mid-task cancellation.
func (s *Scheduler) Run() {
	for s.Tick() {
	}
}
