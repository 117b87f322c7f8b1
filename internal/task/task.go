// Package task implements the steppable unit of deferred load work. A
// LoadTask is driven by the host scheduler one content item per step, so a
// mod with hundreds of items never stalls the host's tick.
package task

import (
	"strings"

	"github.com/kestrelgames/modkit/internal/content"
	"github.com/kestrelgames/modkit/internal/fault"
	"github.com/kestrelgames/modkit/internal/logging"
)

// Step is the outcome of driving a task once.
type Step int

const (
	// StepProcessed means one unit of work was completed and more may remain.
	StepProcessed Step = iota
	// StepDone means the task has reached its natural end. Further Next
	// calls keep returning StepDone.
	StepDone
)

// LoadTask registers a mod's collected content one item per step. The
// source function is consulted on every step, so items appended to the
// collection while the task is in flight are picked up by later steps.
type LoadTask struct {
	displayName string
	source      func() []content.Item
	logger      *logging.Logger
	cursor      int
	done        bool
	failures    []string
}

// NewRegistration builds the content-registration task for one mod.
// The display name is shown by progress reporting; source must return the
// mod's live content collection.
func NewRegistration(displayName string, source func() []content.Item, logger *logging.Logger) *LoadTask {
	return &LoadTask{displayName: displayName, source: source, logger: logger}
}

// DisplayName describes the task for progress reporting.
func (t *LoadTask) DisplayName() string { return t.displayName }

// Produce returns the items this task generates itself. Registration is a
// side-effecting pass over already-collected items, so it produces none.
func (t *LoadTask) Produce() []content.Item { return nil }

// Next drives one unit of work: load and register the next content item.
// A failing item is logged and skipped; it never halts the remaining items.
func (t *LoadTask) Next() Step {
	if t.done {
		return StepDone
	}
	items := t.source()
	if t.cursor >= len(items) {
		t.done = true
		return StepDone
	}
	item := items[t.cursor]
	t.cursor++
	err := fault.Try(func() error {
		if err := item.Load(); err != nil {
			return err
		}
		return item.Register()
	})
	if err != nil {
		t.failures = append(t.failures, item.Name())
		t.logger.Errorf("failed to register %s: %s", item.Name(), fault.Root(err))
	}
	return StepProcessed
}

// Done reports whether the task has finished.
func (t *LoadTask) Done() bool { return t.done }

// Failures returns the names of items whose registration failed, in the
// order they were attempted.
func (t *LoadTask) Failures() []string {
	return append([]string(nil), t.failures...)
}

// Summary is a one-line completion report for logs.
func (t *LoadTask) Summary() string {
	if len(t.failures) == 0 {
		return t.displayName + ": done"
	}
	return t.displayName + ": done with failures: " + strings.Join(t.failures, ", ")
}
