// Package fault implements the per-unit failure isolation used by patch
// application and content registration. Every independently-failing unit of
// work runs through Try so one policy covers both phases.
package fault

import (
	"errors"
	"fmt"
)

// Try runs one unit of work and never lets a failure escape: an error is
// returned as-is and a panic is converted into an error. The caller decides
// whether to record or suppress it.
func Try(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if perr, ok := r.(error); ok {
				err = fmt.Errorf("fault: unit panicked: %w", perr)
				return
			}
			err = fmt.Errorf("fault: unit panicked: %v", r)
		}
	}()
	return fn()
}

// Root returns the message of the innermost error in the Unwrap chain.
// Failure reports name the root cause rather than the wrapping context.
func Root(err error) string {
	if err == nil {
		return ""
	}
	for {
		inner := errors.Unwrap(err)
		if inner == nil {
			return err.Error()
		}
		err = inner
	}
}
