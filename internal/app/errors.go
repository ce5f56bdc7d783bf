// Package app composes a document, an event registry, a ready latch and the
// script host into one domkit run.
package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrNoMatch indicates a dump path that selects nothing.
	ErrNoMatch = errors.New("dump path matched nothing")

	// ErrNoDocument indicates a run without a document path.
	ErrNoDocument = errors.New("no document configured")
)

// StageError reports which stage of a run failed.
type StageError struct {
	Stage  string // Stage name, e.g. "load", "script", "ready", "dispatch"
	Target string // Stage target, e.g. a file path or "click@button"
	Err    error  // Underlying error
}

func (e *StageError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s %s: %v", e.Stage, e.Target, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
