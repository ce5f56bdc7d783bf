package script

import (
	"errors"
	"fmt"
)

// ErrHostClosed is returned when using a closed Host.
var ErrHostClosed = errors.New("script host is closed")

// ScriptError wraps a failure raised while running a script.
type ScriptError struct {
	// Source is the script path or chunk name.
	Source string
	// Err is the underlying error, usually a *lua.ApiError.
	Err error
}

// Error implements the error interface.
func (e *ScriptError) Error() string {
	return fmt.Sprintf("script %s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying error.
func (e *ScriptError) Unwrap() error {
	return e.Err
}
