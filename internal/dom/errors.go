package dom

import "errors"

// Sentinel errors for document tree operations.
var (
	// ErrHierarchy is returned when an insertion would make a node its own ancestor.
	ErrHierarchy = errors.New("node cannot be inserted here")

	// ErrWrongDocument is returned when a node from another document is inserted.
	ErrWrongDocument = errors.New("node belongs to a different document")

	// ErrDispatchInProgress is returned when an event is dispatched while it is
	// already being dispatched.
	ErrDispatchInProgress = errors.New("event is already being dispatched")

	// ErrNilNode is returned when a nil node is passed where a node is required.
	ErrNilNode = errors.New("node cannot be nil")
)
