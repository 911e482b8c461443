package storage

import "fmt"

// PersistError records a write that failed after the in-memory change was
// already applied. Callers keep it for inspection instead of returning it.
type PersistError struct {
	Op   string // "save sessions" or "save progression"
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Op, e.Path, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}
