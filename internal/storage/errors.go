package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfSpace is returned when a write would run past the end of a page.
	ErrOutOfSpace = errors.New("out of space")

	// ErrPageOutOfRange is returned for page numbers at or above MaxPages.
	ErrPageOutOfRange = errors.New("page number out of range")

	// ErrClosed is returned by any operation on a closed pager.
	ErrClosed = errors.New("pager is closed")
)

// IOError reports a failure of the backing store.
type IOError struct {
	Op   string
	Page uint32
	Err  error
}

func (e *IOError) Error() string {
	switch e.Op {
	case "open", "sync", "close":
		return fmt.Sprintf("io error: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("io error: %s page %d: %v", e.Op, e.Page, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
