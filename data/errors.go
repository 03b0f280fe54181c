package data

import (
	"errors"
	"sync"
)

// Errors collects the failures of a sweep over several backends, e.g. while
// unmounting everything. It is safe for concurrent use.
type Errors struct {
	mu   sync.Mutex
	errs []error
}

// Add records err. Nil errors are ignored.
func (e *Errors) Add(err error) {
	if err == nil {
		return
	}

	e.mu.Lock()
	e.errs = append(e.errs, err)
	e.mu.Unlock()
}

func (e *Errors) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.errs)
}

// Errors returns nil, the only recorded error unchanged so it still compares
// equal to its errno, or all of them joined.
func (e *Errors) Errors() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch len(e.errs) {
	case 0:
		return nil
	case 1:
		return e.errs[0]
	default:
		return errors.Join(e.errs...)
	}
}
