// Package request holds the validated query request passed to the executor.
package request

import (
	"fmt"

	"github.com/survivor-labs/survivor-indexer/internal/domain"
)

// Defaults for the pagination window.
const (
	DefaultLimit    = 10
	DefaultMaxLimit = 100
)

// Window is an offset pagination window.
type Window struct {
	Skip  int
	Limit int
}

// Limits bounds caller-supplied windows.
type Limits struct {
	Default int
	Max     int
}

// DefaultLimits returns the built-in limits.
func DefaultLimits() Limits {
	return Limits{Default: DefaultLimit, Max: DefaultMaxLimit}
}

// NewWindow validates a caller window. Nil values take the defaults
// (limit from l, skip 0).
func (l Limits) NewWindow(limit, skip *int) (Window, error) {
	w := Window{Limit: l.Default}
	if limit != nil {
		w.Limit = *limit
	}
	if skip != nil {
		w.Skip = *skip
	}
	if w.Limit < 1 || w.Limit > l.Max {
		return Window{}, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrInvalidRequest, l.Max)
	}
	if w.Skip < 0 {
		return Window{}, fmt.Errorf("%w: skip must be >= 0", domain.ErrInvalidRequest)
	}
	return w, nil
}
