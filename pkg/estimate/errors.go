package estimate

import "errors"

// ErrEmptySnapshot is returned when the snapshot is nil or contains no
// zones. An empty snapshot is indistinguishable from a failed fetch, so
// it is fatal rather than an empty estimate.
var ErrEmptySnapshot = errors.New("snapshot contains no zones")

// ErrNilRegistry is returned when no pricing registry was supplied.
var ErrNilRegistry = errors.New("pricing registry is nil")
