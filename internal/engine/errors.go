package engine

import "errors"

// ErrNoBaseSnapshot indicates a caller-sequencing bug: an extension was
// activated or applied before a base snapshot was captured.
var ErrNoBaseSnapshot = errors.New("no base snapshot captured for extension")
