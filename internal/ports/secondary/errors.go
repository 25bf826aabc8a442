package secondary

import "errors"

// ErrNotFound is returned (wrapped) by repositories when a record does not exist.
var ErrNotFound = errors.New("record not found")
