package errors

import "errors"

// ErrOptimisticLock the row changed under us: its version no longer matches the one read.
var ErrOptimisticLock = errors.New("record was modified by another request, please retry")
