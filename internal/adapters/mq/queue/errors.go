package queue

import "errors"

// Sentinel errors returned by Enqueue.
var (
	ErrFull   = errors.New("outcome queue full")
	ErrClosed = errors.New("outcome queue closed")
)
