package dispatch

import "errors"

var (
	// ErrRunning means Start was called on a dispatcher that is already
	// draining its queue.
	ErrRunning = errors.New("dispatcher already running")

	// ErrStopped means the dispatcher no longer accepts messages.
	ErrStopped = errors.New("dispatcher stopped")

	// ErrQueueFull means the inbound queue is saturated. The message was
	// not accepted; the caller decides whether to retry or drop.
	ErrQueueFull = errors.New("dispatch queue full")
)
