package treesync

import "errors"

var (
	// ErrWatchSetup indicates the recursive watch on a root could not be
	// established. Fatal to Init; the service stays closed.
	ErrWatchSetup = errors.New("watch setup failed")

	// ErrPersistence indicates a custom-order read or write against the
	// durable store failed. Never fatal; the in-memory order remains
	// authoritative and the failure is reported out of band.
	ErrPersistence = errors.New("custom order persistence failed")

	// ErrAlreadyOpen indicates Init was called on a service that already
	// has an open root.
	ErrAlreadyOpen = errors.New("service already open")

	// ErrNotOpen names the "no root open" condition. Root-scoped
	// operations (Refresh, Close) deliberately no-op instead of
	// returning it; it exists for callers that want to probe state.
	ErrNotOpen = errors.New("service not open")
)
