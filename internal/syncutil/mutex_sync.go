//go:build !deadlock

// Package syncutil holds the mutex types used across mfulc.
// Regular builds use the sync package directly; building with -tags=deadlock
// swaps in github.com/sasha-s/go-deadlock to report lock-order problems
// between the poll loop and the event hub.
package syncutil

import "sync"

// Mutex is a sync.Mutex unless built with -tags=deadlock.
type Mutex struct {
	sync.Mutex
}
