//go:build deadlock

package syncutil

import deadlock "github.com/sasha-s/go-deadlock"

// Mutex reports potential deadlocks through go-deadlock.
type Mutex struct {
	deadlock.Mutex
}
