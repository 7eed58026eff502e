// Package session runs one tag session at a time against an nfc.Device:
// discovery, identification, optional Ultralight C authentication, one
// page-level action and release. The Poller repeats sessions at an interval.
package session

import (
	"errors"
	"fmt"

	"github.com/nedpals/mfulc/nfc"
)

// Action is the single operation performed on each supported tag.
type Action int

const (
	// ActionNone connects and authenticates but does nothing else.
	ActionNone Action = iota
	ActionInfo
	ActionRead
	ActionWrite
)

func (a Action) String() string {
	switch a {
	case ActionInfo:
		return "info"
	case ActionRead:
		return "read"
	case ActionWrite:
		return "write"
	default:
		return "none"
	}
}

// ErrNoTarget is returned by Config.Validate when a read or write has no file.
var ErrNoTarget = errors.New("read and write need a file name or \"-\"")

// Config is the process-wide session configuration. It is read-only once
// the poll loop starts.
type Config struct {
	Action Action
	Range  PageRange

	// Target is the dump file for ActionRead or the source for ActionWrite.
	// "-" selects standard output or standard input.
	Target string

	// Key authenticates Ultralight C tags. Nil selects nfc.DefaultKey.
	Key *nfc.Key

	// Override allows writes to pages 0-3.
	Override bool
}

// Validate checks the configuration before any device is touched.
func (c Config) Validate() error {
	if err := c.Range.Validate(); err != nil {
		return err
	}
	switch c.Action {
	case ActionNone, ActionInfo:
		return nil
	case ActionRead, ActionWrite:
		if c.Target == "" {
			return ErrNoTarget
		}
		return nil
	default:
		return fmt.Errorf("unknown action %d", int(c.Action))
	}
}

// key returns the key to authenticate with and whether it is the factory default.
func (c Config) key() (nfc.Key, bool) {
	if c.Key == nil {
		return nfc.DefaultKey, true
	}
	return *c.Key, c.Key.IsDefault()
}
