package nfc

import (
	"errors"
	"time"
)

const (
	DeviceEnumRetries  = 3                      // retries after the first failed enumeration
	DeviceEnumInterval = 100 * time.Millisecond // pause between enumeration attempts

	// DiscoverTimeout mirrors libnfc's poll period of 0x0f * 150ms.
	DiscoverTimeout = 2250 * time.Millisecond
)

var (
	// ErrDeviceClosed is returned by Discover after Close. It ends the poll loop.
	ErrDeviceClosed = errors.New("device closed")

	errNotConnected = errors.New("tag not connected")
)

// NewCardRemovedError reports a card that left the field mid-operation.
func NewCardRemovedError(cause error) error {
	return WrapError(ErrCodeTagRemoved, "", "card was removed", cause)
}

func IsCardRemovedError(err error) bool {
	return hasCode(err, ErrCodeTagRemoved)
}

func IsDeviceClosedError(err error) bool {
	return errors.Is(err, ErrDeviceClosed)
}
