package nfc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ebfe/scard"
)

// pcscDevice implements Device for one PC/SC reader.
type pcscDevice struct {
	ctx        scardContext
	readerName string
	closed     bool
}

func newPCSCDevice(ctx scardContext, readerName string) *pcscDevice {
	return &pcscDevice{ctx: ctx, readerName: readerName}
}

func (d *pcscDevice) Close() error {
	d.closed = true
	return nil
}

func (d *pcscDevice) String() string {
	return d.readerName
}

func (d *pcscDevice) Connection() string {
	return "pcsc:" + d.readerName
}

// Discover waits up to DiscoverTimeout for a card and connects to it.
func (d *pcscDevice) Discover() (UltralightTag, error) {
	if d.closed {
		return nil, ErrDeviceClosed
	}

	states := []scard.ReaderState{{Reader: d.readerName, CurrentState: scard.StateUnaware}}
	if err := d.ctx.GetStatusChange(states, 0); err != nil && !errors.Is(err, scard.ErrTimeout) {
		return nil, fmt.Errorf("pcscDevice.Discover: %w", err)
	}
	if states[0].EventState&scard.StatePresent == 0 {
		states[0].CurrentState = states[0].EventState &^ scard.StateChanged
		err := d.ctx.GetStatusChange(states, DiscoverTimeout)
		if errors.Is(err, scard.ErrTimeout) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("pcscDevice.Discover: %w", err)
		}
		if states[0].EventState&scard.StatePresent == 0 {
			return nil, nil
		}
	}

	card, err := d.ctx.Connect(d.readerName)
	if err != nil {
		if isCardRemovedPCSCError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("pcscDevice.Discover: connect to %s: %w", d.readerName, err)
	}

	status, err := card.Status()
	if err != nil {
		card.Disconnect(scard.LeaveCard)
		return nil, fmt.Errorf("pcscDevice.Discover: card status: %w", err)
	}
	uid, err := readUID(card)
	if err != nil {
		card.Disconnect(scard.LeaveCard)
		if IsCardRemovedError(err) {
			return nil, nil
		}
		return nil, err
	}

	kind, typeName := classifyATR(status.Atr)
	if !kind.Supported() {
		return newUnsupportedTag(uid, typeName, func() error {
			return card.Disconnect(scard.LeaveCard)
		}), nil
	}
	return newPCSCUltralightTag(card, uid, kind), nil
}

// readUID retrieves the card UID using GET UID APDU
func readUID(card scardCard) (string, error) {
	resp, err := transmit(card, GetUIDAPDU())
	if err != nil {
		return "", fmt.Errorf("GET UID failed: %w", err)
	}
	return strings.ToLower(fmt.Sprintf("%x", resp)), nil
}

// transmit sends one APDU and returns the response data of a successful
// status word.
func transmit(card scardCard, cmd []byte) ([]byte, error) {
	raw, err := card.Transmit(cmd)
	if err != nil {
		if isCardRemovedPCSCError(err) {
			return nil, NewCardRemovedError(err)
		}
		return nil, err
	}
	resp, err := ParseAPDUResponse(raw)
	if err != nil {
		return nil, err
	}
	if err := resp.Error(); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// isCardRemovedPCSCError checks if a PC/SC error indicates the card was removed.
func isCardRemovedPCSCError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, scard.ErrRemovedCard) ||
		errors.Is(err, scard.ErrResetCard) ||
		errors.Is(err, scard.ErrNoSmartcard) ||
		errors.Is(err, scard.ErrUnpoweredCard)
}
