package nfc

import (
	"errors"
	"fmt"

	"github.com/ebfe/scard"
)

// errPCSCAuth is returned by Authenticate on PC/SC readers, which have no
// standard pseudo-APDU for the Ultralight C handshake.
var errPCSCAuth = errors.New("3DES authentication is not available through PC/SC")

// pcscUltralightTag implements UltralightTag over PC/SC storage card
// pseudo-APDUs. The card is already connected when Discover returns it.
type pcscUltralightTag struct {
	card      scardCard
	uid       string
	kind      TagKind
	connected bool
	released  bool
}

var _ UltralightTag = (*pcscUltralightTag)(nil)

func newPCSCUltralightTag(card scardCard, uid string, kind TagKind) *pcscUltralightTag {
	return &pcscUltralightTag{card: card, uid: uid, kind: kind}
}

func (t *pcscUltralightTag) UID() string   { return t.uid }
func (t *pcscUltralightTag) Kind() TagKind { return t.kind }
func (t *pcscUltralightTag) Type() string  { return t.kind.String() }

func (t *pcscUltralightTag) Connect() error {
	if t.released {
		return WrapError(ErrCodeConnectFailed, "Connect", "tag handle already released", nil)
	}
	t.connected = true
	return nil
}

func (t *pcscUltralightTag) Disconnect() error {
	if t.released {
		return nil
	}
	t.released = true
	t.connected = false
	if err := t.card.Disconnect(scard.LeaveCard); err != nil {
		return fmt.Errorf("pcscUltralightTag.Disconnect error: %w", err)
	}
	return nil
}

func (t *pcscUltralightTag) Authenticate(Key) error {
	if t.kind != KindUltralightC {
		return NewNotSupportedError("Authenticate")
	}
	return NewAuthError("Authenticate", t.uid, errPCSCAuth)
}

func (t *pcscUltralightTag) ReadPage(page byte) (Page, error) {
	if page > LastPage {
		return Page{}, NewInvalidPageError("ReadPage", page)
	}
	if !t.connected {
		return Page{}, NewReadError("ReadPage", page, errNotConnected)
	}
	data, err := transmit(t.card, ReadPageAPDU(page))
	if err != nil {
		return Page{}, NewReadError("ReadPage", page, err)
	}
	// Some readers return four pages for any read; keep the first.
	if len(data) < PageSize {
		return Page{}, NewReadError("ReadPage", page, fmt.Errorf("short response: %d bytes", len(data)))
	}
	var p Page
	copy(p[:], data[:PageSize])
	return p, nil
}

func (t *pcscUltralightTag) WritePage(page byte, data Page) error {
	if page > LastPage {
		return NewInvalidPageError("WritePage", page)
	}
	if !t.connected {
		return NewWriteError("WritePage", page, errNotConnected)
	}
	if _, err := transmit(t.card, WritePageAPDU(page, data)); err != nil {
		return NewWriteError("WritePage", page, err)
	}
	return nil
}
