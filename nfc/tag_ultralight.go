package nfc

import (
	"fmt"

	"github.com/clausecker/freefare"
)

// ultralightAdapter implements UltralightTag for MIFARE Ultralight tags
// discovered through libfreefare.
//
// The freefare connection is opened once by Connect and kept until
// Disconnect, since a 3DES authentication only lasts for one connection.
type ultralightAdapter struct {
	tag       freefare.UltralightTag
	connected bool
	released  bool
}

// Ensure ultralightAdapter implements UltralightTag
var _ UltralightTag = (*ultralightAdapter)(nil)

// newUltralightAdapter creates a new adapter for a MIFARE Ultralight tag.
func newUltralightAdapter(tag freefare.UltralightTag) *ultralightAdapter {
	return &ultralightAdapter{tag: tag}
}

func (u *ultralightAdapter) UID() string {
	return u.tag.UID()
}

func (u *ultralightAdapter) Kind() TagKind {
	switch int(u.tag.Type()) {
	case int(freefare.Ultralight):
		return KindUltralight
	case int(freefare.UltralightC):
		return KindUltralightC
	default:
		return KindUnsupported
	}
}

func (u *ultralightAdapter) Type() string {
	if k := u.Kind(); k.Supported() {
		return k.String()
	}
	return fmt.Sprintf("MIFARE Ultralight (type %d)", int(u.tag.Type()))
}

func (u *ultralightAdapter) Connect() error {
	if u.connected {
		return nil
	}
	if u.released {
		return WrapError(ErrCodeConnectFailed, "Connect", "tag handle already released", nil)
	}
	if err := u.tag.Connect(); err != nil {
		return WrapError(ErrCodeConnectFailed, "Connect", "cannot connect to tag "+u.tag.UID(), err)
	}
	u.connected = true
	return nil
}

// Disconnect ends the connection. It is safe to call more than once and on
// a handle that never connected.
func (u *ultralightAdapter) Disconnect() error {
	if u.released {
		return nil
	}
	u.released = true
	if !u.connected {
		return nil
	}
	u.connected = false
	if err := u.tag.Disconnect(); err != nil {
		return fmt.Errorf("ultralightAdapter.Disconnect error: %w", err)
	}
	return nil
}

// Authenticate runs the 3DES handshake of an Ultralight C.
func (u *ultralightAdapter) Authenticate(key Key) error {
	if u.Kind() != KindUltralightC {
		return NewNotSupportedError("Authenticate")
	}
	if !u.connected {
		return NewAuthError("Authenticate", u.tag.UID(), errNotConnected)
	}
	k := freefare.NewDESFire3DESKey([KeySize]byte(key))
	if err := u.tag.Authenticate(*k); err != nil {
		return NewAuthError("Authenticate", u.tag.UID(), err)
	}
	return nil
}

// ReadPage reads a 4-byte page from the Ultralight tag.
func (u *ultralightAdapter) ReadPage(page byte) (Page, error) {
	if page > LastPage {
		return Page{}, NewInvalidPageError("ReadPage", page)
	}
	if !u.connected {
		return Page{}, NewReadError("ReadPage", page, errNotConnected)
	}
	data, err := u.tag.ReadPage(page)
	if err != nil {
		return Page{}, NewReadError("ReadPage", page, err)
	}
	return Page(data), nil
}

// WritePage writes a 4-byte page to the Ultralight tag.
func (u *ultralightAdapter) WritePage(page byte, data Page) error {
	if page > LastPage {
		return NewInvalidPageError("WritePage", page)
	}
	if !u.connected {
		return NewWriteError("WritePage", page, errNotConnected)
	}
	if err := u.tag.WritePage(page, [PageSize]byte(data)); err != nil {
		return NewWriteError("WritePage", page, err)
	}
	return nil
}
