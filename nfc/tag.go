package nfc

import "fmt"

// TagKind classifies a discovered tag for the purpose of this tool.
type TagKind int

const (
	// KindUnsupported is any tag that is neither Ultralight nor Ultralight C.
	KindUnsupported TagKind = iota
	// KindUltralight is a plain MIFARE Ultralight (no authentication).
	KindUltralight
	// KindUltralightC is a MIFARE Ultralight C (3DES authentication).
	KindUltralightC
)

func (k TagKind) String() string {
	switch k {
	case KindUltralight:
		return CardTypeUltralight
	case KindUltralightC:
		return CardTypeUltralightC
	default:
		return "unsupported"
	}
}

// Supported reports whether the page engine may operate on this kind.
func (k TagKind) Supported() bool {
	return k == KindUltralight || k == KindUltralightC
}

// TagIdentity is what a session learns about a tag before touching its pages.
type TagIdentity struct {
	UID  string
	Kind TagKind
	Type string // driver-specific description, e.g. "MF Ultralight C" or "MIFARE Classic 1K"
}

func (id TagIdentity) String() string {
	return fmt.Sprintf("%s (%s)", id.UID, id.Type)
}

// UltralightTag is a tag handle returned by Device.Discover.
//
// A handle is valid for a single session. Page operations require a prior
// successful Connect. Disconnect releases the handle and may be called more
// than once; calls after the first are no-ops.
//
// Example:
//
//	tag, _ := device.Discover()
//	if tag == nil {
//	    return // nothing in the field
//	}
//	defer tag.Disconnect()
//	if err := tag.Connect(); err != nil {
//	    return err
//	}
//	page, _ := tag.ReadPage(4)
type UltralightTag interface {
	UID() string
	Kind() TagKind
	Type() string

	Connect() error
	Disconnect() error

	// Authenticate runs the Ultralight C 3DES handshake. A failure leaves the
	// handle usable; protected pages will fail on their own.
	Authenticate(key Key) error

	ReadPage(page byte) (Page, error)
	WritePage(page byte, data Page) error
}

// Identify captures the identity of tag. It has no side effects on tag memory.
func Identify(tag UltralightTag) TagIdentity {
	return TagIdentity{
		UID:  tag.UID(),
		Kind: tag.Kind(),
		Type: tag.Type(),
	}
}

// unsupportedTag wraps tags of other families so that discovery can still
// hand them to a session, which identifies and releases them.
type unsupportedTag struct {
	uid      string
	typeName string
	release  func() error
	released bool
}

var _ UltralightTag = (*unsupportedTag)(nil)

func newUnsupportedTag(uid, typeName string, release func() error) *unsupportedTag {
	return &unsupportedTag{uid: uid, typeName: typeName, release: release}
}

func (t *unsupportedTag) UID() string   { return t.uid }
func (t *unsupportedTag) Kind() TagKind { return KindUnsupported }
func (t *unsupportedTag) Type() string  { return t.typeName }

func (t *unsupportedTag) Connect() error {
	return WrapError(ErrCodeConnectFailed, "Connect", "not an ultralight tag", nil)
}

func (t *unsupportedTag) Disconnect() error {
	if t.released {
		return nil
	}
	t.released = true
	if t.release != nil {
		return t.release()
	}
	return nil
}

func (t *unsupportedTag) Authenticate(Key) error {
	return NewNotSupportedError("Authenticate")
}

func (t *unsupportedTag) ReadPage(byte) (Page, error) {
	return Page{}, NewNotSupportedError("ReadPage")
}

func (t *unsupportedTag) WritePage(byte, Page) error {
	return NewNotSupportedError("WritePage")
}
