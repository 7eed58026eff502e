package session

import (
	"bytes"
	"fmt"
	"io"

	"github.com/nedpals/mfulc/nfc"
)

// authDisabledFrom is the lowest AUTH0 value that disables protection:
// an Ultralight C has pages 0x00-0x2F.
const authDisabledFrom = 0x30

// Info is the diagnostics report for one tag. Fields whose page could not be
// read are nil.
type Info struct {
	UID  string
	Type string

	// LockBytes holds page 2 bytes 2-3 followed by page 40 bytes 0-1.
	// It has two bytes when only page 2 was readable.
	LockBytes []byte

	OTP   *nfc.Page
	Auth0 *byte
	Auth1 *byte

	// DefaultKeyAccepted records whether an Ultralight C accepted the
	// factory key. Nil means the factory key was not tried.
	DefaultKeyAccepted *bool
}

// CollectInfo reads the lock, OTP and AUTH pages of tag. Each read is
// independent; a failed read leaves its field empty.
func CollectInfo(tag nfc.UltralightTag, id nfc.TagIdentity) Info {
	info := Info{UID: id.UID, Type: id.Type}

	if p, err := tag.ReadPage(nfc.PageLock0); err == nil {
		info.LockBytes = append(info.LockBytes, p[2], p[3])
		if p, err := tag.ReadPage(nfc.PageLock1); err == nil {
			info.LockBytes = append(info.LockBytes, p[0], p[1])
		}
	}
	if p, err := tag.ReadPage(nfc.PageOTP); err == nil {
		info.OTP = &p
	}
	if p, err := tag.ReadPage(nfc.PageAuth0); err == nil {
		b := p[0]
		info.Auth0 = &b
	}
	if p, err := tag.ReadPage(nfc.PageAuth1); err == nil {
		b := p[0]
		info.Auth1 = &b
	}
	return info
}

// Protection describes the access restriction configured by AUTH0 and AUTH1.
func (i Info) Protection() string {
	if i.Auth0 == nil {
		return "unknown"
	}
	from := int(*i.Auth0)
	if from >= authDisabledFrom {
		return "authentication disabled"
	}
	if i.Auth1 == nil {
		return fmt.Sprintf("pages %d+ protected", from)
	}
	if *i.Auth1&0x01 == 0 {
		return fmt.Sprintf("pages %d+ read and write protected", from)
	}
	return fmt.Sprintf("pages %d+ write protected", from)
}

// WriteTo renders the report, one labelled field per line.
func (i Info) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "UID:        %s\n", i.UID)
	fmt.Fprintf(&buf, "Type:       %s\n", i.Type)
	fmt.Fprintf(&buf, "Lock bytes: %s\n", optional(i.LockBytes != nil, func() string { return nfc.HexBytes(i.LockBytes) }))
	fmt.Fprintf(&buf, "OTP:        %s\n", optional(i.OTP != nil, func() string { return i.OTP.String() }))
	fmt.Fprintf(&buf, "AUTH0:      %s\n", optional(i.Auth0 != nil, func() string { return fmt.Sprintf("%02x", *i.Auth0) }))
	fmt.Fprintf(&buf, "AUTH1:      %s\n", optional(i.Auth1 != nil, func() string { return fmt.Sprintf("%02x", *i.Auth1) }))
	fmt.Fprintf(&buf, "Protection: %s\n", i.Protection())
	fmt.Fprintf(&buf, "Key check:  %s\n", i.KeyCheck())
	return buf.WriteTo(w)
}

// KeyCheck reports whether the tag still accepts the factory key.
func (i Info) KeyCheck() string {
	switch {
	case i.DefaultKeyAccepted == nil:
		return "n/a"
	case *i.DefaultKeyAccepted:
		return "default key accepted"
	default:
		return "default key rejected"
	}
}

func optional(ok bool, format func() string) string {
	if !ok {
		return "n/a"
	}
	return format()
}
