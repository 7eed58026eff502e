package nfc

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

// Memory layout shared by MIFARE Ultralight and Ultralight C.
const (
	// PageSize is the number of bytes in one page, the unit of every read and write.
	PageSize = 4

	// LastPage is the highest addressable page of an Ultralight C (AUTH1).
	LastPage = 43

	// PageCount is the number of addressable pages, 0 through LastPage.
	PageCount = LastPage + 1

	// KeySize is the length of an Ultralight C 3DES key.
	KeySize = 16
)

// Well-known pages.
const (
	PageLock0 = 2 // bytes 2-3 hold the static lock bits
	PageOTP   = 3
	PageLock1 = 40 // bytes 0-1 hold the dynamic lock bits (Ultralight C only)
	PageAuth0 = 42
	PageAuth1 = 43

	// FirstUserPage is the first page that is not UID, lock or OTP.
	FirstUserPage = 4
)

// Page is one 4-byte page of tag memory.
type Page [PageSize]byte

// String formats the page as space separated lower-case hex bytes, e.g. "aa bb cc dd".
func (p Page) String() string {
	return HexBytes(p[:])
}

// HexBytes formats b as space separated lower-case hex bytes.
func HexBytes(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%02x", v)
	}
	return strings.Join(parts, " ")
}

// Key is a 16-byte Ultralight C 3DES authentication key.
type Key [KeySize]byte

// DefaultKey is the factory key of Ultralight C tags ("IEMKAERB!NACUOYF").
var DefaultKey = Key{
	0x49, 0x45, 0x4D, 0x4B, 0x41, 0x45, 0x52, 0x42,
	0x21, 0x4E, 0x41, 0x43, 0x55, 0x4F, 0x59, 0x46,
}

// ParseKey parses a key written as 32 hex characters. Surrounding whitespace
// is ignored and both upper and lower case digits are accepted.
func ParseKey(s string) (Key, error) {
	var k Key
	s = strings.TrimSpace(s)
	if len(s) != KeySize*2 {
		return k, fmt.Errorf("key must be %d hex characters, got %d", KeySize*2, len(s))
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return k, fmt.Errorf("key is not valid hex: %w", err)
	}
	copy(k[:], raw)
	return k, nil
}

// LoadKeyHexFile reads a key stored as hex text in a file.
func LoadKeyHexFile(path string) (Key, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Key{}, fmt.Errorf("read key file: %w", err)
	}
	k, err := ParseKey(string(content))
	if err != nil {
		return Key{}, fmt.Errorf("key file %s: %w", path, err)
	}
	return k, nil
}

// IsDefault reports whether k is the factory key.
func (k Key) IsDefault() bool {
	return k == DefaultKey
}

// String returns the key as upper-case hex.
func (k Key) String() string {
	return strings.ToUpper(hex.EncodeToString(k[:]))
}
