package nfc

import (
	"errors"
	"fmt"
)

// PC/SC part 3 pseudo-APDUs for storage cards. Readers translate them into
// the native Ultralight READ and WRITE commands.
const (
	claPseudo    = 0xFF
	insGetData   = 0xCA
	insReadBin   = 0xB0
	insUpdateBin = 0xD6
)

// Status words returned by readers for pseudo-APDUs.
const (
	SWSuccess      uint16 = 0x9000
	SWWarning      uint16 = 0x6282 // end of data reached before Le bytes
	SWFailed       uint16 = 0x6300
	SWWrongLength  uint16 = 0x6700
	SWNotSupported uint16 = 0x6A81
	SWWrongParams  uint16 = 0x6B00
)

var swText = map[uint16]string{
	SWWarning:      "end of data",
	SWFailed:       "operation failed",
	SWWrongLength:  "wrong length",
	SWNotSupported: "function not supported",
	SWWrongParams:  "wrong parameters",
}

// APDUResponse is a reader response split into data and status word.
type APDUResponse struct {
	Data []byte
	SW   uint16
}

func (r APDUResponse) IsSuccess() bool {
	return r.SW == SWSuccess
}

// Error describes a failing status word, or returns nil on success.
func (r APDUResponse) Error() error {
	if r.IsSuccess() {
		return nil
	}
	if text, ok := swText[r.SW]; ok {
		return fmt.Errorf("reader status %04X: %s", r.SW, text)
	}
	return fmt.Errorf("reader status %04X", r.SW)
}

func ParseAPDUResponse(raw []byte) (APDUResponse, error) {
	n := len(raw)
	if n < 2 {
		return APDUResponse{}, errors.New("response too short")
	}
	return APDUResponse{
		Data: raw[:n-2],
		SW:   uint16(raw[n-2])<<8 | uint16(raw[n-1]),
	}, nil
}

// GetUIDAPDU asks the reader for the UID of the card in the field (FF CA 00 00 00).
func GetUIDAPDU() []byte {
	return []byte{claPseudo, insGetData, 0x00, 0x00, 0x00}
}

// ReadPageAPDU reads one page (FF B0 00 page 04). Many readers answer with
// four pages; callers keep the first.
func ReadPageAPDU(page byte) []byte {
	return []byte{claPseudo, insReadBin, 0x00, page, PageSize}
}

// WritePageAPDU writes one page (FF D6 00 page 04 data).
func WritePageAPDU(page byte, data Page) []byte {
	return append([]byte{claPseudo, insUpdateBin, 0x00, page, PageSize}, data[:]...)
}
