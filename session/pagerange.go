package session

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nedpals/mfulc/nfc"
)

// ErrInvalidRange is returned for ranges that are malformed, reversed or
// outside 0..nfc.LastPage. Out-of-bounds ranges are rejected, not clamped.
var ErrInvalidRange = errors.New("invalid page range")

// PageRange is an inclusive range of page indices.
type PageRange struct {
	Start int
	End   int
}

// FullRange covers every page of an Ultralight C.
var FullRange = PageRange{Start: 0, End: nfc.LastPage}

// ParseRange parses "start:end" with decimal, inclusive bounds, e.g. "4:6".
func ParseRange(s string) (PageRange, error) {
	startStr, endStr, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return PageRange{}, fmt.Errorf("%w %q: want start:end", ErrInvalidRange, s)
	}
	start, err := strconv.Atoi(startStr)
	if err != nil {
		return PageRange{}, fmt.Errorf("%w %q: bad start page", ErrInvalidRange, s)
	}
	end, err := strconv.Atoi(endStr)
	if err != nil {
		return PageRange{}, fmt.Errorf("%w %q: bad end page", ErrInvalidRange, s)
	}
	r := PageRange{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return PageRange{}, err
	}
	return r, nil
}

// Validate checks 0 <= Start <= End <= nfc.LastPage.
func (r PageRange) Validate() error {
	if r.Start < 0 || r.End > nfc.LastPage {
		return fmt.Errorf("%w %s: pages must be within 0:%d", ErrInvalidRange, r, nfc.LastPage)
	}
	if r.Start > r.End {
		return fmt.Errorf("%w %s: start is after end", ErrInvalidRange, r)
	}
	return nil
}

// Len is the number of pages in the range.
func (r PageRange) Len() int {
	return r.End - r.Start + 1
}

func (r PageRange) String() string {
	return fmt.Sprintf("%d:%d", r.Start, r.End)
}

// Protected reports whether writing page index needs the override flag.
// Pages 0-3 hold the UID, lock bytes and OTP bits.
func Protected(index int) bool {
	return index < nfc.FirstUserPage
}
