package nfc

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies NFC errors so callers can tell session-local failures
// from the ones that end the process.
type ErrorCode int

const (
	// Tag operation errors (100-199)
	ErrCodeNotSupported ErrorCode = iota + 100
	ErrCodeTagRemoved
	ErrCodeAuthFailed
	ErrCodeReadFailed
	ErrCodeWriteFailed
	ErrCodeConnectFailed
	ErrCodeInvalidPage
)

const (
	// Device errors (200-299)
	ErrCodeNoDriver ErrorCode = iota + 200
	ErrCodeNoDevice
	ErrCodeDeviceIndex
	ErrCodeOpenFailed
)

var codeNames = map[ErrorCode]string{
	ErrCodeNotSupported:  "not supported",
	ErrCodeTagRemoved:    "tag removed",
	ErrCodeAuthFailed:    "auth failed",
	ErrCodeReadFailed:    "read failed",
	ErrCodeWriteFailed:   "write failed",
	ErrCodeConnectFailed: "connect failed",
	ErrCodeInvalidPage:   "invalid page",
	ErrCodeNoDriver:      "no driver",
	ErrCodeNoDevice:      "no device",
	ErrCodeDeviceIndex:   "device index",
	ErrCodeOpenFailed:    "open failed",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// NFCError carries a code plus the operation and, for tag errors, the UID
// of the tag involved.
type NFCError struct {
	Code    ErrorCode
	Op      string // e.g. "ReadPage", "SelectDevice"
	TagUID  string
	Message string
	Cause   error
}

// Error formats as "op [uid]: message: cause", leaving out empty parts.
func (e *NFCError) Error() string {
	var sb strings.Builder
	if e.Op != "" {
		sb.WriteString(e.Op)
		if e.TagUID != "" {
			sb.WriteString(" [")
			sb.WriteString(e.TagUID)
			sb.WriteString("]")
		}
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

func (e *NFCError) Unwrap() error {
	return e.Cause
}

// Is matches any *NFCError with the same code.
func (e *NFCError) Is(target error) bool {
	t, ok := target.(*NFCError)
	return ok && e.Code == t.Code
}

func NewNotSupportedError(op string) *NFCError {
	return &NFCError{Code: ErrCodeNotSupported, Op: op, Message: "operation not supported"}
}

func NewAuthError(op, tagUID string, cause error) *NFCError {
	return &NFCError{Code: ErrCodeAuthFailed, Op: op, TagUID: tagUID, Message: "authentication failed", Cause: cause}
}

func NewReadError(op string, page byte, cause error) *NFCError {
	return &NFCError{Code: ErrCodeReadFailed, Op: op, Message: fmt.Sprintf("read of page %d failed", page), Cause: cause}
}

func NewWriteError(op string, page byte, cause error) *NFCError {
	return &NFCError{Code: ErrCodeWriteFailed, Op: op, Message: fmt.Sprintf("write of page %d failed", page), Cause: cause}
}

// NewInvalidPageError reports a page index outside 0..LastPage.
func NewInvalidPageError(op string, page byte) *NFCError {
	return &NFCError{Code: ErrCodeInvalidPage, Op: op, Message: fmt.Sprintf("page %d out of range 0..%d", page, LastPage)}
}

// WrapError wraps cause with a code and operation.
func WrapError(code ErrorCode, op, message string, cause error) *NFCError {
	return &NFCError{Code: code, Op: op, Message: message, Cause: cause}
}

// Errorf creates an NFCError with a formatted message and no cause.
func Errorf(code ErrorCode, op, format string, args ...any) *NFCError {
	return &NFCError{Code: code, Op: op, Message: fmt.Sprintf(format, args...)}
}

// GetErrorCode returns the code of the first NFCError in err's chain, or 0.
func GetErrorCode(err error) ErrorCode {
	var nfcErr *NFCError
	if errors.As(err, &nfcErr) {
		return nfcErr.Code
	}
	return 0
}

func hasCode(err error, codes ...ErrorCode) bool {
	got := GetErrorCode(err)
	if got == 0 {
		return false
	}
	for _, c := range codes {
		if got == c {
			return true
		}
	}
	return false
}

func IsNotSupportedError(err error) bool {
	return hasCode(err, ErrCodeNotSupported)
}

func IsAuthError(err error) bool {
	return hasCode(err, ErrCodeAuthFailed)
}

// IsNoDeviceError reports whether err means that no reader could be used.
// These errors end the process.
func IsNoDeviceError(err error) bool {
	return hasCode(err, ErrCodeNoDriver, ErrCodeNoDevice, ErrCodeDeviceIndex, ErrCodeOpenFailed)
}
