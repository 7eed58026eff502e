package nfc

import (
	"errors"
	"fmt"
	"testing"
)

func TestNFCError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *NFCError
		expected string
	}{
		{
			name: "with op and message",
			err: &NFCError{
				Code:    ErrCodeNotSupported,
				Op:      "Authenticate",
				Message: "operation not supported",
			},
			expected: "Authenticate: operation not supported",
		},
		{
			name: "with op, message, and cause",
			err: &NFCError{
				Code:    ErrCodeReadFailed,
				Op:      "ReadPage",
				Message: "read of page 4 failed",
				Cause:   errors.New("RF timeout"),
			},
			expected: "ReadPage: read of page 4 failed: RF timeout",
		},
		{
			name: "with tag uid",
			err: &NFCError{
				Code:    ErrCodeAuthFailed,
				Op:      "Authenticate",
				TagUID:  "04a1b2c3",
				Message: "authentication failed",
			},
			expected: "Authenticate [04a1b2c3]: authentication failed",
		},
		{
			name: "message only",
			err: &NFCError{
				Code:    ErrCodeNoDevice,
				Message: "no nfc device attached",
			},
			expected: "no nfc device attached",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("NFCError.Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNFCError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := NewWriteError("WritePage", 7, cause)

	if unwrapped := err.Unwrap(); unwrapped != cause {
		t.Errorf("NFCError.Unwrap() = %v, want %v", unwrapped, cause)
	}

	errNoCause := NewNotSupportedError("Authenticate")
	if unwrapped := errNoCause.Unwrap(); unwrapped != nil {
		t.Errorf("NFCError.Unwrap() = %v, want nil", unwrapped)
	}
}

func TestNFCError_Is(t *testing.T) {
	err1 := &NFCError{Code: ErrCodeAuthFailed, Message: "test"}
	err2 := &NFCError{Code: ErrCodeAuthFailed, Message: "different message"}
	err3 := &NFCError{Code: ErrCodeReadFailed, Message: "test"}

	if !err1.Is(err2) {
		t.Error("NFCError.Is() should return true for same code")
	}
	if err1.Is(err3) {
		t.Error("NFCError.Is() should return false for different code")
	}
	if err1.Is(errors.New("not an NFCError")) {
		t.Error("NFCError.Is() should return false for non-NFCError")
	}
}

func TestPageErrors(t *testing.T) {
	cause := errors.New("NACK")

	read := NewReadError("ReadPage", 12, cause)
	if read.Code != ErrCodeReadFailed {
		t.Errorf("Code = %v, want %v", read.Code, ErrCodeReadFailed)
	}
	if read.Error() != "ReadPage: read of page 12 failed: NACK" {
		t.Errorf("Error() = %q", read.Error())
	}

	write := NewWriteError("WritePage", 3, cause)
	if write.Code != ErrCodeWriteFailed {
		t.Errorf("Code = %v, want %v", write.Code, ErrCodeWriteFailed)
	}

	invalid := NewInvalidPageError("ReadPage", 44)
	if invalid.Error() != "ReadPage: page 44 out of range 0..43" {
		t.Errorf("Error() = %q", invalid.Error())
	}
}

func TestNewAuthError(t *testing.T) {
	cause := errors.New("wrong key")
	err := NewAuthError("Authenticate", "04a1b2c3", cause)

	if err.Code != ErrCodeAuthFailed {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeAuthFailed)
	}
	if err.TagUID != "04a1b2c3" {
		t.Errorf("TagUID = %q, want %q", err.TagUID, "04a1b2c3")
	}
	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
}

func TestIsNotSupportedError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"NFCError with ErrCodeNotSupported", NewNotSupportedError("Authenticate"), true},
		{"NFCError with different code", &NFCError{Code: ErrCodeReadFailed, Message: "read failed"}, false},
		{"wrapped", fmt.Errorf("outer: %w", NewNotSupportedError("WritePage")), true},
		{"plain error mentioning support", fmt.Errorf("3DES not supported by reader"), false},
		{"unrelated error", errors.New("connection lost"), false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotSupportedError(tt.err); got != tt.expected {
				t.Errorf("IsNotSupportedError() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsAuthError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"NFCError with ErrCodeAuthFailed", NewAuthError("Authenticate", "04a1b2c3", nil), true},
		{"wrapped", fmt.Errorf("session: %w", NewAuthError("Authenticate", "", nil)), true},
		{"plain error mentioning authentication", fmt.Errorf("authentication failed"), false},
		{"unrelated error", errors.New("connection lost"), false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAuthError(tt.err); got != tt.expected {
				t.Errorf("IsAuthError() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsNoDeviceError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"no driver", WrapError(ErrCodeNoDriver, "ListDevices", "failed", nil), true},
		{"no device", WrapError(ErrCodeNoDevice, "SelectDevice", "none", nil), true},
		{"bad index", Errorf(ErrCodeDeviceIndex, "SelectDevice", "device with ID %d not in list", 3), true},
		{"open failed", WrapError(ErrCodeOpenFailed, "OpenDevice", "cannot open", nil), true},
		{"tag error", NewReadError("ReadPage", 1, nil), false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNoDeviceError(tt.err); got != tt.expected {
				t.Errorf("IsNoDeviceError() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	nfcErr := &NFCError{Code: ErrCodeReadFailed}
	if code := GetErrorCode(nfcErr); code != ErrCodeReadFailed {
		t.Errorf("GetErrorCode() = %v, want %v", code, ErrCodeReadFailed)
	}

	wrapped := fmt.Errorf("outer: %w", nfcErr)
	if code := GetErrorCode(wrapped); code != ErrCodeReadFailed {
		t.Errorf("GetErrorCode() = %v, want %v", code, ErrCodeReadFailed)
	}

	regularErr := errors.New("regular error")
	if code := GetErrorCode(regularErr); code != 0 {
		t.Errorf("GetErrorCode() = %v, want 0", code)
	}
}

func TestErrorCodeString(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{ErrCodeAuthFailed, "auth failed"},
		{ErrCodeDeviceIndex, "device index"},
		{ErrorCode(999), "code(999)"},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("ErrorCode(%d).String() = %q, want %q", int(tt.code), got, tt.want)
		}
	}
}

func TestErrorf(t *testing.T) {
	err := Errorf(ErrCodeDeviceIndex, "SelectDevice", "device with ID %d not in list", 5)

	if err.Code != ErrCodeDeviceIndex {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeDeviceIndex)
	}
	if err.Message != "device with ID 5 not in list" {
		t.Errorf("Message = %q, want %q", err.Message, "device with ID 5 not in list")
	}
}
