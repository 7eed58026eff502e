package nfc

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// MockUltralightTag is a test implementation of UltralightTag backed by an
// in-memory page image.
//
// Example:
//
//	tag := NewMockUltralightC("04a1b2c3d4e5f6")
//	tag.Memory[4] = Page{0xAA, 0xBB, 0xCC, 0xDD}
//	tag.ReadErrors[10] = errors.New("locked")
type MockUltralightTag struct {
	// TagUID is the UID returned by UID()
	TagUID string

	// TagKind is returned by Kind()
	TagKind TagKind

	// TagType overrides the type string; defaults to TagKind.String()
	TagType string

	// Memory is the page image read and written by the page operations
	Memory [PageCount]Page

	// ConnectError, if set, will be returned by Connect()
	ConnectError error

	// DisconnectError, if set, will be returned by Disconnect()
	DisconnectError error

	// AuthKey is the key Authenticate accepts. Any other key fails.
	AuthKey Key

	// AuthError, if set, will be returned by Authenticate() regardless of key
	AuthError error

	// ReadErrors and WriteErrors fail individual pages.
	ReadErrors  map[byte]error
	WriteErrors map[byte]error

	// IsConnected tracks whether the tag is currently connected
	IsConnected bool

	// Authenticated is set by a successful Authenticate
	Authenticated bool

	// Released counts Disconnect calls
	Released int

	// Written lists the page indices passed to WritePage, in order
	Written []byte

	// CallLog tracks all method calls for verification in tests
	CallLog []string

	mu sync.Mutex
}

var _ UltralightTag = (*MockUltralightTag)(nil)

// NewMockUltralightTag creates a mock tag of the given kind that accepts the factory key.
func NewMockUltralightTag(uid string, kind TagKind) *MockUltralightTag {
	return &MockUltralightTag{
		TagUID:      uid,
		TagKind:     kind,
		AuthKey:     DefaultKey,
		ReadErrors:  make(map[byte]error),
		WriteErrors: make(map[byte]error),
		CallLog:     make([]string, 0),
	}
}

// NewMockUltralightC creates a mock Ultralight C tag.
func NewMockUltralightC(uid string) *MockUltralightTag {
	return NewMockUltralightTag(uid, KindUltralightC)
}

func (m *MockUltralightTag) log(call string) {
	m.CallLog = append(m.CallLog, call)
}

func (m *MockUltralightTag) UID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("UID")
	return m.TagUID
}

func (m *MockUltralightTag) Kind() TagKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("Kind")
	return m.TagKind
}

func (m *MockUltralightTag) Type() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("Type")
	if m.TagType != "" {
		return m.TagType
	}
	return m.TagKind.String()
}

func (m *MockUltralightTag) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("Connect")
	if m.ConnectError != nil {
		return m.ConnectError
	}
	m.IsConnected = true
	return nil
}

func (m *MockUltralightTag) Disconnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("Disconnect")
	m.Released++
	m.IsConnected = false
	m.Authenticated = false
	return m.DisconnectError
}

func (m *MockUltralightTag) Authenticate(key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("Authenticate")
	if m.TagKind != KindUltralightC {
		return NewNotSupportedError("Authenticate")
	}
	if m.AuthError != nil {
		return NewAuthError("Authenticate", m.TagUID, m.AuthError)
	}
	if key != m.AuthKey {
		return NewAuthError("Authenticate", m.TagUID, errors.New("key mismatch"))
	}
	m.Authenticated = true
	return nil
}

func (m *MockUltralightTag) ReadPage(page byte) (Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log(fmt.Sprintf("ReadPage(%d)", page))
	if page > LastPage {
		return Page{}, NewInvalidPageError("ReadPage", page)
	}
	if !m.IsConnected {
		return Page{}, NewReadError("ReadPage", page, errNotConnected)
	}
	if err := m.ReadErrors[page]; err != nil {
		return Page{}, NewReadError("ReadPage", page, err)
	}
	return m.Memory[page], nil
}

func (m *MockUltralightTag) WritePage(page byte, data Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log(fmt.Sprintf("WritePage(%d)", page))
	m.Written = append(m.Written, page)
	if page > LastPage {
		return NewInvalidPageError("WritePage", page)
	}
	if !m.IsConnected {
		return NewWriteError("WritePage", page, errNotConnected)
	}
	if err := m.WriteErrors[page]; err != nil {
		return NewWriteError("WritePage", page, err)
	}
	m.Memory[page] = data
	return nil
}

// CallCount returns how many logged calls start with prefix, e.g. "ReadPage".
func (m *MockUltralightTag) CallCount(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.CallLog {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// GetCallLog returns a copy of the call log
func (m *MockUltralightTag) GetCallLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]string, len(m.CallLog))
	copy(result, m.CallLog)
	return result
}
