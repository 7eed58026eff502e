package nfc

import (
	"fmt"
	"sync"
)

// MockDevice is a test implementation of Device that simulates a reader.
//
// Each Discover call takes the next entry of Discoveries. Once the queue is
// drained, Discover reports an empty field, or calls OnDrained if set.
//
// Example:
//
//	mock := NewMockDevice()
//	mock.Discoveries = []Discovery{{Tag: NewMockUltralightC("04a1b2c3")}, {}}
//	tag, _ := mock.Discover()
type MockDevice struct {
	// DeviceName is the simulated device name returned by String()
	DeviceName string

	// DeviceConnection is the simulated connection string returned by Connection()
	DeviceConnection string

	// IsOpen tracks whether the device is currently open
	IsOpen bool

	// CloseError, if set, will be returned by Close()
	CloseError error

	// Discoveries are consumed one per Discover call.
	Discoveries []Discovery

	// OnDrained runs when Discover is called with an empty queue.
	OnDrained func()

	// CallLog tracks all method calls for verification in tests
	CallLog []string

	mu sync.Mutex
}

// Discovery is one scripted Discover result. The zero value is an empty field.
type Discovery struct {
	Tag UltralightTag
	Err error
}

// NewMockDevice creates a new MockDevice with default values.
func NewMockDevice() *MockDevice {
	return &MockDevice{
		DeviceName:       "Mock NFC Reader",
		DeviceConnection: "mock:usb:001",
		IsOpen:           true,
		CallLog:          make([]string, 0),
	}
}

// Close simulates closing the device.
func (m *MockDevice) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallLog = append(m.CallLog, "Close")

	if !m.IsOpen {
		return fmt.Errorf("device already closed")
	}
	if m.CloseError != nil {
		return m.CloseError
	}
	m.IsOpen = false
	return nil
}

func (m *MockDevice) String() string {
	return m.DeviceName
}

func (m *MockDevice) Connection() string {
	return m.DeviceConnection
}

// Discover returns the next scripted result.
func (m *MockDevice) Discover() (UltralightTag, error) {
	m.mu.Lock()
	m.CallLog = append(m.CallLog, "Discover")
	if !m.IsOpen {
		m.mu.Unlock()
		return nil, ErrDeviceClosed
	}
	if len(m.Discoveries) == 0 {
		drained := m.OnDrained
		m.mu.Unlock()
		if drained != nil {
			drained()
		}
		return nil, nil
	}
	next := m.Discoveries[0]
	m.Discoveries = m.Discoveries[1:]
	m.mu.Unlock()

	if next.Err != nil {
		return nil, next.Err
	}
	return next.Tag, nil
}

// GetCallLog returns a copy of the call log
func (m *MockDevice) GetCallLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]string, len(m.CallLog))
	copy(result, m.CallLog)
	return result
}
