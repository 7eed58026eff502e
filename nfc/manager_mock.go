package nfc

import (
	"fmt"
	"sync"
)

// MockManager is a Manager for tests. Readers are listed from DevicesList;
// OpenDevice returns the entry of Readers for the connection string, or
// MockDevice when there is none.
//
// Example:
//
//	manager := NewMockManager()
//	manager.MockDevice.Discoveries = []Discovery{{Tag: NewMockUltralightC("04a1b2c3d4e5f6")}}
//	dev, _, _ := SelectDevice(manager, 0)
type MockManager struct {
	DevicesList      []string
	ListDevicesError error

	// Readers maps connection strings to devices; MockDevice is the fallback.
	Readers    map[string]*MockDevice
	MockDevice *MockDevice

	OpenDeviceError error
	VersionString   string

	// CallLog records "ListDevices" and "OpenDevice(conn)" in call order.
	CallLog []string

	mu sync.Mutex
}

var _ Manager = (*MockManager)(nil)

// NewMockManager returns a manager with one reader, "mock:usb:001".
func NewMockManager() *MockManager {
	return &MockManager{
		DevicesList:   []string{"mock:usb:001"},
		Readers:       make(map[string]*MockDevice),
		MockDevice:    NewMockDevice(),
		VersionString: "mock 1.0",
		CallLog:       make([]string, 0),
	}
}

func (m *MockManager) ListDevices() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallLog = append(m.CallLog, "ListDevices")

	if m.ListDevicesError != nil {
		return nil, m.ListDevicesError
	}
	return append([]string(nil), m.DevicesList...), nil
}

func (m *MockManager) OpenDevice(conn string) (Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallLog = append(m.CallLog, fmt.Sprintf("OpenDevice(%s)", conn))

	if m.OpenDeviceError != nil {
		return nil, m.OpenDeviceError
	}
	dev, ok := m.Readers[conn]
	if !ok {
		if m.MockDevice == nil {
			m.MockDevice = NewMockDevice()
		}
		dev = m.MockDevice
	}
	dev.DeviceConnection = conn
	return dev, nil
}

func (m *MockManager) Version() string {
	return m.VersionString
}

// GetCallLog returns a copy of CallLog.
func (m *MockManager) GetCallLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.CallLog...)
}
