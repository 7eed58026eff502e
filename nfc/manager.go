package nfc

import (
	"fmt"

	"github.com/cenkalti/backoff"
)

// Manager handles reader discovery for one driver backend.
//
// Example:
//
//	manager := nfc.NewManager()
//	devices, _ := manager.ListDevices()
//	device, _ := manager.OpenDevice(devices[0])
//	defer device.Close()
//	tag, _ := device.Discover()
type Manager interface {
	// ListDevices returns the connection strings of attached readers.
	ListDevices() ([]string, error)
	// OpenDevice opens the reader identified by a connection string from ListDevices.
	OpenDevice(conn string) (Device, error)
	// Version describes the driver, e.g. the libnfc version string.
	Version() string
}

// NewManager creates a new Manager using the default libnfc/freefare implementation.
func NewManager() Manager {
	return &defaultManager{}
}

// NewManagerForDriver returns the Manager for a driver name from GetAllDrivers.
func NewManagerForDriver(driver string) (Manager, error) {
	switch driver {
	case "", DriverLibnfc:
		return NewManager(), nil
	case DriverPCSC:
		return newPCSCManager(), nil
	default:
		return nil, Errorf(ErrCodeNoDriver, "NewManagerForDriver", "unknown driver %q (want one of %v)", driver, GetAllDrivers())
	}
}

// SelectDevice lists the readers of m and opens the one at index.
// The returned list is the full enumeration so callers can print it.
func SelectDevice(m Manager, index int) (Device, []string, error) {
	devices, err := m.ListDevices()
	if err != nil {
		return nil, nil, err
	}
	if len(devices) == 0 {
		return nil, devices, WrapError(ErrCodeNoDevice, "SelectDevice", "no nfc device attached", nil)
	}
	if index < 0 || index >= len(devices) {
		return nil, devices, Errorf(ErrCodeDeviceIndex, "SelectDevice", "device with ID %d not in list", index)
	}
	dev, err := m.OpenDevice(devices[index])
	if err != nil {
		if GetErrorCode(err) == ErrCodeOpenFailed {
			return nil, devices, err
		}
		return nil, devices, WrapError(ErrCodeOpenFailed, "SelectDevice", "cannot open nfc device", err)
	}
	return dev, devices, nil
}

// enumerate retries list a bounded number of times before giving up.
func enumerate(op string, list func() ([]string, error)) ([]string, error) {
	var devices []string
	attempt := func() error {
		var err error
		devices, err = list()
		return err
	}
	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(DeviceEnumInterval), DeviceEnumRetries)
	if err := backoff.Retry(attempt, policy); err != nil {
		return nil, WrapError(ErrCodeNoDriver, op, fmt.Sprintf("failed to list devices after %d retries", DeviceEnumRetries), err)
	}
	return devices, nil
}
