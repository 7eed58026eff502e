package nfc

import (
	"github.com/clausecker/nfc/v2"
)

// defaultManager implements Manager using libnfc and freefare libraries.
type defaultManager struct{}

func (m *defaultManager) OpenDevice(conn string) (Device, error) {
	dev, err := nfc.Open(conn)
	if err != nil {
		return nil, WrapError(ErrCodeOpenFailed, "OpenDevice", "cannot open nfc device", err)
	}
	return newLibnfcDevice(dev), nil
}

func (m *defaultManager) ListDevices() ([]string, error) {
	return enumerate("ListDevices", nfc.ListDevices)
}

func (m *defaultManager) Version() string {
	return nfc.Version()
}
