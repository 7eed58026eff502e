package nfc

import (
	"fmt"

	"github.com/clausecker/freefare"
	"github.com/clausecker/nfc/v2"
)

// libnfcDevice implements Device using an actual nfc.Device from libnfc.
type libnfcDevice struct {
	device nfc.Device
	closed bool
}

func newLibnfcDevice(dev nfc.Device) *libnfcDevice {
	return &libnfcDevice{device: dev}
}

func (d *libnfcDevice) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.device.Close()
}

func (d *libnfcDevice) String() string {
	return d.device.String()
}

func (d *libnfcDevice) Connection() string {
	return d.device.Connection()
}

// Discover polls the field with freefare.GetTags and returns the first tag.
// Tags of other families are returned as unsupported handles.
func (d *libnfcDevice) Discover() (UltralightTag, error) {
	if d.closed {
		return nil, ErrDeviceClosed
	}
	tags, err := freefare.GetTags(d.device)
	if err != nil {
		return nil, fmt.Errorf("libnfcDevice.Discover: %w", err)
	}
	if len(tags) == 0 {
		return nil, nil
	}

	switch t := tags[0].(type) {
	case freefare.UltralightTag:
		return newUltralightAdapter(t), nil
	default:
		return newUnsupportedTag(t.UID(), freefareTypeName(t), nil), nil
	}
}

// freefareTypeName names a freefare tag type for diagnostics.
func freefareTypeName(t freefare.Tag) string {
	switch int(t.Type()) {
	case int(freefare.Ultralight):
		return CardTypeUltralight
	case int(freefare.UltralightC):
		return CardTypeUltralightC
	case int(freefare.Classic1k):
		return "MIFARE Classic 1K"
	case int(freefare.Classic4k):
		return "MIFARE Classic 4K"
	case int(freefare.DESFire):
		return "MIFARE DESFire"
	default:
		return fmt.Sprintf("unsupported: %d", int(t.Type()))
	}
}
