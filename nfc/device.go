package nfc

// Device represents an opened reader.
//
// A Device is obtained from a Manager and is owned by a single caller for
// its whole lifetime; it is not safe for concurrent use.
//
// Example:
//
//	device, err := manager.OpenDevice("")
//	defer device.Close()
type Device interface {
	Close() error
	String() string
	Connection() string

	// Discover selects the first tag in the field. It returns (nil, nil)
	// when no tag answered within the driver's own polling period.
	Discover() (UltralightTag, error)
}
