package nfc

// Driver names accepted by NewManagerForDriver.
const (
	DriverLibnfc = "libnfc"
	DriverPCSC   = "pcsc"
)

// Card type names as printed in session output.
const (
	CardTypeUltralight  = "MF Ultralight"
	CardTypeUltralightC = "MF Ultralight C"
)

// GetAllDrivers returns the driver names in order of preference.
func GetAllDrivers() []string {
	return []string{DriverLibnfc, DriverPCSC}
}
