package nfc

import "bytes"

// PC/SC Part 3 registered application provider identifier. Readers that
// follow the storage card convention put it in the ATR historical bytes,
// followed by the standard byte and a two byte card name.
var pcscStorageRID = []byte{0xA0, 0x00, 0x00, 0x03, 0x06}

// PC/SC Part 3 supplemental card names.
const (
	cardNameClassic1K    = 0x0001
	cardNameClassic4K    = 0x0002
	cardNameUltralight   = 0x0003
	cardNameMini         = 0x0026
	cardNameUltralightC  = 0x003A
	storageStandard14443 = 0x03
)

// classifyATR derives the tag kind and a type description from a reader ATR.
func classifyATR(atr []byte) (TagKind, string) {
	i := bytes.Index(atr, pcscStorageRID)
	if i < 0 || len(atr) < i+len(pcscStorageRID)+3 {
		return KindUnsupported, "unknown (no storage card ATR)"
	}
	rest := atr[i+len(pcscStorageRID):]
	standard := rest[0]
	name := uint16(rest[1])<<8 | uint16(rest[2])

	if standard != storageStandard14443 {
		return KindUnsupported, "unknown (not ISO 14443A)"
	}
	switch name {
	case cardNameUltralight:
		return KindUltralight, CardTypeUltralight
	case cardNameUltralightC:
		return KindUltralightC, CardTypeUltralightC
	case cardNameClassic1K:
		return KindUnsupported, "MIFARE Classic 1K"
	case cardNameClassic4K:
		return KindUnsupported, "MIFARE Classic 4K"
	case cardNameMini:
		return KindUnsupported, "MIFARE Mini"
	default:
		return KindUnsupported, "unknown card name"
	}
}
