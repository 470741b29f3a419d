package cart

import (
	"encoding/binary"
	"errors"
	"strings"
)

const (
	headerStart = 0x0100
	headerEnd   = 0x014F
)

var nintendoLogo = [48]byte{
	0xCE, 0xED, 0x66, 0x66, 0xCC, 0x0D, 0x00, 0x0B, 0x03, 0x73, 0x00, 0x83, 0x00, 0x0C, 0x00, 0x0D,
	0x00, 0x08, 0x11, 0x1F, 0x88, 0x89, 0x00, 0x0E, 0xDC, 0xCC, 0x6E, 0xE6, 0xDD, 0xDD, 0xD9, 0x99,
	0xBB, 0xBB, 0x67, 0x63, 0x6E, 0x0E, 0xEC, 0xCC, 0xDD, 0xDC, 0x99, 0x9F, 0xBB, 0xB9, 0x33, 0x3E,
}

// Header is the parsed 0x0100-0x014F cartridge header.
type Header struct {
	Title          string
	CGBFlag        byte
	NewLicensee    string
	SGBFlag        byte
	CartType       byte
	ROMSizeCode    byte
	RAMSizeCode    byte
	Destination    byte
	OldLicensee    byte
	ROMVersion     byte
	HeaderChecksum byte
	GlobalChecksum uint16

	Kind         Kind
	ROMSizeBytes int
	ROMBanks     int
	RAMSizeBytes int
	HasRAM       bool
	HasRTC       bool
	HasRumble    bool
	CGBOnly      bool
	CGBSupported bool
}

// ParseHeader decodes the cartridge header out of rom. It does not validate the
// Nintendo logo bytes or header checksum; LogoMatches and HeaderChecksumOK do
// that separately, since the shell (not the core) decides whether to refuse a
// ROM that fails those checks.
func ParseHeader(rom []byte) (*Header, error) {
	if len(rom) < headerEnd+1 {
		return nil, errors.New("cart: ROM too small to contain a header")
	}

	rawTitle := rom[0x0134:0x0144]
	title := strings.TrimRight(string(rawTitle), "\x00")

	h := &Header{
		Title:          title,
		CGBFlag:        rom[0x0143],
		NewLicensee:    string(rom[0x0144:0x0146]),
		SGBFlag:        rom[0x0146],
		CartType:       rom[0x0147],
		ROMSizeCode:    rom[0x0148],
		RAMSizeCode:    rom[0x0149],
		Destination:    rom[0x014A],
		OldLicensee:    rom[0x014B],
		ROMVersion:     rom[0x014C],
		HeaderChecksum: rom[0x014D],
		GlobalChecksum: binary.BigEndian.Uint16(rom[0x014E:0x0150]),
	}

	h.ROMSizeBytes, h.ROMBanks = decodeROMSize(h.ROMSizeCode)
	h.RAMSizeBytes = decodeRAMSize(h.RAMSizeCode)
	h.Kind, h.HasRAM, h.HasRTC, h.HasRumble = decodeCartType(h.CartType)
	h.CGBSupported = h.CGBFlag&0x80 != 0
	h.CGBOnly = h.CGBFlag == 0xC0

	return h, nil
}

// LogoMatches reports whether the 0x0104-0x0133 Nintendo logo bytes match the
// known constant, as required for a DMG/CGB boot ROM to proceed.
func LogoMatches(rom []byte) bool {
	if len(rom) < 0x0104+len(nintendoLogo) {
		return false
	}
	for i, want := range nintendoLogo {
		if rom[0x0104+i] != want {
			return false
		}
	}
	return true
}

// HeaderChecksumOK verifies the 0x014D header checksum.
func HeaderChecksumOK(rom []byte) bool {
	if len(rom) < 0x014E {
		return false
	}
	var sum byte
	for addr := 0x0134; addr <= 0x014C; addr++ {
		sum = sum - rom[addr] - 1
	}
	return sum == rom[0x014D]
}

// ROM size is encoded as 2<<code 16 KiB banks (code 0 -> 2 banks -> 32 KiB).
func decodeROMSize(code byte) (size, banks int) {
	if code > 8 {
		return 0, 0
	}
	banks = 2 << code
	return banks * 16 * 1024, banks
}

func decodeRAMSize(code byte) int {
	switch code {
	case 0x00:
		return 0
	case 0x01:
		return 2 * 1024
	case 0x02:
		return 8 * 1024
	case 0x03:
		return 32 * 1024
	case 0x04:
		return 128 * 1024
	case 0x05:
		return 64 * 1024
	default:
		return 0
	}
}

func decodeCartType(code byte) (kind Kind, hasRAM, hasRTC, hasRumble bool) {
	switch code {
	case 0x00:
		return KindNone, false, false, false
	case 0x08, 0x09:
		return KindNone, true, false, false
	case 0x01:
		return KindMBC1, false, false, false
	case 0x02, 0x03:
		return KindMBC1, true, false, false
	case 0x05, 0x06:
		return KindMBC2, true, false, false
	case 0x0F, 0x10:
		return KindMBC3, true, true, false
	case 0x11:
		return KindMBC3, false, false, false
	case 0x12, 0x13:
		return KindMBC3, true, false, false
	case 0x19, 0x1A, 0x1B:
		return KindMBC5, code != 0x19, false, false
	case 0x1C:
		return KindMBC5, false, false, true
	case 0x1D, 0x1E:
		return KindMBC5, true, false, true
	default:
		return Kind(-1), false, false, false
	}
}
