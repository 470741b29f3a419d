package cart

// mbc1 implements MBC1 ROM/RAM banking: up to 2MB ROM and 32KB RAM, with the
// mode-select register repurposing the two high bank bits for RAM banking.
type mbc1 struct {
	rom []byte
	ram []byte

	romBankLow5       byte // lower 5 bits of the ROM bank register (0 remapped to 1)
	ramBankOrRomHigh2 byte // RAM bank (mode 1) or ROM bank high bits (mode 0)
	ramEnabled        bool
	modeSelect        byte // 0: ROM banking (default), 1: RAM banking
}

func newMBC1(rom []byte, ramSize int) *mbc1 {
	m := &mbc1{rom: rom}
	if ramSize > 0 {
		m.ram = make([]byte, ramSize)
	}
	m.romBankLow5 = 1
	return m
}

func (m *mbc1) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		if m.modeSelect == 0 {
			if int(addr) < len(m.rom) {
				return m.rom[addr]
			}
			return 0xFF
		}
		bank := int((m.ramBankOrRomHigh2 & 0x03) << 5)
		off := bank*0x4000 + int(addr)
		if off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr < 0x8000:
		bank := int(m.effectiveROMBank())
		off := bank*0x4000 + int(addr-0x4000)
		if off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return 0xFF
		}
		off := m.ramOffset(addr)
		if off >= 0 && off < len(m.ram) {
			return m.ram[off]
		}
		return 0xFF
	default:
		return 0xFF
	}
}

func (m *mbc1) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = (value & 0x0F) == 0x0A
	case addr < 0x4000:
		m.romBankLow5 = value & 0x1F
		if m.romBankLow5 == 0 {
			m.romBankLow5 = 1
		}
	case addr < 0x6000:
		m.ramBankOrRomHigh2 = value & 0x03
	case addr < 0x8000:
		m.modeSelect = value & 0x01
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return
		}
		off := m.ramOffset(addr)
		if off >= 0 && off < len(m.ram) {
			m.ram[off] = value
		}
	}
}

func (m *mbc1) Tick() {}

func (m *mbc1) ramOffset(addr uint16) int {
	bank := 0
	if m.modeSelect == 1 {
		bank = int(m.ramBankOrRomHigh2 & 0x03)
	}
	return bank*0x2000 + int(addr-0xA000)
}

// effectiveROMBank combines the low 5 bits with the high 2 bits when in ROM
// banking mode (mode 0). Because the low-5 register remaps a written 0 to 1,
// the 0x20/0x40/0x60 "dead" banks are never addressable this way either — a
// write of 0x20/0x40/0x60 masks to 0 in the low 5 bits and remaps to 1,
// landing on bank 0x21/0x41/0x61 once the high bits are folded in. In mode 1
// the high bits belong entirely to RAM banking and never perturb the ROM
// bank read at 0x4000-0x7FFF.
func (m *mbc1) effectiveROMBank() byte {
	if m.modeSelect == 1 {
		return m.romBankLow5
	}
	high := m.ramBankOrRomHigh2 & 0x03
	return m.romBankLow5 | (high << 5)
}

func (m *mbc1) SaveRAM() []byte {
	out := make([]byte, len(m.ram))
	copy(out, m.ram)
	return out
}

func (m *mbc1) LoadRAM(data []byte) error {
	if len(data) != len(m.ram) {
		return errRAMSizeMismatch(len(m.ram), len(data))
	}
	copy(m.ram, data)
	return nil
}
