package cart

import "testing"

func TestMBC1_ROMBanking(t *testing.T) {
	rom := make([]byte, 128*1024)
	for bank := 0; bank < 8; bank++ {
		rom[bank*0x4000] = byte(bank)
	}
	m := newMBC1(rom, 0)

	if got := m.Read(0x0000); got != 0x00 {
		t.Fatalf("bank0 read got %02X want 00", got)
	}
	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("bank1 read got %02X want 01", got)
	}

	m.Write(0x2000, 0x03)
	if got := m.Read(0x4000); got != 0x03 {
		t.Fatalf("bank3 read got %02X want 03", got)
	}

	m.Write(0x2000, 0x00)
	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("bank0->1 remap failed: got %02X", got)
	}
}

func TestMBC1_ROMBanking_DeadBankRemap(t *testing.T) {
	rom := make([]byte, 2*1024*1024)
	for bank := 0; bank < 0x80; bank++ {
		rom[bank*0x4000] = byte(bank)
	}
	m := newMBC1(rom, 0)

	m.Write(0x6000, 0x00) // mode 0: high bits feed the ROM bank
	m.Write(0x4000, 0x01) // high bits = 1
	m.Write(0x2000, 0x20) // low5 masks to 0, remapped to 1 -> effective bank 0x21
	if got := m.Read(0x4000); got != 0x21 {
		t.Fatalf("0x20 dead-bank remap got %02X want 21", got)
	}
}

func TestMBC1_RAMBanking_Mode1(t *testing.T) {
	rom := make([]byte, 128*1024)
	for bank := 0; bank < 8; bank++ {
		rom[bank*0x4000] = byte(bank)
	}
	m := newMBC1(rom, 32*1024)

	m.Write(0x0000, 0x0A)
	m.Write(0x2000, 0x03) // select ROM bank 3 via the low-5 register
	m.Write(0x6000, 0x01)
	m.Write(0x4000, 0x02)

	m.Write(0xA000, 0x77)
	if got := m.Read(0xA000); got != 0x77 {
		t.Fatalf("RAM bank2 RW failed: got %02X", got)
	}

	// In mode 1 the value written to 0x4000-0x5FFF selects the RAM bank only;
	// it must never perturb the ROM bank read at 0x4000-0x7FFF.
	if got := m.Read(0x4000); got != 0x03 {
		t.Fatalf("mode-1 ROM bank read got %02X want 03 (unaffected by RAM bank select)", got)
	}
	m.Write(0x4000, 0x00)
	if got := m.Read(0x4000); got != 0x03 {
		t.Fatalf("mode-1 ROM bank read got %02X want 03 after changing RAM bank select", got)
	}
}

func TestMBC1_RAMDisabled(t *testing.T) {
	rom := make([]byte, 32*1024)
	m := newMBC1(rom, 8*1024)
	m.Write(0xA000, 0x55)
	if got := m.Read(0xA000); got != 0xFF {
		t.Fatalf("disabled RAM read got %02X want FF", got)
	}
}
