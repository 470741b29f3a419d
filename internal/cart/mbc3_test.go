package cart

import "testing"

type fakeClock int64

func (f fakeClock) UnixSeconds() int64 { return int64(f) }

func TestMBC3_RTC_Seeded(t *testing.T) {
	// 100s since epoch -> 1m40s: sec=40, min=1, hour=0, day=0
	m := newMBC3(make([]byte, 0x8000), 0x2000, true, fakeClock(100))
	if m.seconds != 40 || m.minutes != 1 || m.hours != 0 || m.days != 0 {
		t.Fatalf("seed got %02d:%02d:%02d day=%d", m.hours, m.minutes, m.seconds, m.days)
	}
}

func TestMBC3_RTC_LatchAndRead(t *testing.T) {
	m := newMBC3(make([]byte, 0x8000), 0x2000, true, fakeClock(0))

	m.Write(0x0000, 0x0A) // RAM enable
	m.seconds, m.minutes, m.hours, m.days = 5, 6, 7, 0x101

	m.Write(0x6000, 0x00)
	m.Write(0x6000, 0x01) // latch 0 then 1

	m.Write(0x4000, 0x08)
	if got := m.Read(0xA000); got != 5 {
		t.Fatalf("latched sec got %d want 5", got)
	}

	m.seconds = 30 // live register changes; latched copy must not
	if got := m.Read(0xA000); got != 5 {
		t.Fatalf("latched sec changed unexpectedly: got %d", got)
	}

	m.Write(0x4000, 0x0B)
	if got := m.Read(0xA000); got != 0x01 {
		t.Fatalf("latched day low got %02X want 01", got)
	}
	m.Write(0x4000, 0x0C)
	got := m.Read(0xA000)
	if got&0x01 == 0 {
		t.Fatalf("latched day-high bit 8 not set")
	}
	if got&0x40 != 0 {
		t.Fatalf("halt bit set unexpectedly")
	}
}

func TestMBC3_RTC_AdvanceAndPersist(t *testing.T) {
	m := newMBC3(make([]byte, 0x8000), 0x2000, true, fakeClock(0))
	m.seconds, m.minutes, m.hours, m.days = 59, 59, 23, 511

	for i := 0; i < mbc3CyclesPerSecond; i++ {
		m.Tick()
	}
	if m.seconds != 0 || m.minutes != 0 || m.hours != 0 || m.days != 0 || !m.carry {
		t.Fatalf("rollover got %02d:%02d:%02d day=%d carry=%v", m.hours, m.minutes, m.seconds, m.days, m.carry)
	}

	data := m.SaveRAM()
	n := newMBC3(make([]byte, 0x8000), 0x2000, true, fakeClock(0))
	if err := n.LoadRAM(data); err != nil {
		t.Fatalf("LoadRAM: %v", err)
	}
	if n.seconds != m.seconds || n.minutes != m.minutes || n.hours != m.hours || n.days != m.days || n.carry != m.carry {
		t.Fatalf("rtc persist mismatch")
	}
}

func TestMBC3_RTC_Halt(t *testing.T) {
	m := newMBC3(make([]byte, 0x8000), 0x2000, true, fakeClock(0))
	m.seconds = 0
	m.halted = true
	for i := 0; i < mbc3CyclesPerSecond*2; i++ {
		m.Tick()
	}
	if m.seconds != 0 {
		t.Fatalf("halted clock advanced: sec=%d", m.seconds)
	}
}

func TestMBC3_ROMBanking(t *testing.T) {
	rom := make([]byte, 256*1024)
	for bank := 0; bank < 16; bank++ {
		rom[bank*0x4000] = byte(bank)
	}
	m := newMBC3(rom, 0, false, nil)
	m.Write(0x2000, 0x05)
	if got := m.Read(0x4000); got != 5 {
		t.Fatalf("rom bank select got %d want 5", got)
	}
}
