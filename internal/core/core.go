// Package core implements the cycle-accurate DMG/CGB emulation core: the
// SM83 interpreter, memory bus, OAM DMA/HDMA, timer, LCD/PPU and APU all
// live here as methods on a single Core, since the bus, timer, PPU and APU
// all need direct access to each other's state every M-cycle and keeping
// them in separate packages would force a reference cycle.
package core

import (
	"fmt"

	"github.com/tindermere/gbcore/internal/cart"
)

// Variant selects which console the core pretends to be.
type Variant int

const (
	VariantDMG Variant = iota
	VariantCGB
)

// FrameResult is returned by RunOneFrame. A non-Fatal status never reaches the
// shell as an error or a panic; Fatal marks the one unrecoverable runtime
// condition (STOP executed with both joypad select lines disabled).
type FrameResult struct {
	Fatal   bool
	Message string
}

// Config holds shell-tunable toggles, analogous to the teacher's internal/emu.Config.
type Config struct {
	Variant      Variant
	SampleRate   int // host audio sample rate for TakeAudioSamples decimation
	SerialWriter serialWriter
}

type serialWriter interface {
	Write(p []byte) (int, error)
}

// Core is a complete DMG/CGB machine: CPU, memory map, DMA engines, timer,
// PPU and APU advance together one M-cycle (4 T-states) at a time.
type Core struct {
	variant  Variant
	cgbGame  bool // CGB hardware running a CGB-flagged game, vs DMG-compat mode
	cart     cart.Cartridge

	// CPU registers
	a, f, b, c, d, e, h, l byte
	sp, pc                 uint16

	ime      bool
	eiDelay  int
	halted   bool
	haltBug  bool
	stopped  bool
	fatal    bool
	fatalMsg string

	doubleSpeed  bool
	speedSwitch  bool // KEY1 armed, takes effect on next STOP

	// memory
	wram       [8][0x1000]byte
	wramBank   byte
	vram       [2][0x2000]byte
	vramBank   byte
	oam        [0xA0]byte
	hram       [0x80]byte
	bootROM    []byte
	bootActive bool

	ifReg byte
	ieReg byte

	oamDMA oamDMAState
	hdma   hdmaState
	timer  timerState
	ppu    ppuState
	apu    apuState
	joyp   joypadState
	serial serialState

	sampleRate int
	title      string
}

// New constructs a Core for rom, optionally seeded with save, a previously
// persisted external-RAM dump. Construction-time failures (bad header, a
// save blob that doesn't match the cartridge's RAM layout) are returned as
// an error rather than panicking.
func New(rom []byte, save []byte, cfg Config) (*Core, error) {
	h, err := cart.ParseHeader(rom)
	if err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	cg, err := cart.NewCartridge(h, rom, save, wallClock{})
	if err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}

	c := &Core{
		variant:    cfg.Variant,
		cgbGame:    cfg.Variant == VariantCGB && h.CGBSupported,
		cart:       cg,
		sampleRate: cfg.SampleRate,
		title:      h.Title,
	}
	if c.sampleRate == 0 {
		c.sampleRate = 44100
	}
	c.joyp.lines = 0xFF
	c.initPPU()
	c.initAPU()
	if cfg.SerialWriter != nil {
		c.serial.out = cfg.SerialWriter
	}
	c.resetNoBoot()
	return c, nil
}

// SetBootROM installs a boot ROM image and starts execution from its reset
// vector instead of the post-boot register defaults.
func (c *Core) SetBootROM(rom []byte) {
	c.bootROM = rom
	c.bootActive = len(rom) > 0
	if c.bootActive {
		c.pc, c.sp, c.ime = 0x0000, 0xFFFE, false
	}
}

// Title returns the cartridge's header title, trimmed of trailing padding.
func (c *Core) Title() string { return c.title }

// Reset restarts the CPU and its immediately-visible IO state without
// disturbing the cartridge (and its battery RAM/RTC), mirroring a GB's
// reset line: the boot ROM runs again if one is installed, otherwise the
// core jumps straight to the post-boot defaults at 0x0100.
func (c *Core) Reset() {
	if c.bootActive || len(c.bootROM) > 0 {
		c.bootActive = true
		c.pc, c.sp, c.ime = 0x0000, 0xFFFE, false
		return
	}
	c.resetNoBoot()
}

// resetNoBoot seeds the classic post-boot-ROM register and I/O state so the
// core can run a ROM directly at 0x0100 without executing a boot ROM.
func (c *Core) resetNoBoot() {
	c.a, c.f = 0x01, 0xB0
	c.b, c.c = 0x00, 0x13
	c.d, c.e = 0x00, 0xD8
	c.h, c.l = 0x01, 0x4D
	c.sp, c.pc = 0xFFFE, 0x0100
	c.ime = false
	c.ifReg = 0xE1
	c.writeIO(0xFF00, 0xCF)
	c.writeIO(0xFF40, 0x91)
	c.writeIO(0xFF47, 0xFC)
	c.writeIO(0xFF48, 0xFF)
	c.writeIO(0xFF49, 0xFF)
}

// Tick advances every peripheral by exactly one M-cycle (4 T-states), in the
// fixed order the hardware composes them in: the CPU's own fetch/execute
// loop calls this once per bus access via readByte/writeByte, so instruction
// timing and peripheral timing can never drift apart. Timer and PPU always
// step once per Tick regardless of speed; Audio steps twice per Tick in
// single-speed and once in double-speed, so the same number of samples lands
// per emitted frame either way. The speed doubling itself comes from
// RunOneFrame running two PPU frames' worth of Ticks in double-speed.
func (c *Core) tick() {
	c.cart.Tick()
	c.stepOAMDMA()
	c.stepHDMA()
	c.stepTimer()
	c.stepSerial()
	c.stepPPU()
	c.stepAPU()
	if !c.doubleSpeed {
		c.stepAPU()
	}
}

// RunOneFrame executes instructions until the PPU completes one frame (its
// internal line counter wraps from 153 back to 0 at the end of VBlank's last
// line), honoring
// HALT/STOP and interrupt servicing throughout. In double-speed, the PPU's
// own per-tick timing is unchanged, so completing one frame at the real
// frame rate takes two of its internal frame completions.
func (c *Core) RunOneFrame() FrameResult {
	passes := 1
	if c.doubleSpeed {
		passes = 2
	}
	for p := 0; p < passes; p++ {
		startFrame := c.ppu.frame
		for c.ppu.frame == startFrame {
			if r := c.step(); r.Fatal {
				return r
			}
		}
	}
	return FrameResult{}
}

// FrontBuffer returns the last fully-rendered frame as packed RGBA8888.
func (c *Core) FrontBuffer() []byte { return c.ppu.front[:] }

// SetButton updates one joypad line's pressed state.
func (c *Core) SetButton(b Button, pressed bool) { c.setButton(b, pressed) }

// TakeAudioSamples drains and returns interleaved stereo samples produced
// since the last call, already decimated to the configured host sample rate.
func (c *Core) TakeAudioSamples() []int16 { return c.drainAudio() }

// SnapshotExtRAM returns a raw dump of the cartridge's battery-backed
// external RAM (and, for MBC3, its RTC registers), or nil if the cartridge
// has none. This is the entire save-game format: no header, no versioning.
func (c *Core) SnapshotExtRAM() []byte {
	bb, ok := c.cart.(cart.BatteryBacked)
	if !ok {
		return nil
	}
	return bb.SaveRAM()
}

// RumbleActive reports whether the cartridge's rumble motor flag is set, for
// carts that have one. Always false otherwise.
func (c *Core) RumbleActive() bool {
	if r, ok := c.cart.(cart.Rumbler); ok {
		return r.RumbleActive()
	}
	return false
}

type wallClock struct{}

func (wallClock) UnixSeconds() int64 { return nowUnix() }
