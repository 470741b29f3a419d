// Package emu is the shell layer between a host UI and the emulation core:
// it owns the cartridge/boot-ROM file handling, battery-RAM persistence, and
// an audio ring buffer a host can pull from at its own pace, none of which
// internal/core concerns itself with.
package emu

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tindermere/gbcore/internal/core"
)

// Buttons is a snapshot of the eight joypad lines for one input poll.
type Buttons struct {
	Right, Left, Up, Down bool
	A, B, Select, Start   bool
}

// Machine wraps a core.Core with the file and buffering concerns a host
// shell (a GUI, a terminal UI, a headless runner) needs but the core itself
// stays deliberately ignorant of.
type Machine struct {
	cfg  Config
	core *core.Core

	romPath string
	bootROM []byte
	serial  io.Writer

	audio []int16 // undrained interleaved stereo samples, host sample rate
}

// New constructs an empty Machine. Call LoadCartridge or LoadROMFromFile
// before stepping it.
func New(cfg Config) *Machine {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 44100
	}
	return &Machine{cfg: cfg}
}

// SetSerialWriter installs a sink for bytes shifted out over the link cable
// port (SB/SC); blargg-style test ROMs use this to report pass/fail. Takes
// effect on the next cartridge load.
func (m *Machine) SetSerialWriter(w io.Writer) { m.serial = w }

// SetBootROM installs a boot ROM image to run from 0x0000 instead of jumping
// straight to the post-boot register defaults. With a cartridge already
// loaded, the core restarts from 0x0000 at once; otherwise the image runs on
// the next load.
func (m *Machine) SetBootROM(rom []byte) {
	m.bootROM = rom
	if m.core != nil {
		m.core.SetBootROM(rom)
	}
}

// HasBootROM reports whether a boot ROM is currently installed.
func (m *Machine) HasBootROM() bool { return len(m.bootROM) > 0 }

// ROMPath returns the path LoadROMFromFile last loaded, or "" if the current
// cartridge came from LoadCartridge directly.
func (m *Machine) ROMPath() string { return m.romPath }

func savePathFor(romPath string) string {
	if romPath == "" {
		return ""
	}
	ext := strings.LastIndex(romPath, ".")
	if ext < 0 {
		return romPath + ".sav"
	}
	return romPath[:ext] + ".sav"
}

// LoadCartridge loads rom directly, with no associated save file on disk.
func (m *Machine) LoadCartridge(rom, boot []byte) error {
	if len(boot) > 0 {
		m.bootROM = boot
	}
	m.romPath = ""
	return m.load(rom, nil)
}

// LoadROMFromFile reads rom from path and, if a same-named ".sav" file
// exists beside it, seeds the cartridge's battery RAM from it.
func (m *Machine) LoadROMFromFile(path string) error {
	rom, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("emu: read rom: %w", err)
	}
	var save []byte
	if data, err := os.ReadFile(savePathFor(path)); err == nil {
		save = data
	}
	if err := m.load(rom, save); err != nil {
		return err
	}
	m.romPath = path
	return nil
}

func (m *Machine) load(rom, save []byte) error {
	c, err := core.New(rom, save, core.Config{
		Variant:      m.cfg.Variant,
		SampleRate:   m.cfg.SampleRate,
		SerialWriter: serialAdapter{m.serial},
	})
	if err != nil {
		return err
	}
	if len(m.bootROM) > 0 {
		c.SetBootROM(m.bootROM)
	}
	m.core = c
	m.audio = m.audio[:0]
	return nil
}

type serialAdapter struct{ w io.Writer }

func (s serialAdapter) Write(p []byte) (int, error) {
	if s.w == nil {
		return len(p), nil
	}
	return s.w.Write(p)
}

// Reset restarts the currently loaded cartridge, re-running the boot ROM if
// one is installed.
func (m *Machine) Reset() {
	if m.core != nil {
		m.core.Reset()
	}
}

// Title returns the loaded cartridge's header title, or "" with none loaded.
func (m *Machine) Title() string {
	if m.core == nil {
		return ""
	}
	return m.core.Title()
}

// SetButtons updates all eight joypad lines from one input poll.
func (m *Machine) SetButtons(b Buttons) {
	if m.core == nil {
		return
	}
	m.core.SetButton(core.ButtonRight, b.Right)
	m.core.SetButton(core.ButtonLeft, b.Left)
	m.core.SetButton(core.ButtonUp, b.Up)
	m.core.SetButton(core.ButtonDown, b.Down)
	m.core.SetButton(core.ButtonA, b.A)
	m.core.SetButton(core.ButtonB, b.B)
	m.core.SetButton(core.ButtonSelect, b.Select)
	m.core.SetButton(core.ButtonStart, b.Start)
}

// StepFrame runs the core until it completes one frame, draining any audio
// it produced into the Machine's pull buffer. The returned bool reports
// whether the core hit its one unrecoverable condition (STOP executed with
// both joypad select lines disabled) and has stopped executing.
func (m *Machine) StepFrame() (fatal bool, message string) {
	if m.core == nil {
		return false, ""
	}
	r := m.core.RunOneFrame()
	m.audio = append(m.audio, m.core.TakeAudioSamples()...)
	return r.Fatal, r.Message
}

// Framebuffer returns the last fully-rendered frame as packed RGBA8888,
// 160x144 pixels.
func (m *Machine) Framebuffer() []byte {
	if m.core == nil {
		return make([]byte, 160*144*4)
	}
	return m.core.FrontBuffer()
}

// APUBufferedStereo reports how many stereo frames are waiting to be pulled.
func (m *Machine) APUBufferedStereo() int { return len(m.audio) / 2 }

// APUPullStereo removes and returns up to n interleaved stereo frames
// (2*n int16 values) from the buffer.
func (m *Machine) APUPullStereo(n int) []int16 {
	if n <= 0 || len(m.audio) == 0 {
		return nil
	}
	avail := len(m.audio) / 2
	if n > avail {
		n = avail
	}
	out := m.audio[:n*2:n*2]
	m.audio = m.audio[n*2:]
	return out
}

// APUClearAudioLatency drops any buffered-but-unpulled audio, for a host
// that just resumed from a pause and doesn't want a backlog played back.
func (m *Machine) APUClearAudioLatency() { m.audio = m.audio[:0] }

// SaveBattery returns the cartridge's battery-backed RAM (and RTC state for
// MBC3), or ok=false if the cartridge has none.
func (m *Machine) SaveBattery() (data []byte, ok bool) {
	if m.core == nil {
		return nil, false
	}
	d := m.core.SnapshotExtRAM()
	return d, d != nil
}

// WriteBatteryFile persists the cartridge's battery RAM beside its ROM file,
// at the path LoadROMFromFile derives ("<rom>.sav"). A no-op if the current
// cartridge has no battery RAM or wasn't loaded from a file.
func (m *Machine) WriteBatteryFile() error {
	path := savePathFor(m.romPath)
	if path == "" {
		return nil
	}
	data, ok := m.SaveBattery()
	if !ok {
		return nil
	}
	return os.WriteFile(path, data, 0o644)
}
