// Command gbemu is the desktop GUI shell: load a ROM (and optional boot ROM)
// into the core and either display it in an ebiten window or, with
// -headless, run it for a fixed number of frames and dump diagnostics.
package main

import (
	"flag"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"log"
	"os"
	"strings"
	"time"

	"github.com/tindermere/gbcore/internal/cart"
	"github.com/tindermere/gbcore/internal/core"
	"github.com/tindermere/gbcore/internal/emu"
	"github.com/tindermere/gbcore/internal/ui"
)

type cliFlags struct {
	ROMPath string
	BootROM string
	Scale   int
	Title   string
	CGB     bool
	NoSave  bool

	Headless bool
	Frames   int
	PNGOut   string
	Expect   string
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.ROMPath, "rom", "", "path to ROM (.gb/.gbc)")
	flag.StringVar(&f.BootROM, "bootrom", "", "optional boot ROM")
	flag.IntVar(&f.Scale, "scale", 3, "window scale")
	flag.StringVar(&f.Title, "title", "gbemu", "window title")
	flag.BoolVar(&f.CGB, "cgb", false, "run as a Game Boy Color")
	flag.BoolVar(&f.NoSave, "nosave", false, "don't load/persist battery RAM")

	flag.BoolVar(&f.Headless, "headless", false, "run without a window")
	flag.IntVar(&f.Frames, "frames", 300, "frames to run in headless mode")
	flag.StringVar(&f.PNGOut, "outpng", "", "write the last framebuffer to PNG at path")
	flag.StringVar(&f.Expect, "expect", "", "assert the final framebuffer's CRC32 (hex)")
	flag.Parse()
	return f
}

func runHeadless(m *emu.Machine, frames int, pngPath, expectCRC string) error {
	if frames <= 0 {
		frames = 1
	}
	start := time.Now()
	for i := 0; i < frames; i++ {
		if fatal, msg := m.StepFrame(); fatal {
			return fmt.Errorf("core hit a fatal condition: %s", msg)
		}
	}
	dur := time.Since(start)

	fb := m.Framebuffer()
	crc := crc32.ChecksumIEEE(fb)
	fps := float64(frames) / dur.Seconds()
	log.Printf("headless: frames=%d elapsed=%s fps=%.2f fb_crc32=%08x",
		frames, dur.Truncate(time.Millisecond), fps, crc)

	if pngPath != "" {
		if err := saveFramePNG(fb, 160, 144, pngPath); err != nil {
			return fmt.Errorf("write PNG: %w", err)
		}
		log.Printf("wrote %s", pngPath)
	}
	if expectCRC != "" {
		want := strings.TrimPrefix(strings.ToLower(expectCRC), "0x")
		if got := fmt.Sprintf("%08x", crc); got != want {
			return fmt.Errorf("checksum mismatch: got %s, want %s", got, want)
		}
	}
	return nil
}

func saveFramePNG(pix []byte, w, h int, path string) error {
	img := &image.RGBA{Pix: append([]byte(nil), pix...), Stride: 4 * w, Rect: image.Rect(0, 0, w, h)}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func main() {
	f := parseFlags()
	if f.ROMPath == "" {
		log.Fatal("-rom is required")
	}

	variant := core.VariantDMG
	if f.CGB {
		variant = core.VariantCGB
	}
	m := emu.New(emu.Config{Variant: variant})

	if f.BootROM != "" {
		boot, err := os.ReadFile(f.BootROM)
		if err != nil {
			log.Fatalf("read bootrom: %v", err)
		}
		m.SetBootROM(boot)
	}

	if rom, err := os.ReadFile(f.ROMPath); err == nil && len(rom) >= 0x150 {
		if h, err := cart.ParseHeader(rom); err == nil {
			log.Printf("ROM: %q type=%s banks=%d ram=%dB", h.Title, h.Kind, h.ROMBanks, h.RAMSizeBytes)
		}
	}

	if f.NoSave {
		rom, err := os.ReadFile(f.ROMPath)
		if err != nil {
			log.Fatalf("read rom: %v", err)
		}
		if err := m.LoadCartridge(rom, nil); err != nil {
			log.Fatalf("load cart: %v", err)
		}
	} else if err := m.LoadROMFromFile(f.ROMPath); err != nil {
		log.Fatalf("load cart: %v", err)
	}

	if f.Headless {
		err := runHeadless(m, f.Frames, f.PNGOut, f.Expect)
		if !f.NoSave {
			if werr := m.WriteBatteryFile(); werr != nil {
				log.Printf("write battery RAM: %v", werr)
			}
		}
		if err != nil {
			log.Fatal(err)
		}
		return
	}

	uiCfg := ui.Config{Title: f.Title, Scale: f.Scale}
	app := ui.NewApp(uiCfg, m)
	runErr := app.Run()
	if !f.NoSave {
		if err := m.WriteBatteryFile(); err != nil {
			log.Printf("write battery RAM: %v", err)
		}
	}
	if runErr != nil {
		log.Fatal(runErr)
	}
}
