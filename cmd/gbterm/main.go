// Command gbterm is a second host shell for the core: a tcell terminal
// renderer instead of ebiten's windowed one, proving the core's
// step-a-frame/framebuffer/joypad surface is front-end agnostic.
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/tindermere/gbcore/internal/core"
	"github.com/tindermere/gbcore/internal/emu"
)

// shadeRamp maps average framebuffer luminance within a cell to a block
// character, brightest to darkest (glyphs are drawn white on black, so the
// full block is the lightest cell).
var shadeRamp = []rune{'█', '▓', '▒', '░', ' '}

func main() {
	romPath := flag.String("rom", "", "path to ROM (.gb/.gbc)")
	bootPath := flag.String("bootrom", "", "optional boot ROM")
	cgb := flag.Bool("cgb", false, "run as a Game Boy Color")
	flag.Parse()
	if *romPath == "" {
		log.Fatal("-rom is required")
	}

	variant := core.VariantDMG
	if *cgb {
		variant = core.VariantCGB
	}
	m := emu.New(emu.Config{Variant: variant})
	if *bootPath != "" {
		boot, err := os.ReadFile(*bootPath)
		if err != nil {
			log.Fatalf("read bootrom: %v", err)
		}
		m.SetBootROM(boot)
	}
	if err := m.LoadROMFromFile(*romPath); err != nil {
		log.Fatalf("load cart: %v", err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("terminal init: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("terminal init: %v", err)
	}
	defer screen.Fini()
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	screen.Clear()

	app := &termApp{m: m, screen: screen}
	app.run()

	if err := m.WriteBatteryFile(); err != nil {
		log.Printf("write battery RAM: %v", err)
	}
}

type termApp struct {
	m      *emu.Machine
	screen tcell.Screen
	btn    emu.Buttons
	quit   bool
}

func (a *termApp) run() {
	const targetFrame = time.Second / 60
	for !a.quit {
		start := time.Now()
		a.pollInput()
		if a.quit {
			return
		}
		if fatal, msg := a.m.StepFrame(); fatal {
			a.screen.Fini()
			log.Fatalf("core hit a fatal condition: %s", msg)
		}
		a.draw()
		if elapsed := time.Since(start); elapsed < targetFrame {
			time.Sleep(targetFrame - elapsed)
		}
	}
}

func (a *termApp) pollInput() {
	a.btn = emu.Buttons{}
	for a.screen.HasPendingEvent() {
		ev := a.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			a.screen.Sync()
		case *tcell.EventKey:
			a.applyKey(ev)
		}
	}
	a.m.SetButtons(a.btn)
}

func (a *termApp) applyKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		a.quit = true
	case tcell.KeyUp:
		a.btn.Up = true
	case tcell.KeyDown:
		a.btn.Down = true
	case tcell.KeyLeft:
		a.btn.Left = true
	case tcell.KeyRight:
		a.btn.Right = true
	case tcell.KeyEnter:
		a.btn.Start = true
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'z', 'Z':
			a.btn.A = true
		case 'x', 'X':
			a.btn.B = true
		case ' ':
			a.btn.Select = true
		case 'r', 'R':
			a.m.Reset()
		}
	}
}

const (
	gbWidth  = 160
	gbHeight = 144
)

// draw downsamples the RGBA front buffer into a grid of block characters,
// each terminal cell covering gbWidth/cols source columns (at least one) and
// gbHeight/rows source scanlines (at least two), picking a shade off the
// average luminance in that block.
func (a *termApp) draw() {
	fb := a.m.Framebuffer()
	cols, rows := a.screen.Size()
	cellW, cellH := gbWidth/cols, gbHeight/rows
	if cellW < 1 {
		cellW = 1
	}
	if cellH < 2 {
		cellH = 2
	}
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	for cy := 0; cy*cellH < gbHeight && cy < rows; cy++ {
		for cx := 0; cx*cellW < gbWidth && cx < cols; cx++ {
			sum, n := 0, 0
			for dy := 0; dy < cellH; dy++ {
				y := cy*cellH + dy
				if y >= gbHeight {
					break
				}
				for dx := 0; dx < cellW; dx++ {
					x := cx*cellW + dx
					if x >= gbWidth {
						break
					}
					off := (y*gbWidth + x) * 4
					sum += int(fb[off]) + int(fb[off+1]) + int(fb[off+2])
					n++
				}
			}
			avg := 255
			if n > 0 {
				avg = sum / (n * 3)
			}
			idx := (255 - avg) * (len(shadeRamp) - 1) / 255
			a.screen.SetContent(cx, cy, shadeRamp[idx], nil, style)
		}
	}
	a.screen.Show()
}
