// Package ui hosts the desktop GUI shell built on ebiten: a single window
// that blits the core's framebuffer, polls the keyboard for joypad input,
// and streams audio through an ebiten player backed by apuStream.
package ui

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"time"

	"github.com/tindermere/gbcore/internal/emu"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const sampleRate = 44100

type App struct {
	cfg    Config
	m      *emu.Machine
	tex    *ebiten.Image
	paused bool
	fast   bool
	muted  bool

	audioContext *audio.Context
	audioPlayer  *audio.Player
	stream       *apuStream

	showHelp bool
}

func NewApp(cfg Config, m *emu.Machine) *App {
	cfg.Defaults()
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(160*cfg.Scale, 144*cfg.Scale)

	a := &App{cfg: cfg, m: m, muted: cfg.Mute}
	a.audioContext = audio.NewContext(sampleRate)
	a.stream = &apuStream{m: m, mono: !cfg.AudioStereo, muted: &a.muted, lowLatency: cfg.AudioLowLatency}
	if p, err := a.audioContext.NewPlayer(a.stream); err == nil {
		a.audioPlayer = p
		a.applyPlayerBufferSize()
		a.audioPlayer.Play()
	}
	return a
}

func (a *App) Run() error { return ebiten.RunGame(a) }

func (a *App) Update() error {
	var btn emu.Buttons
	if ebiten.IsKeyPressed(ebiten.KeyRight) {
		btn.Right = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyLeft) {
		btn.Left = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyUp) {
		btn.Up = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyDown) {
		btn.Down = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyZ) {
		btn.A = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyX) {
		btn.B = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyEnter) {
		btn.Start = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
		btn.Select = true
	}
	a.m.SetButtons(btn)

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		a.paused = !a.paused
	}
	a.fast = ebiten.IsKeyPressed(ebiten.KeyTab)
	a.applyPlayerBufferSize()

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		a.m.Reset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		a.muted = !a.muted
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		a.showHelp = !a.showHelp
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		_ = a.saveScreenshot()
	}

	if a.paused {
		if inpututil.IsKeyJustPressed(ebiten.KeyN) {
			a.stepOnce()
		}
		return nil
	}
	if a.fast {
		for i := 0; i < 5; i++ {
			a.stepOnce()
		}
	} else {
		a.stepOnce()
	}
	return nil
}

// stepOnce advances one frame and persists battery RAM immediately if the
// core hit its unrecoverable condition (STOP with both joypad select lines
// disabled), since
// nothing else will get a chance to run afterward.
func (a *App) stepOnce() {
	if fatal, msg := a.m.StepFrame(); fatal {
		_ = a.m.WriteBatteryFile()
		panic(fmt.Sprintf("gbemu: unrecoverable core condition: %s", msg))
	}
}

func (a *App) Draw(screen *ebiten.Image) {
	if a.tex == nil {
		a.tex = ebiten.NewImage(160, 144)
	}
	a.tex.WritePixels(a.m.Framebuffer())
	screen.DrawImage(a.tex, nil)

	if a.paused {
		overlay := ebiten.NewImage(160, 144)
		overlay.Fill(color.RGBA{0, 0, 0, 96})
		screen.DrawImage(overlay, nil)
		ebitenutil.DebugPrintAt(screen, "PAUSED", 10, 10)
	}
	if a.showHelp {
		lines := []string{
			"P: pause   N: step (paused)",
			"Tab: fast-forward   R: reset",
			"M: mute   F12: screenshot   F1: this help",
		}
		for i, l := range lines {
			ebitenutil.DebugPrintAt(screen, l, 4, 124+i*10)
		}
	}
}

func (a *App) Layout(outW, outH int) (int, int) { return 160, 144 }

func (a *App) saveScreenshot() error {
	fb := a.m.Framebuffer()
	img := &image.RGBA{
		Pix:    make([]byte, len(fb)),
		Stride: 4 * 160,
		Rect:   image.Rect(0, 0, 160, 144),
	}
	copy(img.Pix, fb)
	name := fmt.Sprintf("screenshot_%s.png", time.Now().Format("20060102_150405"))
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
