package emu

import "github.com/tindermere/gbcore/internal/core"

// Config contains settings that affect emulation behavior.
type Config struct {
	Variant    core.Variant // DMG or CGB
	SampleRate int          // host audio sample rate, defaults to 44100
}
