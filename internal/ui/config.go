package ui

// Config contains window/input/audio related settings.
type Config struct {
	Title           string // window title
	Scale           int    // integer upscaling factor
	AudioStereo     bool   // if true, output true stereo; if false, fold to mono
	AudioLowLatency bool   // smaller audio buffer, trades underrun risk for latency
	Mute            bool
}

// Defaults fills missing fields with reasonable defaults.
func (c *Config) Defaults() {
	if c.Title == "" {
		c.Title = "gbemu"
	}
	if c.Scale <= 0 {
		c.Scale = 3
	}
}
