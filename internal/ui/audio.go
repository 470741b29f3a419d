package ui

import (
	"encoding/binary"
	"time"

	"github.com/tindermere/gbcore/internal/emu"
)

// apuStream implements io.Reader by pulling PCM samples from the emulator's
// audio buffer and converting them to 16-bit little-endian stereo frames,
// padding with silence on underrun rather than ever blocking or returning 0.
type apuStream struct {
	m          *emu.Machine
	mono       bool
	muted      *bool
	lowLatency bool
}

func (s *apuStream) Read(p []byte) (int, error) {
	if len(p) < 4 {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}
	if s.muted != nil && *s.muted {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	maxFrames := len(p) / 4
	capFrames := 2048
	if s.lowLatency {
		capFrames = 1024
	}
	if maxFrames > capFrames {
		maxFrames = capFrames
	}

	want := maxFrames
	if buf := s.m.APUBufferedStereo(); buf < want {
		want = buf
	}

	i := 0
	pulled := 0
	if want > 0 {
		frames := s.m.APUPullStereo(want)
		for j := 0; j+1 < len(frames) && i+3 < len(p); j += 2 {
			l, r := frames[j], frames[j+1]
			if s.mono {
				mid := int16((int32(l) + int32(r)) / 2)
				binary.LittleEndian.PutUint16(p[i:], uint16(mid))
				binary.LittleEndian.PutUint16(p[i+2:], uint16(mid))
			} else {
				binary.LittleEndian.PutUint16(p[i:], uint16(l))
				binary.LittleEndian.PutUint16(p[i+2:], uint16(r))
			}
			i += 4
			pulled++
		}
	}
	// Pad the rest of the requested chunk with silence instead of stalling
	// the audio callback on an underrun.
	for ; i+3 < len(p); i += 4 {
		binary.LittleEndian.PutUint16(p[i:], 0)
		binary.LittleEndian.PutUint16(p[i+2:], 0)
	}
	for ; i < len(p); i++ {
		p[i] = 0
	}
	_ = pulled
	return len(p), nil
}

// applyPlayerBufferSize keeps the ebiten audio player's internal buffer
// small while fast-forwarding or in low-latency mode, larger otherwise to
// absorb host scheduling jitter.
func (a *App) applyPlayerBufferSize() {
	if a.audioPlayer == nil {
		return
	}
	bufMs := 40
	if a.cfg.AudioLowLatency || a.fast {
		bufMs = 20
	}
	a.audioPlayer.SetBufferSize(time.Duration(bufMs) * time.Millisecond)
}
