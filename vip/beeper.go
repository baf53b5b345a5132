package vip

import (
	"encoding/binary"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
)

const (
	sampleRate = 44100
	toneHz     = 440
	amplitude  = 0x1800
)

// Tone is an io.Reader of signed 16-bit little-endian mono samples:
// a square wave while on, silence while off.
type Tone struct {
	on atomic.Bool
	n  int // samples of the current wave generated so far
}

func (t *Tone) SetOn(on bool) { t.on.Store(on) }

func (t *Tone) Read(p []byte) (int, error) {
	var (
		n    = len(p) &^ 1
		on   = t.on.Load()
		half = sampleRate / toneHz / 2
	)
	for i := 0; i < n; i += 2 {
		var s int16
		if on {
			if t.n/half%2 == 0 {
				s = amplitude
			} else {
				s = -amplitude
			}
			t.n = (t.n + 1) % (2 * half)
		}
		binary.LittleEndian.PutUint16(p[i:], uint16(s))
	}
	return n, nil
}

// Beeper plays a Tone through the system audio device.
type Beeper struct {
	tone   Tone
	player *oto.Player

	mu  sync.Mutex
	off *time.Timer
}

func NewBeeper() (*Beeper, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("audio: %w", err)
	}
	<-ready
	b := &Beeper{}
	b.player = ctx.NewPlayer(&b.tone)
	b.player.Play()
	return b, nil
}

// Beep sounds the tone for d, extending any tone already playing.
func (b *Beeper) Beep(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tone.SetOn(true)
	if b.off == nil {
		b.off = time.AfterFunc(d, func() { b.tone.SetOn(false) })
	} else {
		b.off.Reset(d)
	}
}

func (b *Beeper) Close() error {
	b.mu.Lock()
	if b.off != nil {
		b.off.Stop()
	}
	b.mu.Unlock()
	return b.player.Close()
}
