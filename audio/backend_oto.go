//go:build !headless

package audio

import (
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// OtoOutput plays mixer samples through the system audio device.
type OtoOutput struct {
	ctx    *oto.Context
	player *oto.Player
	mixer  *Mixer

	mu      sync.Mutex
	started bool
}

// NewOutput opens the audio device at the mixer's sample rate.
func NewOutput(mixer *Mixer) (*OtoOutput, error) {
	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready
	o := &OtoOutput{ctx: ctx, mixer: mixer}
	o.player = ctx.NewPlayer(o)
	return o, nil
}

// Read implements io.Reader for the oto player, pulling samples off
// the mixer ring and encoding them as little-endian float32.
func (o *OtoOutput) Read(p []byte) (int, error) {
	n := len(p) / 4
	for i := 0; i < n; i++ {
		bits := math.Float32bits(o.mixer.ReadSample())
		p[i*4] = byte(bits)
		p[i*4+1] = byte(bits >> 8)
		p[i*4+2] = byte(bits >> 16)
		p[i*4+3] = byte(bits >> 24)
	}
	return n * 4, nil
}

// Start begins playback.
func (o *OtoOutput) Start() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.started {
		o.player.Play()
		o.started = true
	}
}

// Drain is a no-op when a real device is pulling samples.
func (o *OtoOutput) Drain(int) {}

// Close stops playback and releases the player.
func (o *OtoOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.player != nil {
		err := o.player.Close()
		o.player = nil
		o.started = false
		return err
	}
	return nil
}
