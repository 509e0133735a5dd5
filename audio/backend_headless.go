//go:build headless

package audio

// OtoOutput in headless builds drains the mixer without a device so
// the ring never backs up.
type OtoOutput struct {
	mixer   *Mixer
	started bool
}

// NewOutput builds a silent drain for the mixer.
func NewOutput(mixer *Mixer) (*OtoOutput, error) {
	return &OtoOutput{mixer: mixer}, nil
}

// Start begins draining.
func (o *OtoOutput) Start() {
	o.started = true
}

// Drain discards up to n buffered samples. The machine loop calls
// this once per frame in place of the device callback.
func (o *OtoOutput) Drain(n int) {
	if !o.started {
		return
	}
	for i := 0; i < n && o.mixer.Buffered() > 0; i++ {
		o.mixer.ReadSample()
	}
}

// Close stops the drain.
func (o *OtoOutput) Close() error {
	o.started = false
	return nil
}
