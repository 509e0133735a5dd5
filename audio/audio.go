// Package audio renders the emulated sound sources into a float32
// sample ring consumed by an output backend. The sources are the QL
// beeper, driven through IPC sound commands, and the NEXTP8 DA sample
// player with its sequencer command registers.
package audio

import "sync"

// SampleRate is the output rate of the mixer.
const SampleRate = 48000

const ringSize = 16384

// Mixer renders the active sources and buffers samples for a backend.
// Render is called from the emulation loop; ReadSample from the audio
// callback goroutine.
type Mixer struct {
	mu sync.Mutex

	ring [ringSize]float32
	head int
	tail int

	beeper Beeper
	da     DAPlayer
}

// NewMixer builds a mixer with both sources idle.
func NewMixer() *Mixer {
	return &Mixer{}
}

// Beep starts the beeper from an 8-byte IPC sound command.
func (m *Mixer) Beep(params []byte) {
	m.mu.Lock()
	m.beeper.Start(params)
	m.mu.Unlock()
}

// KillBeep silences the beeper.
func (m *Mixer) KillBeep() {
	m.mu.Lock()
	m.beeper.Stop()
	m.mu.Unlock()
}

// DA exposes the sample player for register wiring.
func (m *Mixer) DA() *DAPlayer {
	return &m.da
}

// Render produces n output samples into the ring, mixing the sources.
func (m *Mixer) Render(n int) {
	m.mu.Lock()
	for i := 0; i < n; i++ {
		s := m.beeper.sample() + m.da.sample()
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		next := (m.head + 1) % ringSize
		if next == m.tail {
			break // full, drop the rest
		}
		m.ring[m.head] = s
		m.head = next
	}
	m.mu.Unlock()
}

// ReadSample pops one sample, returning silence on underrun.
func (m *Mixer) ReadSample() float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tail == m.head {
		return 0
	}
	s := m.ring[m.tail]
	m.tail = (m.tail + 1) % ringSize
	return s
}

// Buffered reports how many samples are queued.
func (m *Mixer) Buffered() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (m.head - m.tail + ringSize) % ringSize
}
