package audio

// Beeper models the QL's single-channel sound, programmed through the
// 8-byte IPC sound command: pitch pair, gradient interval, duration,
// and wrap control. A pitch step lasts 72us times the pitch value plus
// one; the gradient walks the pitch between the two endpoints.
type Beeper struct {
	active   bool
	pitch    uint8
	pitch2   uint8
	interval uint16
	duration uint32
	step     int8
	wrap     uint8

	cur       uint8
	phase     float64
	level     float32
	remaining float64
	gradAcc   float64
}

const pitchUnit = 72e-6

// Start arms the beeper from the IPC command parameter bytes. A short
// or nil slice is ignored.
func (b *Beeper) Start(params []byte) {
	if len(params) < 8 {
		return
	}
	b.pitch = params[0]
	b.pitch2 = params[1]
	b.interval = uint16(params[2])<<8 | uint16(params[3])
	b.duration = uint32(params[4])<<8 | uint32(params[5])
	grad := params[6]
	b.wrap = params[7]
	b.step = 1
	if grad&0x80 != 0 {
		b.step = -1
	}

	b.cur = b.pitch
	b.phase = 0
	b.level = 0.5
	b.gradAcc = 0
	if b.duration == 0 {
		b.remaining = -1 // until killed
	} else {
		b.remaining = float64(b.duration) * pitchUnit
	}
	b.active = true
}

// Stop silences the beeper immediately.
func (b *Beeper) Stop() {
	b.active = false
}

// Active reports whether the beeper is sounding.
func (b *Beeper) Active() bool { return b.active }

func (b *Beeper) sample() float32 {
	if !b.active {
		return 0
	}
	dt := 1.0 / SampleRate
	if b.remaining > 0 {
		b.remaining -= dt
		if b.remaining <= 0 {
			b.active = false
			return 0
		}
	}

	halfPeriod := pitchUnit * float64(uint16(b.cur)+1)
	b.phase += dt
	if b.phase >= halfPeriod {
		b.phase -= halfPeriod
		b.level = -b.level
	}

	if b.interval != 0 && b.pitch != b.pitch2 {
		b.gradAcc += dt
		gradPeriod := pitchUnit * float64(b.interval)
		for b.gradAcc >= gradPeriod {
			b.gradAcc -= gradPeriod
			b.stepPitch()
		}
	}
	return b.level
}

func (b *Beeper) stepPitch() {
	lo, hi := b.pitch, b.pitch2
	if lo > hi {
		lo, hi = hi, lo
	}
	next := int16(b.cur) + int16(b.step)
	switch {
	case next > int16(hi):
		if b.wrap != 0 {
			next = int16(lo)
		} else {
			next = int16(hi)
			b.step = -b.step
		}
	case next < int16(lo):
		if b.wrap != 0 {
			next = int16(hi)
		} else {
			next = int16(lo)
			b.step = -b.step
		}
	}
	b.cur = uint8(next)
}
