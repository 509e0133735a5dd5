package audio

// DAPlayer streams signed 16-bit samples out of the NEXTP8 DA memory.
// The period register sets the source rate in microseconds per sample;
// the player resamples to the mixer's output rate. In mono mode one
// channel is read, otherwise stereo pairs are averaged down.
type DAPlayer struct {
	memory []int16
	start  int
	end    int

	pos     int
	acc     float64
	rate    float64
	playing bool
	mono    bool
	loop    bool
}

// Configure points the player at a window of the DA memory.
func (d *DAPlayer) Configure(memory []int16, start, end int) {
	d.memory = memory
	d.start = start
	d.end = end
}

// Play starts output at the given period. A period of zero is ignored.
func (d *DAPlayer) Play(period uint16, mono, loop bool) {
	if period == 0 || len(d.memory) == 0 {
		return
	}
	d.rate = 1e6 / float64(period)
	d.mono = mono
	d.loop = loop
	d.pos = d.start
	d.acc = 0
	d.playing = true
}

// Stop halts output.
func (d *DAPlayer) Stop() {
	d.playing = false
}

// Playing reports whether samples are streaming.
func (d *DAPlayer) Playing() bool { return d.playing }

func (d *DAPlayer) sample() float32 {
	if !d.playing {
		return 0
	}
	var s float32
	if d.mono {
		s = float32(d.memory[d.pos]) / 32768
	} else {
		l := float32(d.memory[d.pos]) / 32768
		r := l
		if d.pos+1 < d.end {
			r = float32(d.memory[d.pos+1]) / 32768
		}
		s = (l + r) / 2
	}

	d.acc += d.rate / SampleRate
	for d.acc >= 1 {
		d.acc--
		if d.mono {
			d.pos++
		} else {
			d.pos += 2
		}
		if d.pos >= d.end {
			if d.loop {
				d.pos = d.start
			} else {
				d.playing = false
				break
			}
		}
	}
	return s
}
