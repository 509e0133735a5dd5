package machine

import (
	"time"

	"github.com/sarchlab/qlsim/video"
)

// frameIntLevel is the CPU interrupt line the 50 Hz tick raises.
const frameIntLevel = 2

// pollResult mirrors the frame flag the OS polls in RAM.
const framePollAddr = 0x280A0

// RunFrame advances the machine by one display frame: a chunk of
// instructions, the frame interrupt, peripheral upkeep, and the video
// and audio pipelines.
func (m *Machine) RunFrame() {
	m.CPU.ExecuteChunk(ChunkPerFrame)

	switch m.profile {
	case ProfileQL:
		if m.QL.FrameTick() {
			m.CPU.RaiseInterrupt(frameIntLevel)
			if ram := m.Bus.RAM(); int(framePollAddr) < len(ram) {
				ram[framePollAddr] = 0x10
			}
		}
	case ProfileNEXTP8:
		m.P8.FrameTick()
		m.RTC.Update()
		if m.Wifi != nil {
			m.Wifi.Poll()
		}
		m.pumpDA()
	}

	m.Mixer.Render(samplesPerFrame)
	if m.Sound != nil {
		m.Sound.Drain(samplesPerFrame)
	}

	m.refreshDisplay()
}

// pumpDA tracks the DA control registers into the sample player.
func (m *Machine) pumpDA() {
	switch {
	case m.P8.DAStart && !m.da.Playing():
		m.da.Configure(m.P8.DAMemory, 0, len(m.P8.DAMemory))
		m.da.Play(m.P8.DAPeriod, m.P8.DAMono, true)
	case !m.P8.DAStart && m.da.Playing():
		m.da.Stop()
	}
}

func (m *Machine) refreshDisplay() {
	if m.Display == nil {
		return
	}
	switch m.profile {
	case ProfileQL:
		ram := m.Bus.RAM()
		if len(ram) < video.QLScreenBase+video.QLScreenSize {
			return
		}
		screen := ram[video.QLScreenBase : video.QLScreenBase+video.QLScreenSize]
		video.DecodeQL(m.frame, screen, m.displayCtrl&0x08 != 0)
	case ProfileNEXTP8:
		video.DecodeP8(m.frame, m.P8.Front(), m.P8.OverlayFront(),
			m.P8.Palette[:], m.P8.OverlayControl)
	}
	m.Display.UpdateFrame(m.frame)
}

// Run executes frames at the display rate until the count is reached
// or the display closes. A non-positive count runs until closed.
func (m *Machine) Run(frames int) {
	if m.Display != nil {
		if err := m.Display.Start(); err != nil {
			return
		}
	}
	if m.Sound != nil {
		m.Sound.Start()
	}

	ticker := time.NewTicker(time.Second / FrameRate)
	defer ticker.Stop()

	var done <-chan struct{}
	if m.Display != nil {
		done = m.Display.Done()
	}

	for n := 0; frames <= 0 || n < frames; n++ {
		m.RunFrame()
		select {
		case <-ticker.C:
		case <-done: // nil when headless, blocks forever
			return
		}
	}
}
