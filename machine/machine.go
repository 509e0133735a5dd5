// Package machine assembles a full system from the emulation parts:
// bus, CPU core, hardware profile, peripherals, and the video and
// audio pipelines. Two mutually exclusive profiles exist, the classic
// QL board and the NEXTP8 board.
package machine

import (
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/qlsim/audio"
	"github.com/sarchlab/qlsim/bus"
	"github.com/sarchlab/qlsim/cpu"
	"github.com/sarchlab/qlsim/hw"
	"github.com/sarchlab/qlsim/loader"
	"github.com/sarchlab/qlsim/profiler"
	"github.com/sarchlab/qlsim/rtc"
	"github.com/sarchlab/qlsim/video"
	"github.com/sarchlab/qlsim/wifi"
)

// Profile selects which board the machine models.
type Profile int

const (
	// ProfileQL is the classic board with the IPC link, the seconds
	// clock, and the BDI disk port.
	ProfileQL Profile = iota
	// ProfileNEXTP8 is the NEXTP8 board with the UART, the DA audio
	// path, indexed framebuffers, and the I2C clock chip.
	ProfileNEXTP8
)

// DefaultRAMTop gives the machine 640 KB above the ROM area.
const DefaultRAMTop = 0xA0000

// FrameRate is the display refresh driving the frame loop.
const FrameRate = 50

// ChunkPerFrame is how many instructions each frame executes.
const ChunkPerFrame = 25000

// samplesPerFrame keeps the audio ring fed at the frame rate.
const samplesPerFrame = audio.SampleRate / FrameRate

// Machine is an assembled system ready to run.
type Machine struct {
	Bus *bus.Memory
	CPU *cpu.CPU

	// Exactly one of QL and P8 is set, depending on the profile.
	QL *hw.QL
	P8 *hw.P8

	RTC   *rtc.DS1307
	Wifi  *wifi.ESP8266
	Mixer *audio.Mixer

	Display video.Display
	Sound   *audio.OtoOutput
	Events  *profiler.Recorder

	profile     Profile
	displayCtrl uint8
	da          *audio.DAPlayer
	frame       []byte

	// LastSfx and LastMusic hold the most recent decoded sequencer
	// commands on the NEXTP8 profile.
	LastSfx   audio.SfxEvent
	LastMusic audio.MusicEvent

	log io.Writer
}

// Config carries the machine assembly knobs.
type Config struct {
	Profile Profile
	RAMTop  uint32

	// ROM and ExpansionROM are image paths. ROM is required.
	ROM          string
	ExpansionROM string

	// Disk backs the BDI port on the QL profile.
	Disk []byte

	// Trace receives the per-instruction register trace when set.
	Trace io.Writer
	// BusTrace receives the data-access trace when set.
	BusTrace io.Writer
	// Log receives machine-level diagnostics. Defaults to stderr.
	Log io.Writer

	// Events turns on the access profiler.
	Events bool

	// HeadDisplay disables the window even in windowed builds by
	// not starting the backend.
	NoDisplay bool

	// Dialer overrides the WiFi model's network dialer, for tests.
	Dialer wifi.Dialer
}

// New assembles a machine and loads its ROM images.
func New(cfg Config) (*Machine, error) {
	if cfg.RAMTop == 0 {
		cfg.RAMTop = DefaultRAMTop
	}
	if cfg.Log == nil {
		cfg.Log = os.Stderr
	}

	m := &Machine{
		Mixer:   audio.NewMixer(),
		profile: cfg.Profile,
		log:     cfg.Log,
	}
	m.da = m.Mixer.DA()

	busOpts := []bus.Option{
		bus.WithWriteFloor(video.QLScreenBase),
	}
	if cfg.BusTrace != nil {
		busOpts = append(busOpts, bus.WithTrace(cfg.BusTrace))
	}
	if cfg.Events {
		m.Events = profiler.New()
		busOpts = append(busOpts,
			bus.WithAccessHooks(m.Events.RecordDataRead, m.Events.RecordDataWrite))
	}

	switch cfg.Profile {
	case ProfileQL:
		m.QL = hw.NewQL(cfg.Disk)
		m.QL.SetDisplay = func(v uint8) { m.displayCtrl = v }
		m.QL.IPC.OnCommand = m.ipcCommand
		busOpts = append(busOpts,
			bus.WithWindow(hw.QLWindowBase, hw.QLWindowSize, m.QL))
	case ProfileNEXTP8:
		m.P8 = hw.NewP8()
		m.P8.Log = cfg.Log
		m.Wifi = m.newWifi(cfg)
		m.P8.Modem = m.Wifi
		m.P8.SfxCommand = func(cmd uint16) {
			m.LastSfx = audio.DecodeSfx(cmd, m.P8.SfxLength)
		}
		m.P8.MusicCommand = func(cmd uint16) {
			m.LastMusic = audio.DecodeMusic(cmd, m.P8.MusicFadeTime)
		}
		m.RTC = rtc.New()
		busOpts = append(busOpts,
			bus.WithWindow(hw.P8WindowBase, hw.P8WindowSize, m.P8),
			bus.WithWindow(hw.P8FrontBufferBase, hw.P8FrameBufferSize, m.P8),
			bus.WithWindow(hw.P8BackBufferBase, hw.P8FrameBufferSize, m.P8),
			bus.WithWindow(hw.P8OverlayFrontBase, hw.P8FrameBufferSize, m.P8),
			bus.WithWindow(hw.P8OverlayBackBase, hw.P8FrameBufferSize, m.P8),
			bus.WithWindow(hw.P8PaletteBase, hw.P8PaletteSize, m.P8),
			bus.WithWindow(hw.P8DAMemoryBase, hw.P8DAMemorySize, m.P8),
			bus.WithWindow(rtc.WindowBase, rtc.WindowSize, m.RTC))
	default:
		return nil, fmt.Errorf("machine: unknown profile %d", cfg.Profile)
	}

	busOpts = append(busOpts, bus.WithFatalHook(m.fatalWrite))
	m.Bus = bus.New(cfg.RAMTop, busOpts...)

	cpuOpts := []cpu.Option{cpu.WithDiagnostics(cfg.Log)}
	if cfg.Trace != nil {
		cpuOpts = append(cpuOpts, cpu.WithTrace(cfg.Trace))
	}
	if m.Events != nil {
		cpuOpts = append(cpuOpts, cpu.WithExecHook(m.Events.RecordExec))
	}
	m.CPU = cpu.New(m.Bus, cpuOpts...)

	if err := m.loadROMs(cfg); err != nil {
		return nil, err
	}

	if !cfg.NoDisplay {
		if err := m.openDisplay(); err != nil {
			return nil, err
		}
	}

	m.CPU.Reset()
	return m, nil
}

func (m *Machine) newWifi(cfg Config) *wifi.ESP8266 {
	opts := []wifi.Option{
		wifi.WithAccessPoint(wifi.AccessPoint{SSID: "qlsim", Password: "qlsim"}),
	}
	if cfg.Dialer != nil {
		opts = append(opts, wifi.WithDialer(cfg.Dialer))
	}
	return wifi.New(opts...)
}

func (m *Machine) loadROMs(cfg Config) error {
	if cfg.ROM != "" {
		img, err := loader.LoadMain(cfg.ROM)
		if err != nil {
			return err
		}
		if err := m.Bus.LoadROM(img.Base, img.Data); err != nil {
			return err
		}
	}
	if cfg.ExpansionROM != "" {
		img, err := loader.LoadExpansion(cfg.ExpansionROM)
		if err != nil {
			return err
		}
		if err := m.Bus.LoadROM(img.Base, img.Data); err != nil {
			return err
		}
	}
	return nil
}

func (m *Machine) openDisplay() error {
	cfg := video.Config{Scale: 2, Title: "qlsim"}
	if m.profile == ProfileNEXTP8 {
		cfg.Width, cfg.Height = video.P8Width, video.P8Height
		cfg.Scale = 4
	} else {
		cfg.Width, cfg.Height = video.QLWidth, video.QLHeight
	}
	d, err := video.NewDisplay(cfg)
	if err != nil {
		return err
	}
	m.Display = d
	m.frame = make([]byte, cfg.Width*cfg.Height*4)

	snd, err := audio.NewOutput(m.Mixer)
	if err != nil {
		fmt.Fprintf(m.log, "machine: audio unavailable: %v\n", err)
	} else {
		m.Sound = snd
	}
	return nil
}

// IPC sound commands the link itself does not answer.
const (
	ipcCmdBeep     = 0x0A
	ipcCmdKillBeep = 0x0B
)

func (m *Machine) ipcCommand(cmd int) {
	switch cmd {
	case ipcCmdBeep:
		// Parameters do not travel over the minimal link model; a
		// middle-of-the-range steady tone stands in for them.
		m.Mixer.Beep([]byte{0x30, 0x30, 0, 0, 0, 0, 0, 0})
	case ipcCmdKillBeep:
		m.Mixer.KillBeep()
	}
}

// fatalWrite reports a write into the protected low region and halts.
func (m *Machine) fatalWrite(addr uint32, v uint32) {
	fmt.Fprintf(m.log, "*** Write to non-writable address 0x%x (value 0x%x) ***\n", addr, v)
	m.CPU.DumpState(m.log)
	os.Exit(1)
}

// Close flushes the profiler and tears the backends down.
func (m *Machine) Close() {
	if m.Events != nil {
		m.Events.Flush()
	}
	if m.Sound != nil {
		m.Sound.Close()
	}
	if m.Display != nil {
		m.Display.Stop()
	}
}
