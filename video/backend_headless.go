//go:build headless

package video

import (
	"fmt"
	"sync"
)

// HeadlessDisplay retains the most recent frame without opening a
// window. Tests and batch runs inspect it through LastFrame.
type HeadlessDisplay struct {
	width  int
	height int

	mu         sync.RWMutex
	frame      []byte
	frames     uint64
	done       chan struct{}
	keyHandler func(byte)
}

// NewDisplay builds a headless frame sink for the given geometry.
func NewDisplay(cfg Config) (Display, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("video: invalid geometry %dx%d", cfg.Width, cfg.Height)
	}
	return &HeadlessDisplay{
		width:  cfg.Width,
		height: cfg.Height,
		frame:  make([]byte, cfg.Width*cfg.Height*4),
		done:   make(chan struct{}),
	}, nil
}

func (d *HeadlessDisplay) Start() error { return nil }

func (d *HeadlessDisplay) Stop() error {
	select {
	case <-d.done:
	default:
		close(d.done)
	}
	return nil
}

func (d *HeadlessDisplay) Done() <-chan struct{} { return d.done }

func (d *HeadlessDisplay) UpdateFrame(data []byte) error {
	d.mu.Lock()
	copy(d.frame, data)
	d.frames++
	d.mu.Unlock()
	return nil
}

func (d *HeadlessDisplay) SetKeyHandler(fn func(byte)) {
	d.mu.Lock()
	d.keyHandler = fn
	d.mu.Unlock()
}

// Inject feeds a key byte as if typed into the window.
func (d *HeadlessDisplay) Inject(b byte) {
	d.mu.RLock()
	fn := d.keyHandler
	d.mu.RUnlock()
	if fn != nil {
		fn(b)
	}
}

// LastFrame returns a copy of the most recent frame.
func (d *HeadlessDisplay) LastFrame() []byte {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]byte, len(d.frame))
	copy(out, d.frame)
	return out
}

// FrameCount reports how many frames have been pushed.
func (d *HeadlessDisplay) FrameCount() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.frames
}
