//go:build !headless

package video

import (
	"fmt"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// EbitenDisplay shows frames in an ebiten window. The game loop runs
// on its own goroutine; UpdateFrame may be called from the emulation
// loop at any time.
type EbitenDisplay struct {
	width   int
	height  int
	scale   int
	title   string
	running bool

	window     *ebiten.Image
	frame      []byte
	mu         sync.RWMutex
	done       chan struct{}
	ready      chan struct{}
	keyHandler func(byte)
}

// NewDisplay builds a windowed display for the given geometry.
func NewDisplay(cfg Config) (Display, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("video: invalid geometry %dx%d", cfg.Width, cfg.Height)
	}
	scale := cfg.Scale
	if scale <= 0 {
		scale = 1
	}
	return &EbitenDisplay{
		width:  cfg.Width,
		height: cfg.Height,
		scale:  scale,
		title:  cfg.Title,
		frame:  make([]byte, cfg.Width*cfg.Height*4),
		done:   make(chan struct{}),
		ready:  make(chan struct{}, 1),
	}, nil
}

func (d *EbitenDisplay) Start() error {
	if d.running {
		return nil
	}
	d.running = true
	ebiten.SetWindowSize(d.width*d.scale, d.height*d.scale)
	ebiten.SetWindowTitle(d.title)
	ebiten.SetRunnableOnUnfocused(true)

	go func() {
		defer func() {
			d.running = false
			select {
			case <-d.done:
			default:
				close(d.done)
			}
		}()
		if err := ebiten.RunGame(d); err != nil && err != ebiten.Termination {
			fmt.Printf("video: %v\n", err)
		}
	}()

	// Wait for the first Draw so callers know the window is up.
	<-d.ready
	return nil
}

func (d *EbitenDisplay) Stop() error {
	d.running = false
	return nil
}

func (d *EbitenDisplay) Done() <-chan struct{} { return d.done }

func (d *EbitenDisplay) UpdateFrame(data []byte) error {
	d.mu.Lock()
	copy(d.frame, data)
	d.mu.Unlock()
	return nil
}

func (d *EbitenDisplay) SetKeyHandler(fn func(byte)) {
	d.mu.Lock()
	d.keyHandler = fn
	d.mu.Unlock()
}

func (d *EbitenDisplay) emit(b byte) {
	d.mu.RLock()
	fn := d.keyHandler
	d.mu.RUnlock()
	if fn != nil {
		fn(b)
	}
}

// Update implements ebiten.Game.
func (d *EbitenDisplay) Update() error {
	if !d.running || ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	for _, r := range ebiten.AppendInputChars(nil) {
		if r > 0 && r <= 0xFF {
			d.emit(byte(r))
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		d.emit('\n')
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		d.emit('\b')
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		d.emit(0x1B)
	}
	return nil
}

// Draw implements ebiten.Game.
func (d *EbitenDisplay) Draw(screen *ebiten.Image) {
	if d.window == nil {
		d.window = ebiten.NewImage(d.width, d.height)
	}
	d.mu.RLock()
	d.window.WritePixels(d.frame)
	d.mu.RUnlock()
	screen.DrawImage(d.window, nil)
	select {
	case d.ready <- struct{}{}:
	default:
	}
}

// Layout implements ebiten.Game.
func (d *EbitenDisplay) Layout(_, _ int) (int, int) {
	return d.width, d.height
}
