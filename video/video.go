// Package video converts emulated screen memory into RGBA frames and
// pushes them to a display backend. Two backends exist: an ebiten
// window and a headless sink that retains the last frame for tests.
package video

// Display is the output side of the video pipeline.
type Display interface {
	// Start brings the output up. It returns once the backend can
	// accept frames.
	Start() error
	// Stop tears the output down.
	Stop() error
	// UpdateFrame hands over a full RGBA frame (width*height*4 bytes).
	UpdateFrame(data []byte) error
	// Done is closed when the backend shuts down, for example when
	// the user closes the window.
	Done() <-chan struct{}
	// SetKeyHandler installs a callback receiving raw key bytes.
	SetKeyHandler(fn func(byte))
}

// Config describes the frame geometry a backend should present.
type Config struct {
	Width  int
	Height int
	Scale  int
	Title  string
}
