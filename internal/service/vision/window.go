package vision

import (
	"time"

	"gocv.io/x/gocv"

	"facescanner/internal/service/scanner"
)

// Window shows frames in a native OpenCV window.
type Window struct {
	window *gocv.Window
}

func NewWindow(title string) *Window {
	return &Window{window: gocv.NewWindow(title)}
}

func (w *Window) Show(frame scanner.Frame) error {
	f, err := frameFrom(frame)
	if err != nil {
		return err
	}
	w.window.IMShow(f.mat)
	return nil
}

// PollKey waits at least one millisecond; WaitKey(0) would block until a key is pressed.
func (w *Window) PollKey(wait time.Duration) int {
	ms := int(wait / time.Millisecond)
	if ms < 1 {
		ms = 1
	}
	return w.window.WaitKey(ms)
}

func (w *Window) Close() error {
	return w.window.Close()
}
