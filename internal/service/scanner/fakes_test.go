package scanner

import (
	"errors"
	"fmt"
	"image"
	"testing"
	"time"

	"facescanner/internal/config"
	"facescanner/internal/logger"
)

// ========================================
// Test doubles
// ========================================

type fakeImage struct {
	bounds image.Rectangle
	origin image.Point // position of this view inside the root image
	closed *int
}

func newFakeImage(w, h int) *fakeImage {
	return &fakeImage{bounds: image.Rect(0, 0, w, h), closed: new(int)}
}

func (f *fakeImage) Bounds() image.Rectangle { return f.bounds }

func (f *fakeImage) Region(r image.Rectangle) Image {
	r = r.Intersect(f.bounds)
	return &fakeImage{
		bounds: image.Rect(0, 0, r.Dx(), r.Dy()),
		origin: f.origin.Add(r.Min),
		closed: f.closed,
	}
}

func (f *fakeImage) Close() error {
	*f.closed++
	return nil
}

type fakeCascade struct {
	rects  []image.Rectangle
	calls  int
	params []Params
	seen   []image.Point // origins of the images it was run on
	closed bool
}

func (c *fakeCascade) DetectMultiScale(img Image, params Params) []image.Rectangle {
	c.calls++
	c.params = append(c.params, params)
	if fi, ok := img.(*fakeImage); ok {
		c.seen = append(c.seen, fi.origin)
	}
	out := make([]image.Rectangle, len(c.rects))
	copy(out, c.rects)
	return out
}

func (c *fakeCascade) Close() error {
	c.closed = true
	return nil
}

type fakeProvider struct {
	cascades map[string]*fakeCascade
	requests []string
}

func (p *fakeProvider) LoadModel(name string) (Cascade, error) {
	p.requests = append(p.requests, name)
	c, ok := p.cascades[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNoCascade)
	}
	return c, nil
}

type fakeFrame struct {
	id       int
	gray     *fakeImage
	grayErr  error
	closed   bool
	drawings []Detection
}

func (f *fakeFrame) Grayscale() (Image, error) {
	if f.grayErr != nil {
		return nil, f.grayErr
	}
	return &fakeImage{bounds: f.gray.bounds, closed: f.gray.closed}, nil
}

func (f *fakeFrame) Close() error {
	f.closed = true
	return nil
}

type fakeSource struct {
	remaining int
	width     int
	height    int
	grayErr   error
	served    []*fakeFrame
}

func (s *fakeSource) Next() (Frame, bool) {
	if s.remaining == 0 {
		return nil, false
	}
	s.remaining--
	f := &fakeFrame{id: len(s.served), gray: newFakeImage(s.width, s.height), grayErr: s.grayErr}
	s.served = append(s.served, f)
	return f, true
}

func (s *fakeSource) Close() error { return nil }

type fakeDisplay struct {
	keys    []int
	shown   int
	showErr error
	waits   []time.Duration
}

func (d *fakeDisplay) Show(frame Frame) error {
	if d.showErr != nil {
		return d.showErr
	}
	d.shown++
	return nil
}

func (d *fakeDisplay) PollKey(wait time.Duration) int {
	d.waits = append(d.waits, wait)
	if len(d.keys) == 0 {
		return -1
	}
	k := d.keys[0]
	d.keys = d.keys[1:]
	return k
}

func (d *fakeDisplay) Close() error { return nil }

type recordingAnnotator struct {
	err error
}

func (a *recordingAnnotator) Annotate(frame Frame, detection Detection) error {
	f, ok := frame.(*fakeFrame)
	if !ok {
		return ErrUnsupportedFrame
	}
	if a.err != nil {
		return a.err
	}
	f.drawings = append(f.drawings, detection)
	return nil
}

// ========================================
// Helpers
// ========================================

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	lg := logger.NewLogger(&config.Config{LogDirectory: t.TempDir(), LogLevel: "error"})
	t.Cleanup(func() { lg.Close() })
	return lg
}

// newTestRegistry loads all features; cascades missing from the map fail to load.
func newTestRegistry(t *testing.T, cascades map[string]*fakeCascade) (*Registry, *fakeProvider) {
	t.Helper()

	provider := &fakeProvider{cascades: cascades}
	registry := NewRegistry(provider, newTestLogger(t))
	registry.LoadAll(AllFeatures...)
	return registry, provider
}

func rect(x, y, w, h int) image.Rectangle {
	return image.Rect(x, y, x+w, y+h)
}

var errBoom = errors.New("boom")
