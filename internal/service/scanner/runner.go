package scanner

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"facescanner/internal/logger"
)

// ErrUnsupportedFrame is returned when a frame from a different backend is passed in.
var ErrUnsupportedFrame = errors.New("unsupported frame type")

// Frame is one captured color frame, owned by a single loop iteration.
type Frame interface {
	Grayscale() (Image, error)
	Close() error
}

// FrameSource yields frames until the stream ends.
type FrameSource interface {
	// Next returns false when no frame is available; the stream is then finished.
	Next() (Frame, bool)
	Close() error
}

// Display renders frames and reports key presses.
type Display interface {
	Show(frame Frame) error
	// PollKey waits at most wait for a key press and returns its code, or -1.
	PollKey(wait time.Duration) int
	Close() error
}

// Annotator draws a detection onto a frame in place.
type Annotator interface {
	Annotate(frame Frame, detection Detection) error
}

type State int

const (
	Running State = iota
	Stopped
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

type StopReason string

const (
	StopNone        StopReason = ""
	StopEndOfStream StopReason = "end_of_stream"
	StopQuitKey     StopReason = "quit_key"
	StopInterrupted StopReason = "interrupted"
	StopDisplay     StopReason = "display_failure"
)

// Stats summarises a run.
type Stats struct {
	State      State
	Frames     int
	Faces      int
	Detections int
	Reason     StopReason
	StartedAt  time.Time
	LastFrame  time.Time
}

// RunnerOptions configure a Runner.
type RunnerOptions struct {
	QuitKey byte
	KeyWait time.Duration
	// ShouldContinue is checked before every iteration; nil means always continue.
	ShouldContinue func() bool
}

// Runner drives the Running/Stopped loop: acquire, detect, annotate, show, poll.
type Runner struct {
	source    FrameSource
	display   Display
	annotator Annotator
	pipeline  *Pipeline
	logger    *logger.Logger
	opts      RunnerOptions

	mu    sync.RWMutex
	stats Stats
}

// NewRunner wires a runner. It does not take ownership of source or display.
func NewRunner(source FrameSource, display Display, annotator Annotator, pipeline *Pipeline, logger *logger.Logger, opts RunnerOptions) *Runner {
	if opts.KeyWait <= 0 {
		opts.KeyWait = time.Millisecond
	}
	return &Runner{
		source:    source,
		display:   display,
		annotator: annotator,
		pipeline:  pipeline,
		logger:    logger,
		opts:      opts,
		stats:     Stats{State: Stopped},
	}
}

// Run loops until the stream ends, the quit key is pressed, or ShouldContinue reports false.
// The only error returned is a display failure; every other stop is a normal termination.
func (r *Runner) Run() (Stats, error) {
	r.mu.Lock()
	r.stats = Stats{State: Running, StartedAt: time.Now()}
	r.mu.Unlock()

	var runErr error
	reason := StopNone
	for reason == StopNone {
		reason, runErr = r.step()
	}

	r.mu.Lock()
	r.stats.State = Stopped
	r.stats.Reason = reason
	final := r.stats
	r.mu.Unlock()

	r.logger.Info("Scanner stopped (%s) after %d frames, %d faces, %d detections",
		reason, final.Frames, final.Faces, final.Detections)
	return final, runErr
}

// step performs one iteration and returns a non-empty reason when the loop must stop.
func (r *Runner) step() (StopReason, error) {
	if r.opts.ShouldContinue != nil && !r.opts.ShouldContinue() {
		return StopInterrupted, nil
	}

	frame, ok := r.source.Next()
	if !ok {
		r.logger.Info("Frame source exhausted")
		return StopEndOfStream, nil
	}
	defer frame.Close()

	result, err := r.process(frame)
	if err != nil {
		r.logger.Error("Failed to process frame: %v", err)
	}

	r.mu.Lock()
	r.stats.Frames++
	r.stats.Faces += len(result.Faces)
	r.stats.Detections += len(result.Detections)
	r.stats.LastFrame = time.Now()
	r.mu.Unlock()

	if err := r.display.Show(frame); err != nil {
		return StopDisplay, fmt.Errorf("show frame: %w", err)
	}

	key := r.display.PollKey(r.opts.KeyWait)
	if key >= 0 && byte(key&0xFF) == r.opts.QuitKey {
		r.logger.Info("Quit key pressed")
		return StopQuitKey, nil
	}

	return StopNone, nil
}

// process detects features on frame and draws them onto it.
func (r *Runner) process(frame Frame) (Result, error) {
	gray, err := frame.Grayscale()
	if err != nil {
		return Result{}, fmt.Errorf("grayscale: %w", err)
	}
	defer gray.Close()

	result := r.pipeline.Detect(gray)
	for _, d := range result.Detections {
		if err := r.annotator.Annotate(frame, d); err != nil {
			r.logger.Error("Failed to annotate %s: %v", d.Label, err)
		}
	}

	return result, nil
}

// Snapshot returns the current statistics. Safe to call from other goroutines.
func (r *Runner) Snapshot() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stats
}
