package vision

import (
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"facescanner/internal/service/preview"
	"facescanner/internal/service/scanner"
)

// Publisher receives encoded preview frames.
type Publisher interface {
	Publish(msg preview.FrameMessage) error
}

// StreamDisplay is a headless display that publishes JPEG frames to preview viewers.
// It has no keyboard, so PollKey only waits.
type StreamDisplay struct {
	publisher Publisher
	seq       int64
}

func NewStreamDisplay(publisher Publisher) *StreamDisplay {
	return &StreamDisplay{publisher: publisher}
}

func (d *StreamDisplay) Show(frame scanner.Frame) error {
	f, err := frameFrom(frame)
	if err != nil {
		return err
	}

	jpeg, err := EncodeJPEG(f.mat)
	if err != nil {
		return err
	}

	d.seq++
	return d.publisher.Publish(preview.FrameMessage{Seq: d.seq, Timestamp: time.Now(), Image: jpeg})
}

func (d *StreamDisplay) PollKey(wait time.Duration) int {
	time.Sleep(wait)
	return -1
}

func (d *StreamDisplay) Close() error {
	return nil
}

// EncodeJPEG returns a copy of mat encoded as JPEG.
func EncodeJPEG(mat gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, nil
}
