package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"facescanner/internal/service/scanner"
)

const (
	boxThickness   = 2
	labelOffset    = 10
	labelScale     = 0.5
	labelThickness = 2
)

// Annotator draws labeled boxes onto vision frames.
type Annotator struct{}

func NewAnnotator() *Annotator {
	return &Annotator{}
}

// Annotate draws detection onto frame in place.
func (a *Annotator) Annotate(frame scanner.Frame, detection scanner.Detection) error {
	f, err := frameFrom(frame)
	if err != nil {
		return err
	}
	return DrawDetection(f.Mat(), detection)
}

// DrawDetection draws the box outline and places the label just above its top edge.
// Out-of-range coordinates are clipped by OpenCV.
func DrawDetection(mat *gocv.Mat, detection scanner.Detection) error {
	if err := gocv.Rectangle(mat, detection.Box, detection.Color, boxThickness); err != nil {
		return fmt.Errorf("failed to draw rectangle: %w", err)
	}

	pt := image.Pt(detection.Box.Min.X, detection.Box.Min.Y-labelOffset)
	if err := gocv.PutText(mat, detection.Label, pt, gocv.FontHersheySimplex, labelScale, detection.Color, labelThickness); err != nil {
		return fmt.Errorf("failed to draw text: %w", err)
	}
	return nil
}
