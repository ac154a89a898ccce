// Package vision implements the scanner collaborators on top of OpenCV (gocv).
package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"facescanner/internal/service/scanner"
)

// Frame is a BGR frame owned by one loop iteration.
type Frame struct {
	mat gocv.Mat
}

// NewFrame takes ownership of mat.
func NewFrame(mat gocv.Mat) *Frame {
	return &Frame{mat: mat}
}

// Mat exposes the underlying matrix for drawing and encoding.
func (f *Frame) Mat() *gocv.Mat {
	return &f.mat
}

// Grayscale converts the frame to a single channel image.
func (f *Frame) Grayscale() (scanner.Image, error) {
	gray := gocv.NewMat()
	if err := gocv.CvtColor(f.mat, &gray, gocv.ColorBGRToGray); err != nil {
		gray.Close()
		return nil, fmt.Errorf("failed to convert image to grayscale: %w", err)
	}
	return &Gray{mat: gray}, nil
}

func (f *Frame) Close() error {
	return f.mat.Close()
}

// Gray is a grayscale matrix or a region view into one.
type Gray struct {
	mat gocv.Mat
}

// NewGray takes ownership of mat.
func NewGray(mat gocv.Mat) *Gray {
	return &Gray{mat: mat}
}

func (g *Gray) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.mat.Cols(), g.mat.Rows())
}

// Region returns a view of r clipped to the image. The view shares pixel data.
func (g *Gray) Region(r image.Rectangle) scanner.Image {
	r = r.Canon().Intersect(g.Bounds())
	return &Gray{mat: g.mat.Region(r)}
}

func (g *Gray) Close() error {
	return g.mat.Close()
}

func frameFrom(f scanner.Frame) (*Frame, error) {
	frame, ok := f.(*Frame)
	if !ok {
		return nil, fmt.Errorf("%T: %w", f, scanner.ErrUnsupportedFrame)
	}
	return frame, nil
}
