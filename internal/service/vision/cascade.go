package vision

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"

	"facescanner/internal/service/scanner"
)

// systemCascadeDirs are the usual OpenCV install locations for the bundled Haar cascades.
var systemCascadeDirs = []string{
	"/usr/local/share/opencv4/haarcascades",
	"/usr/share/opencv4/haarcascades",
	"/opt/homebrew/share/opencv4/haarcascades",
	"/usr/share/opencv/haarcascades",
}

// CascadeProvider loads Haar cascade XML files by name.
type CascadeProvider struct {
	dirs []string
}

// NewCascadeProvider searches dir first and then the system OpenCV directories.
func NewCascadeProvider(dir string) *CascadeProvider {
	dirs := make([]string, 0, len(systemCascadeDirs)+1)
	if dir != "" {
		dirs = append(dirs, dir)
	}
	return &CascadeProvider{dirs: append(dirs, systemCascadeDirs...)}
}

// LoadModel returns the first candidate file that parses into a non-empty classifier.
func (p *CascadeProvider) LoadModel(name string) (scanner.Cascade, error) {
	for _, dir := range p.dirs {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}

		classifier := gocv.NewCascadeClassifier()
		if classifier.Load(path) {
			return &Cascade{classifier: classifier, path: path}, nil
		}
		classifier.Close()
	}

	return nil, fmt.Errorf("%s not usable in %v: %w", name, p.dirs, scanner.ErrNoCascade)
}

// Cascade wraps a loaded gocv classifier.
type Cascade struct {
	classifier gocv.CascadeClassifier
	path       string
}

// Path is the file the cascade was loaded from.
func (c *Cascade) Path() string {
	return c.path
}

// DetectMultiScale runs the classifier over img with no size limits.
func (c *Cascade) DetectMultiScale(img scanner.Image, params scanner.Params) []image.Rectangle {
	gray, ok := img.(*Gray)
	if !ok {
		return nil
	}
	return c.classifier.DetectMultiScaleWithParams(gray.mat, params.ScaleFactor, params.MinNeighbors, 0, image.Point{}, image.Point{})
}

func (c *Cascade) Close() error {
	return c.classifier.Close()
}
