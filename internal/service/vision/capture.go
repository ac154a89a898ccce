package vision

import (
	"fmt"

	"gocv.io/x/gocv"

	"facescanner/internal/logger"
	"facescanner/internal/service/scanner"
)

// Capture reads frames from a camera device or a video file.
type Capture struct {
	capture *gocv.VideoCapture
	name    string
	logger  *logger.Logger
}

// OpenDevice opens the camera with the given index.
func OpenDevice(id int, logger *logger.Logger) (*Capture, error) {
	return open(id, fmt.Sprintf("device %d", id), logger)
}

// OpenFile opens a video file. The stream ends after its last frame.
func OpenFile(path string, logger *logger.Logger) (*Capture, error) {
	return open(path, path, logger)
}

func open(source interface{}, name string, logger *logger.Logger) (*Capture, error) {
	capture, err := gocv.OpenVideoCapture(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open video capture %s: %w", name, err)
	}

	logger.Info("Video capture %s opened", name)
	return &Capture{capture: capture, name: name, logger: logger}, nil
}

// Next reads one frame. A failed or empty read ends the stream.
func (c *Capture) Next() (scanner.Frame, bool) {
	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, false
	}
	return NewFrame(mat), true
}

func (c *Capture) Close() error {
	c.logger.Info("Video capture %s released", c.name)
	return c.capture.Close()
}
