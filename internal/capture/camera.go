// Package capture provides frame acquisition from cameras and video files using GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Default capture settings
const (
	DefaultFPS    = 15
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	// ErrCameraNotOpen is returned when trying to read from a source that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrEndOfStream is returned when a finite source has no more frames.
	ErrEndOfStream = errors.New("end of stream")
)

// Camera defines the interface for frame sources.
type Camera interface {
	Open() error
	Close() error
	// ReadFrame returns the next frame. The caller is responsible for closing it.
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// cameraImpl manages video capture from a device or a file using GoCV.
type cameraImpl struct {
	source  any // int device ID or string file path
	finite  bool
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
	fps     int
}

// NewCamera creates a Camera reading from the given device ID.
func NewCamera(deviceID int) Camera {
	return &cameraImpl{
		source: deviceID,
		fps:    DefaultFPS,
	}
}

// NewVideoFile creates a Camera that plays back a video file. ReadFrame
// returns ErrEndOfStream once the file is exhausted.
func NewVideoFile(path string) Camera {
	return &cameraImpl{
		source: path,
		finite: true,
		fps:    DefaultFPS,
	}
}

// Open opens the source for capturing frames.
// Devices are set to 640x480 for performance; files keep their native size.
func (c *cameraImpl) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.source)
	if err != nil {
		return fmt.Errorf("open capture %v: %w", c.source, err)
	}

	if !c.finite {
		capture.Set(gocv.VideoCaptureFrameWidth, DefaultWidth)
		capture.Set(gocv.VideoCaptureFrameHeight, DefaultHeight)
		capture.Set(gocv.VideoCaptureFPS, float64(c.fps))
	}

	c.capture = capture
	c.running = true

	return nil
}

// Close closes the source and releases resources.
func (c *cameraImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false

	return err
}

// ReadFrame reads a single frame from the source.
// The caller is responsible for closing the returned Mat.
func (c *cameraImpl) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		if c.finite {
			return nil, ErrEndOfStream
		}
		if !ok {
			return nil, errors.New("failed to read frame from camera")
		}
		return nil, errors.New("captured frame is empty")
	}

	return &mat, nil
}

// SetFPS sets the frames per second for capture.
// Values less than or equal to 0 are ignored.
func (c *cameraImpl) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps

	if c.capture != nil && !c.finite {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the current frames per second setting.
func (c *cameraImpl) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fps
}

// IsOpen returns true if the source is currently open.
func (c *cameraImpl) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}

// Mirror flips frame horizontally in place so the preview behaves like a
// mirror for a user facing the camera.
func Mirror(frame *gocv.Mat) {
	if frame == nil || frame.Empty() {
		return
	}
	gocv.Flip(*frame, frame, 1)
}
