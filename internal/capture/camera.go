// Package capture reads camera frames, runs hand detection on a worker
// goroutine, and hands the latest pose sample to the menu loop.
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

const (
	DefaultFPS    = 30
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	// ErrCameraNotOpen is returned when reading from a camera that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrNoFrames is returned by MockCamera when playback has run out.
	ErrNoFrames = errors.New("no more frames")
	// ErrEmptyFrame is returned when the device delivers no image.
	ErrEmptyFrame = errors.New("empty frame")
)

// Camera is a frame source. Frames returned by ReadFrame belong to the caller.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// CameraConfig selects the capture device and the requested frame size.
// Devices may deliver a different size; samples carry the actual one.
type CameraConfig struct {
	DeviceID int
	Width    int
	Height   int
}

// DefaultCameraConfig returns device 0 at 640x480.
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{Width: DefaultWidth, Height: DefaultHeight}
}

// device is a Camera backed by a gocv VideoCapture.
type device struct {
	cfg CameraConfig

	mu      sync.Mutex
	capture *gocv.VideoCapture
	fps     int
}

// NewCamera creates a closed camera for cfg. Zero sizes fall back to the
// defaults.
func NewCamera(cfg CameraConfig) Camera {
	if cfg.Width <= 0 {
		cfg.Width = DefaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = DefaultHeight
	}
	return &device{cfg: cfg, fps: DefaultFPS}
}

func (d *device) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.capture != nil {
		return nil
	}

	vc, err := gocv.OpenVideoCapture(d.cfg.DeviceID)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", d.cfg.DeviceID, err)
	}
	vc.Set(gocv.VideoCaptureFrameWidth, float64(d.cfg.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(d.cfg.Height))
	vc.Set(gocv.VideoCaptureFPS, float64(d.fps))

	d.capture = vc
	return nil
}

func (d *device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.capture == nil {
		return nil
	}
	err := d.capture.Close()
	d.capture = nil
	return err
}

func (d *device) ReadFrame() (*gocv.Mat, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if !d.capture.Read(&mat) || mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("camera %d: %w", d.cfg.DeviceID, ErrEmptyFrame)
	}
	return &mat, nil
}

// SetFPS changes the requested rate; values <= 0 are ignored.
func (d *device) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.fps = fps
	if d.capture != nil {
		d.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

func (d *device) FPS() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fps
}

func (d *device) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.capture != nil
}
