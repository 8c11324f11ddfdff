package detector

import (
	"fmt"
	"time"

	"gocv.io/x/gocv"
)

// Detector finds hand landmarks in camera frames. Implementations may return
// several hands, but the menu tracks a single one: DetectSample and
// SampleFromHands reduce every result to the first hand's pose.
type Detector interface {
	// Detect returns the hands found in frame, or an empty slice.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	Close() error
}

// Config tunes the MediaPipe hand service.
type Config struct {
	// MaxHands caps the hands the service reports. Anything past the first
	// is dropped before recognition, so 1 saves work.
	MaxHands int

	// Detection and tracking confidence thresholds, 0 to 1.
	MinConfidence   float64
	MinTrackingConf float64

	// ScriptPath overrides the lookup of the MediaPipe service script.
	ScriptPath string
}

// DefaultConfig tracks one hand at 0.5 confidence.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}

// DetectSample runs d on frame and reduces the result to a single-hand
// Sample sized to the frame.
func DetectSample(d Detector, frame *gocv.Mat, at time.Time) (Sample, error) {
	hands, err := d.Detect(frame)
	if err != nil {
		return Sample{}, fmt.Errorf("detect hands: %w", err)
	}
	return SampleFromHands(hands, frame.Cols(), frame.Rows(), at), nil
}
