// Package detector provides the hand-landmark boundary: the detector interface,
// landmark types, and the reduced per-frame pose consumed by gesture recognition.
package detector

import (
	"math"
	"time"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D represents a landmark in frame-normalized coordinates.
// X and Y are in [0,1] with Y growing downward, as images are stored.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Point2D is a frame-normalized position.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// HandPose is the subset of landmarks the gesture recognizer needs.
type HandPose struct {
	Wrist     Point2D `json:"wrist"`
	IndexTip  Point2D `json:"indexTip"`
	ThumbTip  Point2D `json:"thumbTip"`
	MiddleTip Point2D `json:"middleTip"`
}

// Pose reduces the full landmark set to a HandPose.
func (h *HandLandmarks) Pose() HandPose {
	at := func(i int) Point2D {
		return Point2D{X: h.Points[i].X, Y: h.Points[i].Y}
	}
	return HandPose{
		Wrist:     at(Wrist),
		IndexTip:  at(IndexTip),
		ThumbTip:  at(ThumbTip),
		MiddleTip: at(MiddleTip),
	}
}

// Distance2D returns the planar distance between two normalized points.
func Distance2D(a, b Point2D) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Sample is one tick's detection result handed to the recognizer.
// Pose is nil when no hand was found in the frame.
type Sample struct {
	Pose        *HandPose
	FrameWidth  int
	FrameHeight int
	At          time.Time
}

// HasHand reports whether the sample carries a pose.
func (s Sample) HasHand() bool {
	return s.Pose != nil
}

// SampleFromHands builds a Sample from a detector result, keeping only the
// first hand. Multi-hand sessions are not tracked.
func SampleFromHands(hands []HandLandmarks, width, height int, at time.Time) Sample {
	s := Sample{FrameWidth: width, FrameHeight: height, At: at}
	if len(hands) > 0 {
		pose := hands[0].Pose()
		s.Pose = &pose
	}
	return s
}
