package app

import (
	"testing"
	"time"

	"github.com/ayusman/mefu/internal/capture"
	"github.com/ayusman/mefu/internal/detector"
)

func TestApp_GestureModeRunsSampler(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping sampler test in short mode")
	}

	h := newLoop(t, false)

	frames := capture.BlankFrames(1, 64, 48)
	defer frames[0].Close()
	cam := capture.NewMockCamera(frames, true)
	det := detector.NewMockDetector()
	det.SetHands([]detector.HandLandmarks{detector.OpenPalmLandmarks()})

	h.app.SetSampler(capture.NewSampler(cam, det, h.app.Slot(), capture.SamplerConfig{FPS: 100}))
	h.app.SetGestureEnabled(true)
	h.step(0)

	deadline := time.Now().Add(5 * time.Second)
	for det.Calls() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("sampler never ran the detector")
		}
		time.Sleep(10 * time.Millisecond)
	}

	h.app.SetGestureEnabled(false)
	h.step(0)

	if cam.IsOpen() {
		t.Error("camera should be closed once gesture mode is off")
	}
	calls := det.Calls()
	time.Sleep(50 * time.Millisecond)
	if det.Calls() != calls {
		t.Error("sampler kept running after gesture mode was turned off")
	}
}

func TestApp_SamplerExhaustionDisablesGestures(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping sampler test in short mode")
	}

	h := newLoop(t, false)

	var changes []bool
	h.app.OnGestureChange(func(on bool) { changes = append(changes, on) })

	frames := capture.BlankFrames(1, 64, 48)
	defer frames[0].Close()
	cam := capture.NewMockCamera(frames, false)
	det := detector.NewMockDetector()

	h.app.SetSampler(capture.NewSampler(cam, det, h.app.Slot(), capture.SamplerConfig{FPS: 100}))
	h.app.SetGestureEnabled(true)
	h.step(0)

	deadline := time.Now().Add(5 * time.Second)
	for h.app.GestureEnabled() {
		if time.Now().After(deadline) {
			t.Fatal("gesture mode stayed on after the camera ran dry")
		}
		time.Sleep(10 * time.Millisecond)
		h.step(10 * time.Millisecond)
	}

	if len(changes) != 2 || !changes[0] || changes[1] {
		t.Errorf("changes = %v, want [true false]", changes)
	}
}
