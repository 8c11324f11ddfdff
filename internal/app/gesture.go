package app

import (
	"context"
	"log/slog"

	"github.com/ayusman/mefu/internal/capture"
)

// SetSampler sets the camera worker started by gesture mode. Without one,
// gesture mode only consumes samples other producers put in the slot.
func (a *App) SetSampler(s *capture.Sampler) { a.sampler = s }

// OnGestureChange registers fn to run on the loop goroutine after every
// gesture-mode change.
func (a *App) OnGestureChange(fn func(enabled bool)) { a.onGesture = fn }

// GestureEnabled reports whether gesture mode is on.
func (a *App) GestureEnabled() bool { return a.gestureOn.Load() }

// SetGestureEnabled switches gesture mode from any goroutine.
func (a *App) SetGestureEnabled(on bool) {
	a.Do(func() { a.setGesture(on) })
}

func (a *App) setGesture(on bool) {
	if a.gestureOn.Load() == on {
		return
	}
	a.gestureOn.Store(on)
	a.recognizer.Reset()
	a.slot.Take()
	a.absent = 0

	if on {
		a.startSampler()
	} else {
		a.stopSampler()
	}

	a.logger.Info("gesture mode", "enabled", on)
	if a.onGesture != nil {
		a.onGesture(on)
	}
}

func (a *App) startSampler() {
	if a.sampler == nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.samplerGen++
	gen := a.samplerGen
	s := a.sampler

	a.samplerWG.Add(1)
	go func() {
		defer a.samplerWG.Done()
		if err := s.Run(ctx); err != nil {
			a.logger.Warn("sampler exited", slog.Any("error", err))
			a.Do(func() {
				if gen == a.samplerGen {
					a.setGesture(false)
				}
			})
		}
	}()
}

// stopSampler cancels the worker and waits for it to release the camera.
func (a *App) stopSampler() {
	if a.cancel == nil {
		return
	}
	a.cancel()
	a.cancel = nil
	a.samplerGen++
	a.samplerWG.Wait()
}
