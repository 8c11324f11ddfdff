package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mefu/internal/detector"
	"github.com/ayusman/mefu/internal/logging"
)

// SamplerConfig controls the detection worker.
type SamplerConfig struct {
	FPS    int
	Mirror bool // flip frames horizontally so the user sees a mirror
}

// DefaultSamplerConfig returns 30 FPS with mirroring on.
func DefaultSamplerConfig() SamplerConfig {
	return SamplerConfig{FPS: DefaultFPS, Mirror: true}
}

// Sampler reads frames, runs the detector and publishes one sample per
// frame into a PoseSlot.
type Sampler struct {
	camera   Camera
	detector detector.Detector
	slot     *PoseSlot
	cfg      SamplerConfig
	logger   *slog.Logger
	now      func() time.Time
}

// NewSampler creates a sampler publishing into slot.
func NewSampler(cam Camera, det detector.Detector, slot *PoseSlot, cfg SamplerConfig) *Sampler {
	if cfg.FPS <= 0 {
		cfg.FPS = DefaultFPS
	}
	return &Sampler{
		camera:   cam,
		detector: det,
		slot:     slot,
		cfg:      cfg,
		logger:   logging.With("capture"),
		now:      time.Now,
	}
}

// Run opens the camera and samples until ctx is cancelled. Read and detect
// failures are logged and the tick is skipped.
func (s *Sampler) Run(ctx context.Context) error {
	if !s.camera.IsOpen() {
		if err := s.camera.Open(); err != nil {
			return fmt.Errorf("start sampler: %w", err)
		}
	}
	defer s.camera.Close()
	s.camera.SetFPS(s.cfg.FPS)

	ticker := time.NewTicker(time.Second / time.Duration(s.cfg.FPS))
	defer ticker.Stop()

	s.logger.Info("sampler started", slog.Int("fps", s.cfg.FPS), slog.Bool("mirror", s.cfg.Mirror))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sampler stopped")
			return nil
		case <-ticker.C:
			if err := s.Tick(); err != nil {
				if errors.Is(err, ErrNoFrames) {
					return err
				}
				s.logger.Warn("sample failed", slog.Any("error", err))
			}
		}
	}
}

// Tick processes one frame.
func (s *Sampler) Tick() error {
	frame, err := s.camera.ReadFrame()
	if err != nil {
		return fmt.Errorf("read frame: %w", err)
	}
	defer frame.Close()

	if s.cfg.Mirror {
		gocv.Flip(*frame, frame, 1)
	}

	sample, err := detector.DetectSample(s.detector, frame, s.now())
	if err != nil {
		return err
	}

	s.slot.Put(sample)
	return nil
}
