package capture

import (
	"sync"

	"github.com/ayusman/mefu/internal/detector"
)

// PoseSlot hands one sample from the detection worker to the menu loop.
// A newer Put replaces an untaken sample; stale frames are never queued.
type PoseSlot struct {
	mu      sync.Mutex
	sample  detector.Sample
	full    bool
	dropped uint64
}

// NewPoseSlot creates an empty slot.
func NewPoseSlot() *PoseSlot {
	return &PoseSlot{}
}

// Put stores s, replacing any sample not yet taken.
func (p *PoseSlot) Put(s detector.Sample) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.full {
		p.dropped++
	}
	p.sample = s
	p.full = true
}

// Take removes and returns the stored sample. ok is false when nothing new
// arrived since the last Take.
func (p *PoseSlot) Take() (s detector.Sample, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.full {
		return detector.Sample{}, false
	}
	s = p.sample
	p.sample = detector.Sample{}
	p.full = false
	return s, true
}

// Dropped returns how many samples were overwritten before being taken.
func (p *PoseSlot) Dropped() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}
