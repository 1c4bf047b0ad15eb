package capture

import (
	"context"
	"image"
	"log/slog"
	"sync"
)

// PushSource is a latest-only frame slot fed by a remote client, such as a
// browser posting camera snapshots over HTTP. Each pushed frame is sampled at
// most once; a newer push replaces an unsampled one.
type PushSource struct {
	mu     sync.Mutex
	frame  image.Image
	pushed uint64
	open   bool
}

func NewPushSource() *PushSource {
	return &PushSource{}
}

// Push replaces the current frame
func (p *PushSource) Push(frame image.Image) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frame = frame
	p.pushed++
}

// Pushed returns how many frames have been pushed
func (p *PushSource) Pushed() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pushed
}

func (p *PushSource) Open(ctx context.Context, constraints Constraints) (Stream, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.open {
		return nil, ErrSourceInUse
	}
	p.open = true
	p.frame = nil

	slog.Info("Camera stream opened", "source", "push", "facing_mode", constraints.FacingMode, "width", constraints.Width, "height", constraints.Height)
	return &pushStream{source: p}, nil
}

func (p *PushSource) take() (image.Image, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.frame == nil {
		return nil, false
	}
	frame := p.frame
	p.frame = nil
	return frame, true
}

func (p *PushSource) release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = false
	p.frame = nil
}

type pushStream struct {
	source *PushSource
	once   sync.Once
	closed bool
	mu     sync.Mutex
}

func (s *pushStream) Frame() (image.Image, bool) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, false
	}
	return s.source.take()
}

func (s *pushStream) Close() error {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		s.source.release()
		slog.Info("Camera stream released", "source", "push")
	})
	return nil
}
