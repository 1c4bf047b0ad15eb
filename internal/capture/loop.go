package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lehigh-university-libraries/omniscan/internal/decoder"
	"github.com/lehigh-university-libraries/omniscan/internal/models"
)

// DefaultInterval samples two frames per second
const DefaultInterval = 500 * time.Millisecond

// PermissionState tracks camera access for the session
type PermissionState string

const (
	PermissionPending PermissionState = "pending"
	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"
)

// Gate is the scan coordinator as seen by the capture loop
type Gate interface {
	Busy() bool
	Submit(rawValue, format string) (models.ScanEntry, error)
}

// Status is a snapshot of the capture loop
type Status struct {
	Permission         PermissionState `json:"permission"`
	PermissionError    string          `json:"permission_error,omitempty"`
	DetectionSupported bool            `json:"detection_supported"`
	Constraints        Constraints     `json:"constraints"`
	FrameWidth         int             `json:"frame_width,omitempty"`
	FrameHeight        int             `json:"frame_height,omitempty"`
	FramesSampled      uint64          `json:"frames_sampled"`
}

// Loop owns the camera stream and feeds sampled frames to the detector
type Loop struct {
	source      Source
	detector    decoder.Detector
	gate        Gate
	interval    time.Duration
	constraints Constraints

	mu     sync.RWMutex
	status Status
}

type Option func(*Loop)

func WithInterval(d time.Duration) Option {
	return func(l *Loop) {
		l.interval = d
	}
}

func WithConstraints(c Constraints) Option {
	return func(l *Loop) {
		l.constraints = c
	}
}

func NewLoop(source Source, detector decoder.Detector, gate Gate, opts ...Option) *Loop {
	l := &Loop{
		source:      source,
		detector:    detector,
		gate:        gate,
		interval:    DefaultInterval,
		constraints: DefaultConstraints(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.status = Status{
		Permission:         PermissionPending,
		DetectionSupported: detector.Supported(),
		Constraints:        l.constraints,
	}
	return l
}

// Status returns a copy of the current loop status
func (l *Loop) Status() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.status
}

// Run acquires the camera stream and samples it until ctx is done. The
// stream is released on every return path. A permission failure is returned
// as is and is not retried.
func (l *Loop) Run(ctx context.Context) error {
	stream, err := l.source.Open(ctx, l.constraints)
	if err != nil {
		l.mu.Lock()
		l.status.Permission = PermissionDenied
		l.status.PermissionError = err.Error()
		l.mu.Unlock()
		if errors.Is(err, ErrPermissionDenied) {
			slog.Error("Camera access denied", "err", err)
		}
		return fmt.Errorf("failed to open camera stream: %w", err)
	}
	defer func() {
		if err := stream.Close(); err != nil {
			slog.Error("Unable to release camera stream", "err", err)
		}
	}()

	l.mu.Lock()
	l.status.Permission = PermissionGranted
	l.mu.Unlock()

	if !l.detector.Supported() {
		slog.Warn("Barcode detection is not supported, manual entry only")
		<-ctx.Done()
		return nil
	}

	slog.Info("Capture loop started", "interval", l.interval)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Capture loop stopped")
			return nil
		case <-ticker.C:
			l.sample(stream)
		}
	}
}

// sample runs one tick: at most one detection is forwarded
func (l *Loop) sample(stream Stream) {
	if l.gate.Busy() {
		return
	}

	frame, ok := stream.Frame()
	if !ok {
		return
	}

	bounds := frame.Bounds()
	l.mu.Lock()
	l.status.FrameWidth = bounds.Dx()
	l.status.FrameHeight = bounds.Dy()
	l.status.FramesSampled++
	l.mu.Unlock()

	detections, err := l.detector.Detect(frame)
	if err != nil {
		slog.Debug("Detection failed for frame", "err", err)
		return
	}
	if len(detections) == 0 {
		return
	}
	if len(detections) > 1 {
		slog.Debug("Multiple codes in frame, forwarding the first", "count", len(detections))
	}

	first := detections[0]
	if _, err := l.gate.Submit(first.RawValue, first.Format); err != nil {
		slog.Debug("Detection not accepted", "format", first.Format, "err", err)
	}
}
