package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/omniscan/internal/decoder"
	"github.com/lehigh-university-libraries/omniscan/internal/models"
)

type fakeStream struct {
	mu     sync.Mutex
	frames []image.Image
	closed atomic.Int32
}

func (s *fakeStream) Frame() (image.Image, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return nil, false
	}
	f := s.frames[0]
	s.frames = s.frames[1:]
	return f, true
}

func (s *fakeStream) Close() error {
	s.closed.Add(1)
	return nil
}

type fakeSource struct {
	stream *fakeStream
	err    error
	opened atomic.Int32
}

func (s *fakeSource) Open(ctx context.Context, c Constraints) (Stream, error) {
	s.opened.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.stream, nil
}

type fakeDetector struct {
	supported  bool
	detections []decoder.Detection
	err        error
	calls      atomic.Int32
}

func (d *fakeDetector) Supported() bool { return d.supported }

func (d *fakeDetector) Detect(frame image.Image) ([]decoder.Detection, error) {
	d.calls.Add(1)
	return d.detections, d.err
}

type fakeGate struct {
	mu        sync.Mutex
	busy      bool
	submitted []decoder.Detection
}

func (g *fakeGate) Busy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.busy
}

func (g *fakeGate) Submit(rawValue, format string) (models.ScanEntry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.submitted = append(g.submitted, decoder.Detection{RawValue: rawValue, Format: format})
	return models.ScanEntry{RawValue: rawValue, Format: format, Pending: true}, nil
}

func (g *fakeGate) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.submitted)
}

func frame() image.Image {
	return image.NewGray(image.Rect(0, 0, 1280, 720))
}

func TestSampleForwardsFirstDetectionOnly(t *testing.T) {
	stream := &fakeStream{frames: []image.Image{frame()}}
	detector := &fakeDetector{supported: true, detections: []decoder.Detection{
		{RawValue: "first", Format: decoder.FormatQRCode},
		{RawValue: "second", Format: decoder.FormatEAN13},
	}}
	gate := &fakeGate{}
	loop := NewLoop(&fakeSource{stream: stream}, detector, gate)

	loop.sample(stream)

	require.Equal(t, 1, gate.count())
	assert.Equal(t, "first", gate.submitted[0].RawValue)

	status := loop.Status()
	assert.Equal(t, 1280, status.FrameWidth)
	assert.Equal(t, 720, status.FrameHeight)
	assert.Equal(t, uint64(1), status.FramesSampled)
}

func TestSampleSkipsWhileBusy(t *testing.T) {
	stream := &fakeStream{frames: []image.Image{frame()}}
	detector := &fakeDetector{supported: true, detections: []decoder.Detection{{RawValue: "x", Format: "qr_code"}}}
	gate := &fakeGate{busy: true}
	loop := NewLoop(&fakeSource{stream: stream}, detector, gate)

	loop.sample(stream)

	assert.Equal(t, int32(0), detector.calls.Load())
	assert.Equal(t, 0, gate.count())
}

func TestSampleWithoutFrame(t *testing.T) {
	stream := &fakeStream{}
	detector := &fakeDetector{supported: true}
	loop := NewLoop(&fakeSource{stream: stream}, detector, &fakeGate{})

	loop.sample(stream)
	assert.Equal(t, int32(0), detector.calls.Load())
}

func TestSampleSwallowsTransientFailure(t *testing.T) {
	stream := &fakeStream{frames: []image.Image{frame(), frame()}}
	detector := &fakeDetector{supported: true, err: fmt.Errorf("blurry: %w", decoder.ErrDetectionUnavailable)}
	gate := &fakeGate{}
	loop := NewLoop(&fakeSource{stream: stream}, detector, gate)

	loop.sample(stream)
	loop.sample(stream)

	assert.Equal(t, int32(2), detector.calls.Load())
	assert.Equal(t, 0, gate.count())
}

func TestRunPermissionDenied(t *testing.T) {
	source := &fakeSource{err: fmt.Errorf("%w: no device", ErrPermissionDenied)}
	loop := NewLoop(source, &fakeDetector{supported: true}, &fakeGate{})

	err := loop.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPermissionDenied))
	assert.Equal(t, int32(1), source.opened.Load(), "no retry")

	status := loop.Status()
	assert.Equal(t, PermissionDenied, status.Permission)
	assert.NotEmpty(t, status.PermissionError)
}

func TestRunSamplesAndReleasesStream(t *testing.T) {
	stream := &fakeStream{frames: []image.Image{frame()}}
	detector := &fakeDetector{supported: true, detections: []decoder.Detection{{RawValue: "x", Format: "qr_code"}}}
	gate := &fakeGate{}
	loop := NewLoop(&fakeSource{stream: stream}, detector, gate, WithInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	require.Eventually(t, func() bool { return gate.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, PermissionGranted, loop.Status().Permission)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
	assert.Equal(t, int32(1), stream.closed.Load())
}

func TestRunUnsupportedDetectorNeverSamples(t *testing.T) {
	stream := &fakeStream{frames: []image.Image{frame()}}
	detector := &fakeDetector{supported: false}
	loop := NewLoop(&fakeSource{stream: stream}, detector, &fakeGate{}, WithInterval(time.Millisecond))
	assert.False(t, loop.Status().DetectionSupported)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	require.NoError(t, loop.Run(ctx))
	assert.Equal(t, int32(0), detector.calls.Load())
	assert.Equal(t, int32(1), stream.closed.Load())
}

func TestDefaultConstraints(t *testing.T) {
	c := DefaultConstraints()
	assert.Equal(t, "environment", c.FacingMode)
	assert.Equal(t, 1280, c.Width)
	assert.Equal(t, 720, c.Height)
}
