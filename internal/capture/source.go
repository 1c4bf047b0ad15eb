package capture

import (
	"context"
	"errors"
	"image"
)

var (
	// ErrPermissionDenied means the camera could not be opened: access was
	// declined or no device exists. It is terminal for the session.
	ErrPermissionDenied = errors.New("camera permission denied")
	// ErrSourceInUse is returned when a stream is already open on the source
	ErrSourceInUse = errors.New("camera source already in use")
)

// Constraints are the ideal stream settings; sources may substitute the
// nearest values they support.
type Constraints struct {
	FacingMode string `json:"facing_mode"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

// DefaultConstraints prefers the rear camera at 1280x720
func DefaultConstraints() Constraints {
	return Constraints{
		FacingMode: "environment",
		Width:      1280,
		Height:     720,
	}
}

// Stream is an open camera stream
type Stream interface {
	// Frame returns the newest frame not yet sampled, if any
	Frame() (image.Image, bool)
	Close() error
}

// Source hands out an exclusive camera stream
type Source interface {
	Open(ctx context.Context, constraints Constraints) (Stream, error)
}
