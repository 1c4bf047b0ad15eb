package decoder

import (
	"errors"
	"image"
)

var (
	// ErrDetectionUnavailable is a transient failure of a single detection attempt
	ErrDetectionUnavailable = errors.New("barcode detection unavailable for this frame")
	// ErrDetectionUnsupported means no barcode capability exists at all
	ErrDetectionUnsupported = errors.New("barcode detection not supported")
)

// Detection is one barcode found in a frame
type Detection struct {
	RawValue string `json:"raw_value" yaml:"raw_value"`
	Format   string `json:"format" yaml:"format"`
}

// Detector finds barcodes in video frames
type Detector interface {
	// Supported reports whether detection can work at all. It is decided once
	// when the detector is built.
	Supported() bool
	Detect(frame image.Image) ([]Detection, error)
}

// Unsupported is the detector used when no barcode capability exists
type Unsupported struct{}

func (Unsupported) Supported() bool { return false }

func (Unsupported) Detect(image.Image) ([]Detection, error) {
	return nil, ErrDetectionUnsupported
}

// New returns the detector for the given name: "zxing" or "none"
func New(name string) Detector {
	if name == "none" {
		return Unsupported{}
	}
	return NewZXing()
}
