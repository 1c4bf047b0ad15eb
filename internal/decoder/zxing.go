package decoder

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
)

type familyReader struct {
	family string
	reader gozxing.Reader
}

// ZXing detects barcodes with the gozxing readers
type ZXing struct {
	readers []familyReader
	hints   map[gozxing.DecodeHintType]interface{}
}

// NewZXing returns a detector for every known format. Retail codes share a
// family so one printed code yields a single detection.
func NewZXing() *ZXing {
	return &ZXing{
		readers: []familyReader{
			{family: "qr", reader: qrcode.NewQRCodeReader()},
			{family: "retail", reader: oned.NewUPCAReader()},
			{family: "retail", reader: oned.NewEAN13Reader()},
			{family: "retail", reader: oned.NewEAN8Reader()},
			{family: "retail", reader: oned.NewUPCEReader()},
			{family: "code128", reader: oned.NewCode128Reader()},
			{family: "code39", reader: oned.NewCode39Reader()},
		},
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

func (z *ZXing) Supported() bool {
	return true
}

// Detect returns every code found in the frame, possibly none
func (z *ZXing) Detect(frame image.Image) (detections []Detection, err error) {
	if frame == nil {
		return nil, ErrDetectionUnavailable
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Debug("Barcode reader panicked", "panic", r)
			detections, err = nil, ErrDetectionUnavailable
		}
	}()

	bmp, err := gozxing.NewBinaryBitmapFromImage(frame)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDetectionUnavailable, err)
	}

	matched := make(map[string]bool)
	for _, fr := range z.readers {
		if matched[fr.family] {
			continue
		}
		result, err := fr.reader.Decode(bmp, z.hints)
		fr.reader.Reset()
		if err != nil {
			continue
		}
		matched[fr.family] = true
		detections = append(detections, Detection{
			RawValue: result.GetText(),
			Format:   formatTag(result.GetBarcodeFormat()),
		})
	}

	return detections, nil
}
