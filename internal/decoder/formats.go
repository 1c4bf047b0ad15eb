package decoder

import (
	"strings"

	"github.com/makiuchi-d/gozxing"
)

// Known symbology tags
const (
	FormatQRCode  = "qr_code"
	FormatEAN13   = "ean_13"
	FormatEAN8    = "ean_8"
	FormatUPCA    = "upc_a"
	FormatUPCE    = "upc_e"
	FormatCode128 = "code_128"
	FormatCode39  = "code_39"

	// FormatManualEntry tags text typed in by the user
	FormatManualEntry = "manual_entry"
)

// KnownFormats is the allow-list of symbologies the detector looks for
var KnownFormats = []string{
	FormatQRCode,
	FormatEAN13,
	FormatEAN8,
	FormatUPCA,
	FormatUPCE,
	FormatCode128,
	FormatCode39,
}

var zxingFormats = map[gozxing.BarcodeFormat]string{
	gozxing.BarcodeFormat_QR_CODE:  FormatQRCode,
	gozxing.BarcodeFormat_EAN_13:   FormatEAN13,
	gozxing.BarcodeFormat_EAN_8:    FormatEAN8,
	gozxing.BarcodeFormat_UPC_A:    FormatUPCA,
	gozxing.BarcodeFormat_UPC_E:    FormatUPCE,
	gozxing.BarcodeFormat_CODE_128: FormatCode128,
	gozxing.BarcodeFormat_CODE_39:  FormatCode39,
}

// IsKnownFormat reports whether format is on the allow-list
func IsKnownFormat(format string) bool {
	for _, f := range KnownFormats {
		if f == format {
			return true
		}
	}
	return false
}

// formatTag maps a zxing format to its tag. Formats outside the allow-list
// pass through as lower-cased text.
func formatTag(format gozxing.BarcodeFormat) string {
	if tag, ok := zxingFormats[format]; ok {
		return tag
	}
	return strings.ToLower(format.String())
}
