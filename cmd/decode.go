package cmd

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"

	"github.com/lehigh-university-libraries/omniscan/internal/decoder"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type decodeResult struct {
	File       string              `yaml:"file"`
	Detections []decoder.Detection `yaml:"detections"`
	Error      string              `yaml:"error,omitempty"`
}

func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode IMAGE...",
		Short: "Decode barcodes and QR codes from image files",
		Long: `Runs the local decoder over one or more still images and prints every
detection as YAML. No enrichment is performed.`,
		Example: `  omniscan decode shelf.jpg
  omniscan decode frames/*.png`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			detector := decoder.NewZXing()

			results := make([]decodeResult, 0, len(args))
			for _, path := range args {
				result := decodeResult{File: path, Detections: []decoder.Detection{}}
				detections, err := decodeFile(detector, path)
				if err != nil {
					slog.Warn("Unable to decode image", "file", path, "err", err)
					result.Error = err.Error()
				} else {
					result.Detections = detections
				}
				results = append(results, result)
			}

			out, err := yaml.Marshal(results)
			if err != nil {
				return fmt.Errorf("failed to encode results: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	return cmd
}

func decodeFile(detector decoder.Detector, path string) ([]decoder.Detection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return detector.Detect(img)
}
