package cmd

import (
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/omniscan/internal/decoder"
	"github.com/lehigh-university-libraries/omniscan/internal/enrichment"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func newAnalyzeCmd(v *viper.Viper, configPath *string) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "analyze VALUE",
		Short: "Enrich a single scanned value",
		Long: `Sends one decoded value to the configured LLM provider and prints the
enrichment result as YAML. Failures print the fallback result rather than an error.`,
		Example: `  omniscan analyze "https://example.com" --format qr_code
  omniscan analyze 4006381333931 --format ean_13 --provider ollama`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, v, *configPath, "provider", "model")
			if err != nil {
				return err
			}

			client, err := enrichment.NewClientFromConfig(cfg)
			if err != nil {
				return err
			}

			result := client.Analyze(cmd.Context(), strings.Join(args, " "), format)

			out, err := yaml.Marshal(result)
			if err != nil {
				return fmt.Errorf("failed to encode result: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", decoder.FormatManualEntry, "Symbology the value was read from")
	cmd.Flags().String("provider", "gemini", "LLM provider (gemini, openai, ollama)")
	cmd.Flags().String("model", "", "Model name (defaults to provider's default)")

	return cmd
}
