package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lehigh-university-libraries/omniscan/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func NewRootCmd() *cobra.Command {
	v := config.New()
	var configPath string

	cmd := &cobra.Command{
		Use:   "omniscan",
		Short: "Barcode and QR code scanner with LLM-powered enrichment",
		Long: `OmniScan samples a camera stream, decodes barcodes and QR codes locally,
and enriches each scan with a short AI-generated interpretation.

Scans are kept in an in-memory history for the lifetime of the process.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			if err := v.BindPFlag("log_level", cmd.Root().PersistentFlags().Lookup("log-level")); err != nil {
				return err
			}
			setupLogging(v.GetString("log_level"))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	// Add subcommands
	cmd.AddCommand(newServeCmd(v, &configPath))
	cmd.AddCommand(newDecodeCmd())
	cmd.AddCommand(newAnalyzeCmd(v, &configPath))

	return cmd
}

func setupLogging(level string) {
	cfg := config.Config{LogLevel: level}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
}

// bindFlags maps every changed-or-defaulted flag onto its viper key
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, names ...string) error {
	for _, name := range names {
		flag := flags.Lookup(name)
		if flag == nil {
			return fmt.Errorf("unknown flag: %s", name)
		}
		if err := v.BindPFlag(strings.ReplaceAll(name, "-", "_"), flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

func loadConfig(cmd *cobra.Command, v *viper.Viper, configPath string, flags ...string) (config.Config, error) {
	if err := bindFlags(v, cmd.Flags(), flags...); err != nil {
		return config.Config{}, err
	}
	return config.Load(v, configPath)
}
