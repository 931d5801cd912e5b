package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cloudfx/visioncam/internal/app"
	"github.com/cloudfx/visioncam/internal/config"
	"github.com/cloudfx/visioncam/internal/device"
	"github.com/cloudfx/visioncam/internal/tui"
	"github.com/cloudfx/visioncam/internal/vision"
)

var (
	cfgFile string
	dataDir string
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "visioncam",
		Short: "Point-and-ask camera: capture a photo, have it described on screen",
		Long: `visioncam is the control program of a handheld camera appliance that
captures a photo, submits it to a vision-analysis API, and pages the
textual answer on a small display.

Run without arguments to start the terminal simulator, which maps the
appliance's physical buttons onto keyboard keys.`,
		RunE: run,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings.toml path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.Flags().StringVar(&dataDir, "data-dir", "", "override the image directory")

	rootCmd.AddCommand(validateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if dataDir != "" {
		cfg.Storage.ImageDir = dataDir
	}

	log := newLogger()
	log.Info().Int("prompts", len(cfg.Prompts)).Str("model", cfg.API.Model).
		Msg("settings loaded")

	// Missing storage at startup is the one fatal hardware condition.
	storage := device.NewOSStorage(cfg.Storage.ImageDir)
	if err := storage.Ensure(); err != nil {
		return err
	}
	log.Info().Str("dir", storage.Root()).Msg("storage ready")

	client := vision.NewClient(vision.Config{
		Endpoint:        cfg.API.Endpoint,
		APIKey:          cfg.API.Key,
		APIVersion:      cfg.API.Version,
		Model:           cfg.API.Model,
		MaxTokens:       cfg.API.MaxTokens,
		MaxImageBytes:   cfg.API.MaxImageKB * 1024,
		MaxEncodedBytes: cfg.API.MaxEncodedKB * 1024,
		MaxAttempts:     cfg.Network.MaxRetries,
		RetryDelay:      cfg.RetryDelay(),
	}, vision.NewHTTPTransport(cfg.Timeout()), log)

	camera := device.NewSimCamera(storage, time.Now().UnixNano())
	input := &device.QueueInput{}
	display := &device.BufferDisplay{}

	controller := app.New(cfg, camera, display, input, storage, client, log)
	log.Info().Msg("initialization complete")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := tui.NewModel(ctx, controller, input, display)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// validateCmd checks settings.toml and the environment without starting the
// device, so misconfiguration is caught before deploying to the appliance.
func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate settings.toml and credentials, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("settings OK: model=%s prompts=%d image_dir=%s\n",
				cfg.API.Model, len(cfg.Prompts), cfg.Storage.ImageDir)
			return nil
		},
	}
}

// newLogger builds the process logger: human console output on stderr,
// debug level with --verbose.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}
