package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/voxbridge/voxbridge/cmd/voxbridge/internal/config"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Global configuration (loaded at init time)
	globalConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "voxbridge",
	Short: "Realtime voice/text chat bridge",
	Long: `voxbridge - bridge local audio to a realtime speech API over WebRTC.

Two turn-taking modes: auto (server-side voice activity detection keeps the
microphone open) and manual (push-to-talk with explicit commit).

Configuration is stored in the OS config directory:
  macOS:   ~/Library/Application Support/voxbridge/config.yaml
  Linux:   ~/.config/voxbridge/config.yaml
  Windows: %AppData%/voxbridge/config.yaml

The OPENAI_API_KEY environment variable overrides api_key from the file.

Examples:
  # Run the HTTP service
  voxbridge serve

  # Talk in manual (push-to-talk) mode, replaying an audio file as the mic
  voxbridge talk --mode manual --language es`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// logLevel drives the process-wide slog handler. The handler is installed
// once in Execute; initConfig only raises the level, so log lines emitted
// before command execution use the same handler.
var logLevel = new(slog.LevelVar)

// Execute runs the root command.
func Execute() error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
}

// configLoadErr stores the error from config.Load() for deferred reporting.
var configLoadErr error

func initConfig() {
	if verbose {
		logLevel.Set(slog.LevelDebug)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		// Deferred: commands that need config get a clear error via
		// GetConfig(); 'voxbridge version' still works without one.
		configLoadErr = err
		return
	}
	globalConfig = cfg
}

// GetConfig returns the global configuration.
func GetConfig() (*config.Config, error) {
	if globalConfig == nil {
		if configLoadErr != nil {
			return nil, fmt.Errorf("config not available: %w", configLoadErr)
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("config not available: %w", err)
		}
		globalConfig = cfg
	}
	return globalConfig, nil
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}
