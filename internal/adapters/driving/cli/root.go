// Package cli provides the compassx command line interface.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/compassx/internal/adapters/driven/config/file"
	"github.com/custodia-labs/compassx/internal/core/ports/driving"
	"github.com/custodia-labs/compassx/internal/core/services"
	"github.com/custodia-labs/compassx/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose   bool
	configDir string
)

// settingsService is created from the config directory unless injected.
var settingsService driving.SettingsService

var rootCmd = &cobra.Command{
	Use:   "compassx",
	Short: "Stable compass headings from unreliable sensors",
	Long: `compassx picks the best available heading source on a device, normalises
its output, suppresses sub-threshold noise, tracks calibration quality and
corrects for magnetic declination.

The device is simulated: use --sensors, --fused and --location to describe
its hardware, or replay a recorded sensor trace with 'watch --trace'.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug logs to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.compassx)")
	addDeviceFlags(rootCmd)
}

// SetSettingsService injects the settings service, bypassing the config file.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func setup(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if settingsService != nil {
		return nil
	}

	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	logger.Debug("config: %s", store.Path())
	settingsService = services.NewSettingsService(store)
	return nil
}

func requireSettings() error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return nil
}
