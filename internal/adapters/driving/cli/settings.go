package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/compassx/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage compass settings",
	Long: `View and configure sampling, noise suppression and declination refresh.

Use subcommands to change a single setting or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure all settings step by step.`,
	RunE:  runSettingsWizard,
}

var settingsSamplingCmd = &cobra.Command{
	Use:   "sampling [rate]",
	Short: "Set sensor sampling rate",
	Long: `Set the sampling hint passed when registering sensor listeners.

Available rates:
  fastest - every 5ms
  game    - every 20ms (default)
  ui      - every 60ms
  normal  - every 200ms`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSettingsSampling,
}

var settingsNoiseCmd = &cobra.Command{
	Use:   "noise <degrees>",
	Short: "Set noise threshold",
	Long:  `Set the smallest heading change, in degrees, that is reported.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsNoise,
}

var (
	locationEnabled  bool
	locationInterval time.Duration
	locationDistance float64
)

var settingsLocationCmd = &cobra.Command{
	Use:   "location",
	Short: "Configure declination refresh",
	Long: `Configure how often location fixes refresh the magnetic declination
applied to rotation vector headings. Declination changes slowly with
position, so sparse updates are enough.`,
	Args: cobra.NoArgs,
	RunE: runSettingsLocation,
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore default settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsReset,
}

func init() {
	defaults := domain.DefaultCompassSettings()
	settingsLocationCmd.Flags().BoolVar(&locationEnabled, "enabled", defaults.Location.Enabled, "refresh declination from location fixes")
	settingsLocationCmd.Flags().DurationVar(&locationInterval, "interval", defaults.Location.MinInterval, "minimum time between fixes")
	settingsLocationCmd.Flags().Float64Var(&locationDistance, "distance", defaults.Location.MinDistanceMeters, "minimum distance between fixes in meters")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsSamplingCmd)
	settingsCmd.AddCommand(settingsNoiseCmd)
	settingsCmd.AddCommand(settingsLocationCmd)
	settingsCmd.AddCommand(settingsResetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Sensor]")
	cmd.Printf("  Sampling rate: %s (%s)\n", settings.Sensor.SamplingRate, settings.Sensor.SamplingRate.Period())
	cmd.Println()

	cmd.Println("[Noise]")
	cmd.Printf("  Threshold: %g°\n", settings.Noise.ThresholdDegrees)
	cmd.Println()

	cmd.Println("[Location]")
	if settings.Location.Enabled {
		cmd.Printf("  Enabled: yes\n")
		cmd.Printf("  Min interval: %s\n", settings.Location.MinInterval)
		cmd.Printf("  Min distance: %gm\n", settings.Location.MinDistanceMeters)
	} else {
		cmd.Printf("  Enabled: no\n")
	}
	cmd.Println()

	cmd.Println("[Fused]")
	cmd.Printf("  Period: %s\n", settings.Fused.Period)
	cmd.Println()

	cmd.Println("[Geomagnetic model]")
	if settings.Geomag.CoefficientsFile != "" {
		cmd.Printf("  Coefficients: %s\n", settings.Geomag.CoefficientsFile)
	} else {
		cmd.Printf("  Coefficients: embedded\n")
	}

	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("compassx Settings Wizard")
	cmd.Println("========================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	// Step 1: Sampling rate
	cmd.Println("Step 1: Select Sampling Rate")
	cmd.Println("----------------------------")
	rates := domain.AllSamplingRates()
	current := 1
	for i, rate := range rates {
		if rate == settings.Sensor.SamplingRate {
			current = i + 1
		}
		cmd.Printf("  %d. %s (%s)\n", i+1, rate, rate.Period())
	}
	cmd.Printf("\nEnter choice [%d]: ", current)
	settings.Sensor.SamplingRate = rates[parseChoice(readLine(reader), len(rates), current)-1]
	cmd.Println()

	// Step 2: Noise threshold
	cmd.Println("Step 2: Noise Threshold")
	cmd.Println("-----------------------")
	cmd.Printf("Smallest heading change to report, in degrees [%g]: ", settings.Noise.ThresholdDegrees)
	settings.Noise.ThresholdDegrees = parseFloat(readLine(reader), settings.Noise.ThresholdDegrees)
	cmd.Println()

	// Step 3: Location
	cmd.Println("Step 3: Declination Refresh")
	cmd.Println("---------------------------")
	cmd.Printf("Refresh declination from location fixes? [%s]: ", yesNo(settings.Location.Enabled))
	settings.Location.Enabled = parseYesNo(readLine(reader), settings.Location.Enabled)
	if settings.Location.Enabled {
		cmd.Printf("Minimum time between fixes [%s]: ", settings.Location.MinInterval)
		settings.Location.MinInterval = parseDuration(readLine(reader), settings.Location.MinInterval)
		cmd.Printf("Minimum distance between fixes in meters [%g]: ", settings.Location.MinDistanceMeters)
		settings.Location.MinDistanceMeters = parseFloat(readLine(reader), settings.Location.MinDistanceMeters)
	}
	cmd.Println()

	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	cmd.Println("All settings are valid and saved.")
	return nil
}

func runSettingsSampling(cmd *cobra.Command, args []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	var rate domain.SamplingRate
	if len(args) == 1 {
		rate = domain.SamplingRate(args[0])
	} else {
		reader := bufio.NewReader(cmd.InOrStdin())
		cmd.Println("Select Sampling Rate")
		cmd.Println("--------------------")
		rates := domain.AllSamplingRates()
		for i, r := range rates {
			cmd.Printf("  %d. %s (%s)\n", i+1, r, r.Period())
		}
		cmd.Print("\nEnter choice: ")
		idx := parseChoice(readLine(reader), len(rates), 0)
		if idx == 0 {
			return errors.New("invalid selection")
		}
		rate = rates[idx-1]
	}

	if err := settingsService.SetSamplingRate(rate); err != nil {
		return fmt.Errorf("failed to set sampling rate: %w", err)
	}
	cmd.Printf("Sampling rate set to: %s\n", rate)
	return nil
}

func runSettingsNoise(cmd *cobra.Command, args []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	degrees, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid threshold %q: %w", args[0], err)
	}
	if err := settingsService.SetNoiseThreshold(degrees); err != nil {
		return fmt.Errorf("failed to set noise threshold: %w", err)
	}
	cmd.Printf("Noise threshold set to: %g°\n", degrees)
	return nil
}

func runSettingsLocation(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	if err := settingsService.SetLocation(locationEnabled, locationInterval, locationDistance); err != nil {
		return fmt.Errorf("failed to configure location: %w", err)
	}
	if locationEnabled {
		cmd.Printf("Declination refresh: every %s or %gm\n", locationInterval, locationDistance)
	} else {
		cmd.Println("Declination refresh: disabled")
	}
	return nil
}

func runSettingsReset(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	defaults := settingsService.GetDefaults()
	if err := settingsService.Save(&defaults); err != nil {
		return fmt.Errorf("failed to reset settings: %w", err)
	}
	cmd.Println("Settings restored to defaults.")
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

func parseFloat(input string, defaultVal float64) float64 {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.ParseFloat(input, 64)
	if err != nil || val < 0 {
		return defaultVal
	}
	return val
}

func parseDuration(input string, defaultVal time.Duration) time.Duration {
	if input == "" {
		return defaultVal
	}
	val, err := time.ParseDuration(input)
	if err != nil || val < 0 {
		return defaultVal
	}
	return val
}

func parseYesNo(input string, defaultVal bool) bool {
	switch strings.ToLower(input) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return defaultVal
	}
}
