package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/custodia-labs/compassx/internal/adapters/driven/simulated"
	"github.com/custodia-labs/compassx/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/compassx/internal/core/services"
)

// setupCLITest injects an in-memory settings service and restores every
// package-level flag variable when the test ends.
func setupCLITest(t *testing.T) *bytes.Buffer {
	t.Helper()

	oldSettings := settingsService
	oldDev := devFlags
	oldVerbose, oldConfigDir := verbose, configDir
	oldWatch := struct {
		json     bool
		trace    string
		follow   bool
		paced    bool
		motion   simulated.MotionConfig
		duration time.Duration
	}{watchJSON, watchTrace, watchFollow, watchPaced, watchMotion, watchDuration}
	oldProbeJSON, oldDate := probeJSON, declinationDate
	oldLocEnabled, oldLocInterval, oldLocDistance := locationEnabled, locationInterval, locationDistance

	settingsService = services.NewSettingsService(memory.NewConfigStore())

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)

	t.Cleanup(func() {
		settingsService = oldSettings
		devFlags = oldDev
		verbose, configDir = oldVerbose, oldConfigDir
		watchJSON, watchTrace, watchFollow, watchPaced, watchMotion = oldWatch.json, oldWatch.trace, oldWatch.follow, oldWatch.paced, oldWatch.motion
		watchDuration = oldWatch.duration
		probeJSON, declinationDate = oldProbeJSON, oldDate
		locationEnabled, locationInterval, locationDistance = oldLocEnabled, oldLocInterval, oldLocDistance
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	return buf
}

func runCLI(args ...string) error {
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}
