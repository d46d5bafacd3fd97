package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/compassx/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/compassx/internal/core/services"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "compassx", rootCmd.Use)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("verbose"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config-dir"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("sensors"))
}

func TestRootCmd_OpensConfigDir(t *testing.T) {
	setupCLITest(t)
	settingsService = nil
	dir := t.TempDir()

	err := runCLI("--config-dir", dir, "settings", "noise", "0.5")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "[noise]")
	assert.Contains(t, string(data), "threshold_degrees = 0.5")
}

func TestSetSettingsService(t *testing.T) {
	setupCLITest(t)
	svc := services.NewSettingsService(memory.NewConfigStore())

	SetSettingsService(svc)

	assert.Same(t, svc, settingsService)
}

func TestDeviceFlags_SensorTypes(t *testing.T) {
	tests := []struct {
		name    string
		sensors string
		want    int
		wantErr bool
	}{
		{"default", "rotation_vector,heading", 2, false},
		{"spaces", " heading ", 1, false},
		{"none", "none", 0, false},
		{"empty", "", 0, false},
		{"unknown", "gyro", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			types, err := deviceFlags{sensors: tt.sensors}.sensorTypes()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, types, tt.want)
		})
	}
}

func TestDeviceFlags_Fix(t *testing.T) {
	f := deviceFlags{location: true, latitude: 1, longitude: 2, altitude: 3}
	fix := f.fix()
	require.NotNil(t, fix)
	assert.Equal(t, 1.0, fix.Latitude)

	f.location = false
	assert.Nil(t, f.fix())
}

func TestNewRuntime_RequiresSettings(t *testing.T) {
	setupCLITest(t)
	settingsService = nil

	_, err := newRuntime()

	assert.EqualError(t, err, "settings service not configured")
}
