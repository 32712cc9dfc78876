package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BROWSER_STACK_KEY", "")
	t.Setenv("BROWSER_TEST_MAX_DURATION", "")

	cfg := Load()
	require.Empty(t, cfg.AccessKey)
	require.Equal(t, 10*time.Minute, cfg.MaxWait)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("BROWSER_STACK_KEY", "user:secret")
	t.Setenv("BROWSER_TEST_MAX_DURATION", "120")

	cfg := Load()
	require.Equal(t, "user:secret", cfg.AccessKey)
	require.Equal(t, 2*time.Minute, cfg.MaxWait)
}

func TestLoadSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bsrun.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
blacklist:
  - Samsung Galaxy S7-6.0
  - OnePlus 6T-9.0
project: my-project
app_custom_id: MyApp
`), 0644))

	settings, err := LoadSettings(path)
	require.NoError(t, err)
	require.Equal(t, "my-project", settings.Project)
	require.Equal(t, "MyApp", settings.AppCustomID)
	require.True(t, settings.Blacklisted("OnePlus 6T-9.0"))
	require.False(t, settings.Blacklisted("Google Pixel 8 Pro-14.0"))
}

func TestLoadSettingsDefaults(t *testing.T) {
	settings, err := LoadSettings("")
	require.NoError(t, err)
	require.True(t, settings.Blacklisted("Samsung Galaxy S7-6.0"))
}
