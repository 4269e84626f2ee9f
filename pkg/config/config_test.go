package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, "environment: dev\n"))
	require.NoError(t, err)

	require.Equal(t, "logs", c.Recorder.BaseDir)
	require.Equal(t, "America/New_York", c.Recorder.Timezone)
	require.True(t, c.Recorder.RotateAtMidnight)
	require.True(t, c.Recorder.FlushEachWrite)
	require.True(t, c.Recorder.IncludePercentColumns)
	require.Equal(t, []int{10, 60, 300}, c.Recorder.RollingHorizonsSecs)
	require.Equal(t, time.Second, c.Feed.PollInterval)
	require.Equal(t, 60, c.Signal.HorizonSeconds)
	require.Equal(t, "none", c.Mirror.Backend)
	require.Equal(t, 8080, c.Server.Port)
}

func TestLoadExplicitFalseSurvivesDefaults(t *testing.T) {
	body := `environment: dev
recorder:
  rotate_at_midnight: false
  flush_each_write: false
  include_percent_columns: false
`
	c, err := Load(writeConfig(t, body))
	require.NoError(t, err)
	require.False(t, c.Recorder.RotateAtMidnight)
	require.False(t, c.Recorder.FlushEachWrite)
	require.False(t, c.Recorder.IncludePercentColumns)
}

func TestLoadRejectsBadMirrorBackend(t *testing.T) {
	_, err := Load(writeConfig(t, "environment: dev\nmirror:\n  backend: rabbitmq\n"))
	require.Error(t, err)
}

func TestLoadKafkaBackendRequiresBrokers(t *testing.T) {
	_, err := Load(writeConfig(t, "environment: dev\nmirror:\n  backend: kafka\n"))
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("BASE_DIR", "/tmp/pulse")
	t.Setenv("SERVER_PORT", "9090")

	c, err := LoadWithEnv(writeConfig(t, "environment: dev\n"))
	require.NoError(t, err)
	require.Equal(t, "/tmp/pulse", c.Recorder.BaseDir)
	require.Equal(t, 9090, c.Server.Port)
}
