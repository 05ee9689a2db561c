package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "anybot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
telegram:
  enabled: true
  token: " tg-token "
vk:
  enabled: true
  token: vk-token
  group_id: 123
health:
  port: 9090
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.True(t, cfg.Telegram.Enabled)
	assert.Equal(t, "tg-token", cfg.Telegram.Token)
	assert.True(t, cfg.VK.Enabled)
	assert.Equal(t, "vk-token", cfg.VK.Token)
	assert.Equal(t, 123, cfg.VK.GroupID)
	assert.Equal(t, 9090, cfg.Health.Port)
	assert.Equal(t, "0.0.0.0", cfg.Health.Host)
	assert.True(t, cfg.Health.Enabled)
	assert.Equal(t, 20, cfg.Photos.TimeoutSeconds)
	require.NoError(t, cfg.Validate())
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "telegram:\n  enabled: true\n  token: from-file\n")
	t.Setenv("ANYBOT_TELEGRAM__TOKEN", "from-env")
	t.Setenv("ANYBOT_VK__GROUP_ID", "77")
	t.Setenv("ANYBOT_LOG_FORMAT", "json")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Telegram.Token)
	assert.Equal(t, 77, cfg.VK.GroupID)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadBadYAML(t *testing.T) {
	path := writeConfig(t, "telegram: [unclosed\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Telegram.Enabled = true
	cfg.VK.Enabled = true
	cfg.Health.Port = 70000
	cfg.LogFormat = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram.token is required")
	assert.Contains(t, err.Error(), "vk.token is required")
	assert.Contains(t, err.Error(), "health.port 70000 out of range")
	assert.Contains(t, err.Error(), `log_format "xml"`)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "telegram.token", envKey("ANYBOT_TELEGRAM__TOKEN"))
	assert.Equal(t, "log_level", envKey("ANYBOT_LOG_LEVEL"))
	assert.Equal(t, "vk.group_id", envKey("ANYBOT_VK__GROUP_ID"))
}
