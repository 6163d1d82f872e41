package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"DB_DSN", "TG_TOKEN", "TG_CHAT_ID", "OUTPUT_DIR", "OUTPUT_FORMAT", "CHART_STYLE"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	env := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(env, []byte("DB_DSN=user:pass@tcp(127.0.0.1:9004)/default\nTG_CHAT_ID=-100123\nOUTPUT_FORMAT=html\n"), 0o644))

	c, err := Load(env)
	require.NoError(t, err)
	assert.Equal(t, "user:pass@tcp(127.0.0.1:9004)/default", c.DbDsn)
	assert.Equal(t, int64(-100123), c.TgChatID)
	assert.Equal(t, "html", c.OutputFormat)
	assert.Equal(t, "charts", c.OutputDir)
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	c, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "png", c.OutputFormat)
}

func TestLoadInvalidChatID(t *testing.T) {
	clearEnv(t)
	t.Setenv("TG_CHAT_ID", "chat")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "invalid TG_CHAT_ID")
}

func resetConfig() {
	config, configErr, once = nil, nil, sync.Once{}
}

func TestGetConfig(t *testing.T) {
	clearEnv(t)
	t.Cleanup(resetConfig)
	resetConfig()

	env := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(env, []byte("OUTPUT_DIR=renders\n"), 0o644))
	c, err := GetConfig(env)
	require.NoError(t, err)
	assert.Equal(t, "renders", c.OutputDir)

	again, err := GetConfig(filepath.Join(t.TempDir(), "other.env"))
	require.NoError(t, err)
	assert.Same(t, c, again)
}

func TestGetConfigKeepsError(t *testing.T) {
	clearEnv(t)
	t.Cleanup(resetConfig)
	resetConfig()
	t.Setenv("TG_CHAT_ID", "chat")

	missing := filepath.Join(t.TempDir(), "missing.env")
	for i := 0; i < 2; i++ {
		c, err := GetConfig(missing)
		assert.Nil(t, c)
		assert.ErrorContains(t, err, "invalid TG_CHAT_ID")
	}
}

func TestLoadStyle(t *testing.T) {
	style, err := LoadStyle("")
	require.NoError(t, err)
	assert.Equal(t, 1024, style.Width)

	path := filepath.Join(t.TempDir(), "style.yaml")
	require.NoError(t, os.WriteFile(path, []byte("width: 800\npalette: [\"#000000\", \"#ffffff\"]\n"), 0o644))
	style, err = LoadStyle(path)
	require.NoError(t, err)
	assert.Equal(t, 800, style.Width)
	assert.Equal(t, 576, style.Height)
	assert.Equal(t, []string{"#000000", "#ffffff"}, style.Palette)

	require.NoError(t, os.WriteFile(path, []byte("width: [\n"), 0o644))
	_, err = LoadStyle(path)
	assert.Error(t, err)
}
