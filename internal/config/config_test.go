package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	require.Equal(t, ProviderMock, cfg.LLM.Provider)
	require.Equal(t, 3, cfg.Collection.ScrollPasses)
	require.Equal(t, 20, cfg.Collection.MaxPostsPerTarget)
	require.Equal(t, 6, cfg.Schedule.IntervalHours)
	require.Equal(t, 30, cfg.Browser.TimeoutSeconds)
}

func TestConfigTOMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.LLM.Provider = ProviderOllama
	cfg.LLM.Model = "llama3"
	cfg.Browser.Headless = true
	cfg.Collection.ScrollDelaySeconds = 1.5

	path := filepath.Join(t.TempDir(), "config.toml")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, toml.NewEncoder(f).Encode(cfg))
	require.NoError(t, f.Close())

	var loaded Config
	_, err = toml.DecodeFile(path, &loaded)
	require.NoError(t, err)
	require.Equal(t, *cfg, loaded)
}

func TestApplyEnvProviderOverride(t *testing.T) {
	t.Setenv("LLM_PROVIDER", ProviderAnthropic)
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("ANTHROPIC_MODEL", "claude-sonnet")

	cfg := Default()
	cfg.ApplyEnv()

	require.Equal(t, ProviderAnthropic, cfg.LLM.Provider)
	require.Equal(t, "sk-test", cfg.LLM.APIKey)
	require.Equal(t, "claude-sonnet", cfg.LLM.Model)
}

func TestApplyEnvHeadless(t *testing.T) {
	t.Setenv("BROWSER_HEADLESS", "true")
	cfg := Default()
	cfg.ApplyEnv()
	require.True(t, cfg.Browser.Headless)

	t.Setenv("BROWSER_HEADLESS", "not-a-bool")
	cfg = Default()
	cfg.ApplyEnv()
	require.False(t, cfg.Browser.Headless)
}

func TestTargetsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.json")

	targets := []Target{
		{Name: "Local Page", URL: "https://www.facebook.com/localpage", Type: "page"},
		{Name: "News Site", URL: "https://example.com/news", Type: "static"},
	}
	require.NoError(t, SaveTargets(path, targets))

	loaded, err := LoadTargets(path)
	require.NoError(t, err)
	require.Equal(t, targets, loaded)
}

func TestLoadTargetsMissingFile(t *testing.T) {
	loaded, err := LoadTargets(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	require.Nil(t, loaded)
}
