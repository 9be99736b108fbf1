package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Provider names recognized in [llm].provider.
const (
	ProviderMock      = "mock"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// Config holds all application configuration
type Config struct {
	Version    int              `toml:"version"`
	LLM        LLMConfig        `toml:"llm"`
	Browser    BrowserConfig    `toml:"browser"`
	Collection CollectionConfig `toml:"collection"`
	Schedule   ScheduleConfig   `toml:"schedule"`
}

type LLMConfig struct {
	Provider  string `toml:"provider"` // mock, openai, anthropic, ollama
	Model     string `toml:"model"`
	APIKey    string `toml:"api_key"`
	OllamaURL string `toml:"ollama_url"`
}

type BrowserConfig struct {
	Headless       bool `toml:"headless"`
	TimeoutSeconds int  `toml:"timeout_seconds"`
}

type CollectionConfig struct {
	ScrollPasses       int     `toml:"scroll_passes"`
	ScrollDelaySeconds float64 `toml:"scroll_delay_seconds"`
	MaxPostsPerTarget  int     `toml:"max_posts_per_target"`
	MaxTargetsPerRun   int     `toml:"max_targets_per_run"`
}

type ScheduleConfig struct {
	IntervalHours int `toml:"interval_hours"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		Version: 1,
		LLM: LLMConfig{
			Provider:  ProviderMock,
			Model:     "",
			OllamaURL: "http://localhost:11434",
		},
		Browser: BrowserConfig{
			Headless:       false,
			TimeoutSeconds: 30,
		},
		Collection: CollectionConfig{
			ScrollPasses:       3,
			ScrollDelaySeconds: 2.0,
			MaxPostsPerTarget:  20,
			MaxTargetsPerRun:   5,
		},
		Schedule: ScheduleConfig{
			IntervalHours: 6,
		},
	}
}

// ApplyEnv overlays environment variables onto the config. Credentials and
// provider selection are env-first so they stay out of config.toml; call
// godotenv.Load before this to pick up a local .env file.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	switch c.LLM.Provider {
	case ProviderOpenAI:
		if v := os.Getenv("OPENAI_API_KEY"); v != "" {
			c.LLM.APIKey = v
		}
		if v := os.Getenv("OPENAI_MODEL"); v != "" {
			c.LLM.Model = v
		}
	case ProviderAnthropic:
		if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
			c.LLM.APIKey = v
		}
		if v := os.Getenv("ANTHROPIC_MODEL"); v != "" {
			c.LLM.Model = v
		}
	case ProviderOllama:
		if v := os.Getenv("OLLAMA_URL"); v != "" {
			c.LLM.OllamaURL = v
		}
		if v := os.Getenv("OLLAMA_MODEL"); v != "" {
			c.LLM.Model = v
		}
	}
	if v := os.Getenv("BROWSER_HEADLESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Browser.Headless = b
		}
	}
}

// ConfigDir returns the platform-appropriate config directory
func ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "misinfowatch"), nil
}

// ConfigPath returns the full path to the config file
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DataDir returns the directory holding the database, screenshots and the
// target list.
func DataDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "data"), nil
}

// ScreenshotsDir returns the screenshot artifact directory.
func ScreenshotsDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "screenshots"), nil
}

// DBPath returns the full path to the SQLite database.
func DBPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "posts.db"), nil
}

// TargetsPath returns the full path to the target list file.
func TargetsPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "targets.json"), nil
}

// Load reads config from disk
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(c)
}
