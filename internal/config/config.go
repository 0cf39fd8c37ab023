package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the YAML file layout for the agent.
type Config struct {
	Driver DriverConfig `yaml:"driver"`
	Run    RunConfig    `yaml:"run"`
	LLM    LLMConfig    `yaml:"llm"`
	Store  StoreConfig  `yaml:"store"`
	API    APIConfig    `yaml:"api"`
}

type DriverConfig struct {
	// Backend is "uiautomator2" for a device or "chrome" for the web
	// rendition of the flow.
	Backend     string `yaml:"backend"`
	ServerURL   string `yaml:"server_url"`
	AppPackage  string `yaml:"app_package"`
	AppActivity string `yaml:"app_activity"`
	StartURL    string `yaml:"start_url"`
	Headless    bool   `yaml:"headless"`
}

type RunConfig struct {
	MaxActions            int `yaml:"max_actions"`
	SettleMs              int `yaml:"settle_ms"`
	AuthWaitSeconds       int `yaml:"auth_wait_seconds"`
	PostAuthBudgetSeconds int `yaml:"post_auth_budget_seconds"`
}

type LLMConfig struct {
	Enabled bool   `yaml:"enabled"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type APIConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Driver: DriverConfig{
			Backend:     "uiautomator2",
			ServerURL:   "http://localhost:4723",
			AppPackage:  "com.microsoft.office.outlook",
			AppActivity: "com.microsoft.office.outlook.MainActivity",
		},
		Run: RunConfig{
			MaxActions:            40,
			AuthWaitSeconds:       90,
			PostAuthBudgetSeconds: 7,
		},
		LLM: LLMConfig{
			Enabled: true,
		},
		Store: StoreConfig{
			Path: "signup_runs.db",
		},
		API: APIConfig{
			Addr: ":8080",
		},
	}
}

// Load reads a YAML config file over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
