package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Colet    ColetConfig    `yaml:"colet"`
	Settings SettingsConfig `yaml:"settings"`
	Session  SessionConfig  `yaml:"session"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds the terminal API server configuration.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	RequestIPHeader string   `yaml:"request_ip_header"`
	RateLimitPerSec float64  `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int      `yaml:"rate_limit_burst"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

// ColetConfig holds the connection settings for the Colet backend REST API.
type ColetConfig struct {
	BaseURL        string        `yaml:"base_url"`
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	Timeout        time.Duration `yaml:"-"` // Ignored by YAML parser
}

// SettingsConfig holds the persistent settings-cache configuration.
type SettingsConfig struct {
	CachePath string `yaml:"cache_path"`
}

// SessionConfig holds the form-session store configuration.
type SessionConfig struct {
	TTLMinutes     int           `yaml:"ttl_minutes"`
	CleanupMinutes int           `yaml:"cleanup_minutes"`
	TTL            time.Duration `yaml:"-"`
	Cleanup        time.Duration `yaml:"-"`
}

// LogConfig holds the logger configuration.
type LogConfig struct {
	Env   string `yaml:"env"`
	Level string `yaml:"level"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a configuration usable without a config file.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}

	// COLET_API_URL overrides the config file; the localhost fallback matches
	// the backend's development port.
	if env := os.Getenv("COLET_API_URL"); env != "" {
		cfg.Colet.BaseURL = env
	}
	if cfg.Colet.BaseURL == "" {
		cfg.Colet.BaseURL = "http://localhost:8081"
	}
	if cfg.Colet.TimeoutSeconds <= 0 {
		cfg.Colet.TimeoutSeconds = 30
	}
	cfg.Colet.Timeout = time.Duration(cfg.Colet.TimeoutSeconds) * time.Second

	if cfg.Settings.CachePath == "" {
		cfg.Settings.CachePath = "./clt400tt_parametros.db"
	}

	if cfg.Session.TTLMinutes <= 0 {
		cfg.Session.TTLMinutes = 120
	}
	if cfg.Session.CleanupMinutes <= 0 {
		cfg.Session.CleanupMinutes = 15
	}
	cfg.Session.TTL = time.Duration(cfg.Session.TTLMinutes) * time.Minute
	cfg.Session.Cleanup = time.Duration(cfg.Session.CleanupMinutes) * time.Minute

	if cfg.Log.Env == "" {
		cfg.Log.Env = "production"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
