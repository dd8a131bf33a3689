package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"
)

// Config is the process configuration: defaults, then the optional
// configs/config.json, then environment overrides.
type Config struct {
	ListenAddress string `json:"listen_address"`
	Port          int    `json:"port"`

	DefaultLanguage string `json:"default_language"`

	// RetryMax bounds consecutive invalid inputs in any one state
	// before the call ends with the fallback prompt.
	RetryMax int `json:"retry_max"`

	GatherTimeoutSeconds int `json:"gather_timeout_seconds"`
	LookupTimeoutSeconds int `json:"lookup_timeout_seconds"`

	SessionIdleMinutes int `json:"session_idle_minutes"`
	MaxSessions        int `json:"max_sessions"`

	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"redis_password"`

	LocalesPath string `json:"locales_path"`
	IntentsPath string `json:"intents_path"`
}

func defaults() *Config {
	return &Config{
		ListenAddress:        "0.0.0.0",
		Port:                 8080,
		DefaultLanguage:      "en",
		RetryMax:             2,
		GatherTimeoutSeconds: 5,
		LookupTimeoutSeconds: 3,
		SessionIdleMinutes:   5,
		MaxSessions:          200,
		LocalesPath:          "./configs/locales.yaml",
		IntentsPath:          "./configs/intents.json",
	}
}

// LoadConfig builds the configuration. A missing config file is fine;
// a malformed one or an invalid value is not.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	config := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults plus environment only.
		case err != nil:
			return nil, fmt.Errorf("error reading config file: %w", err)
		default:
			if err := sonic.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("error decoding config JSON: %w", err)
			}
		}
	}

	if err := applyEnv(config); err != nil {
		return nil, err
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func applyEnv(config *Config) error {
	if v := os.Getenv("IVR_LISTEN_ADDRESS"); v != "" {
		config.ListenAddress = v
	}
	if v := os.Getenv("IVR_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid IVR_PORT: %w", err)
		}
		config.Port = p
	}
	if v := os.Getenv("IVR_DEFAULT_LANGUAGE"); v != "" {
		config.DefaultLanguage = v
	}
	if v := os.Getenv("IVR_RETRY_MAX"); v != "" {
		r, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid IVR_RETRY_MAX: %w", err)
		}
		config.RetryMax = r
	}
	if v := os.Getenv("IVR_GATHER_TIMEOUT_SECONDS"); v != "" {
		g, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid IVR_GATHER_TIMEOUT_SECONDS: %w", err)
		}
		config.GatherTimeoutSeconds = g
	}
	if v := os.Getenv("IVR_LOOKUP_TIMEOUT_SECONDS"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid IVR_LOOKUP_TIMEOUT_SECONDS: %w", err)
		}
		config.LookupTimeoutSeconds = l
	}
	if v := os.Getenv("IVR_SESSION_IDLE_MINUTES"); v != "" {
		t, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid IVR_SESSION_IDLE_MINUTES: %w", err)
		}
		config.SessionIdleMinutes = t
	}
	if v := os.Getenv("IVR_MAX_SESSIONS"); v != "" {
		msessions, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid IVR_MAX_SESSIONS: %w", err)
		}
		config.MaxSessions = msessions
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		config.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		config.RedisPassword = v
	}
	if v := os.Getenv("IVR_LOCALES_PATH"); v != "" {
		config.LocalesPath = v
	}
	if v := os.Getenv("IVR_INTENTS_PATH"); v != "" {
		config.IntentsPath = v
	}
	return nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.RetryMax < 1 {
		return fmt.Errorf("retry_max must be at least 1, got %d", c.RetryMax)
	}
	if c.GatherTimeoutSeconds < 1 {
		return fmt.Errorf("gather_timeout_seconds must be at least 1, got %d", c.GatherTimeoutSeconds)
	}
	if c.LookupTimeoutSeconds < 1 {
		return fmt.Errorf("lookup_timeout_seconds must be at least 1, got %d", c.LookupTimeoutSeconds)
	}
	if c.SessionIdleMinutes < 1 {
		return fmt.Errorf("session_idle_minutes must be at least 1, got %d", c.SessionIdleMinutes)
	}
	if c.MaxSessions < 1 {
		return fmt.Errorf("max_sessions must be at least 1, got %d", c.MaxSessions)
	}
	switch c.DefaultLanguage {
	case "en", "hi", "mr":
	default:
		return fmt.Errorf("unsupported default_language %q", c.DefaultLanguage)
	}
	return nil
}

func (c *Config) SessionIdleTimeout() time.Duration {
	return time.Duration(c.SessionIdleMinutes) * time.Minute
}

func (c *Config) LookupTimeout() time.Duration {
	return time.Duration(c.LookupTimeoutSeconds) * time.Second
}
