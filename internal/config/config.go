package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	ProviderAPI struct {
		BaseURL         string  `yaml:"base_url"`
		APIKey          string  `yaml:"api_key"`
		TimeoutSeconds  int     `yaml:"timeout_seconds"`
		CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
		RateLimitRPS    float64 `yaml:"rate_limit_rps"`
		RateLimitBurst  int     `yaml:"rate_limit_burst"`
	} `yaml:"provider_api"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Booking struct {
		HorizonMonths  int    `yaml:"horizon_months"`
		MaxMonthsAhead int    `yaml:"max_months_ahead"`
		Timezone       string `yaml:"timezone"`
	} `yaml:"booking"`

	Wizard struct {
		SessionTimeoutMinutes  int `yaml:"session_timeout_minutes"`
		CleanupIntervalMinutes int `yaml:"cleanup_interval_minutes"`
	} `yaml:"wizard"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.ProviderAPI.BaseURL == "" {
		return nil, fmt.Errorf("provider_api.base_url is required")
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	return &cfg, nil
}

func (c *Config) ProviderTimeout() time.Duration {
	if c.ProviderAPI.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ProviderAPI.TimeoutSeconds) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.ProviderAPI.CacheTTLSeconds) * time.Second
}

func (c *Config) HorizonMonths() int {
	if c.Booking.HorizonMonths <= 0 {
		return 6
	}
	return c.Booking.HorizonMonths
}

func (c *Config) MaxMonthsAhead() int {
	if c.Booking.MaxMonthsAhead <= 0 {
		return c.HorizonMonths()
	}
	return c.Booking.MaxMonthsAhead
}

// Location resolves the configured provider timezone, falling back to local.
func (c *Config) Location() *time.Location {
	if c.Booking.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Booking.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *Config) SessionTimeout() time.Duration {
	if c.Wizard.SessionTimeoutMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.Wizard.SessionTimeoutMinutes) * time.Minute
}

func (c *Config) CleanupInterval() time.Duration {
	if c.Wizard.CleanupIntervalMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Wizard.CleanupIntervalMinutes) * time.Minute
}
