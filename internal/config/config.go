package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment is the deployment environment, resolved once at startup.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

type Config struct {
	Env            string
	ServiceName    string
	ServiceVersion string

	AppBaseURL string
	CronSecret string

	EnablePolling bool

	OtelExporterOTLPEndpoint string
	OtelExporterOTLPHeaders  string
	SentryDSN                string

	Port string

	Poller PollerConfig
}

// PollerConfig tunes the interval poller. The stagger delays offset the first
// run of each task so both don't hit the app simultaneously at cold start.
type PollerConfig struct {
	Interval           time.Duration
	ScheduleStartDelay time.Duration
	OutlookStartDelay  time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:                      os.Getenv("ENV"),
		ServiceName:              os.Getenv("SERVICE_NAME"),
		ServiceVersion:           os.Getenv("SERVICE_VERSION"),
		AppBaseURL:               os.Getenv("APP_BASE_URL"),
		CronSecret:               os.Getenv("CRON_SECRET"),
		EnablePolling:            os.Getenv("ENABLE_POLLING") == "true",
		OtelExporterOTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OtelExporterOTLPHeaders:  os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"),
		SentryDSN:                os.Getenv("SENTRY_DSN"),
		Port:                     os.Getenv("PORT"),
	}

	// Load from YAML file if available
	if err := cfg.LoadFromYAML("config.yaml"); err != nil {
		return nil, fmt.Errorf("failed to load YAML config: %w", err)
	}

	// Set defaults
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "mailbridge-cadence"
	}
	if cfg.ServiceVersion == "" {
		cfg.ServiceVersion = "1.0.0"
	}
	if cfg.AppBaseURL == "" {
		cfg.AppBaseURL = "http://localhost:3000"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	cfg.SetPollerDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// Environment maps the raw ENV value onto the known environments. Anything
// that is not exactly "production" is treated as development.
func (c *Config) Environment() Environment {
	if c.Env == "production" {
		return EnvProduction
	}
	return EnvDevelopment
}

// PollingEnabled reports whether the poller scheduler should be started.
// Production always polls; elsewhere ENABLE_POLLING=true opts in.
func (c *Config) PollingEnabled() bool {
	return c.Environment() == EnvProduction || c.EnablePolling
}

func (c *Config) LoadFromYAML(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File not found is not an error
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var yamlConfig struct {
		Poller struct {
			Interval           string `yaml:"interval"`
			ScheduleStartDelay string `yaml:"schedule_start_delay"`
			OutlookStartDelay  string `yaml:"outlook_start_delay"`
		} `yaml:"poller"`
	}

	if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	for _, field := range []struct {
		raw  string
		dst  *time.Duration
		name string
	}{
		{yamlConfig.Poller.Interval, &c.Poller.Interval, "poller.interval"},
		{yamlConfig.Poller.ScheduleStartDelay, &c.Poller.ScheduleStartDelay, "poller.schedule_start_delay"},
		{yamlConfig.Poller.OutlookStartDelay, &c.Poller.OutlookStartDelay, "poller.outlook_start_delay"},
	} {
		if field.raw == "" {
			continue
		}
		d, err := time.ParseDuration(field.raw)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %w", field.name, err)
		}
		*field.dst = d
	}

	return nil
}

func (c *Config) SetPollerDefaults() {
	if c.Poller.Interval == 0 {
		c.Poller.Interval = 60 * time.Second
	}
	if c.Poller.ScheduleStartDelay == 0 {
		c.Poller.ScheduleStartDelay = 5 * time.Second
	}
	if c.Poller.OutlookStartDelay == 0 {
		c.Poller.OutlookStartDelay = 10 * time.Second
	}
}

func (c *Config) validate() error {
	if c.Poller.Interval < 0 {
		return fmt.Errorf("poller.interval must be positive")
	}
	if c.Poller.ScheduleStartDelay < 0 || c.Poller.OutlookStartDelay < 0 {
		return fmt.Errorf("poller stagger delays must not be negative")
	}
	return nil
}
