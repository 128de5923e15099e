package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/macrat/statwatch/internal/detect"
	"github.com/macrat/statwatch/internal/fetch"
	"github.com/macrat/statwatch/internal/meta"
	"github.com/macrat/statwatch/internal/notify"
	"github.com/macrat/statwatch/internal/schedule"
	"github.com/macrat/statwatch/internal/swerr"
	api "github.com/macrat/statwatch/lib-statwatch"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	// envWebhookURL is the environment variable that adds a webhook URL.
	envWebhookURL = "STATWATCH_WEBHOOK_URL"

	DefaultStatePath = "./statwatch.json"
	DefaultPort      = 9000
)

// DefaultComponents is the components that tracked if no component specified.
var DefaultComponents = []string{
	"claude.ai",
	"console.anthropic.com",
	"api.anthropic.com",
	"api.anthropic.com - Beta Features",
	"anthropic.com",
}

// Config is the configuration of statwatch.
// It can be loaded from a YAML file, and command line flags override it.
type Config struct {
	URL        string      `yaml:"url"`
	Title      string      `yaml:"title"`
	Components []string    `yaml:"components"`
	Schedule   string      `yaml:"schedule"`
	StateFile  string      `yaml:"state_file"`
	Port       int         `yaml:"port"`
	User       string      `yaml:"user"`
	RateLimit  int         `yaml:"rate_limit"`
	Webhooks   []string    `yaml:"webhooks"`
	LogLevel   string      `yaml:"log_level"`
	Fetch      FetchConfig `yaml:"fetch"`
	Dedup      DedupConfig `yaml:"dedup"`
}

type FetchConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	Retries   int           `yaml:"retries"`
	UserAgent string        `yaml:"user_agent"`
}

type DedupConfig struct {
	Expiry   time.Duration `yaml:"expiry"`
	Capacity int           `yaml:"capacity"`
}

// DefaultConfig returns a Config filled with default values.
func DefaultConfig() Config {
	return Config{
		URL:        fetch.DefaultURL,
		Title:      "Anthropic Status",
		Components: append([]string(nil), DefaultComponents...),
		Schedule:   schedule.DefaultSchedule.String(),
		StateFile:  DefaultStatePath,
		Port:       DefaultPort,
		LogLevel:   "info",
		Fetch: FetchConfig{
			Timeout:   fetch.DefaultTimeout,
			Retries:   fetch.DefaultRetries,
			UserAgent: meta.UserAgent(),
		},
		Dedup: DedupConfig{
			Expiry:   detect.DefaultExpiry,
			Capacity: detect.DefaultCapacity,
		},
	}
}

// LoadConfig reads a YAML file over the default values.
// Keys that are not in the file keep the default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return cfg, swerr.New(api.ErrInvalidConfig, err, "failed to read config file")
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, swerr.New(api.ErrInvalidConfig, err, "failed to parse config file: %s", path)
	}

	return cfg, nil
}

// ApplyEnv adds settings from environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if u := getenv(envWebhookURL); u != "" {
		for _, x := range c.Webhooks {
			if x == u {
				return
			}
		}
		c.Webhooks = append(c.Webhooks, u)
	}
}

// Validate checks all values in the Config, and reports all problems at once.
func (c Config) Validate() error {
	errs := &swerr.ListBuilder{What: api.ErrInvalidConfig}

	if c.URL == "" {
		errs.Pushf("url: must not be empty")
	} else if _, err := fetch.New(c.URL, c.FetchOptions()); err != nil {
		errs.Pushf("url: %s", err)
	}

	if len(c.Components) == 0 {
		errs.Pushf("components: must not be empty")
	}

	if _, err := schedule.Parse(c.Schedule); err != nil {
		errs.Pushf("schedule: %q is not valid interval or cron schedule", c.Schedule)
	}

	if c.Port < 0 || 65535 < c.Port {
		errs.Pushf("port: must be between 0 and 65535 but got %d", c.Port)
	}

	if c.RateLimit < 0 {
		errs.Pushf("rate_limit: must not be negative but got %d", c.RateLimit)
	}

	for _, u := range c.Webhooks {
		if _, err := notify.NewWebhook(u); err != nil {
			errs.Pushf("webhooks: %s", err)
		}
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs.Pushf("log_level: unknown level %q", c.LogLevel)
	}

	if c.Fetch.Timeout <= 0 {
		errs.Pushf("fetch.timeout: must be positive but got %s", c.Fetch.Timeout)
	}
	if c.Fetch.Retries < 0 {
		errs.Pushf("fetch.retries: must not be negative but got %d", c.Fetch.Retries)
	}

	if c.Dedup.Expiry < 0 {
		errs.Pushf("dedup.expiry: must not be negative but got %s", c.Dedup.Expiry)
	}
	if c.Dedup.Capacity < 0 {
		errs.Pushf("dedup.capacity: must not be negative but got %d", c.Dedup.Capacity)
	}

	return errs.Build()
}

// FetchOptions makes fetch.Options from the Config.
func (c Config) FetchOptions() fetch.Options {
	return fetch.Options{
		UserAgent: c.Fetch.UserAgent,
		Timeout:   c.Fetch.Timeout,
		Retries:   c.Fetch.Retries,
	}
}

func (c Config) String() string {
	return fmt.Sprintf("%s every %s", c.URL, c.Schedule)
}
