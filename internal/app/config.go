package app

import (
	"errors"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"60s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"45s"`
	AppRateLimit      int           `envconfig:"APP_RATE_LIMIT" default:"120"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	TaaSAPIURL     string        `envconfig:"TAAS_API_URL" required:"true"`
	TaaSAPIToken   string        `envconfig:"TAAS_API_TOKEN"`
	TaaSAPITimeout time.Duration `envconfig:"TAAS_API_TIMEOUT" default:"30s"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	SettleDelay    time.Duration `envconfig:"SETTLE_DELAY" default:"3s"`
	QuerySyncDelay time.Duration `envconfig:"QUERY_SYNC_DELAY" default:"100ms"`
	FeedSize       int           `envconfig:"NOTIFICATION_FEED_SIZE" default:"50"`
	InitialQuery   string        `envconfig:"INITIAL_QUERY"`

	// RefreshCron reloads the current page on a schedule. Empty disables it.
	RefreshCron string `envconfig:"REFRESH_CRON"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.TaaSAPIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("taas api url must be an absolute url")
	}
	if c.SettleDelay < 0 || c.QuerySyncDelay < 0 {
		return errors.New("delays must not be negative")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
