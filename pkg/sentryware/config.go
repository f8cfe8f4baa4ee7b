// config.go defines the plugin configuration and its mapping onto the Sentry SDK.

package sentryware

import (
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/mohae/deepcopy"
	"github.com/pkg/errors"
)

// TransactionStyle selects how request transactions are named.
type TransactionStyle string

const (
	// TransactionStyleURL names transactions after the request path.
	TransactionStyleURL TransactionStyle = "url"

	// TransactionStyleEndpoint names transactions after the matched route
	// template, falling back to the request path when no route matched.
	TransactionStyleEndpoint TransactionStyle = "endpoint"
)

// SDKOptions is the subset of sentry.ClientOptions exposed through configuration.
type SDKOptions struct {
	Environment        string  `yaml:"environment"`
	Release            string  `yaml:"release"`
	ServerName         string  `yaml:"server_name"`
	Debug              bool    `yaml:"debug"`
	SampleRate         float64 `yaml:"sample_rate"`
	TracesSampleRate   float64 `yaml:"traces_sample_rate"`
	ProfilesSampleRate float64 `yaml:"profiles_sample_rate"`
	AttachStacktrace   bool    `yaml:"attach_stacktrace"`
	MaxBreadcrumbs     int     `yaml:"max_breadcrumbs"`
	SendDefaultPII     bool    `yaml:"send_default_pii"`
}

// Config controls the plugin.
type Config struct {
	// DSN identifies the Sentry project. Empty disables reporting entirely.
	DSN string `yaml:"dsn"`

	// SDKOptions are passed through to the Sentry client.
	SDKOptions SDKOptions `yaml:"sdk_options"`

	// TransactionStyle is "url" (default, also used when empty) or "endpoint".
	TransactionStyle TransactionStyle `yaml:"transaction_style"`

	// Tags are set on every request scope.
	Tags map[string]string `yaml:"tags"`

	// IgnoreMessages are regular expressions matched against event messages
	// and exception values by the SDK.
	IgnoreMessages []string `yaml:"ignore_messages"`

	// ExcludePaths are module prefixes whose frames are never marked in-app.
	ExcludePaths []string `yaml:"exclude_paths"`

	// AppName is reported in the "app" context.
	AppName string `yaml:"app_name"`

	// FlushTimeout bounds Flush and Close when the caller gives no deadline.
	FlushTimeout time.Duration `yaml:"flush_timeout"`
}

var defaultConfig = &Config{
	SDKOptions: SDKOptions{
		SampleRate:         1.0,
		TracesSampleRate:   0.1,
		ProfilesSampleRate: 0.0,
	},
	TransactionStyle: TransactionStyleURL,
	Tags:             map[string]string{},
	IgnoreMessages:   []string{},
	ExcludePaths:     []string{},
	FlushTimeout:     2 * time.Second,
}

// DefaultConfig returns a fresh copy of the default configuration.
func DefaultConfig() Config {
	return *deepcopy.Copy(defaultConfig).(*Config)
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch c.TransactionStyle {
	case "", TransactionStyleURL, TransactionStyleEndpoint:
	default:
		return errors.Wrapf(ErrInvalidConfig, "transaction_style %q (want %q or %q)",
			c.TransactionStyle, TransactionStyleURL, TransactionStyleEndpoint)
	}

	rates := map[string]float64{
		"sample_rate":          c.SDKOptions.SampleRate,
		"traces_sample_rate":   c.SDKOptions.TracesSampleRate,
		"profiles_sample_rate": c.SDKOptions.ProfilesSampleRate,
	}
	for name, rate := range rates {
		if rate < 0 || rate > 1 {
			return errors.Wrapf(ErrInvalidConfig, "%s %v out of range [0,1]", name, rate)
		}
	}

	if c.FlushTimeout < 0 {
		return errors.Wrapf(ErrInvalidConfig, "flush_timeout %v is negative", c.FlushTimeout)
	}

	if c.DSN != "" {
		if _, err := sentry.NewDsn(c.DSN); err != nil {
			return errors.Wrapf(ErrInvalidConfig, "dsn: %v", err)
		}
	}

	return nil
}

// ApplyEnv overlays SENTRY_* environment variables on cfg.
func ApplyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv("SENTRY_DSN"); ok {
		cfg.DSN = v
	}
	if v, ok := os.LookupEnv("SENTRY_ENVIRONMENT"); ok {
		cfg.SDKOptions.Environment = v
	}
	if v, ok := os.LookupEnv("SENTRY_RELEASE"); ok {
		cfg.SDKOptions.Release = v
	}
	if v, ok := os.LookupEnv("SENTRY_TRACES_SAMPLE_RATE"); ok {
		rate, err := parseRate(v)
		if err != nil {
			return errors.Wrap(err, "SENTRY_TRACES_SAMPLE_RATE")
		}
		cfg.SDKOptions.TracesSampleRate = rate
	}
	return nil
}

// ClientOptions maps the configuration onto sentry.ClientOptions.
func (c Config) ClientOptions() sentry.ClientOptions {
	o := c.SDKOptions
	return sentry.ClientOptions{
		Dsn:                c.DSN,
		Debug:              o.Debug,
		Environment:        o.Environment,
		Release:            o.Release,
		ServerName:         o.ServerName,
		SampleRate:         o.SampleRate,
		EnableTracing:      o.TracesSampleRate > 0,
		TracesSampleRate:   o.TracesSampleRate,
		ProfilesSampleRate: o.ProfilesSampleRate,
		AttachStacktrace:   o.AttachStacktrace,
		MaxBreadcrumbs:     o.MaxBreadcrumbs,
		SendDefaultPII:     o.SendDefaultPII,
		IgnoreErrors:       append([]string(nil), c.IgnoreMessages...),
	}
}
