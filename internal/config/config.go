// Package config holds the settings the smartforms command wires into the
// loader, the controllers and the back-ends.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-smartforms/pkg/chatflow"
	"github.com/goliatone/go-smartforms/pkg/submit"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SMARTFORMS_"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the full application configuration.
type Config struct {
	Endpoint struct {
		URL    string            `yaml:"url"`
		Action string            `yaml:"action"`
		Nonce  string            `yaml:"nonce"`
		FormID string            `yaml:"form_id"`
		Hidden map[string]string `yaml:"hidden"`
	} `yaml:"endpoint"`

	Flow struct {
		Descriptor       string        `yaml:"descriptor"`
		Overlay          string        `yaml:"overlay"`
		OpenAPIOperation string        `yaml:"openapi_operation"`
		ErrorWindow      time.Duration `yaml:"error_window"`
		LegacyReversion  bool          `yaml:"legacy_reversion"`
		DefaultHelp      string        `yaml:"default_help"`
		GenericFailure   string        `yaml:"generic_failure"`
	} `yaml:"flow"`

	HTTP struct {
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"http"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`

	Telegram struct {
		Token       string        `yaml:"token"`
		PollTimeout time.Duration `yaml:"poll_timeout"`
	} `yaml:"telegram"`
}

// NewConfig returns a configuration with defaults applied.
func NewConfig() *Config {
	cfg := &Config{}
	cfg.Endpoint.Action = submit.DefaultAction
	cfg.Flow.ErrorWindow = chatflow.DefaultErrorWindow
	cfg.HTTP.Timeout = submit.DefaultTimeout
	cfg.Logging.Level = "info"
	cfg.Telegram.PollTimeout = 10 * time.Second
	return cfg
}

// Load reads path as YAML over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := NewConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from SMARTFORMS_* variables found through lookup,
// typically os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		return nil
	}
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	dur := func(name string, dst *time.Duration) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		parsed, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, name, err)
		}
		*dst = parsed
		return nil
	}

	str("ENDPOINT_URL", &c.Endpoint.URL)
	str("ENDPOINT_ACTION", &c.Endpoint.Action)
	str("ENDPOINT_NONCE", &c.Endpoint.Nonce)
	str("ENDPOINT_FORM_ID", &c.Endpoint.FormID)
	str("DESCRIPTOR", &c.Flow.Descriptor)
	str("OVERLAY", &c.Flow.Overlay)
	str("OPENAPI_OPERATION", &c.Flow.OpenAPIOperation)
	str("LOG_LEVEL", &c.Logging.Level)
	str("TELEGRAM_TOKEN", &c.Telegram.Token)

	if v, ok := lookup(EnvPrefix + "LEGACY_REVERSION"); ok && strings.TrimSpace(v) != "" {
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %sLEGACY_REVERSION: %w", EnvPrefix, err)
		}
		c.Flow.LegacyReversion = parsed
	}

	return errors.Join(
		dur("ERROR_WINDOW", &c.Flow.ErrorWindow),
		dur("HTTP_TIMEOUT", &c.HTTP.Timeout),
		dur("TELEGRAM_POLL_TIMEOUT", &c.Telegram.PollTimeout),
	)
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Flow.Descriptor) == "" {
		errs = append(errs, fmt.Errorf("%w: flow.descriptor is required", ErrInvalid))
	}
	if c.Flow.ErrorWindow <= 0 {
		errs = append(errs, fmt.Errorf("%w: flow.error_window must be positive", ErrInvalid))
	}
	if c.HTTP.Timeout < 0 {
		errs = append(errs, fmt.Errorf("%w: http.timeout must not be negative", ErrInvalid))
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ValidateSubmission checks the settings needed to post answers.
func (c *Config) ValidateSubmission() error {
	if strings.TrimSpace(c.Endpoint.URL) == "" {
		return fmt.Errorf("%w: endpoint.url is required", ErrInvalid)
	}
	return nil
}

// ValidateTelegram checks the settings needed to run the bot.
func (c *Config) ValidateTelegram() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return fmt.Errorf("%w: telegram.token is required", ErrInvalid)
	}
	return nil
}

// ParseLevel maps a level name onto slog.
func ParseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%w: unknown log level %q", ErrInvalid, raw)
}

// ControllerOptions translates the flow settings into controller options.
func (c *Config) ControllerOptions() []chatflow.Option {
	opts := []chatflow.Option{chatflow.WithErrorWindow(c.Flow.ErrorWindow)}
	if c.Flow.LegacyReversion {
		opts = append(opts, chatflow.WithLegacyReversion())
	}
	if c.Flow.DefaultHelp != "" || c.Flow.GenericFailure != "" {
		opts = append(opts, chatflow.WithMessages(chatflow.Messages{
			DefaultHelp:    c.Flow.DefaultHelp,
			GenericFailure: c.Flow.GenericFailure,
		}))
	}
	return opts
}

// SubmitOptions translates the endpoint settings into client options.
func (c *Config) SubmitOptions() []submit.Option {
	opts := []submit.Option{
		submit.WithAction(c.Endpoint.Action),
		submit.WithNonce(c.Endpoint.Nonce),
		submit.WithTimeout(c.HTTP.Timeout),
	}
	if c.Endpoint.FormID != "" {
		opts = append(opts, submit.WithFormID(c.Endpoint.FormID))
	}
	if len(c.Endpoint.Hidden) > 0 {
		hidden := make([]submit.HiddenField, 0, len(c.Endpoint.Hidden))
		for name, value := range c.Endpoint.Hidden {
			hidden = append(hidden, submit.HiddenField{Name: name, Value: value})
		}
		opts = append(opts, submit.WithHiddenFields(hidden...))
	}
	return opts
}
