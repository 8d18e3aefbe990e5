package tui

import (
	"io"
	"log/slog"
)

// Theme holds the prefixes printed in front of chat lines.
type Theme struct {
	BotPrefix   string
	UserPrefix  string
	ErrorPrefix string
}

// DefaultTheme returns the plain prefixes.
func DefaultTheme() Theme {
	return Theme{
		BotPrefix:   "bot> ",
		UserPrefix:  "you> ",
		ErrorPrefix: "! ",
	}
}

// Option configures the Runner.
type Option func(*Runner)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Runner) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutput sets where the survey driver prints informational lines.
func WithOutput(out io.Writer) Option {
	return func(r *Runner) {
		if out != nil {
			r.out = out
		}
	}
}

// WithTheme applies line prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Runner) {
		r.theme = theme
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}
