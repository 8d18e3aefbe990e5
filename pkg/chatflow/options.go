package chatflow

import (
	"log/slog"
	"time"

	"github.com/goliatone/go-smartforms/pkg/controls"
)

// DefaultErrorWindow is how long a validation message stays up.
const DefaultErrorWindow = 3000 * time.Millisecond

// Messages holds the fallback texts.
type Messages struct {
	// DefaultHelp is shown when a field has no help text.
	DefaultHelp string
	// RequiredFormat is a fmt template receiving the field label.
	RequiredFormat string
	// GenericFailure replaces an empty failure message.
	GenericFailure string
}

// DefaultMessages returns the built-in fallback texts.
func DefaultMessages() Messages {
	return Messages{
		DefaultHelp:    "Type your answer below.",
		RequiredFormat: "%s is required.",
		GenericFailure: "Something went wrong. Please try again later.",
	}
}

// Option customises a Controller.
type Option func(*Controller)

// WithClock replaces the wall clock.
func WithClock(clock Clock) Option {
	return func(c *Controller) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithErrorWindow changes how long validation messages stay up.
func WithErrorWindow(window time.Duration) Option {
	return func(c *Controller) {
		if window > 0 {
			c.window = window
		}
	}
}

// WithRegistry swaps the control factory registry.
func WithRegistry(registry *controls.Registry) Option {
	return func(c *Controller) {
		if registry != nil {
			c.registry = registry
		}
	}
}

// WithMessages overrides the fallback texts. Blank entries keep defaults.
func WithMessages(messages Messages) Option {
	return func(c *Controller) {
		if messages.DefaultHelp != "" {
			c.messages.DefaultHelp = messages.DefaultHelp
		}
		if messages.RequiredFormat != "" {
			c.messages.RequiredFormat = messages.RequiredFormat
		}
		if messages.GenericFailure != "" {
			c.messages.GenericFailure = messages.GenericFailure
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSessionID fixes the session identifier instead of generating one.
func WithSessionID(id string) Option {
	return func(c *Controller) {
		if id != "" {
			c.sessionID = id
		}
	}
}

// WithLegacyReversion restores unscoped error reversion: every validation
// error schedules its own timer, nothing cancels it, and when it fires it
// writes the help text of the field that failed into whatever field is
// current.
func WithLegacyReversion() Option {
	return func(c *Controller) {
		c.legacyReversion = true
	}
}
