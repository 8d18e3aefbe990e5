package html

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-smartforms/pkg/chatflow"
	"github.com/goliatone/go-smartforms/pkg/controls"
	"github.com/goliatone/go-smartforms/pkg/model"
	"github.com/goliatone/go-smartforms/pkg/render"
	rendertemplate "github.com/goliatone/go-smartforms/pkg/render/template"
	"github.com/goliatone/go-smartforms/pkg/render/template/gotemplate"
)

// Option configures the presenter.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	theme            *theme.RendererConfig
	selector         theme.ThemeSelector
	themeName        string
	themeVariant     string
	failureNotice    string
	logger           *slog.Logger
}

// DefaultFailureNotice is shown when a submission never settled.
const DefaultFailureNotice = "Your answers could not be sent. Please try again later."

// WithFailureNotice replaces the text shown when a submission never settled.
func WithFailureNotice(text string) Option {
	return func(cfg *config) {
		if text != "" {
			cfg.failureNotice = text
		}
	}
}

// WithTemplatesFS supplies an alternate template bundle.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path != "" {
			cfg.templateFS = os.DirFS(path)
		}
	}
}

// WithTemplateRenderer injects a template engine.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithTheme applies a resolved theme configuration.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(c *config) {
		c.theme = cfg
	}
}

// WithThemeSelector resolves name/variant through selector when the
// presenter is built.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) Option {
	return func(c *config) {
		c.selector = selector
		c.themeName = name
		c.themeVariant = variant
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Presenter renders chat steps as HTML fragments.
type Presenter struct {
	templates     rendertemplate.TemplateRenderer
	theme         themeView
	failureNotice string
	logger        *slog.Logger
}

var _ render.Presenter = (*Presenter)(nil)

// New builds the presenter.
func New(options ...Option) (*Presenter, error) {
	cfg := config{templateFS: TemplatesFS(), failureNotice: DefaultFailureNotice, logger: slog.Default()}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.selector != nil {
		selection, err := cfg.selector.Select(cfg.themeName, cfg.themeVariant)
		if err != nil {
			return nil, fmt.Errorf("html presenter: select theme %q: %w", cfg.themeName, err)
		}
		resolved, err := ThemeConfigFromSelection(selection)
		if err != nil {
			return nil, err
		}
		cfg.theme = resolved
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		if cfg.templateFS == nil {
			cfg.templateFS = TemplatesFS()
		}
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("html presenter: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Presenter{
		templates:     renderer,
		theme:         buildThemeView(cfg.theme),
		failureNotice: cfg.failureNotice,
		logger:        cfg.logger,
	}, nil
}

func (p *Presenter) Name() string {
	return "html"
}

func (p *Presenter) ContentType() string {
	return "text/html; charset=utf-8"
}

// Present renders the transcript, help region and, while input is enabled,
// the control for the current field.
func (p *Presenter) Present(_ context.Context, snap chatflow.Snapshot, control controls.Control) ([]byte, error) {
	data := map[string]any{
		"session":      snap.SessionID,
		"form_id":      snap.FormID,
		"state":        snap.State.String(),
		"help":         plainText(snap.HelpText),
		"error_active": snap.ErrorActive,
		"input":        snap.InputEnabled(),
		"messages":     p.messages(snap),
		"theme":        p.theme,
		"step":         snap.Index + 1,
		"steps":        snap.FieldCount,
		"can_advance":  canAdvance(snap),
	}
	if snap.SubmitErr != nil {
		data["notice"] = p.failureNotice
	}

	if snap.InputEnabled() && control != nil {
		view := controls.Describe(control)
		controlData := controlContext(view, snap)
		markup, err := p.templates.RenderTemplate("controls/"+controlTemplate(view.Kind), map[string]any{
			"control": controlData,
			"session": snap.SessionID,
		})
		if err != nil {
			return nil, fmt.Errorf("html presenter: render %s control: %w", view.Kind, err)
		}
		data["control"] = controlData
		data["control_html"] = markup
	}

	out, err := p.templates.RenderTemplate("chat", data)
	if err != nil {
		return nil, fmt.Errorf("html presenter: render chat: %w", err)
	}
	p.logger.Debug("presented step", "session", snap.SessionID, "state", snap.State.String(), "index", snap.Index)
	return []byte(out), nil
}

func (p *Presenter) messages(snap chatflow.Snapshot) []map[string]any {
	out := make([]map[string]any, 0, len(snap.Transcript))
	completed := snap.State == chatflow.Completed
	for _, msg := range snap.Transcript {
		entry := map[string]any{"role": string(msg.Role)}
		if completed && msg.Role == chatflow.RoleBot {
			entry["html"] = serverMessage(msg.Text)
		} else {
			entry["text"] = plainText(msg.Text)
		}
		out = append(out, entry)
	}
	return out
}

func canAdvance(snap chatflow.Snapshot) bool {
	if !snap.InputEnabled() {
		return false
	}
	return !snap.Field.Required || !snap.Draft.IsEmpty()
}

func controlTemplate(kind model.FieldKind) string {
	switch kind {
	case model.FieldKindSelect, model.FieldKindDropdown:
		return "select"
	case model.FieldKindText, model.FieldKindNumber:
		return "input"
	default:
		return string(kind)
	}
}

func controlContext(view controls.View, snap chatflow.Snapshot) map[string]any {
	name := snap.Field.Key(snap.Index)
	options := make([]map[string]any, 0, len(view.Options))
	for _, opt := range view.Options {
		options = append(options, map[string]any{
			"index":  opt.Index,
			"label":  plainText(opt.Label),
			"value":  opt.Value,
			"active": opt.Active,
		})
	}
	inputType := "text"
	if view.Kind == model.FieldKindNumber {
		inputType = "number"
	}
	return map[string]any{
		"kind":        string(view.Kind),
		"name":        name,
		"input_type":  inputType,
		"label":       plainText(view.Label),
		"placeholder": plainText(view.Placeholder),
		"required":    view.Required,
		"multiple":    view.Multiple,
		"layout":      string(view.Layout),
		"alignment":   string(view.Alignment),
		"text":        view.Text,
		"options":     options,
		"min":         controls.FormatNumber(view.Min),
		"max":         controls.FormatNumber(view.Max),
		"step":        controls.FormatNumber(view.Step),
		"position":    controls.FormatNumber(view.Position),
		"output":      view.Output,
	}
}
