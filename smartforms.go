// Package smartforms is the entry point for embedding chat flows: load a form
// descriptor, start a controller, and render its current step.
package smartforms

import (
	"context"
	"io/fs"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-smartforms/pkg/chatflow"
	"github.com/goliatone/go-smartforms/pkg/descriptor"
	"github.com/goliatone/go-smartforms/pkg/model"
	"github.com/goliatone/go-smartforms/pkg/render"
	"github.com/goliatone/go-smartforms/pkg/renderers/html"
	"github.com/goliatone/go-smartforms/pkg/renderers/tui"
	"github.com/goliatone/go-smartforms/pkg/submit"
)

// Form aliases the descriptor type for callers that only import this package.
type Form = model.FormDescriptor

// NewLoader returns a descriptor loader.
func NewLoader(options ...descriptor.Option) *descriptor.Loader {
	return descriptor.NewLoader(options...)
}

// LoadForm reads and validates a descriptor from src.
func LoadForm(ctx context.Context, src descriptor.Source, options ...descriptor.Option) (Form, error) {
	return descriptor.NewLoader(options...).Load(ctx, src)
}

// NewClient returns the submission client posting to endpoint.
func NewClient(endpoint string, options ...submit.Option) *submit.Client {
	return submit.NewClient(endpoint, options...)
}

// Start begins a conversation over form, delivering answers to submitter.
func Start(form Form, submitter submit.Submitter, options ...chatflow.Option) (*chatflow.Controller, error) {
	return chatflow.New(form, submitter, options...)
}

// NewPresenterRegistry returns a registry holding the html and text
// presenters.
func NewPresenterRegistry(htmlOptions ...html.Option) (*render.Registry, error) {
	registry := render.NewRegistry()
	htmlPresenter, err := html.New(htmlOptions...)
	if err != nil {
		return nil, err
	}
	if err := registry.Register(htmlPresenter); err != nil {
		return nil, err
	}
	if err := registry.Register(tui.NewPresenter(tui.DefaultTheme())); err != nil {
		return nil, err
	}
	return registry, nil
}

// RenderHTML renders the controller's current step with the html presenter.
func RenderHTML(ctx context.Context, ctrl *chatflow.Controller, options ...html.Option) ([]byte, error) {
	presenter, err := html.New(options...)
	if err != nil {
		return nil, err
	}
	return render.PresentController(ctx, presenter, ctrl)
}

// WithThemeSelector forwards a go-theme selector to the html presenter.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) html.Option {
	return html.WithThemeSelector(selector, name, variant)
}

// TemplatesFS exposes the built-in chat templates so callers can extend them.
func TemplatesFS() fs.FS {
	return html.TemplatesFS()
}

// AssetsFS exposes the chat stylesheet.
//
// Typical mount:
//
//	mux.Handle("/smartforms/",
//	  http.StripPrefix("/smartforms/",
//	    http.FileServerFS(smartforms.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return html.AssetsFS()
}
