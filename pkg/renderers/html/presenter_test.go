package html

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-smartforms/pkg/chatflow"
	"github.com/goliatone/go-smartforms/pkg/controls"
	"github.com/goliatone/go-smartforms/pkg/model"
	"github.com/goliatone/go-smartforms/pkg/submit"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newController(t *testing.T, form model.FormDescriptor, result submit.Result) *chatflow.Controller {
	t.Helper()
	sub := submit.SubmitterFunc(func(context.Context, *model.ResponseMap) (submit.Result, error) {
		return result, nil
	})
	ctrl, err := chatflow.New(form, sub, chatflow.WithLogger(quietLogger()), chatflow.WithSessionID("s-1"))
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	t.Cleanup(ctrl.Close)
	return ctrl
}

func present(t *testing.T, p *Presenter, ctrl *chatflow.Controller) string {
	t.Helper()
	out, err := p.Present(context.Background(), ctrl.Snapshot(), ctrl.Control())
	if err != nil {
		t.Fatalf("present: %v", err)
	}
	return string(out)
}

func assertContains(t *testing.T, html string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(html, fragment) {
			t.Fatalf("expected output to contain %q\n%s", fragment, html)
		}
	}
}

func TestPresenter_RendersEachControlKind(t *testing.T) {
	opts := []model.Option{{Label: "Red", Value: "red"}, {Label: "Blue", Value: "blue"}}
	cases := []struct {
		field model.FieldDescriptor
		want  []string
	}{
		{model.FieldDescriptor{Type: model.FieldKindText, Label: "Name", Placeholder: "Ada"}, []string{`type="text"`, `placeholder="Ada"`}},
		{model.FieldDescriptor{Type: model.FieldKindNumber, Label: "Age"}, []string{`type="number"`}},
		{model.FieldDescriptor{Type: model.FieldKindTextarea, Label: "Bio"}, []string{`<textarea`}},
		{model.FieldDescriptor{Type: model.FieldKindDropdown, Label: "Colour", Options: opts}, []string{`<select`, `<option value="blue">Blue</option>`}},
		{model.FieldDescriptor{Type: model.FieldKindRadio, Label: "Colour", Options: opts}, []string{`type="radio"`, `value="red"`}},
		{model.FieldDescriptor{Type: model.FieldKindCheckbox, Label: "Colour", Options: opts, Layout: model.LayoutHorizontal}, []string{`type="checkbox"`, `smartforms-layout-horizontal`}},
		{model.FieldDescriptor{Type: model.FieldKindButtons, Label: "Colour", Options: opts, Multiple: true}, []string{`data-multiple="true"`, `data-value="blue"`}},
		{model.FieldDescriptor{Type: model.FieldKindSlider, Label: "Budget", Unit: "$", UnitPosition: model.UnitBefore}, []string{`type="range"`, `value="50"`, `<output class="smartforms-slider__output">$50</output>`}},
	}

	p, err := New(WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("new presenter: %v", err)
	}
	for _, tc := range cases {
		tc := tc
		t.Run(string(tc.field.Type), func(t *testing.T) {
			ctrl := newController(t, model.FormDescriptor{Fields: []model.FieldDescriptor{tc.field}}, submit.Result{})
			assertContains(t, present(t, p, ctrl), tc.want...)
		})
	}
}

func TestPresenter_TranscriptHelpAndErrorState(t *testing.T) {
	form := model.FormDescriptor{Fields: []model.FieldDescriptor{
		{ID: "name", Type: model.FieldKindText, Label: "Your <b>name</b>?", HelpText: "First name", Required: true},
		{ID: "next", Type: model.FieldKindText, Label: "Next"},
	}}
	ctrl := newController(t, form, submit.Result{})
	p, err := New(WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("new presenter: %v", err)
	}

	html := present(t, p, ctrl)
	assertContains(t, html,
		`smartforms-chat__message--bot">Your name?</li>`,
		`role="status">First name</p>`,
		`disabled`,
	)

	if err := ctrl.Advance(context.Background()); err != nil {
		t.Fatalf("advance: %v", err)
	}
	assertContains(t, present(t, p, ctrl), `smartforms-chat__help--error`, `Your name? is required.`)

	if err := ctrl.Control().(controls.TextInput).Apply(model.StringAnswer("Ada & co")); err != nil {
		t.Fatalf("apply: %v", err)
	}
	html = present(t, p, ctrl)
	if strings.Contains(html, " disabled>Send") {
		t.Fatalf("send must be enabled once the draft is filled\n%s", html)
	}
	assertContains(t, html, `value="Ada &amp; co"`)
}

func TestPresenter_CompletedMessageKeepsSafeMarkup(t *testing.T) {
	form := model.FormDescriptor{Fields: []model.FieldDescriptor{{ID: "q", Type: model.FieldKindText, Label: "Q"}}}
	ctrl := newController(t, form, submit.Result{
		Success: true,
		Message: `Thanks! <a href="https://example.com">Read more</a><script>alert(1)</script>`,
	})
	if err := ctrl.Advance(context.Background()); err != nil {
		t.Fatalf("advance: %v", err)
	}
	p, err := New(WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("new presenter: %v", err)
	}
	html := present(t, p, ctrl)
	assertContains(t, html, `href="https://example.com"`, `smartforms-chat--completed`)
	if strings.Contains(html, "<script>") || strings.Contains(html, "<form") {
		t.Fatalf("completed output must be sanitised and without input\n%s", html)
	}
}

func TestPresenter_UnsettledSubmissionShowsNotice(t *testing.T) {
	form := model.FormDescriptor{Fields: []model.FieldDescriptor{{ID: "q", Type: model.FieldKindText, Label: "Q"}}}
	sub := submit.SubmitterFunc(func(context.Context, *model.ResponseMap) (submit.Result, error) {
		return submit.Result{}, errors.New("connection refused")
	})
	ctrl, err := chatflow.New(form, sub, chatflow.WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	t.Cleanup(ctrl.Close)
	if err := ctrl.Advance(context.Background()); err == nil {
		t.Fatalf("expected transport error")
	}

	p, err := New(WithLogger(quietLogger()), WithFailureNotice("Could not send."))
	if err != nil {
		t.Fatalf("new presenter: %v", err)
	}
	html := present(t, p, ctrl)
	assertContains(t, html, `smartforms-chat--submitting`, `role="alert">Could not send.</p>`)
	if strings.Contains(html, "<form") {
		t.Fatalf("input must stay disabled while submitting\n%s", html)
	}
}

type stubSelector struct {
	selection *theme.Selection
	err       error
}

func (s stubSelector) Select(string, string, ...theme.QueryOption) (*theme.Selection, error) {
	return s.selection, s.err
}

func TestPresenter_ThemeTokensBecomeCSSVars(t *testing.T) {
	manifest := &theme.Manifest{
		Name:    "garden",
		Version: "1.0.0",
		Tokens:  map[string]string{"brand": "#0a0", "muted": "#777"},
		Assets: theme.Assets{
			Prefix: "/themes/garden/",
			Files:  map[string]string{StylesheetAssetKey: "chat.css"},
		},
		Variants: map[string]theme.Variant{
			"dark": {Tokens: map[string]string{"brand": "#050"}},
		},
	}
	selector := stubSelector{selection: &theme.Selection{Theme: "garden", Variant: "dark", Manifest: manifest}}
	p, err := New(WithThemeSelector(selector, "garden", "dark"), WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("new presenter: %v", err)
	}
	ctrl := newController(t, model.FormDescriptor{Fields: []model.FieldDescriptor{{Type: model.FieldKindText, Label: "Q"}}}, submit.Result{})
	assertContains(t, present(t, p, ctrl),
		`data-theme="garden"`,
		`style="--brand: #050; --muted: #777;"`,
		`href="/themes/garden/chat.css"`,
	)

	_, err = New(WithThemeSelector(stubSelector{err: errors.New("missing")}, "nope", ""))
	if err == nil {
		t.Fatalf("expected selector error")
	}
}
