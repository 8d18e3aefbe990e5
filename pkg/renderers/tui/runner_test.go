package tui

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-smartforms/pkg/chatflow"
	"github.com/goliatone/go-smartforms/pkg/model"
	"github.com/goliatone/go-smartforms/pkg/submit"
)

type stubDriver struct {
	inputs       []string
	selects      []int
	multiSelects [][]int
	textAreas    []string
	infos        []string
	inputCfgs    []InputConfig
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.inputCfgs = append(s.inputCfgs, cfg)
	if len(s.inputs) == 0 {
		return "", errors.New("unexpected Input")
	}
	out := s.inputs[0]
	s.inputs = s.inputs[1:]
	return out, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if len(s.selects) == 0 {
		return 0, errors.New("unexpected Select")
	}
	out := s.selects[0]
	s.selects = s.selects[1:]
	return out, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, _ SelectConfig) ([]int, error) {
	if len(s.multiSelects) == 0 {
		return nil, errors.New("unexpected MultiSelect")
	}
	out := s.multiSelects[0]
	s.multiSelects = s.multiSelects[1:]
	return out, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if len(s.textAreas) == 0 {
		return "", errors.New("unexpected TextArea")
	}
	out := s.textAreas[0]
	s.textAreas = s.textAreas[1:]
	return out, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infos = append(s.infos, msg)
	return nil
}

type recordingSubmitter struct {
	mu        sync.Mutex
	responses map[string]any
	result    submit.Result
	err       error
}

func (r *recordingSubmitter) Submit(_ context.Context, responses *model.ResponseMap) (submit.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses = responses.Map()
	return r.result, r.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newController(t *testing.T, form model.FormDescriptor, sub submit.Submitter) *chatflow.Controller {
	t.Helper()
	ctrl, err := chatflow.New(form, sub, chatflow.WithLogger(quietLogger()), chatflow.WithSessionID("tui-test"))
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	t.Cleanup(ctrl.Close)
	return ctrl
}

func TestRunner_DrivesEveryKind(t *testing.T) {
	form := model.FormDescriptor{
		FormID: "kinds",
		Fields: []model.FieldDescriptor{
			{ID: "name", Type: model.FieldKindText, Label: "Name?"},
			{ID: "age", Type: model.FieldKindNumber, Label: "Age?"},
			{ID: "bio", Type: model.FieldKindTextarea, Label: "Bio?"},
			{ID: "plan", Type: model.FieldKindRadio, Label: "Plan?", Options: []model.Option{{Label: "Free", Value: "free"}, {Label: "Pro", Value: "pro"}}},
			{ID: "tags", Type: model.FieldKindCheckbox, Label: "Tags?", Options: []model.Option{{Label: "A", Value: "a"}, {Label: "B", Value: "b"}, {Label: "C", Value: "c"}}},
			{ID: "size", Type: model.FieldKindButtons, Label: "Size?", Options: []model.Option{{Label: "S", Value: "s"}, {Label: "L", Value: "l"}}},
			{ID: "budget", Type: model.FieldKindSlider, Label: "Budget?", Min: model.Float(0), Max: model.Float(200)},
		},
	}
	sub := &recordingSubmitter{result: submit.Result{Success: true, Message: "Thanks!"}}
	ctrl := newController(t, form, sub)
	driver := &stubDriver{
		inputs:       []string{"Ada", "36", "150"},
		textAreas:    []string{"Mathematician"},
		selects:      []int{1, 0},
		multiSelects: [][]int{{2, 0}},
	}

	snap, err := New(WithPromptDriver(driver), WithLogger(quietLogger())).Run(context.Background(), ctrl)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if snap.State != chatflow.Completed {
		t.Fatalf("expected Completed, got %s", snap.State)
	}

	want := map[string]any{
		"name":   "Ada",
		"age":    "36",
		"bio":    "Mathematician",
		"plan":   "pro",
		"tags":   []string{"a", "c"},
		"size":   "s",
		"budget": "150",
	}
	if diff := cmp.Diff(want, sub.responses); diff != "" {
		t.Fatalf("responses mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"bot> Thanks!"}, driver.infos); diff != "" {
		t.Fatalf("infos mismatch (-want +got):\n%s", diff)
	}
	if got := driver.inputCfgs[2].Default; got != "100" {
		t.Fatalf("slider default prompt = %q, want 100", got)
	}
}

func TestRunner_ReportsRequiredErrorAndRetries(t *testing.T) {
	form := model.FormDescriptor{
		FormID: "required",
		Fields: []model.FieldDescriptor{
			{ID: "email", Type: model.FieldKindText, Label: "Email?", Required: true},
		},
	}
	sub := &recordingSubmitter{result: submit.Result{Success: true, Message: "Done"}}
	ctrl := newController(t, form, sub)
	driver := &stubDriver{inputs: []string{"", "ada@example.com"}}

	if _, err := New(WithPromptDriver(driver), WithLogger(quietLogger())).Run(context.Background(), ctrl); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(driver.infos) != 2 {
		t.Fatalf("expected error line and final line, got %v", driver.infos)
	}
	if !strings.HasPrefix(driver.infos[0], "! ") || !strings.Contains(driver.infos[0], "required") {
		t.Fatalf("unexpected error line %q", driver.infos[0])
	}
	if got := sub.responses["email"]; got != "ada@example.com" {
		t.Fatalf("email = %v", got)
	}
}

func TestRunner_ReturnsTransportFailure(t *testing.T) {
	form := model.FormDescriptor{
		FormID: "fail",
		Fields: []model.FieldDescriptor{{ID: "name", Type: model.FieldKindText, Label: "Name?"}},
	}
	boom := errors.New("connection refused")
	ctrl := newController(t, form, &recordingSubmitter{err: boom})
	driver := &stubDriver{inputs: []string{"Ada"}}

	snap, err := New(WithPromptDriver(driver), WithLogger(quietLogger())).Run(context.Background(), ctrl)
	if !errors.Is(err, boom) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if snap.State != chatflow.Submitting {
		t.Fatalf("expected Submitting, got %s", snap.State)
	}
}

func TestRunner_PropagatesAbort(t *testing.T) {
	form := model.FormDescriptor{
		FormID: "abort",
		Fields: []model.FieldDescriptor{{ID: "name", Type: model.FieldKindText, Label: "Name?"}},
	}
	ctrl := newController(t, form, &recordingSubmitter{})
	driver := &abortingDriver{}

	_, err := New(WithPromptDriver(driver), WithLogger(quietLogger())).Run(context.Background(), ctrl)
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

type abortingDriver struct{ stubDriver }

func (abortingDriver) Input(context.Context, InputConfig) (string, error) {
	return "", ErrAborted
}

func TestNumberValidator(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		required bool
		input    string
		wantErr  bool
	}{
		{name: "integer", input: "42"},
		{name: "decimal", input: "2.5"},
		{name: "blank optional", input: "  "},
		{name: "blank required", input: "", required: true, wantErr: true},
		{name: "words", input: "forty", wantErr: true},
		{name: "not a number", input: "NaN", wantErr: true},
		{name: "infinite", input: "-Inf", wantErr: true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := numberValidator(tc.required)(tc.input)
			if (err != nil) != tc.wantErr {
				t.Fatalf("numberValidator(%q) err = %v, wantErr %v", tc.input, err, tc.wantErr)
			}
		})
	}
}

func TestPresenter_RendersTranscriptAndOptions(t *testing.T) {
	form := model.FormDescriptor{
		FormID: "present",
		Fields: []model.FieldDescriptor{
			{ID: "size", Type: model.FieldKindButtons, Label: "Size?", HelpText: "Pick one.", Options: []model.Option{{Label: "S", Value: "s"}, {Label: "L", Value: "l"}}},
		},
	}
	ctrl := newController(t, form, &recordingSubmitter{})
	if err := ctrl.SetDraft(model.StringAnswer("l")); err != nil {
		t.Fatalf("set draft: %v", err)
	}

	out, err := NewPresenter(DefaultTheme()).Present(context.Background(), ctrl.Snapshot(), ctrl.Control())
	if err != nil {
		t.Fatalf("present: %v", err)
	}
	want := "bot> Size?\nPick one.\n  [ ] S\n  [x] L\n"
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestSurveyDriver_InfoWritesLine(t *testing.T) {
	var buf bytes.Buffer
	if err := NewSurveyDriver(&buf).Info(context.Background(), "hello"); err != nil {
		t.Fatalf("info: %v", err)
	}
	if got := buf.String(); got != "hello\n" {
		t.Fatalf("info wrote %q", got)
	}
}
