package render

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-smartforms/pkg/chatflow"
	"github.com/goliatone/go-smartforms/pkg/controls"
	"github.com/goliatone/go-smartforms/pkg/model"
	"github.com/goliatone/go-smartforms/pkg/submit"
)

func namedPresenter(name string) Presenter {
	return PresenterFunc{
		PresenterName: name,
		Type:          "text/plain",
		Fn: func(context.Context, chatflow.Snapshot, controls.Control) ([]byte, error) {
			return []byte(name), nil
		},
	}
}

func TestRegistry_RegisterAndList(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(namedPresenter("tui"))
	reg.MustRegister(namedPresenter("html"))

	if diff := cmp.Diff([]string{"html", "tui"}, reg.List()); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
	if err := reg.Register(namedPresenter("html")); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	if err := reg.Register(namedPresenter("")); err == nil {
		t.Fatalf("expected empty name error")
	}
	if !reg.Has("tui") || reg.Has("pdf") {
		t.Fatalf("unexpected Has results")
	}

	p, err := reg.Get("html")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	out, err := p.Present(context.Background(), chatflow.Snapshot{}, nil)
	if err != nil || string(out) != "html" {
		t.Fatalf("unexpected present result %q %v", out, err)
	}
	if _, err := reg.Get("pdf"); err == nil {
		t.Fatalf("expected missing presenter error")
	}
}

type settledSubmitter struct{}

func (settledSubmitter) Submit(context.Context, *model.ResponseMap) (submit.Result, error) {
	return submit.Result{Success: true, Message: "Done."}, nil
}

func TestPresentController_CoversLiveAndCompletedSteps(t *testing.T) {
	form := model.FormDescriptor{
		FormID: "one",
		Fields: []model.FieldDescriptor{{ID: "name", Type: model.FieldKindText, Label: "Name?"}},
	}
	ctrl, err := chatflow.New(form, settledSubmitter{})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	t.Cleanup(ctrl.Close)

	describe := PresenterFunc{
		PresenterName: "state",
		Type:          "text/plain",
		Fn: func(_ context.Context, snap chatflow.Snapshot, control controls.Control) ([]byte, error) {
			return []byte(fmt.Sprintf("%s/%t", snap.State, control != nil)), nil
		},
	}

	got, err := PresentController(context.Background(), describe, ctrl)
	if err != nil {
		t.Fatalf("present live step: %v", err)
	}
	live := string(got)

	if err := ctrl.Advance(context.Background()); err != nil {
		t.Fatalf("advance: %v", err)
	}
	got, err = PresentController(context.Background(), describe, ctrl)
	if err != nil {
		t.Fatalf("present completed step: %v", err)
	}

	want := []string{chatflow.AwaitingInput.String() + "/true", chatflow.Completed.String() + "/false"}
	if diff := cmp.Diff(want, []string{live, string(got)}); diff != "" {
		t.Fatalf("presented states mismatch (-want +got):\n%s", diff)
	}
}
