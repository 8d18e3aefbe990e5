package descriptor

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-smartforms/pkg/model"
)

func TestFromOpenAPI_MapsRequestBody(t *testing.T) {
	data, err := os.ReadFile("testdata/petstore.yaml")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	form, err := FromOpenAPI(context.Background(), data, "createSignup")
	if err != nil {
		t.Fatalf("from openapi: %v", err)
	}

	type summary struct {
		ID       string
		Type     model.FieldKind
		Label    string
		Required bool
		Options  int
	}
	var got []summary
	for _, f := range form.Fields {
		got = append(got, summary{f.ID, f.Type, f.Label, f.Required, len(f.Options)})
	}
	want := []summary{
		{"email", model.FieldKindText, "Email address", true, 0},
		{"plan", model.FieldKindDropdown, "Plan", true, 2},
		{"bio", model.FieldKindTextarea, "Bio", false, 0},
		{"interests", model.FieldKindCheckbox, "Interests", false, 2},
		{"newsletter", model.FieldKindRadio, "Newsletter", false, 2},
		{"seats", model.FieldKindSlider, "Seats", false, 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	seats := form.Fields[5]
	if seats.Min == nil || *seats.Min != 1 || seats.Max == nil || *seats.Max != 50 {
		t.Fatalf("slider bounds not mapped: %+v", seats)
	}
	if form.Title != "Join the list" {
		t.Fatalf("unexpected title %q", form.Title)
	}
}

func TestFromOpenAPI_UnknownOperation(t *testing.T) {
	data, err := os.ReadFile("testdata/petstore.yaml")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	_, err = FromOpenAPI(context.Background(), data, "missing")
	if !errors.Is(err, ErrOperationNotFound) || !errors.Is(err, ErrDescriptor) {
		t.Fatalf("expected ErrOperationNotFound, got %v", err)
	}
}
