package submit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-smartforms/pkg/model"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClient_PostsFormEncodedAnswers(t *testing.T) {
	var got url.Values
	var contentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		got = r.PostForm
		_, _ = io.WriteString(w, `{"success":true,"data":{"message":"Thanks!"}}`)
	}))
	defer server.Close()

	responses := model.NewResponseMap()
	if err := responses.Set("name", model.StringAnswer("Ada")); err != nil {
		t.Fatalf("set: %v", err)
	}

	client := NewClient(server.URL,
		WithNonce("n0nce"),
		WithFormID("7"),
		WithHiddenFields(Hidden("locale", "en"), Hidden("action", "ignored")),
		WithLogger(quietLogger()),
	)
	result, err := client.Submit(context.Background(), responses)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if diff := cmp.Diff(Result{Success: true, Message: "Thanks!"}, result); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
	if contentType != "application/x-www-form-urlencoded" {
		t.Fatalf("unexpected content type %q", contentType)
	}
	want := url.Values{
		"action":    {DefaultAction},
		"nonce":     {"n0nce"},
		"form_id":   {"7"},
		"form_data": {`{"name":"Ada"}`},
		"locale":    {"en"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("form mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_SettledFailures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   Result
	}{
		{"string data", http.StatusOK, `{"success":false,"data":"Invalid nonce."}`, Result{Message: "Invalid nonce."}},
		{"array data", http.StatusOK, `{"success":false,"data":["Email","is invalid."]}`, Result{Message: "Email is invalid."}},
		{"non-2xx envelope", http.StatusBadRequest, `{"success":false,"data":"Bad request"}`, Result{Message: "Bad request"}},
		{"missing data", http.StatusOK, `{"success":false}`, Result{}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}))
			defer server.Close()

			result, err := NewClient(server.URL, WithLogger(quietLogger())).Submit(context.Background(), model.NewResponseMap())
			if err != nil {
				t.Fatalf("submit: %v", err)
			}
			if diff := cmp.Diff(tc.want, result); diff != "" {
				t.Fatalf("result mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClient_TransportErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>upstream down</html>")
	}))
	defer server.Close()

	_, err := NewClient(server.URL, WithLogger(quietLogger())).Submit(context.Background(), model.NewResponseMap())
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if transportErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", transportErr.StatusCode)
	}

	closed := httptest.NewServer(http.NotFoundHandler())
	endpoint := closed.URL
	closed.Close()
	_, err = NewClient(endpoint, WithLogger(quietLogger())).Submit(context.Background(), model.NewResponseMap())
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError for refused connection, got %v", err)
	}
}

func TestMergeHiddenFields_LaterWins(t *testing.T) {
	merged := MergeHiddenFields(map[string]string{" a ": "1", "": "x"}, Hidden("a", 2), Hidden("b", "3"), Hidden(" ", "y"))
	want := []HiddenField{{Name: "a", Value: "2"}, {Name: "b", Value: "3"}}
	if diff := cmp.Diff(want, SortedHiddenFields(merged)); diff != "" {
		t.Fatalf("hidden fields mismatch (-want +got):\n%s", diff)
	}
}
