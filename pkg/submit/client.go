package submit

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/goliatone/go-smartforms/pkg/model"
)

// DefaultAction is the operation tag the endpoint dispatches on.
const DefaultAction = "smartforms_process_submission"

// DefaultTimeout bounds one submission round trip. WithTimeout(0) disables it.
const DefaultTimeout = 30 * time.Second

// Field names posted with every submission.
const (
	FieldAction   = "action"
	FieldNonce    = "nonce"
	FieldFormID   = "form_id"
	FieldFormData = "form_data"
)

// Submitter delivers committed answers and reports the settled outcome.
type Submitter interface {
	Submit(ctx context.Context, responses *model.ResponseMap) (Result, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, responses *model.ResponseMap) (Result, error)

func (f SubmitterFunc) Submit(ctx context.Context, responses *model.ResponseMap) (Result, error) {
	return f(ctx, responses)
}

// TransportError reports a submission that never settled: the request failed
// or the body was not a response envelope.
type TransportError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("submit: %s: status %d: %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("submit: %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient swaps the HTTP client used for the POST.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithAction overrides the action tag.
func WithAction(action string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(action); trimmed != "" {
			c.action = trimmed
		}
	}
}

// WithNonce sets the security nonce.
func WithNonce(nonce string) Option {
	return func(c *Client) {
		c.nonce = nonce
	}
}

// WithFormID sets the form identifier.
func WithFormID(id string) Option {
	return func(c *Client) {
		c.formID = id
	}
}

// WithHiddenFields posts extra fields. The fixed fields always win.
func WithHiddenFields(fields ...HiddenField) Option {
	return func(c *Client) {
		c.hidden = MergeHiddenFields(c.hidden, fields...)
	}
}

// WithTimeout bounds each request. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client posts answers to the submission endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	action   string
	nonce    string
	formID   string
	hidden   map[string]string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewClient returns a Client posting to endpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     http.DefaultClient,
		action:   DefaultAction,
		timeout:  DefaultTimeout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Submit performs exactly one POST and never retries.
func (c *Client) Submit(ctx context.Context, responses *model.ResponseMap) (Result, error) {
	form, err := c.encode(responses)
	if err != nil {
		return Result{}, err
	}

	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Result{}, &TransportError{Endpoint: c.endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("submission request failed", "endpoint", c.endpoint, "error", err)
		return Result{}, &TransportError{Endpoint: c.endpoint, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, &TransportError{Endpoint: c.endpoint, StatusCode: resp.StatusCode, Err: err}
	}
	result, err := decodeResult(bytes.TrimSpace(body))
	if err != nil {
		c.logger.Error("submission response undecodable",
			"endpoint", c.endpoint,
			"status", resp.StatusCode,
			"error", err,
		)
		return Result{}, &TransportError{Endpoint: c.endpoint, StatusCode: resp.StatusCode, Err: err}
	}
	c.logger.Debug("submission settled",
		"endpoint", c.endpoint,
		"status", resp.StatusCode,
		"success", result.Success,
		"elapsed", time.Since(started),
	)
	return result, nil
}

func (c *Client) encode(responses *model.ResponseMap) (url.Values, error) {
	payload, err := sonic.Marshal(responses)
	if err != nil {
		return nil, fmt.Errorf("submit: encode answers: %w", err)
	}
	form := url.Values{}
	for _, field := range SortedHiddenFields(c.hidden) {
		form.Set(field.Name, field.Value)
	}
	form.Set(FieldAction, c.action)
	form.Set(FieldNonce, c.nonce)
	form.Set(FieldFormID, c.formID)
	form.Set(FieldFormData, string(payload))
	return form, nil
}
