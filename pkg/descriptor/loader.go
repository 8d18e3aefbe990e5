package descriptor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-smartforms/pkg/model"
)

// Option configures a Loader.
type Option func(*Loader)

// WithFileSystem resolves SourceFromFS names against files.
func WithFileSystem(files fs.FS) Option {
	return func(l *Loader) {
		l.fs = files
	}
}

// WithHTTPClient enables URL sources through client.
func WithHTTPClient(client *http.Client) Option {
	return func(l *Loader) {
		l.http = client
	}
}

// WithTimeout caps remote fetch durations.
func WithTimeout(timeout time.Duration) Option {
	return func(l *Loader) {
		l.timeout = timeout
	}
}

// WithOverlay merges overlay (JSON or YAML) into every loaded document before
// decoding.
func WithOverlay(overlay []byte) Option {
	return func(l *Loader) {
		l.overlay = append([]byte(nil), overlay...)
	}
}

// WithScriptSelector changes the CSS selector used for HTML pages.
func WithScriptSelector(selector string) Option {
	return func(l *Loader) {
		if selector != "" {
			l.selector = selector
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Loader fetches, decodes and validates descriptors.
type Loader struct {
	fs       fs.FS
	http     *http.Client
	timeout  time.Duration
	overlay  []byte
	selector string
	logger   *slog.Logger
}

// NewLoader returns a Loader. URL sources are disabled until an HTTP client
// is configured.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		selector: DefaultScriptSelector,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Load fetches src and returns its validated descriptor.
func (l *Loader) Load(ctx context.Context, src Source) (model.FormDescriptor, error) {
	if src == nil {
		return model.FormDescriptor{}, wrap("", errors.New("source is nil"))
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case SourceKindFile:
		data, err = loadFile(ctx, src.Location())
	case SourceKindFS:
		data, err = loadFromFS(ctx, l.fs, src.Location())
	case SourceKindURL:
		if l.http == nil {
			return model.FormDescriptor{}, wrap(src.Location(), errors.New("http support disabled"))
		}
		data, err = loadHTTP(ctx, l.http, src.Location(), l.timeout)
	case SourceKindBytes:
		if b, ok := src.(BytesSource); ok {
			data = b.Data
		} else {
			err = errors.New("bytes source carries no data")
		}
	default:
		err = fmt.Errorf("unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return model.FormDescriptor{}, wrap(src.Location(), err)
	}

	form, err := l.Parse(data, DetectFormat(src.Location(), data))
	if err != nil {
		return model.FormDescriptor{}, wrap(src.Location(), err)
	}
	l.logger.Debug("descriptor loaded",
		"source", src.Location(),
		"kind", string(src.Kind()),
		"fields", len(form.Fields),
	)
	return form, nil
}

// Parse decodes data in the given format, applies the overlay and validates
// the result.
func (l *Loader) Parse(data []byte, format Format) (model.FormDescriptor, error) {
	raw, err := l.Normalize(data, format)
	if err != nil {
		return model.FormDescriptor{}, err
	}
	return Decode(raw)
}

// Normalize converts data to the JSON document that Decode consumes, with
// the overlay merged in.
func (l *Loader) Normalize(data []byte, format Format) ([]byte, error) {
	raw, err := toJSON(data, format, l.selector)
	if err != nil {
		return nil, err
	}
	if len(l.overlay) == 0 {
		return raw, nil
	}
	overlay, err := toJSON(l.overlay, DetectFormat("", l.overlay), l.selector)
	if err != nil {
		return nil, fmt.Errorf("overlay: %w", err)
	}
	return ApplyOverlay(raw, overlay)
}

// Decode turns a JSON document into a validated descriptor.
func Decode(raw []byte) (model.FormDescriptor, error) {
	var form model.FormDescriptor
	if err := sonic.Unmarshal(raw, &form); err != nil {
		return model.FormDescriptor{}, wrap("", fmt.Errorf("decode: %w", err))
	}
	if err := form.Validate(); err != nil {
		return model.FormDescriptor{}, wrap("", err)
	}
	return form, nil
}

func toJSON(data []byte, format Format, selector string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return data, nil
	case FormatHTML:
		return extractEmbedded(data, selector)
	case FormatYAML:
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
		return sonic.Marshal(doc)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}
