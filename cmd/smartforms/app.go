package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"

	"github.com/goliatone/go-smartforms/internal/config"
	"github.com/goliatone/go-smartforms/pkg/descriptor"
	"github.com/goliatone/go-smartforms/pkg/model"
	"github.com/goliatone/go-smartforms/pkg/submit"
)

// app carries what the subcommands share once the root has resolved the
// configuration.
type app struct {
	lookup func(string) (string, bool)

	configPath string
	envFile    string
	descriptor string
	overlay    string
	operation  string

	cfg    *config.Config
	logger *slog.Logger
}

func newApp(lookup func(string) (string, bool)) *app {
	return &app{lookup: lookup}
}

// setup loads .env, the config file, environment overrides and flag
// overrides, in that order.
func (a *app) setup(stderr io.Writer) error {
	if err := godotenv.Load(a.envFile); err != nil {
		if a.envFile != ".env" || !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load env file: %w", err)
		}
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(a.lookup); err != nil {
		return err
	}
	if a.descriptor != "" {
		cfg.Flow.Descriptor = a.descriptor
	}
	if a.overlay != "" {
		cfg.Flow.Overlay = a.overlay
	}
	if a.operation != "" {
		cfg.Flow.OpenAPIOperation = a.operation
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := config.ParseLevel(cfg.Logging.Level)
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	return nil
}

// loadForm resolves the configured descriptor, either a descriptor document
// or an OpenAPI operation.
func (a *app) loadForm(ctx context.Context) (model.FormDescriptor, error) {
	location := strings.TrimSpace(a.cfg.Flow.Descriptor)

	if op := strings.TrimSpace(a.cfg.Flow.OpenAPIOperation); op != "" {
		if isURL(location) {
			return model.FormDescriptor{}, fmt.Errorf("openapi documents must be local files: %s", location)
		}
		data, err := os.ReadFile(location)
		if err != nil {
			return model.FormDescriptor{}, fmt.Errorf("read openapi document: %w", err)
		}
		return descriptor.FromOpenAPI(ctx, data, op)
	}

	opts := []descriptor.Option{
		descriptor.WithTimeout(a.cfg.HTTP.Timeout),
		descriptor.WithLogger(a.logger),
	}
	if path := strings.TrimSpace(a.cfg.Flow.Overlay); path != "" {
		overlay, err := os.ReadFile(path)
		if err != nil {
			return model.FormDescriptor{}, fmt.Errorf("read overlay: %w", err)
		}
		opts = append(opts, descriptor.WithOverlay(overlay))
	}

	var src descriptor.Source
	if isURL(location) {
		src = descriptor.SourceFromURL(location)
	} else {
		src = descriptor.SourceFromFile(location)
	}
	return descriptor.NewLoader(opts...).Load(ctx, src)
}

// submitter returns the endpoint client, or a dry-run submitter that prints
// the answers to out.
func (a *app) submitter(dryRun bool, out io.Writer) (submit.Submitter, error) {
	if dryRun {
		return dryRunSubmitter(out), nil
	}
	if err := a.cfg.ValidateSubmission(); err != nil {
		return nil, err
	}
	opts := append(a.cfg.SubmitOptions(), submit.WithLogger(a.logger))
	return submit.NewClient(a.cfg.Endpoint.URL, opts...), nil
}

func dryRunSubmitter(out io.Writer) submit.Submitter {
	return submit.SubmitterFunc(func(_ context.Context, responses *model.ResponseMap) (submit.Result, error) {
		data, err := sonic.Marshal(responses)
		if err != nil {
			return submit.Result{}, err
		}
		fmt.Fprintf(out, "form_data: %s\n", data)
		return submit.Result{Success: true, Message: "Dry run: answers were not sent."}, nil
	})
}

func isURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
