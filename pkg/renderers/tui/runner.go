package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/goliatone/go-smartforms/pkg/chatflow"
	"github.com/goliatone/go-smartforms/pkg/controls"
	"github.com/goliatone/go-smartforms/pkg/model"
)

// Runner drives a chat flow controller from the terminal.
type Runner struct {
	driver PromptDriver
	out    io.Writer
	theme  Theme
	logger *slog.Logger
}

// New returns a Runner. Without WithPromptDriver it prompts through survey.
func New(options ...Option) *Runner {
	r := &Runner{
		out:    os.Stdout,
		theme:  DefaultTheme(),
		logger: slog.Default(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(r.out)
	}
	return r
}

// Run prompts for each field until the controller completes and returns the
// final snapshot. A submission that never settles is returned as an error.
func (r *Runner) Run(ctx context.Context, ctrl *chatflow.Controller) (chatflow.Snapshot, error) {
	if ctrl == nil {
		return chatflow.Snapshot{}, errors.New("tui: controller is nil")
	}
	for {
		if err := ctx.Err(); err != nil {
			return ctrl.Snapshot(), err
		}
		snap := ctrl.Snapshot()
		switch snap.State {
		case chatflow.Completed:
			if last, ok := snap.Last(); ok {
				if err := r.driver.Info(ctx, r.theme.BotPrefix+last.Text); err != nil {
					return snap, err
				}
			}
			return snap, nil
		case chatflow.Submitting:
			return snap, fmt.Errorf("tui: submission did not settle: %w", snap.SubmitErr)
		}

		control := ctrl.Control()
		value, err := r.prompt(ctx, snap, control)
		if err != nil {
			return snap, err
		}
		if !value.IsNull() {
			if err := ctrl.SetDraft(value); err != nil {
				return snap, err
			}
		}
		if err := ctrl.Advance(ctx); err != nil {
			r.logger.Error("advance failed", "session", snap.SessionID, "error", err)
			return ctrl.Snapshot(), err
		}

		after := ctrl.Snapshot()
		if after.ErrorActive && after.Index == snap.Index {
			if err := r.driver.Info(ctx, r.theme.ErrorPrefix+after.HelpText); err != nil {
				return after, err
			}
		}
	}
}

// prompt asks for the current field and returns the full answer. A null
// answer means nothing was picked and the draft stays as is.
func (r *Runner) prompt(ctx context.Context, snap chatflow.Snapshot, control controls.Control) (model.AnswerValue, error) {
	field := snap.Field
	message := field.Label
	help := snap.HelpText

	switch c := control.(type) {
	case controls.Slider:
		lo, hi, _ := c.Bounds()
		answer, err := r.driver.Input(ctx, InputConfig{
			Message:   fmt.Sprintf("%s [%s-%s]", message, controls.FormatNumber(lo), controls.FormatNumber(hi)),
			Default:   controls.FormatNumber(c.Position()),
			Help:      help,
			Validator: numberValidator(true),
		})
		if err != nil {
			return model.AnswerValue{}, err
		}
		return model.StringAnswer(strings.TrimSpace(answer)), nil

	case controls.Choices:
		labels := optionLabels(c.Options())
		if field.Shape() == model.ShapeList {
			indices, err := r.driver.MultiSelect(ctx, SelectConfig{Message: message, Options: labels, Help: help, DefaultIndex: -1})
			if err != nil {
				return model.AnswerValue{}, err
			}
			return model.ListAnswer(valuesAt(c.Options(), indices)), nil
		}
		idx, err := r.driver.Select(ctx, SelectConfig{Message: message, Options: labels, Help: help, DefaultIndex: -1})
		if err != nil {
			return model.AnswerValue{}, err
		}
		values := valuesAt(c.Options(), []int{idx})
		if len(values) == 0 {
			return model.NullAnswer(), nil
		}
		return model.StringAnswer(values[0]), nil
	}

	if field.Type == model.FieldKindTextarea {
		answer, err := r.driver.TextArea(ctx, TextAreaConfig{Message: message, Help: help})
		if err != nil {
			return model.AnswerValue{}, err
		}
		return model.StringAnswer(answer), nil
	}

	cfg := InputConfig{Message: message, Help: help}
	if field.Type == model.FieldKindNumber {
		cfg.Validator = numberValidator(false)
	}
	answer, err := r.driver.Input(ctx, cfg)
	if err != nil {
		return model.AnswerValue{}, err
	}
	return model.StringAnswer(answer), nil
}

func numberValidator(required bool) func(string) error {
	return func(raw string) error {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" && !required {
			return nil
		}
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return fmt.Errorf("%q is not a number", raw)
		}
		return nil
	}
}

func optionLabels(options []model.Option) []string {
	out := make([]string, len(options))
	for i, opt := range options {
		out[i] = opt.Label
		if out[i] == "" {
			out[i] = opt.Value
		}
	}
	return out
}

func valuesAt(options []model.Option, indices []int) []string {
	out := make([]string, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(options) {
			out = append(out, options[idx].Value)
		}
	}
	return out
}
