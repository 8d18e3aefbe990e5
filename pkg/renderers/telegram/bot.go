package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"gopkg.in/telebot.v3"

	"github.com/goliatone/go-smartforms/pkg/chatflow"
	"github.com/goliatone/go-smartforms/pkg/controls"
	"github.com/goliatone/go-smartforms/pkg/model"
	"github.com/goliatone/go-smartforms/pkg/submit"
)

// DefaultPollTimeout is the long-polling timeout used when none is configured.
const DefaultPollTimeout = 10 * time.Second

const unsentReply = "Sorry, your answers could not be sent. Please try again later."

// Bot serves one form to every chat that sends /start.
type Bot struct {
	api       *telebot.Bot
	form      model.FormDescriptor
	submitter submit.Submitter
	ctrlOpts  []chatflow.Option
	labels    Labels
	logger    *slog.Logger
	policy    *bluemonday.Policy

	mu       sync.Mutex
	sessions map[int64]*chatflow.Controller
}

// Option configures a Bot.
type Option func(*Bot)

// WithControllerOptions passes options to every controller the bot creates.
func WithControllerOptions(opts ...chatflow.Option) Option {
	return func(b *Bot) {
		b.ctrlOpts = append(b.ctrlOpts, opts...)
	}
}

// WithLabels overrides keyboard captions.
func WithLabels(labels Labels) Option {
	return func(b *Bot) {
		b.labels = labels
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBot connects to the Bot API with settings and registers the handlers.
// Use Settings.Offline in tests to skip the network handshake.
func NewBot(settings telebot.Settings, form model.FormDescriptor, submitter submit.Submitter, opts ...Option) (*Bot, error) {
	if err := form.Validate(); err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	if submitter == nil {
		return nil, chatflow.ErrNoSubmitter
	}
	if settings.Poller == nil {
		settings.Poller = &telebot.LongPoller{Timeout: DefaultPollTimeout}
	}

	api, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("telegram: create bot: %w", err)
	}

	b := &Bot{
		api:       api,
		form:      form.Clone(),
		submitter: submitter,
		labels:    DefaultLabels(),
		logger:    slog.Default(),
		policy:    bluemonday.StrictPolicy(),
		sessions:  make(map[int64]*chatflow.Controller),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	api.Handle("/start", b.handleStart)
	api.Handle("/cancel", b.handleCancel)
	api.Handle(&telebot.Btn{Unique: CallbackUnique}, b.handleCallback)
	api.Handle(telebot.OnText, b.handleText)
	return b, nil
}

// Run polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		b.api.Start()
	}()
	b.logger.Info("telegram bot polling", "form", b.form.FormID)

	<-ctx.Done()
	b.api.Stop()
	<-done

	b.mu.Lock()
	for chatID, ctrl := range b.sessions {
		ctrl.Close()
		delete(b.sessions, chatID)
	}
	b.mu.Unlock()
	return ctx.Err()
}

func (b *Bot) handleStart(c telebot.Context) error {
	chatID := c.Chat().ID
	ctrl, err := chatflow.New(b.form, b.submitter, append([]chatflow.Option{
		chatflow.WithLogger(b.logger),
		chatflow.WithSessionID(fmt.Sprintf("telegram-%d", chatID)),
	}, b.ctrlOpts...)...)
	if err != nil {
		return err
	}

	b.mu.Lock()
	if previous, ok := b.sessions[chatID]; ok {
		previous.Close()
	}
	b.sessions[chatID] = ctrl
	b.mu.Unlock()

	return b.sendPrompt(c, ctrl)
}

func (b *Bot) handleCancel(c telebot.Context) error {
	b.drop(c.Chat().ID)
	return c.Send("Cancelled. Send /start to begin again.")
}

func (b *Bot) handleText(c telebot.Context) error {
	ctrl, ok := b.session(c.Chat().ID)
	if !ok {
		return c.Send("Send /start to begin.")
	}

	text := c.Text()
	err := ctrl.Interact(func(control controls.Control) error {
		return control.Apply(typedAnswer(control, text))
	})
	switch {
	case errors.Is(err, controls.ErrValueShape):
		return c.Send(ctrl.Snapshot().HelpText)
	case errors.Is(err, chatflow.ErrInputDisabled):
		return c.Send(unsentReply)
	case err != nil:
		return err
	}
	return b.advance(c, ctrl)
}

func (b *Bot) handleCallback(c telebot.Context) error {
	ctrl, ok := b.session(c.Chat().ID)
	if !ok {
		return c.Respond(&telebot.CallbackResponse{Text: "Send /start to begin."})
	}

	press, err := parseCallback(c.Callback().Data)
	if err != nil {
		b.logger.Warn("ignoring callback", "error", err)
		return c.Respond()
	}
	snap := ctrl.Snapshot()
	if !snap.InputEnabled() || press.Index != snap.Index {
		return c.Respond(&telebot.CallbackResponse{Text: "That question is closed."})
	}

	if press.Action == ActionDone {
		if err := c.Respond(); err != nil {
			return err
		}
		return b.advance(c, ctrl)
	}

	var markup *telebot.ReplyMarkup
	err = ctrl.Interact(func(control controls.Control) error {
		if err := applyPress(control, press); err != nil {
			return err
		}
		snap = ctrl.Snapshot()
		markup = buildKeyboard(snap, control, b.labels)
		return nil
	})
	if err != nil {
		b.logger.Warn("callback rejected", "error", err)
		return c.Respond()
	}
	if err := c.Respond(); err != nil {
		return err
	}
	if markup != nil {
		return c.Edit(b.promptText(snap), markup)
	}
	return nil
}

// advance commits the draft and replies with whatever the conversation shows
// next: the error help, the next question, or the outcome.
func (b *Bot) advance(c telebot.Context, ctrl *chatflow.Controller) error {
	before := ctrl.Snapshot().Index
	if err := ctrl.Advance(context.Background()); err != nil {
		b.logger.Error("advance failed", "session", ctrl.SessionID(), "error", err)
		return c.Send(unsentReply)
	}

	snap := ctrl.Snapshot()
	switch {
	case snap.State == chatflow.Completed:
		b.drop(c.Chat().ID)
		last, _ := snap.Last()
		return c.Send(b.plain(last.Text))
	case snap.ErrorActive && snap.Index == before:
		return c.Send(b.plain(snap.HelpText))
	default:
		return b.sendPrompt(c, ctrl)
	}
}

func (b *Bot) sendPrompt(c telebot.Context, ctrl *chatflow.Controller) error {
	var (
		snap   chatflow.Snapshot
		markup *telebot.ReplyMarkup
	)
	if err := ctrl.Interact(func(control controls.Control) error {
		snap = ctrl.Snapshot()
		markup = buildKeyboard(snap, control, b.labels)
		return nil
	}); err != nil {
		return err
	}
	text := b.promptText(snap)
	if markup != nil {
		return c.Send(text, markup)
	}
	return c.Send(text)
}

func (b *Bot) promptText(snap chatflow.Snapshot) string {
	label := b.plain(snap.Field.Label)
	help := b.plain(snap.HelpText)
	if help == "" {
		return label
	}
	return label + "\n" + help
}

func (b *Bot) plain(text string) string {
	return strings.TrimSpace(html.UnescapeString(b.policy.Sanitize(text)))
}

func (b *Bot) session(chatID int64) (*chatflow.Controller, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ctrl, ok := b.sessions[chatID]
	return ctrl, ok
}

func (b *Bot) drop(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ctrl, ok := b.sessions[chatID]; ok {
		ctrl.Close()
		delete(b.sessions, chatID)
	}
}

// typedAnswer maps a typed message onto the current control. Option fields
// accept an option label or value; list fields accept a comma separated list.
func typedAnswer(control controls.Control, text string) model.AnswerValue {
	text = strings.TrimSpace(text)
	choices, ok := control.(controls.Choices)
	if !ok {
		return model.StringAnswer(text)
	}

	lookup := func(token string) string {
		token = strings.TrimSpace(token)
		for _, opt := range choices.Options() {
			if strings.EqualFold(opt.Label, token) || strings.EqualFold(opt.Value, token) {
				return opt.Value
			}
		}
		return token
	}

	if control.Field().Shape() == model.ShapeList {
		var values []string
		for _, token := range strings.Split(text, ",") {
			if strings.TrimSpace(token) != "" {
				values = append(values, lookup(token))
			}
		}
		return model.ListAnswer(values)
	}
	return model.StringAnswer(lookup(text))
}
