package telegram

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/telebot.v3"

	"github.com/goliatone/go-smartforms/pkg/model"
	"github.com/goliatone/go-smartforms/pkg/submit"
)

type fakeContext struct {
	telebot.Context

	chat      *telebot.Chat
	text      string
	callback  *telebot.Callback
	sent      []string
	markups   []*telebot.ReplyMarkup
	edits     []string
	responses int
}

func (f *fakeContext) Chat() *telebot.Chat         { return f.chat }
func (f *fakeContext) Text() string                { return f.text }
func (f *fakeContext) Callback() *telebot.Callback { return f.callback }

func (f *fakeContext) Send(what interface{}, opts ...interface{}) error {
	f.sent = append(f.sent, what.(string))
	f.markups = append(f.markups, markupOf(opts))
	return nil
}

func (f *fakeContext) Edit(what interface{}, opts ...interface{}) error {
	f.edits = append(f.edits, what.(string))
	f.markups = append(f.markups, markupOf(opts))
	return nil
}

func (f *fakeContext) Respond(_ ...*telebot.CallbackResponse) error {
	f.responses++
	return nil
}

func markupOf(opts []interface{}) *telebot.ReplyMarkup {
	for _, opt := range opts {
		if m, ok := opt.(*telebot.ReplyMarkup); ok {
			return m
		}
	}
	return nil
}

func (f *fakeContext) lastSent() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

type captureSubmitter struct {
	mu        sync.Mutex
	responses map[string]any
	result    submit.Result
	err       error
}

func (c *captureSubmitter) Submit(_ context.Context, responses *model.ResponseMap) (submit.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses = responses.Map()
	return c.result, c.err
}

func testForm() model.FormDescriptor {
	return model.FormDescriptor{
		FormID: "signup",
		Fields: []model.FieldDescriptor{
			{ID: "name", Type: model.FieldKindText, Label: "What is your <b>name</b>?", Required: true},
			{ID: "plan", Type: model.FieldKindButtons, Label: "Which plan?", Required: true, Options: []model.Option{
				{Label: "Free", Value: "free"}, {Label: "Pro", Value: "pro"},
			}},
		},
	}
}

func newTestBot(t *testing.T, sub submit.Submitter) *Bot {
	t.Helper()
	b, err := NewBot(telebot.Settings{Token: "test-token", Offline: true}, testForm(), sub,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatalf("new bot: %v", err)
	}
	return b
}

func TestNewBot_RejectsMissingSubmitter(t *testing.T) {
	_, err := NewBot(telebot.Settings{Token: "x", Offline: true}, testForm(), nil)
	if err == nil {
		t.Fatalf("expected error for nil submitter")
	}
}

func TestBot_FullConversation(t *testing.T) {
	sub := &captureSubmitter{result: submit.Result{Success: true, Message: "<p>Welcome aboard!</p>"}}
	b := newTestBot(t, sub)
	chat := &telebot.Chat{ID: 42}

	start := &fakeContext{chat: chat}
	if err := b.handleStart(start); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := start.lastSent(); !strings.HasPrefix(got, "What is your name?") {
		t.Fatalf("first prompt = %q", got)
	}
	if start.markups[0] != nil {
		t.Fatalf("required text field should not carry a keyboard")
	}

	answer := &fakeContext{chat: chat, text: "Ada"}
	if err := b.handleText(answer); err != nil {
		t.Fatalf("text: %v", err)
	}
	if got := answer.lastSent(); !strings.HasPrefix(got, "Which plan?") {
		t.Fatalf("second prompt = %q", got)
	}
	if answer.markups[0] == nil || len(answer.markups[0].InlineKeyboard) != 3 {
		t.Fatalf("expected plan keyboard with two options and done, got %+v", answer.markups[0])
	}

	press := &fakeContext{chat: chat, callback: &telebot.Callback{Data: "1|opt|1"}}
	if err := b.handleCallback(press); err != nil {
		t.Fatalf("option press: %v", err)
	}
	if len(press.edits) != 1 {
		t.Fatalf("expected keyboard refresh, got %d edits", len(press.edits))
	}
	if got := press.markups[0].InlineKeyboard[1][0].Text; got != "✓ Pro" {
		t.Fatalf("active button = %q", got)
	}

	done := &fakeContext{chat: chat, callback: &telebot.Callback{Data: "1|done"}}
	if err := b.handleCallback(done); err != nil {
		t.Fatalf("done press: %v", err)
	}
	if got := done.lastSent(); got != "Welcome aboard!" {
		t.Fatalf("final message = %q", got)
	}
	if got := sub.responses; got["name"] != "Ada" || got["plan"] != "pro" {
		t.Fatalf("unexpected responses %v", got)
	}
	if _, ok := b.session(chat.ID); ok {
		t.Fatalf("session should be dropped after completion")
	}
}

func TestBot_RequiredErrorRepliesWithHelp(t *testing.T) {
	b := newTestBot(t, &captureSubmitter{})
	chat := &telebot.Chat{ID: 7}
	if err := b.handleStart(&fakeContext{chat: chat}); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := b.handleText(&fakeContext{chat: chat, text: "Ada"}); err != nil {
		t.Fatalf("text: %v", err)
	}
	done := &fakeContext{chat: chat, callback: &telebot.Callback{Data: "1|done"}}
	if err := b.handleCallback(done); err != nil {
		t.Fatalf("done: %v", err)
	}
	if got := done.lastSent(); got != "Which plan? is required." {
		t.Fatalf("error reply = %q", got)
	}
}

func TestBot_IgnoresStaleKeyboard(t *testing.T) {
	b := newTestBot(t, &captureSubmitter{})
	chat := &telebot.Chat{ID: 9}
	if err := b.handleStart(&fakeContext{chat: chat}); err != nil {
		t.Fatalf("start: %v", err)
	}

	stale := &fakeContext{chat: chat, callback: &telebot.Callback{Data: "1|opt|0"}}
	if err := b.handleCallback(stale); err != nil {
		t.Fatalf("stale press: %v", err)
	}
	if stale.responses != 1 || len(stale.edits) != 0 || len(stale.sent) != 0 {
		t.Fatalf("stale press should only be acknowledged: %+v", stale)
	}
	ctrl, _ := b.session(chat.ID)
	if got := ctrl.Snapshot().Index; got != 0 {
		t.Fatalf("index moved to %d", got)
	}
}

func TestBot_TextWithoutSession(t *testing.T) {
	b := newTestBot(t, &captureSubmitter{})
	c := &fakeContext{chat: &telebot.Chat{ID: 1}, text: "hello"}
	if err := b.handleText(c); err != nil {
		t.Fatalf("text: %v", err)
	}
	if got := c.lastSent(); got != "Send /start to begin." {
		t.Fatalf("reply = %q", got)
	}
}

func TestBot_TransportFailureKeepsSession(t *testing.T) {
	b := newTestBot(t, &captureSubmitter{err: errors.New("dial tcp: refused")})
	chat := &telebot.Chat{ID: 11}
	if err := b.handleStart(&fakeContext{chat: chat}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := b.handleText(&fakeContext{chat: chat, text: "Ada"}); err != nil {
		t.Fatalf("text: %v", err)
	}
	if err := b.handleText(&fakeContext{chat: chat, text: "free"}); err != nil {
		t.Fatalf("typed option: %v", err)
	}
	if _, ok := b.session(chat.ID); !ok {
		t.Fatalf("session should survive an unsettled submission")
	}

	later := &fakeContext{chat: chat, text: "hello?"}
	if err := b.handleText(later); err != nil {
		t.Fatalf("text while submitting: %v", err)
	}
	if got := later.lastSent(); got != unsentReply {
		t.Fatalf("reply while submitting = %q", got)
	}
}

func TestBot_ConcurrentPressesKeepKeyboardConsistent(t *testing.T) {
	form := model.FormDescriptor{
		FormID: "extras",
		Fields: []model.FieldDescriptor{{ID: "extras", Type: model.FieldKindCheckbox, Label: "Extras?", Options: []model.Option{
			{Label: "Wifi", Value: "wifi"}, {Label: "Breakfast", Value: "breakfast"}, {Label: "Parking", Value: "parking"},
		}}},
	}
	b, err := NewBot(telebot.Settings{Token: "test-token", Offline: true}, form, &captureSubmitter{},
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatalf("new bot: %v", err)
	}
	chat := &telebot.Chat{ID: 21}
	if err := b.handleStart(&fakeContext{chat: chat}); err != nil {
		t.Fatalf("start: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(option int) {
			defer wg.Done()
			press := &fakeContext{chat: chat, callback: &telebot.Callback{Data: strings.Join(callbackData{Index: 0, Action: ActionOption, Option: option}.encode(), "|")}}
			if err := b.handleCallback(press); err != nil {
				t.Errorf("press %d: %v", option, err)
			}
		}(i % 3)
	}
	wg.Wait()

	ctrl, _ := b.session(chat.ID)
	// options 0 and 1 are pressed three times each, option 2 twice.
	want := []string{"wifi", "breakfast"}
	if diff := cmp.Diff(want, ctrl.Snapshot().Draft.List()); diff != "" {
		t.Fatalf("draft mismatch (-want +got):\n%s", diff)
	}
}
