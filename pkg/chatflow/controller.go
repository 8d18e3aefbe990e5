package chatflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-smartforms/pkg/controls"
	"github.com/goliatone/go-smartforms/pkg/model"
	"github.com/goliatone/go-smartforms/pkg/submit"
)

// Controller walks a descriptor field by field.
type Controller struct {
	form      model.FormDescriptor
	submitter submit.Submitter
	registry  *controls.Registry
	clock     Clock
	logger    *slog.Logger
	messages  Messages
	window    time.Duration
	sessionID string

	legacyReversion bool

	// interact serialises control mutations. It is taken before mu and never
	// while mu is held, since a control's change callback locks mu.
	interact sync.Mutex

	mu          sync.Mutex
	state       State
	index       int
	draft       model.AnswerValue
	help        string
	errorActive bool
	transcript  []Message
	responses   *model.ResponseMap
	control     controls.Control
	generation  uint64
	outcome     *Outcome
	submitErr   error
	closed      bool

	// reversion bookkeeping: token mode keeps one pending timer, legacy mode
	// keeps every timer that has not fired yet.
	reversionToken uint64
	pending        Timer
	legacyTimers   map[uint64]Timer
	nextLegacy     uint64

	subscribers map[int]func(Snapshot)
	nextSub     int
}

// New validates form and returns a controller showing its first field.
func New(form model.FormDescriptor, submitter submit.Submitter, opts ...Option) (*Controller, error) {
	if err := form.Validate(); err != nil {
		return nil, fmt.Errorf("chatflow: %w", err)
	}
	if submitter == nil {
		return nil, ErrNoSubmitter
	}

	c := &Controller{
		form:         form.Clone(),
		submitter:    submitter,
		registry:     controls.NewRegistry(),
		clock:        SystemClock(),
		logger:       slog.Default(),
		messages:     DefaultMessages(),
		window:       DefaultErrorWindow,
		responses:    model.NewResponseMap(),
		legacyTimers: make(map[uint64]Timer),
		subscribers:  make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.sessionID == "" {
		c.sessionID = uuid.NewString()
	}
	c.logger = c.logger.With("session", c.sessionID, "form", c.form.FormID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enterLocked(0); err != nil {
		return nil, err
	}
	c.logger.Debug("chat flow started", "fields", len(c.form.Fields))
	return c, nil
}

// SessionID identifies this conversation in logs and snapshots.
func (c *Controller) SessionID() string {
	return c.sessionID
}

// Form returns the descriptor being walked.
func (c *Controller) Form() model.FormDescriptor {
	return c.form.Clone()
}

// Control returns the live control for the current field.
func (c *Controller) Control() controls.Control {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.control
}

// SetDraft applies value to the current control, which updates the draft.
func (c *Controller) SetDraft(value model.AnswerValue) error {
	return c.Interact(func(ctrl controls.Control) error {
		return ctrl.Apply(value)
	})
}

// Interact runs fn against the current control. Calls are serialised per
// controller, so fn may mutate and then read the control without racing other
// back-end handlers. fn must not call SetDraft or Interact.
func (c *Controller) Interact(fn func(controls.Control) error) error {
	c.interact.Lock()
	defer c.interact.Unlock()

	c.mu.Lock()
	if err := c.acceptingLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	ctrl := c.control
	c.mu.Unlock()

	if err := fn(ctrl); err != nil {
		return fmt.Errorf("chatflow: %w", err)
	}
	return nil
}

// CanAdvance reports whether the advance action is enabled for the current
// draft. Optional fields can always advance.
func (c *Controller) CanAdvance() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.acceptingLocked() != nil {
		return false
	}
	field := c.form.Fields[c.index]
	return !field.Required || !c.draft.IsEmpty()
}

// Advance validates the draft and moves the conversation on. A failed
// required check is reported in-band through the snapshot, not as an error.
// After the last field it performs the one submission; a transport failure
// leaves the controller in Submitting and is returned.
func (c *Controller) Advance(ctx context.Context) error {
	c.mu.Lock()
	if err := c.acceptingLocked(); err != nil {
		c.mu.Unlock()
		return err
	}

	field := c.form.Fields[c.index]
	if field.Required && c.draft.IsEmpty() {
		c.showErrorLocked(field)
		c.unlockAndPublish()
		return nil
	}

	key := field.Key(c.index)
	if err := c.responses.Set(key, c.draft); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("chatflow: %w", err)
	}
	c.appendLocked(RoleUser, c.draft.Display())
	c.logger.Debug("answer committed", "key", key, "index", c.index)

	if c.index < len(c.form.Fields)-1 {
		if err := c.enterLocked(c.index + 1); err != nil {
			c.mu.Unlock()
			return err
		}
		c.unlockAndPublish()
		return nil
	}

	c.state = Submitting
	c.cancelReversionLocked()
	responses := c.responses.Clone()
	c.unlockAndPublish()

	c.logger.Info("submitting responses", "answers", responses.Len())
	result, err := c.submitter.Submit(ctx, responses)

	c.mu.Lock()
	if err != nil {
		c.submitErr = err
		c.logger.Error("submission did not settle", "error", err)
		c.unlockAndPublish()
		return fmt.Errorf("chatflow: submit: %w", err)
	}
	c.completeLocked(result)
	c.unlockAndPublish()
	return nil
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn for every state change and returns its
// unsubscribe function. fn runs outside the controller lock.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	if fn == nil {
		return func() {}
	}
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subscribers, id)
			c.mu.Unlock()
		})
	}
}

// Close cancels pending reversions and rejects further input.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.cancelReversionLocked()
	for id, timer := range c.legacyTimers {
		timer.Stop()
		delete(c.legacyTimers, id)
	}
}

func (c *Controller) acceptingLocked() error {
	if c.closed {
		return ErrClosed
	}
	if c.state == Submitting || c.state == Completed {
		return ErrInputDisabled
	}
	return nil
}

// enterLocked displays the field at index with a fresh control and draft.
func (c *Controller) enterLocked(index int) error {
	field := c.form.Fields[index]

	c.generation++
	gen := c.generation
	ctrl, err := c.registry.Build(field, func(value model.AnswerValue) {
		c.onControlChange(gen, value)
	})
	if err != nil {
		return fmt.Errorf("chatflow: field %d: %w", index, err)
	}

	if !c.legacyReversion {
		c.cancelReversionLocked()
	}
	c.index = index
	c.state = AwaitingInput
	c.control = ctrl
	c.draft = field.EmptyAnswer()
	c.errorActive = false
	c.help = c.helpFor(field)
	c.appendLocked(RoleBot, field.Label)
	return nil
}

func (c *Controller) onControlChange(gen uint64, value model.AnswerValue) {
	c.mu.Lock()
	if gen != c.generation || c.acceptingLocked() != nil {
		c.mu.Unlock()
		return
	}
	c.draft = value
	c.unlockAndPublish()
}

func (c *Controller) showErrorLocked(field model.FieldDescriptor) {
	message := strings.TrimSpace(field.RequiredMessage)
	if message == "" {
		message = fmt.Sprintf(c.messages.RequiredFormat, field.Label)
	}
	c.state = ShowingError
	c.errorActive = true
	c.help = message
	c.logger.Debug("required field left empty", "index", c.index)

	if c.legacyReversion {
		original := c.helpFor(field)
		c.nextLegacy++
		id := c.nextLegacy
		c.legacyTimers[id] = c.clock.AfterFunc(c.window, func() {
			c.revertLegacy(id, original)
		})
		return
	}

	c.cancelReversionLocked()
	token := c.reversionToken
	c.pending = c.clock.AfterFunc(c.window, func() {
		c.revert(token)
	})
}

// cancelReversionLocked invalidates the outstanding reversion token.
func (c *Controller) cancelReversionLocked() {
	c.reversionToken++
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
}

func (c *Controller) revert(token uint64) {
	c.mu.Lock()
	if c.closed || token != c.reversionToken {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	c.help = c.helpFor(c.form.Fields[c.index])
	c.errorActive = false
	if c.state == ShowingError {
		c.state = AwaitingInput
	}
	c.unlockAndPublish()
}

func (c *Controller) revertLegacy(id uint64, original string) {
	c.mu.Lock()
	delete(c.legacyTimers, id)
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.help = original
	c.errorActive = false
	if c.state == ShowingError {
		c.state = AwaitingInput
	}
	c.unlockAndPublish()
}

func (c *Controller) completeLocked(result submit.Result) {
	text := result.Message
	if !result.Success && strings.TrimSpace(text) == "" {
		text = c.messages.GenericFailure
	}
	c.state = Completed
	c.errorActive = false
	c.outcome = &Outcome{Success: result.Success, Message: text}
	c.transcript = []Message{{Role: RoleBot, Text: text, At: c.clock.Now()}}
	c.control = nil
	c.logger.Info("submission settled", "success", result.Success)
}

func (c *Controller) helpFor(field model.FieldDescriptor) string {
	if help := strings.TrimSpace(field.HelpText); help != "" {
		return field.HelpText
	}
	return c.messages.DefaultHelp
}

func (c *Controller) appendLocked(role Role, text string) {
	c.transcript = append(c.transcript, Message{Role: role, Text: text, At: c.clock.Now()})
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		SessionID:   c.sessionID,
		FormID:      c.form.FormID,
		State:       c.state,
		Index:       c.index,
		FieldCount:  len(c.form.Fields),
		Field:       c.form.Fields[c.index].Clone(),
		Draft:       c.draft,
		HelpText:    c.help,
		ErrorActive: c.errorActive,
		Transcript:  append([]Message(nil), c.transcript...),
		Responses:   c.responses.Clone(),
		SubmitErr:   c.submitErr,
	}
	if c.outcome != nil {
		outcome := *c.outcome
		snap.Outcome = &outcome
	}
	return snap
}

// unlockAndPublish releases the lock and notifies subscribers with the state
// as of the release.
func (c *Controller) unlockAndPublish() {
	snap := c.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	c.mu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}
