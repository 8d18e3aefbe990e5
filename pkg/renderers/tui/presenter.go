package tui

import (
	"context"
	"strings"

	"github.com/goliatone/go-smartforms/pkg/chatflow"
	"github.com/goliatone/go-smartforms/pkg/controls"
	"github.com/goliatone/go-smartforms/pkg/render"
)

// Presenter renders a snapshot as a plain-text transcript.
type Presenter struct {
	theme Theme
}

var _ render.Presenter = (*Presenter)(nil)

// NewPresenter returns a text presenter using theme prefixes.
func NewPresenter(theme Theme) *Presenter {
	return &Presenter{theme: theme}
}

func (p *Presenter) Name() string {
	return "text"
}

func (p *Presenter) ContentType() string {
	return "text/plain; charset=utf-8"
}

func (p *Presenter) Present(_ context.Context, snap chatflow.Snapshot, control controls.Control) ([]byte, error) {
	var b strings.Builder
	for _, msg := range snap.Transcript {
		prefix := p.theme.BotPrefix
		if msg.Role == chatflow.RoleUser {
			prefix = p.theme.UserPrefix
		}
		b.WriteString(prefix)
		b.WriteString(msg.Text)
		b.WriteByte('\n')
	}
	if !snap.InputEnabled() {
		return []byte(b.String()), nil
	}

	if snap.ErrorActive {
		b.WriteString(p.theme.ErrorPrefix)
	}
	b.WriteString(snap.HelpText)
	b.WriteByte('\n')

	if control == nil {
		return []byte(b.String()), nil
	}
	view := controls.Describe(control)
	for _, opt := range view.Options {
		mark := "[ ]"
		if opt.Active {
			mark = "[x]"
		}
		b.WriteString("  ")
		b.WriteString(mark)
		b.WriteByte(' ')
		b.WriteString(opt.Label)
		b.WriteByte('\n')
	}
	if view.Output != "" {
		b.WriteString("  = ")
		b.WriteString(view.Output)
		b.WriteByte('\n')
	}
	return []byte(b.String()), nil
}
