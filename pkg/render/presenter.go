package render

import (
	"context"

	"github.com/goliatone/go-smartforms/pkg/chatflow"
	"github.com/goliatone/go-smartforms/pkg/controls"
)

// Presenter renders one step of a conversation.
type Presenter interface {
	Name() string
	ContentType() string
	Present(ctx context.Context, snap chatflow.Snapshot, control controls.Control) ([]byte, error)
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc struct {
	PresenterName string
	Type          string
	Fn            func(ctx context.Context, snap chatflow.Snapshot, control controls.Control) ([]byte, error)
}

func (p PresenterFunc) Name() string        { return p.PresenterName }
func (p PresenterFunc) ContentType() string { return p.Type }

func (p PresenterFunc) Present(ctx context.Context, snap chatflow.Snapshot, control controls.Control) ([]byte, error) {
	return p.Fn(ctx, snap, control)
}

// PresentController renders the controller's current step with p. While input
// is accepted the control is read under the controller's interaction lock.
func PresentController(ctx context.Context, p Presenter, ctrl *chatflow.Controller) ([]byte, error) {
	var (
		out        []byte
		presentErr error
	)
	err := ctrl.Interact(func(control controls.Control) error {
		out, presentErr = p.Present(ctx, ctrl.Snapshot(), control)
		return nil
	})
	if err != nil {
		return p.Present(ctx, ctrl.Snapshot(), ctrl.Control())
	}
	return out, presentErr
}
