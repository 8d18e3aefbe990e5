package chatflow

import (
	"time"

	"github.com/goliatone/go-smartforms/pkg/model"
)

// State is the controller's position in the conversation.
type State int

const (
	// AwaitingInput waits for an answer to the field at Snapshot.Index.
	AwaitingInput State = iota
	// ShowingError is the transient validation sub-state of AwaitingInput.
	ShowingError
	// Submitting holds while the single submission is in flight, and stays
	// put when the submission never settles.
	Submitting
	// Completed is terminal.
	Completed
)

func (s State) String() string {
	switch s {
	case AwaitingInput:
		return "awaiting_input"
	case ShowingError:
		return "showing_error"
	case Submitting:
		return "submitting"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// Role tags transcript messages.
type Role string

const (
	RoleBot  Role = "bot"
	RoleUser Role = "user"
)

// Message is one transcript entry.
type Message struct {
	Role Role
	Text string
	At   time.Time
}

// Snapshot is an immutable copy of the controller state.
type Snapshot struct {
	SessionID   string
	FormID      string
	State       State
	Index       int
	FieldCount  int
	Field       model.FieldDescriptor
	Draft       model.AnswerValue
	HelpText    string
	ErrorActive bool
	Transcript  []Message
	Responses   *model.ResponseMap
	// Outcome is set once the submission settles.
	Outcome *Outcome
	// SubmitErr is the transport error of a submission that never settled.
	SubmitErr error
}

// InputEnabled reports whether the snapshot accepts further answers.
func (s Snapshot) InputEnabled() bool {
	return s.State == AwaitingInput || s.State == ShowingError
}

// Last returns the newest transcript message.
func (s Snapshot) Last() (Message, bool) {
	if len(s.Transcript) == 0 {
		return Message{}, false
	}
	return s.Transcript[len(s.Transcript)-1], true
}

// Outcome is the settled submission as shown to the user.
type Outcome struct {
	Success bool
	Message string
}
