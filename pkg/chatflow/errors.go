package chatflow

import "errors"

var (
	// ErrInputDisabled is returned when input arrives after the last field was
	// answered.
	ErrInputDisabled = errors.New("chatflow: input disabled")
	// ErrClosed is returned by operations on a closed controller.
	ErrClosed = errors.New("chatflow: controller closed")
	// ErrNoSubmitter is returned by New when no submitter is given.
	ErrNoSubmitter = errors.New("chatflow: submitter is required")
)
