package descriptor

import (
	"errors"
	"fmt"
)

// ErrDescriptor classifies every failure to produce a usable descriptor.
var ErrDescriptor = errors.New("descriptor: load failed")

// ErrNoEmbeddedDescriptor is returned when an HTML page carries no JSON
// script element with a fields list.
var ErrNoEmbeddedDescriptor = errors.New("descriptor: no embedded descriptor in page")

type loadError struct {
	location string
	err      error
}

func (e *loadError) Error() string {
	if e.location == "" {
		return fmt.Sprintf("descriptor: %v", e.err)
	}
	return fmt.Sprintf("descriptor: %s: %v", e.location, e.err)
}

func (e *loadError) Unwrap() []error {
	return []error{ErrDescriptor, e.err}
}

func wrap(location string, err error) error {
	if err == nil {
		return nil
	}
	var existing *loadError
	if errors.As(err, &existing) {
		if existing.location == "" && location != "" {
			return &loadError{location: location, err: existing.err}
		}
		return err
	}
	return &loadError{location: location, err: err}
}
