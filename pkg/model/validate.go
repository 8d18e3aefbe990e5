package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoFields signals a descriptor without any field; the chat flow does
	// not initialise in that case.
	ErrNoFields = errors.New("model: descriptor has no fields")
	// ErrInvalidField wraps per-field descriptor problems.
	ErrInvalidField = errors.New("model: invalid field")
)

// FieldError pinpoints a descriptor problem by ordinal.
type FieldError struct {
	Index   int
	Key     string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("model: field %d (%s): %s", e.Index, e.Key, e.Message)
}

func (e FieldError) Unwrap() error {
	return ErrInvalidField
}

// Validate checks the descriptor is usable by the chat flow. All problems are
// reported together.
func (d FormDescriptor) Validate() error {
	if len(d.Fields) == 0 {
		return ErrNoFields
	}

	var errs []error
	seen := make(map[string]int, len(d.Fields))
	for i, field := range d.Fields {
		key := field.Key(i)
		fail := func(format string, args ...any) {
			errs = append(errs, FieldError{Index: i, Key: key, Message: fmt.Sprintf(format, args...)})
		}

		if !field.Type.Valid() {
			fail("unknown type %q", string(field.Type))
			continue
		}
		if prev, dup := seen[key]; dup {
			fail("duplicate key, first used by field %d", prev)
		} else {
			seen[key] = i
		}
		if field.Type.NeedsOptions() && len(field.Options) == 0 {
			fail("%s fields require options", field.Type)
		}
		for j, opt := range field.Options {
			if strings.TrimSpace(opt.Value) == "" && strings.TrimSpace(opt.Label) == "" {
				fail("option %d has neither label nor value", j)
			}
		}
		if field.Min != nil && field.Max != nil && *field.Min > *field.Max {
			fail("min %v exceeds max %v", *field.Min, *field.Max)
		}
		if field.Step != nil && *field.Step < 0 {
			fail("step must not be negative")
		}
	}
	return errors.Join(errs...)
}
