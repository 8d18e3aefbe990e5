// Package testsupport holds fixture and golden-file helpers shared by the
// package tests.
package testsupport

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-smartforms/pkg/descriptor"
	"github.com/goliatone/go-smartforms/pkg/model"
)

// UpdateEnv enables golden rewrites when set to any value.
const UpdateEnv = "UPDATE_GOLDENS"

// MustLoadForm reads a canonical JSON descriptor fixture.
func MustLoadForm(t *testing.T, path string) model.FormDescriptor {
	t.Helper()

	form, err := LoadForm(path)
	if err != nil {
		t.Fatalf("load form: %v", err)
	}
	return form
}

// LoadForm reads a canonical JSON descriptor fixture without a *testing.T so
// setup code outside tests can share fixtures.
func LoadForm(path string) (model.FormDescriptor, error) {
	if path == "" {
		return model.FormDescriptor{}, errors.New("testsupport: form path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.FormDescriptor{}, fmt.Errorf("testsupport: read form: %w", err)
	}
	form, err := descriptor.Decode(data)
	if err != nil {
		return model.FormDescriptor{}, fmt.Errorf("testsupport: decode form: %w", err)
	}
	return form, nil
}

// WriteGolden writes value as indented JSON when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv(UpdateEnv) == "" {
		return
	}
	payload, err := sonic.ConfigStd.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	WriteMaybeGolden(t, path, append(payload, '\n'))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv(UpdateEnv) == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// CompareForms returns a diff string if the descriptors differ.
func CompareForms(want, got model.FormDescriptor) string {
	return cmp.Diff(want, got)
}
