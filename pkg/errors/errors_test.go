// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and code lookups

package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/arthur-debert/stgcore/pkg/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "unknown_type_error",
			code:    errors.ErrUnknownType,
			message: "type Mesh is not registered",
			wantStr: "[UNKNOWN_TYPE] type Mesh is not registered",
		},
		{
			name:    "cyclic_dependency_error",
			code:    errors.ErrCyclicDependency,
			message: "A -> B -> A",
			wantStr: "[CYCLIC_DEPENDENCY] A -> B -> A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			if err.Code != tt.code {
				t.Errorf("New() code = %v, want %v", err.Code, tt.code)
			}

			if err.Details == nil {
				t.Error("New() details should be initialized")
			}

			if got := err.Error(); got != tt.wantStr {
				t.Errorf("Error() = %q, want %q", got, tt.wantStr)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	baseErr := stderrors.New("base error")

	t.Run("wrap_non_nil_error", func(t *testing.T) {
		err := errors.Wrap(baseErr, errors.ErrToolboxInit, "toolbox FEM failed")

		if err.Wrapped != baseErr {
			t.Error("Wrap() should preserve wrapped error")
		}

		wantStr := "[TOOLBOX_INIT] toolbox FEM failed: base error"
		if got := err.Error(); got != wantStr {
			t.Errorf("Error() = %q, want %q", got, wantStr)
		}
	})

	t.Run("wrap_nil_error_returns_nil", func(t *testing.T) {
		if err := errors.Wrap(nil, errors.ErrInternal, "internal error"); err != nil {
			t.Error("Wrap(nil) should return nil")
		}
		if err := errors.Wrapf(nil, errors.ErrInternal, "internal %s", "error"); err != nil {
			t.Error("Wrapf(nil) should return nil")
		}
	})
}

func TestIsErrorCode(t *testing.T) {
	inner := errors.New(errors.ErrUnresolvedReference, "g1 was never constructed")
	phase := errors.Wrap(inner, errors.ErrComponentPhase, "build of m1 failed")

	tests := []struct {
		name     string
		err      error
		code     errors.ErrorCode
		expected bool
	}{
		{"matching_code", inner, errors.ErrUnresolvedReference, true},
		{"different_code", inner, errors.ErrInternal, false},
		{"outer_code_of_chain", phase, errors.ErrComponentPhase, true},
		{"inner_code_of_chain", phase, errors.ErrUnresolvedReference, true},
		{"through_fmt_wrapper", fmt.Errorf("startup: %w", phase), errors.ErrUnresolvedReference, true},
		{"inside_join", stderrors.Join(stderrors.New("other"), phase), errors.ErrUnresolvedReference, true},
		{"standard_error", stderrors.New("standard error"), errors.ErrNotFound, false},
		{"nil_error", nil, errors.ErrNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.IsErrorCode(tt.err, tt.code); got != tt.expected {
				t.Errorf("IsErrorCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIs(t *testing.T) {
	err1 := errors.New(errors.ErrDuplicateType, "error 1")
	err2 := errors.New(errors.ErrDuplicateType, "error 2")
	err3 := errors.New(errors.ErrUnknownType, "error 3")

	if !stderrors.Is(err1, err2) {
		t.Error("errors.Is() should match on code")
	}
	if stderrors.Is(err1, err3) {
		t.Error("errors.Is() should not match different codes")
	}
}

func TestDetails(t *testing.T) {
	err := errors.New(errors.ErrDuplicateInstance, "instance exists").
		WithDetail("instance", "m1")

	if got := errors.GetErrorCode(err); got != errors.ErrDuplicateInstance {
		t.Errorf("GetErrorCode() = %v", got)
	}

	v, ok := errors.Detail(fmt.Errorf("wrapped: %w", err), "instance")
	if !ok || v != "m1" {
		t.Errorf("Detail() = %v, %v; want m1, true", v, ok)
	}

	if _, ok := errors.Detail(stderrors.New("plain"), "instance"); ok {
		t.Error("Detail() on a plain error should report false")
	}

	if got := errors.GetErrorCode(stderrors.New("plain")); got != errors.ErrUnknown {
		t.Errorf("GetErrorCode() plain = %v, want UNKNOWN", got)
	}
}
