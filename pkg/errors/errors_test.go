package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidReference, "bad reference: %s", "@1.0")

	if err.Code != ErrCodeInvalidReference {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidReference)
	}

	if err.Message != "bad reference: @1.0" {
		t.Errorf("Message = %v, want %v", err.Message, "bad reference: @1.0")
	}

	expected := "INVALID_REFERENCE: bad reference: @1.0"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeMetadataFetch, cause, "fetch jquery")

	if err.Code != ErrCodeMetadataFetch {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeMetadataFetch)
	}
	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	expected := "METADATA_FETCH: fetch jquery: connection refused"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidReference, "test"),
			code:     ErrCodeInvalidReference,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidReference, "test"),
			code:     ErrCodeNetwork,
			expected: false,
		},
		{
			name:     "outer code",
			err:      Wrap(ErrCodeMetadataFetch, New(ErrCodePackageNotFound, "inner"), "outer"),
			code:     ErrCodeMetadataFetch,
			expected: true,
		},
		{
			name:     "inner code",
			err:      Wrap(ErrCodeMetadataFetch, New(ErrCodePackageNotFound, "inner"), "outer"),
			code:     ErrCodePackageNotFound,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("add: %w", New(ErrCodeInvalidNode, "missing")),
			code:     ErrCodeInvalidNode,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{"Error type", New(ErrCodeInvalidPackage, "test"), ErrCodeInvalidPackage},
		{"outermost wins", Wrap(ErrCodeMetadataFetch, New(ErrCodeNotFound, "x"), "y"), ErrCodeMetadataFetch},
		{"plain error", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"Error type", New(ErrCodeInvalidInput, "friendly message"), "friendly message"},
		{"plain error", errors.New("plain error"), "plain error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}
