package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppErrorError(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			err:      New(CodeValidation, "query is required"),
			expected: "[VALIDATION_ERROR] query is required",
		},
		{
			name:     "with wrapped error",
			err:      Wrap(errors.New("disk full"), CodeStorage, "save failed"),
			expected: "[STORAGE_ERROR] save failed: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	originalErr := errors.New("original")
	err := StorageError("wrapped", originalErr)

	if !errors.Is(err, originalErr) {
		t.Error("expected errors.Is to find the wrapped error")
	}
}

func TestAppErrorWithContext(t *testing.T) {
	err := New(CodeNotFound, "missing").
		WithContext("key", "watchHistory").
		WithContext("attempt", 1)

	if err.Context["key"] != "watchHistory" {
		t.Errorf("expected key context, got %v", err.Context["key"])
	}
	if err.Context["attempt"] != 1 {
		t.Errorf("expected attempt context, got %v", err.Context["attempt"])
	}
}

func TestExternalServiceError(t *testing.T) {
	err := ExternalServiceError("tmdb", "request failed", errors.New("connection refused"))

	if err.Code != CodeExternalService {
		t.Errorf("expected code %s, got %s", CodeExternalService, err.Code)
	}
	if err.Context["service"] != "tmdb" {
		t.Errorf("expected service context 'tmdb', got %v", err.Context["service"])
	}
}

func TestStatusError(t *testing.T) {
	tests := []struct {
		status   int
		expected ErrorCode
	}{
		{401, CodeUnauthorized},
		{403, CodeUnauthorized},
		{404, CodeNotFound},
		{429, CodeRateLimited},
		{500, CodeExternalService},
		{503, CodeServiceUnavailable},
		{504, CodeServiceTimeout},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.status), func(t *testing.T) {
			err := StatusError("tmdb", tt.status, "")
			if err.Code != tt.expected {
				t.Errorf("expected code %s, got %s", tt.expected, err.Code)
			}
			if err.Context["status"] != tt.status {
				t.Errorf("expected status context %d, got %v", tt.status, err.Context["status"])
			}
		})
	}
}

func TestConfigError(t *testing.T) {
	if err := ConfigError("bad", nil); err.Err != nil {
		t.Error("expected no wrapped error")
	}
	if err := ConfigError("bad", errors.New("inner")); err.Err == nil {
		t.Error("expected wrapped error")
	}
}

func TestLimitError(t *testing.T) {
	err := LimitError("favorites", 999)

	if err.Code != CodeLimitReached {
		t.Errorf("expected code %s, got %s", CodeLimitReached, err.Code)
	}
	if !IsValidationError(err) {
		t.Error("limit errors should be treated as validation errors")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"timeout", New(CodeServiceTimeout, "timeout"), true},
		{"unavailable", New(CodeServiceUnavailable, "unavailable"), true},
		{"rate limited", StatusError("tmdb", 429, ""), true},
		{"storage connection", Wrap(errors.New("conn"), CodeStorageConnection, "conn"), true},
		{"validation", ValidationError("invalid"), false},
		{"plain error", errors.New("plain"), false},
		{"wrapped app error", fmt.Errorf("outer: %w", New(CodeServiceTimeout, "t")), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	if code := GetErrorCode(ParseError("bad cue", nil)); code != CodeParse {
		t.Errorf("expected %s, got %s", CodeParse, code)
	}
	if code := GetErrorCode(errors.New("plain")); code != CodeUnknown {
		t.Errorf("expected %s, got %s", CodeUnknown, code)
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(NotFoundError("subtitle", "tt0137523")) {
		t.Error("expected not found")
	}
	if IsNotFound(ValidationError("x")) {
		t.Error("validation error is not a not-found error")
	}
}
