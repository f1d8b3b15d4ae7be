package client

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		statusCode int
		class      ErrorClass
		sentinel   error
	}{
		{404, ErrorClassNotFound, ErrNotFound},
		{429, ErrorClassRateLimit, ErrRateLimited},
		{500, ErrorClassServer, ErrServer},
		{502, ErrorClassServer, ErrServer},
		{599, ErrorClassServer, ErrServer},
		{403, ErrorClassClient, ErrHTTP},
		{418, ErrorClassClient, ErrHTTP},
		{301, ErrorClassClient, ErrHTTP},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.statusCode), func(t *testing.T) {
			class, sentinel := classifyStatus(tt.statusCode)
			if class != tt.class {
				t.Errorf("class = %q, want %q", class, tt.class)
			}
			if sentinel != tt.sentinel {
				t.Errorf("sentinel = %v, want %v", sentinel, tt.sentinel)
			}
		})
	}
}

func TestAPIError_Unwrapping(t *testing.T) {
	err := &APIError{
		StatusCode: 404,
		Class:      ErrorClassNotFound,
		Endpoint:   "/pokemon/999999",
		Err:        ErrNotFound,
	}

	if !errors.Is(err, ErrNotFound) {
		t.Error("errors.Is(err, ErrNotFound) should be true")
	}

	wrapped := fmt.Errorf("fetch pokemon: %w", err)
	var apiErr *APIError
	if !errors.As(wrapped, &apiErr) {
		t.Fatal("errors.As should extract APIError through wrapping")
	}
	if apiErr.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorClass
	}{
		{"nil", nil, ""},
		{"api error", &APIError{Class: ErrorClassServer, Err: ErrServer}, ErrorClassServer},
		{"wrapped api error", fmt.Errorf("x: %w", &APIError{Class: ErrorClassRateLimit, Err: ErrRateLimited}), ErrorClassRateLimit},
		{"invalid endpoint", fmt.Errorf("%w: bad", ErrInvalidEndpoint), ErrorClassInvalidEndpoint},
		{"plain error", errors.New("boom"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.expected {
				t.Errorf("Classify() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestRecoverySuggestion(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		empty bool
	}{
		{"not found", &APIError{Class: ErrorClassNotFound, Err: ErrNotFound}, false},
		{"rate limited", &APIError{Class: ErrorClassRateLimit, Err: ErrRateLimited}, false},
		{"server", &APIError{Class: ErrorClassServer, Err: ErrServer}, false},
		{"network", &APIError{Class: ErrorClassNetwork, Err: ErrNetwork}, false},
		{"invalid endpoint", fmt.Errorf("%w: bad", ErrInvalidEndpoint), false},
		{"unclassified", errors.New("boom"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suggestion := RecoverySuggestion(tt.err)
			if tt.empty && suggestion != "" {
				t.Errorf("RecoverySuggestion() = %q, want empty", suggestion)
			}
			if !tt.empty && suggestion == "" {
				t.Error("RecoverySuggestion() should not be empty")
			}
		})
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		class    ErrorClass
		expected bool
	}{
		{ErrorClassServer, true},
		{ErrorClassRateLimit, true},
		{ErrorClassNetwork, true},
		{ErrorClassNotFound, false},
		{ErrorClassClient, false},
		{ErrorClassDecoding, false},
		{ErrorClassInvalidEndpoint, false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.class), func(t *testing.T) {
			if got := shouldRetry(tt.class); got != tt.expected {
				t.Errorf("shouldRetry(%q) = %v, want %v", tt.class, got, tt.expected)
			}
		})
	}
}
