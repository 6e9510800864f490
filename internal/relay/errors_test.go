package relay

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindUpstream, "upstream"},
		{KindConnectivity, "connectivity"},
		{KindUnknown, "unknown"},
		{Kind(99), "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.kind.String())
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Kind
	}{
		{"upstream", &UpstreamError{StatusCode: 500, Detail: "boom"}, KindUpstream},
		{"connectivity", &ConnectivityError{Timeout: time.Second}, KindConnectivity},
		{"unknown wrapper", &UnknownError{Err: errors.New("boom")}, KindUnknown},
		{"plain error", errors.New("boom"), KindUnknown},
		{"wrapped upstream", fmt.Errorf("outer: %w", &UpstreamError{StatusCode: 502, Detail: "x"}), KindUpstream},
		{"wrapped connectivity", fmt.Errorf("outer: %w", &ConnectivityError{Timeout: time.Second}), KindConnectivity},
		{"nil", nil, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, KindOf(tt.err))
		})
	}
}

func TestUpstreamErrorMessage(t *testing.T) {
	err := &UpstreamError{StatusCode: 500, Detail: "model timeout"}
	assert.Equal(t, "Workflow generation failed: model timeout", err.Error())
}

func TestConnectivityErrorMessage(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := &ConnectivityError{Timeout: 30 * time.Second, Err: cause}

	// The fixed message references the timeout, never the raw cause.
	assert.Equal(t, "AI Engine is unavailable: no response received within 30s", err.Error())
	assert.NotContains(t, err.Error(), "dial tcp")
	assert.Same(t, cause, errors.Unwrap(err))
}

func TestUnknownErrorMessage(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := &UnknownError{Err: cause}

	assert.Equal(t, "Workflow generation failed: unexpected internal error", err.Error())
	assert.NotContains(t, err.Error(), "EOF")
	assert.Same(t, cause, errors.Unwrap(err))
}
