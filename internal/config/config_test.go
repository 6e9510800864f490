package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taskarchitect/architect/internal/config"
)

// TestNew verifies Config creation from maps.
func TestNew(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
	}{
		{"nil map", nil},
		{"empty map", map[string]any{}},
		{"with values", map[string]any{"key": "value"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New(tt.data)
			assert.NotNil(t, cfg.Raw())
		})
	}
}

// TestString verifies string extraction with defaults.
func TestString(t *testing.T) {
	tests := []struct {
		name       string
		data       map[string]any
		key        string
		defaultVal string
		want       string
	}{
		{"key exists", map[string]any{"engine_url": "http://engine:8000"}, "engine_url", "default", "http://engine:8000"},
		{"key missing", map[string]any{"other": "value"}, "engine_url", "default", "default"},
		{"empty string", map[string]any{"engine_url": ""}, "engine_url", "default", ""},
		{"wrong type", map[string]any{"engine_url": 123}, "engine_url", "default", "default"},
		{"nil map", nil, "engine_url", "default", "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New(tt.data)
			assert.Equal(t, tt.want, cfg.String(tt.key, tt.defaultVal))
		})
	}
}

// TestInt verifies integer extraction with type coercion.
func TestInt(t *testing.T) {
	tests := []struct {
		name       string
		data       map[string]any
		key        string
		defaultVal int
		want       int
	}{
		{"int", map[string]any{"port": 8000}, "port", 1, 8000},
		{"int64", map[string]any{"port": int64(8000)}, "port", 1, 8000},
		{"float64 whole", map[string]any{"port": 8000.0}, "port", 1, 8000},
		{"float64 fractional", map[string]any{"port": 8000.5}, "port", 1, 1},
		{"missing", map[string]any{}, "port", 1, 1},
		{"wrong type", map[string]any{"port": "8000"}, "port", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New(tt.data)
			assert.Equal(t, tt.want, cfg.Int(tt.key, tt.defaultVal))
		})
	}
}

// TestBool verifies boolean extraction with defaults.
func TestBool(t *testing.T) {
	tests := []struct {
		name       string
		data       map[string]any
		key        string
		defaultVal bool
		want       bool
	}{
		{"true", map[string]any{"debug": true}, "debug", false, true},
		{"false", map[string]any{"debug": false}, "debug", true, false},
		{"missing", map[string]any{}, "debug", true, true},
		{"wrong type", map[string]any{"debug": "yes"}, "debug", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New(tt.data)
			assert.Equal(t, tt.want, cfg.Bool(tt.key, tt.defaultVal))
		})
	}
}

// TestDuration verifies duration extraction with various input types.
func TestDuration(t *testing.T) {
	tests := []struct {
		name       string
		data       map[string]any
		key        string
		defaultVal time.Duration
		want       time.Duration
	}{
		{"string duration", map[string]any{"timeout": "30s"}, "timeout", time.Second, 30 * time.Second},
		{"int seconds", map[string]any{"timeout": 30}, "timeout", time.Second, 30 * time.Second},
		{"float seconds", map[string]any{"timeout": 1.5}, "timeout", time.Second, 1500 * time.Millisecond},
		{"duration directly", map[string]any{"timeout": 5 * time.Minute}, "timeout", time.Second, 5 * time.Minute},
		{"invalid string", map[string]any{"timeout": "soon"}, "timeout", time.Second, time.Second},
		{"missing", map[string]any{}, "timeout", time.Second, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New(tt.data)
			assert.Equal(t, tt.want, cfg.Duration(tt.key, tt.defaultVal))
		})
	}
}

// TestHas verifies key presence checks.
func TestHas(t *testing.T) {
	cfg := config.New(map[string]any{"present": ""})
	assert.True(t, cfg.Has("present"))
	assert.False(t, cfg.Has("absent"))
}

// TestMerge verifies override precedence and input isolation.
func TestMerge(t *testing.T) {
	base := config.New(map[string]any{"a": "base", "b": "base"})
	overlay := config.New(map[string]any{"b": "overlay", "c": "overlay"})

	merged := base.Merge(overlay)
	assert.Equal(t, "base", merged.String("a", ""))
	assert.Equal(t, "overlay", merged.String("b", ""))
	assert.Equal(t, "overlay", merged.String("c", ""))

	// Inputs unchanged.
	assert.Equal(t, "base", base.String("b", ""))
	assert.False(t, overlay.Has("a"))
}
