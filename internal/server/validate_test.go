package server

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePrompt(t *testing.T) {
	tests := []struct {
		name    string
		prompt  string
		wantErr string
	}{
		{"empty", "", "must not be empty"},
		{"single char", "x", "at least 10"},
		{"nine chars", strings.Repeat("a", 9), "at least 10"},
		{"ten chars", strings.Repeat("a", 10), ""},
		{"typical prompt", "summarize team updates every morning", ""},
		{"thousand chars", strings.Repeat("a", 1000), ""},
		{"thousand and one", strings.Repeat("a", 1001), "at most 1000"},
		{"way too long", strings.Repeat("a", 5000), "at most 1000"},
		// Bounds count characters, not bytes: ten multibyte runes pass.
		{"ten multibyte runes", strings.Repeat("é", 10), ""},
		{"nine multibyte runes", strings.Repeat("é", 9), "at least 10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePrompt(tt.prompt)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var valErr *ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Equal(t, "prompt", valErr.Field)
		})
	}
}
