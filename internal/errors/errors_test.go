package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	codes := []string{
		ErrConfig,
		ErrSource,
		ErrDisplay,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code, "error code should not be empty")
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		message    string
		suggestion string
	}{
		{
			name:       "config error",
			code:       ErrConfig,
			message:    "REFRESH_INTERVAL must be positive",
			suggestion: "Set REFRESH_INTERVAL to something like 30s",
		},
		{
			name:       "display error",
			code:       ErrDisplay,
			message:    "Failed to draw region ups.line1",
			suggestion: "Check the display connection",
		},
		{
			name:       "source error",
			code:       ErrSource,
			message:    "Geolocation lookup failed",
			suggestion: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.suggestion)

			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.suggestion, err.Suggestion)
			assert.Nil(t, err.Cause)
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name          string
		err           *Error
		expectedParts []string
		notExpected   []string
	}{
		{
			name:          "basic error formatting",
			err:           New(ErrConfig, "Invalid layout file", "Check the YAML syntax"),
			expectedParts: []string{"✗", "Invalid layout file", "Check the YAML syntax"},
		},
		{
			name:          "error without suggestion",
			err:           New(ErrDisplay, "Draw failed", ""),
			expectedParts: []string{"Draw failed"},
			notExpected:   []string{"\n\n  \n"},
		},
		{
			name:          "wrapped cause is included",
			err:           WrapWithCode(errors.New("broken pipe"), ErrDisplay, "Draw failed", "Reconnect the screen"),
			expectedParts: []string{"Draw failed", "broken pipe", "Reconnect the screen"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := tt.err.Error()
			for _, part := range tt.expectedParts {
				assert.Contains(t, output, part)
			}
			for _, part := range tt.notExpected {
				assert.NotContains(t, output, part)
			}
		})
	}
}

func TestErrorMessageStructure(t *testing.T) {
	err := WrapWithCode(errors.New("timeout after 5s"), ErrSource, "Public IP lookup failed", "Check PUBLIC_IP_URL")

	lines := strings.Split(err.Error(), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "✗"))
	assert.Contains(t, lines[0], "Public IP lookup failed")
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	wrapped := Wrap(cause, "InfluxDB query failed")

	require.NotNil(t, wrapped)
	assert.Equal(t, ErrSource, wrapped.Code, "Wrap should default to ErrSource code")
	assert.Equal(t, cause, wrapped.Cause)
	assert.True(t, errors.Is(wrapped, cause))
}

func TestShort(t *testing.T) {
	assert.Equal(t, "", Short(nil))
	assert.Equal(t, "plain", Short(errors.New("plain")))
	assert.Equal(t, "Lookup failed", Short(New(ErrSource, "Lookup failed", "ignored")))
	assert.Equal(t, "Lookup failed: eof", Short(WrapWithCode(errors.New("eof"), ErrSource, "Lookup failed", "ignored")))

	wrapped := fmt.Errorf("tick: %w", New(ErrDisplay, "Draw failed", "x"))
	assert.Equal(t, "Draw failed", Short(wrapped))
}

func TestIsCode(t *testing.T) {
	err := New(ErrDisplay, "Draw failed", "")

	assert.True(t, IsCode(err, ErrDisplay))
	assert.False(t, IsCode(err, ErrConfig))
	assert.True(t, IsCode(fmt.Errorf("render: %w", err), ErrDisplay))
	assert.False(t, IsCode(errors.New("standard error"), ErrDisplay))
	assert.False(t, IsCode(nil, ErrDisplay))
}
