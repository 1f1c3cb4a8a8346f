package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/chattools/internal/toolkit"
)

func TestParseToolArgs(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    map[string]any
		wantErr bool
	}{
		{
			name:  "no arguments",
			pairs: nil,
			want:  map[string]any{},
		},
		{
			name:  "single pair",
			pairs: []string{"zipcode=98012"},
			want:  map[string]any{"zipcode": "98012"},
		},
		{
			name:  "value containing equals",
			pairs: []string{"q=a=b", "days=3"},
			want:  map[string]any{"q": "a=b", "days": "3"},
		},
		{
			name:  "empty value",
			pairs: []string{"zipcode="},
			want:  map[string]any{"zipcode": ""},
		},
		{
			name:    "missing separator",
			pairs:   []string{"zipcode"},
			wantErr: true,
		},
		{
			name:    "missing name",
			pairs:   []string{" =98012"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseToolArgs(tt.pairs)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrintResult(t *testing.T) {
	res := toolkit.Result{Text: "It is noon", Data: map[string]any{"hour": 12}}

	t.Run("text", func(t *testing.T) {
		cmd, out := newTestCommand("")
		require.NoError(t, printResult(cmd, res, false))
		assert.Equal(t, "It is noon\n", out.String())
	})

	t.Run("json", func(t *testing.T) {
		cmd, out := newTestCommand("")
		require.NoError(t, printResult(cmd, res, true))

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
		assert.Equal(t, "It is noon", decoded["text"])
		assert.Equal(t, false, decoded["failed"])
		assert.Equal(t, map[string]any{"hour": float64(12)}, decoded["data"])
	})
}

func TestRunCall_CurrentTime(t *testing.T) {
	useTestConfig(t)
	cmd, out := newTestCommand("")

	err := runCall(cmd, toolkit.ToolCurrentTime, map[string]any{}, &toolkit.User{}, false)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Current Date and Time")
}

func TestRunCall_UnknownTool(t *testing.T) {
	useTestConfig(t)
	cmd, _ := newTestCommand("")

	err := runCall(cmd, "does_not_exist", nil, &toolkit.User{}, false)
	require.ErrorIs(t, err, toolkit.ErrUnknownTool)
	assert.Contains(t, err.Error(), "does_not_exist")
}

func TestRunCall_FailedToolReturnsError(t *testing.T) {
	useTestConfig(t)
	cmd, out := newTestCommand("")

	// The weather key is a placeholder, so the tool reports missing configuration.
	err := runCall(cmd, toolkit.ToolCurrentWeather, map[string]any{"zipcode": "98012"}, &toolkit.User{}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "current_weather failed")
	assert.NotEmpty(t, out.String())
}
