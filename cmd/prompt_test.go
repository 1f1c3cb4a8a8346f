package cmd

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/chattools/internal/events"
)

func TestTerminalPrompter(t *testing.T) {
	tests := []struct {
		name       string
		req        events.InputRequest
		input      string
		want       string
		wantPrompt string
	}{
		{
			name:       "input with placeholder",
			req:        events.InputRequest{Type: events.RequestInput, Title: "Zipcode", Message: "Enter a ZIP code", Placeholder: "98012"},
			input:      "  10001 \n",
			want:       "10001",
			wantPrompt: "Zipcode\nEnter a ZIP code [98012]: ",
		},
		{
			name:       "input without trailing newline",
			req:        events.InputRequest{Type: events.RequestInput, Message: "Code"},
			input:      "abc",
			want:       "abc",
			wantPrompt: "Code: ",
		},
		{
			name:       "confirmation accepted",
			req:        events.InputRequest{Type: events.RequestConfirmation, Message: "Continue?"},
			input:      "Yes\n",
			want:       "true",
			wantPrompt: "Continue? [y/N]: ",
		},
		{
			name:       "confirmation defaults to no",
			req:        events.InputRequest{Type: events.RequestExecute, Message: "Run?"},
			input:      "\n",
			want:       "false",
			wantPrompt: "Run? [y/N]: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			p := newTerminalPrompter(strings.NewReader(tt.input), out)

			got, err := p.Prompt(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantPrompt, out.String())
		})
	}
}

func TestTerminalPrompter_Errors(t *testing.T) {
	t.Run("closed input", func(t *testing.T) {
		p := newTerminalPrompter(strings.NewReader(""), &bytes.Buffer{})
		_, err := p.Prompt(context.Background(), events.InputRequest{Message: "Code"})
		assert.ErrorContains(t, err, "failed to read input")
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		p := newTerminalPrompter(strings.NewReader("ignored\n"), &bytes.Buffer{})
		_, err := p.Prompt(ctx, events.InputRequest{Message: "Code"})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestTerminalPrompter_CancelWhileWaiting(t *testing.T) {
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })
	p := newTerminalPrompter(pr, &bytes.Buffer{})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	done := make(chan error, 1)
	go func() {
		_, err := p.Prompt(ctx, events.InputRequest{Type: events.RequestInput, Message: "Zipcode"})
		done <- err
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("prompt did not return after cancellation")
	}

	// The line typed after cancellation goes to the next prompt.
	go func() { _, _ = io.WriteString(pw, "98012\n") }()
	got, err := p.Prompt(context.Background(), events.InputRequest{Type: events.RequestInput, Message: "Zipcode"})
	require.NoError(t, err)
	assert.Equal(t, "98012", got)
}
