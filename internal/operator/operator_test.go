package operator

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsolePrompt(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader("  Skip \ncontinue\n"), &out)

	answer, err := c.Prompt(context.Background(), "decision? ")
	require.NoError(t, err)
	assert.Equal(t, "Skip", answer)

	answer, err = c.Prompt(context.Background(), "again? ")
	require.NoError(t, err)
	assert.Equal(t, "continue", answer)

	assert.Equal(t, "decision? again? ", out.String())

	_, err = c.Prompt(context.Background(), "eof? ")
	assert.ErrorIs(t, err, io.EOF)
}

func TestConsolePromptCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	c := NewConsole(pr, io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Prompt(ctx, "waiting? ")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConsoleConfirm(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"Enter", "\n", true},
		{"Anything", "go\n", true},
		{"Quit shortcut", "q\n", false},
		{"Quit word", "QUIT\n", false},
		{"Closed input", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConsole(strings.NewReader(tt.input), io.Discard)
			ok, err := c.Confirm(context.Background(), "start? ")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
		})
	}
}

func TestFixed(t *testing.T) {
	answer, err := Fixed{Answer: "skip"}.Prompt(context.Background(), "?")
	require.NoError(t, err)
	assert.Equal(t, "skip", answer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Fixed{Answer: "skip"}.Prompt(ctx, "?")
	assert.Error(t, err)
}
