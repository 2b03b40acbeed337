package telegram

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/blockedby/tgchats/internal/tdapi"
)

func TestTerminalInput_CanceledPromptKeepsNextLine(t *testing.T) {
	defer goleak.VerifyNone(t)

	// Arrange
	pr, pw := io.Pipe()
	var out bytes.Buffer
	input := NewTerminalInput(pr, &out)
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	// Act
	_, codeErr := input.Code(canceled, tdapi.AuthenticationCodeInfo{})
	go func() { _, _ = pw.Write([]byte("secret\n")) }()
	password, err := input.Password(context.Background(), "pet")
	require.NoError(t, pw.Close())

	// Assert
	assert.ErrorIs(t, codeErr, context.Canceled)
	require.NoError(t, err)
	assert.Equal(t, "secret", password)
	assert.Contains(t, out.String(), "(hint: pet)")
}

func TestTerminalInput_EndOfInput(t *testing.T) {
	defer goleak.VerifyNone(t)

	input := NewTerminalInput(strings.NewReader("12345"), io.Discard)
	ctx := context.Background()

	code, err := input.Code(ctx, tdapi.AuthenticationCodeInfo{Type: "app", PhoneNumber: "+1"})
	require.NoError(t, err)
	assert.Equal(t, "12345", code)

	_, err = input.Password(ctx, "")
	assert.ErrorIs(t, err, io.EOF)
}
