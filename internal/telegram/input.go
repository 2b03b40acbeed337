package telegram

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/mdp/qrterminal/v3"

	"github.com/blockedby/tgchats/internal/tdapi"
)

// InputProvider supplies the values only a human can provide during login.
// Calls may block until the value is available or ctx is done.
type InputProvider interface {
	Code(ctx context.Context, info tdapi.AuthenticationCodeInfo) (string, error)
	Password(ctx context.Context, hint string) (string, error)
	ConfirmOnOtherDevice(ctx context.Context, link string) error
}

// ErrNoInput is returned by StaticInput when a value is missing and there is no fallback.
var ErrNoInput = errors.New("no input available")

// TerminalInput prompts on a terminal. A single reader goroutine owns in, so a
// prompt abandoned on ctx leaves the next line to the next prompt.
type TerminalInput struct {
	mu  sync.Mutex
	in  io.Reader
	out io.Writer

	start   sync.Once
	lines   chan string
	readErr error
}

// NewTerminalInput reads answers from in and writes prompts to out.
func NewTerminalInput(in io.Reader, out io.Writer) *TerminalInput {
	return &TerminalInput{in: in, out: out, lines: make(chan string)}
}

// Code implements InputProvider.
func (t *TerminalInput) Code(ctx context.Context, info tdapi.AuthenticationCodeInfo) (string, error) {
	prompt := "enter the verification code: "
	if info.Type != "" {
		prompt = fmt.Sprintf("enter the verification code sent via %s to %s: ", info.Type, info.PhoneNumber)
	}
	return t.ask(ctx, prompt)
}

// Password implements InputProvider.
func (t *TerminalInput) Password(ctx context.Context, hint string) (string, error) {
	prompt := "enter your 2FA password: "
	if hint != "" {
		prompt = fmt.Sprintf("enter your 2FA password (hint: %s): ", hint)
	}
	return t.ask(ctx, prompt)
}

// ConfirmOnOtherDevice renders link as a QR code to scan from an authorized app.
func (t *TerminalInput) ConfirmOnOtherDevice(_ context.Context, link string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintln(t.out, "scan the QR code from Telegram: Settings > Devices > Link Desktop Device")
	qrterminal.GenerateHalfBlock(link, qrterminal.L, t.out)
	fmt.Fprintln(t.out, link)
	return nil
}

func (t *TerminalInput) ask(ctx context.Context, prompt string) (string, error) {
	t.start.Do(func() { go t.readLines() })

	t.mu.Lock()
	fmt.Fprint(t.out, prompt)
	t.mu.Unlock()

	select {
	case line, ok := <-t.lines:
		if !ok {
			return "", t.readErr
		}
		return line, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// readLines feeds lines until in fails. readErr is set before lines is closed.
func (t *TerminalInput) readLines() {
	defer close(t.lines)

	reader := bufio.NewReader(t.in)
	for {
		line, err := reader.ReadString('\n')
		if err == nil || (errors.Is(err, io.EOF) && line != "") {
			t.lines <- strings.TrimSpace(line)
		}
		if err != nil {
			t.readErr = fmt.Errorf("read input: %w", err)
			return
		}
	}
}

// StaticInput answers with preconfigured values and asks Fallback for anything
// left empty.
type StaticInput struct {
	CodeValue     string
	PasswordValue string
	Fallback      InputProvider
}

// Code implements InputProvider.
func (s *StaticInput) Code(ctx context.Context, info tdapi.AuthenticationCodeInfo) (string, error) {
	if s.CodeValue != "" {
		return s.CodeValue, nil
	}
	if s.Fallback != nil {
		return s.Fallback.Code(ctx, info)
	}
	return "", fmt.Errorf("verification code: %w", ErrNoInput)
}

// Password implements InputProvider.
func (s *StaticInput) Password(ctx context.Context, hint string) (string, error) {
	if s.PasswordValue != "" {
		return s.PasswordValue, nil
	}
	if s.Fallback != nil {
		return s.Fallback.Password(ctx, hint)
	}
	return "", fmt.Errorf("password: %w", ErrNoInput)
}

// ConfirmOnOtherDevice implements InputProvider.
func (s *StaticInput) ConfirmOnOtherDevice(ctx context.Context, link string) error {
	if s.Fallback != nil {
		return s.Fallback.ConfirmOnOtherDevice(ctx, link)
	}
	return nil
}
