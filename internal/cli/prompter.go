package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNoInput is returned when input ends before a required answer.
var ErrNoInput = errors.New("no input")

// Prompter asks the user for form values on a terminal. Passwords are read
// without echo when the input is a terminal.
type Prompter struct {
	in     io.Reader
	writer io.Writer
	reader *LineReader
}

// NewPrompter creates a prompter reading from in and writing prompts to
// writer. Nil arguments default to stdin and stderr.
func NewPrompter(in io.Reader, writer io.Writer) *Prompter {
	if in == nil {
		in = os.Stdin
	}
	if writer == nil {
		writer = os.Stderr
	}
	return &Prompter{
		in:     in,
		writer: writer,
		reader: NewLineReader(in),
	}
}

// Ask prompts for a value. An empty answer returns def.
func (p *Prompter) Ask(ctx context.Context, label, def string) (string, error) {
	prompt := label
	if def != "" {
		prompt = fmt.Sprintf("%s [%s]", label, def)
	}
	if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}

	answer, err := p.reader.ReadLine(ctx)
	if errors.Is(err, io.EOF) {
		if def != "" {
			return def, nil
		}
		return "", ErrNoInput
	}
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Password prompts for a secret.
func (p *Prompter) Password(ctx context.Context, label string) (string, error) {
	if _, err := fmt.Fprint(p.writer, FormatPrompt(label)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}

	if f, ok := p.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(p.writer)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(secret), nil
	}

	// Piped input, as in scripts and tests
	secret, err := p.reader.ReadLine(ctx)
	if errors.Is(err, io.EOF) {
		return "", ErrNoInput
	}
	return secret, err
}

// Confirm asks a yes/no question; anything but y or yes means no.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	answer, err := p.Ask(ctx, question+" (y/N)", "")
	if errors.Is(err, ErrNoInput) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
