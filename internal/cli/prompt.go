package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter asks the user for input. Passwords are read without echo when
// the input is a terminal.
type Prompter struct {
	in  io.Reader
	out io.Writer
	// AssumeYes approves every confirmation without asking.
	AssumeYes bool

	reader *bufio.Reader
}

// NewPrompter reads from in and writes prompts to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out, reader: bufio.NewReader(in)}
}

// Line prints prompt and reads one line.
func (p *Prompter) Line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Password prints prompt and reads a secret.
func (p *Prompter) Password(prompt string) (string, error) {
	if file, ok := p.in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		fmt.Fprint(p.out, prompt)
		secret, err := term.ReadPassword(int(file.Fd()))
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(secret), nil
	}
	return p.Line(prompt)
}

// Confirm asks a yes/no question; anything but y or yes is a no.
func (p *Prompter) Confirm(prompt string) bool {
	if p.AssumeYes {
		return true
	}
	answer, err := p.Line(prompt + " [y/N] ")
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
