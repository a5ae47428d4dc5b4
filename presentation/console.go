package presentation

import (
	"bufio"
	"context"
	"fmt"
	"io"

	domainerrors "p2pvoice/domain/errors"
)

// StdioPrompter is the concrete application.ConsolePrompter the CLI entry
// point wires the msg_put/msg_get tasks to; console rendering beyond basic
// prompts is out of scope per spec.md §1, so this is deliberately thin.
type StdioPrompter struct {
	scanner *bufio.Scanner
	out     io.Writer
	lines   chan string
}

func NewStdioPrompter(in io.Reader, out io.Writer) *StdioPrompter {
	p := &StdioPrompter{
		scanner: bufio.NewScanner(in),
		out:     out,
		lines:   make(chan string),
	}
	go p.pump()
	return p
}

// pump reads lines in the background so ReadLine can honor ctx cancellation
// even though bufio.Scanner itself has no context awareness.
func (p *StdioPrompter) pump() {
	defer close(p.lines)
	for p.scanner.Scan() {
		p.lines <- p.scanner.Text()
	}
}

func (p *StdioPrompter) ReadLine(ctx context.Context) (string, error) {
	select {
	case line, ok := <-p.lines:
		if !ok {
			return "", domainerrors.New(domainerrors.ChannelIsClosed, "console input closed")
		}
		return line, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (p *StdioPrompter) WriteLine(line string) error {
	_, err := fmt.Fprintln(p.out, line)
	if err != nil {
		return domainerrors.Wrap(domainerrors.AsyncIOFailed, "console write", err)
	}
	return nil
}

// Prompt reads a single line for one-shot interactive setup questions (e.g.
// remote peer address), outside the steady-state tasks. The line is returned
// as read; surrounding whitespace is not trimmed.
func Prompt(ctx context.Context, prompter interface {
	ReadLine(ctx context.Context) (string, error)
}, label string, out io.Writer) (string, error) {
	fmt.Fprint(out, label)
	return prompter.ReadLine(ctx)
}
