package operator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Console prompts on a writer and reads one line per answer. A single
// reader goroutine feeds every prompt so an interrupted prompt never loses
// the next line.
type Console struct {
	in  io.Reader
	out io.Writer

	once  sync.Once
	lines chan lineResult
}

type lineResult struct {
	text string
	err  error
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: in, out: out}
}

func (c *Console) start() {
	c.once.Do(func() {
		c.lines = make(chan lineResult)
		go func() {
			scanner := bufio.NewScanner(c.in)
			for scanner.Scan() {
				c.lines <- lineResult{text: scanner.Text()}
			}
			err := scanner.Err()
			if err == nil {
				err = io.EOF
			}
			c.lines <- lineResult{err: err}
			close(c.lines)
		}()
	})
}

// Prompt writes question and waits for a line or for ctx to end.
func (c *Console) Prompt(ctx context.Context, question string) (string, error) {
	if _, err := fmt.Fprint(c.out, question); err != nil {
		return "", fmt.Errorf("write prompt: %w", err)
	}
	c.start()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-c.lines:
		if !ok {
			return "", io.EOF
		}
		if line.err != nil {
			return "", line.err
		}
		return strings.TrimSpace(line.text), nil
	}
}

// Confirm asks before a run starts. "q" or "quit" declines; any other line,
// including an empty one, accepts.
func (c *Console) Confirm(ctx context.Context, question string) (bool, error) {
	answer, err := c.Prompt(ctx, question)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	switch strings.ToLower(answer) {
	case "q", "quit":
		return false, nil
	default:
		return true, nil
	}
}

// Fixed gives the same answer to every prompt, for unattended runs.
type Fixed struct {
	Answer string
}

func (f Fixed) Prompt(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.Answer, nil
}
