// Package replio provides the two line-reading strategies the lrforge CLI's
// interactive shell can use (spec §6 "Interactive shell"): one backed by
// GNU-readline-style editing and history, one a plain direct reader for
// piped or non-TTY input.
//
// Adapted from the teacher's internal/input package: same Reader shape and
// Close contract, narrowed to the single ReadLine operation the
// shell needs (lrforge has no notion of a "command" token, just a line to
// evaluate).
package replio

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// Reader reads successive lines of shell input until EOF.
type Reader interface {
	ReadLine() (string, error)
	SetPrompt(p string)
	Close() error
}

// DirectReader reads raw lines from any io.Reader, with no editing support.
// Use it for piped or scripted input.
type DirectReader struct {
	r *bufio.Reader
}

// NewDirectReader wraps r for line-at-a-time reading.
func NewDirectReader(r io.Reader) *DirectReader {
	return &DirectReader{r: bufio.NewReader(r)}
}

func (d *DirectReader) ReadLine() (string, error) {
	line, err := d.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (d *DirectReader) SetPrompt(p string) {}

func (d *DirectReader) Close() error { return nil }

// InteractiveReader reads lines from stdin through GNU-readline-style
// editing and history. Use it when running attached to a real terminal.
type InteractiveReader struct {
	rl *readline.Instance
}

// NewInteractiveReader starts a readline instance with the given prompt.
func NewInteractiveReader(prompt string) (*InteractiveReader, error) {
	rl, err := readline.NewEx(&readline.Config{Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("create readline config: %w", err)
	}
	return &InteractiveReader{rl: rl}, nil
}

func (i *InteractiveReader) ReadLine() (string, error) {
	line, err := i.rl.Readline()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (i *InteractiveReader) SetPrompt(p string) { i.rl.SetPrompt(p) }

func (i *InteractiveReader) Close() error { return i.rl.Close() }
