package ui

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Prompter reads interactive answers line by line. One Prompter must own the
// reader for the whole dialog, so buffered input is not lost between
// questions.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewPrompter(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(r), out: w}
}

// Ask prints the label and returns the typed answer, or def when the answer
// is empty.
func (p *Prompter) Ask(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}
	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}

// Select prints a numbered menu and returns the index of the chosen option.
// Out-of-range or non-numeric answers prompt again.
func (p *Prompter) Select(label string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, fmt.Errorf("nothing to select from")
	}
	fmt.Fprintf(p.out, "%s:\n", label)
	for i, opt := range options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, opt)
	}
	for {
		fmt.Fprintf(p.out, "Enter a number [1-%d]: ", len(options))
		line, err := p.readLine()
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > len(options) {
			fmt.Fprintf(p.out, "Please enter a number between 1 and %d.\n", len(options))
			continue
		}
		return n - 1, nil
	}
}

func (p *Prompter) readLine() (string, error) {
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.in.Text()), nil
}
