// Package console is the interactive front end: a line prompter, the main
// menu and the patient picker used while booking.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrInputClosed is returned once the input stream is exhausted.
var ErrInputClosed = errors.New("input closed")

// Prompter reads answers line by line and asks again until an answer is
// valid.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// ReadLine prints prompt and returns the next line without its newline.
func (p *Prompter) ReadLine(prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(p.out, prompt)
	}
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrInputClosed
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadChoice reads a menu number in [min, max].
func (p *Prompter) ReadChoice(min, max int) (int, error) {
	return p.ReadInt("Please make your choice: ", min, max)
}

// ReadInt reads an integer in [min, max].
func (p *Prompter) ReadInt(prompt string, min, max int) (int, error) {
	for {
		line, err := p.ReadLine(prompt)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			fmt.Fprintln(p.out, "Your input is invalid!")
			continue
		}
		if n < min || n > max {
			fmt.Fprintf(p.out, "Please enter a number between %d and %d.\n", min, max)
			continue
		}
		return n, nil
	}
}

// ReadString reads a trimmed line accepted by validate. A nil validate
// accepts anything.
func (p *Prompter) ReadString(prompt string, validate func(string) error) (string, error) {
	for {
		line, err := p.ReadLine(prompt)
		if err != nil {
			return "", err
		}
		line = strings.TrimSpace(line)
		if validate != nil {
			if err := validate(line); err != nil {
				fmt.Fprintf(p.out, "Invalid input: %s\n", err.Error())
				continue
			}
		}
		return line, nil
	}
}

// Confirm reads y/yes or n/no, case-insensitively.
func (p *Prompter) Confirm(prompt string) (bool, error) {
	for {
		line, err := p.ReadLine(prompt + " (y/n): ")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, "Please answer y or n.")
	}
}
