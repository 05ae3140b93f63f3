// Package judge provides non-graphical relevance judgment sources.
package judge

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"qexpand/internal/domain"
	"qexpand/internal/report"
)

var (
	// ErrAborted is returned when the user stops answering.
	ErrAborted = errors.New("judgment aborted")

	// ErrScriptExhausted is returned when a scripted judge runs out of answers.
	ErrScriptExhausted = errors.New("no scripted judgments left")
)

// Line prompts on a writer and reads one answer per line from a reader.
// "y" or "Y" means relevant; any other answer means not relevant.
type Line struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLine creates a line-oriented judge.
func NewLine(in io.Reader, out io.Writer) *Line {
	return &Line{in: bufio.NewReader(in), out: out}
}

// Judge prints the result and blocks until an answer line is read.
func (l *Line) Judge(ctx context.Context, req domain.JudgeRequest) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fmt.Fprintln(l.out, report.Result(req))
	fmt.Fprint(l.out, "Relevant (Y/N)? ")
	answer, err := l.in.ReadString('\n')
	if err != nil && (answer == "" || !errors.Is(err, io.EOF)) {
		if errors.Is(err, io.EOF) {
			return false, ErrAborted
		}
		return false, fmt.Errorf("read judgment: %w", err)
	}
	fmt.Fprintln(l.out)
	return IsYes(answer), nil
}

// IsYes reports whether answer is an affirmative judgment.
func IsYes(answer string) bool {
	a := strings.TrimSpace(answer)
	return a == "y" || a == "Y"
}

// Scripted answers from a fixed sequence, in order.
type Scripted struct {
	answers []bool
	next    int
}

// NewScripted creates a judge from a list of answers.
func NewScripted(answers ...bool) *Scripted {
	return &Scripted{answers: answers}
}

// ParseScript builds a Scripted judge from a string such as "YNNY YYNN".
// Y/y mean relevant, N/n not relevant; whitespace and commas are ignored.
func ParseScript(s string) (*Scripted, error) {
	var answers []bool
	for i, r := range s {
		switch r {
		case 'y', 'Y':
			answers = append(answers, true)
		case 'n', 'N':
			answers = append(answers, false)
		case ' ', '\t', '\n', ',':
		default:
			return nil, fmt.Errorf("invalid judgment %q at offset %d", r, i)
		}
	}
	return NewScripted(answers...), nil
}

// Judge returns the next scripted answer.
func (s *Scripted) Judge(_ context.Context, _ domain.JudgeRequest) (bool, error) {
	if s.next >= len(s.answers) {
		return false, ErrScriptExhausted
	}
	a := s.answers[s.next]
	s.next++
	return a, nil
}

// Remaining returns the number of unused answers.
func (s *Scripted) Remaining() int { return len(s.answers) - s.next }
