// Package tui implements an interactive terminal judge on Bubble Tea.
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"qexpand/internal/domain"
	"qexpand/internal/judge"
)

// Judge shows each result in a short-lived Bubble Tea program and returns the
// user's answer.
type Judge struct {
	opts []tea.ProgramOption
}

// NewJudge creates a terminal judge. Options are passed to every program,
// which lets callers redirect input and output.
func NewJudge(opts ...tea.ProgramOption) *Judge {
	return &Judge{opts: opts}
}

// Judge blocks until the user answers y or n. Quitting the prompt returns
// judge.ErrAborted.
func (j *Judge) Judge(ctx context.Context, req domain.JudgeRequest) (bool, error) {
	opts := append([]tea.ProgramOption{tea.WithContext(ctx)}, j.opts...)
	final, err := tea.NewProgram(New(req), opts...).Run()
	if err != nil {
		return false, fmt.Errorf("run judgment prompt: %w", err)
	}
	m, ok := final.(Model)
	if !ok {
		return false, fmt.Errorf("unexpected model %T", final)
	}
	if m.Aborted() || !m.Decided() {
		return false, judge.ErrAborted
	}
	return m.Relevant(), nil
}
