// Package controller provides the operator-facing adapters of the conversion
// workflow: confirmation prompts and result display.
package controller

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "composify.dev/pkg/composify/internal/model"
)

// CandidateView is a discovered candidate together with the
// namespace-qualified name it would be registered under.
type CandidateView struct {
	Candidate m.NodeCandidate
	Qualified string
}

// UI defines the operator interface of the workflow.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	// Confirm asks whether candidate should be converted.
	Confirm(ctx context.Context, candidate m.NodeCandidate) (bool, error)
	DisplayMessage(ctx context.Context, message string)
	DisplayCandidates(ctx context.Context, candidates []CandidateView) error
	DisplayOutcome(ctx context.Context, outcome m.Outcome)
	DisplaySummary(ctx context.Context, outcomes []m.Outcome) error
}

// NewUI picks the interactive UI for terminals and the line-based UI otherwise.
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewInteractiveUI(cmd)
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	if f == nil {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}

// autoConfirmUI accepts every candidate without asking.
type autoConfirmUI struct {
	UI
}

// WithAutoConfirm wraps ui so that Confirm always accepts.
func WithAutoConfirm(ui UI) UI {
	return &autoConfirmUI{UI: ui}
}

func (a *autoConfirmUI) Confirm(ctx context.Context, _ m.NodeCandidate) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	return true, nil
}
