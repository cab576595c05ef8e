package controller

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "composify.dev/pkg/composify/internal/model"
)

// SimpleUI implements UI using cobra Command's input and output streams.
type SimpleUI struct {
	cmd    *cobra.Command
	reader *bufio.Reader
	eof    bool
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Confirm prompts until the operator answers y or n. End of input counts as
// n for this and every later prompt.
func (s *SimpleUI) Confirm(ctx context.Context, candidate m.NodeCandidate) (bool, error) {
	if s.reader == nil {
		s.reader = bufio.NewReader(s.cmd.InOrStdin())
	}

	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		if s.eof {
			return false, nil
		}

		s.printf("Make node '%s' in %s composable? [y/n]: ", candidate.Class, candidate.Path)

		line, err := s.reader.ReadString('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return false, fmt.Errorf("read answer: %w", err)
			}

			s.eof = true
			s.printf("\n")
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y":
			return true, nil
		case "n":
			return false, nil
		}

		if !s.eof {
			s.printf("Please enter 'y' or 'n'.\n")
		}
	}
}

// DisplayMessage prints a single line.
func (s *SimpleUI) DisplayMessage(ctx context.Context, message string) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("%s\n", message)
}

// DisplayCandidates prints discovered candidates as a table.
func (s *SimpleUI) DisplayCandidates(ctx context.Context, candidates []CandidateView) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderCandidateTable(candidates))

	return nil
}

// DisplayOutcome prints the result of one rewrite operation.
func (s *SimpleUI) DisplayOutcome(ctx context.Context, outcome m.Outcome) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("[%s] %s\n", outcome.Status, outcome.Message)
}

// DisplaySummary prints a table of all outcomes.
func (s *SimpleUI) DisplaySummary(ctx context.Context, outcomes []m.Outcome) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderSummaryTable(outcomes))

	return nil
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func renderCandidateTable(candidates []CandidateView) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Class", "Registered As", "Path"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	for _, view := range candidates {
		table.Append([]string{view.Candidate.Class, view.Qualified, string(view.Candidate.Path)})
	}

	table.SetFooter([]string{fmt.Sprintf("Total Nodes %d", len(candidates)), "", ""})
	table.Render()

	return tableBuffer.String()
}

func renderSummaryTable(outcomes []m.Outcome) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Class", "Step", "Status", "Path"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_LEFT,
	})

	changed := 0

	for _, outcome := range outcomes {
		path := outcome.Path
		if path == "" {
			path = outcome.Candidate.Path
		}

		table.Append([]string{outcome.Candidate.Class, string(outcome.Step), outcome.Status.String(), string(path)})

		if outcome.Changed() {
			changed++
		}
	}

	table.SetFooter([]string{"", "", fmt.Sprintf("Changed %d", changed), fmt.Sprintf("Total %d", len(outcomes))})
	table.Render()

	return tableBuffer.String()
}
