package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "composify.dev/pkg/composify/internal/model"
)

var (
	colorSuccess = lipgloss.Color("#2CD7C7")
	colorWarning = lipgloss.Color("#F4D03F")
	colorError   = lipgloss.Color("#E74C3C")
	colorMuted   = lipgloss.Color("#5C7A84")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError)
)

// accessibleEnv switches huh forms to plain line prompts for screen readers.
const accessibleEnv = "ACCESSIBLE"

// InteractiveUI implements UI for terminals: huh forms for confirmation,
// styled outcome lines and a pager for long candidate lists.
type InteractiveUI struct {
	cmd        *cobra.Command
	accessible bool
}

// NewInteractiveUI creates a new InteractiveUI. Setting ACCESSIBLE in the
// environment runs confirmations in huh's accessible mode.
func NewInteractiveUI(cmd *cobra.Command) *InteractiveUI {
	return &InteractiveUI{cmd: cmd, accessible: os.Getenv(accessibleEnv) != ""}
}

// Confirm shows a yes/no form for candidate.
func (p *InteractiveUI) Confirm(ctx context.Context, candidate m.NodeCandidate) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	accepted := false

	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Make node '%s' composable?", candidate.Class)).
			Description(string(candidate.Path)).
			Affirmative("Yes").
			Negative("No").
			Value(&accepted),
	)).
		WithInput(p.cmd.InOrStdin()).
		WithOutput(p.cmd.OutOrStdout()).
		WithAccessible(p.accessible)

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, fmt.Errorf("confirmation aborted: %w", err)
		}

		return false, err
	}

	return accepted, nil
}

// DisplayMessage prints a styled line.
func (p *InteractiveUI) DisplayMessage(ctx context.Context, message string) {
	if err := ctx.Err(); err != nil {
		return
	}

	p.println(titleStyle.Render(message))
}

// DisplayCandidates prints the candidate list, paging it when it does not
// fit the terminal.
func (p *InteractiveUI) DisplayCandidates(ctx context.Context, candidates []CandidateView) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	model := newCandidateListModel(candidates)

	out := p.cmd.OutOrStdout()
	if f, ok := out.(*os.File); ok {
		width, height, err := term.GetSize(int(f.Fd()))
		if err == nil {
			model.height = height
			model.width = width
		}
	}

	if !model.needsPagination() {
		_, err := fmt.Fprint(out, model.View())
		return err
	}

	program := tea.NewProgram(model, tea.WithContext(ctx), tea.WithOutput(out), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}

// DisplayOutcome prints the outcome with a status icon.
func (p *InteractiveUI) DisplayOutcome(ctx context.Context, outcome m.Outcome) {
	if err := ctx.Err(); err != nil {
		return
	}

	p.println(statusIcon(outcome.Status) + " " + outcome.Message)
}

// DisplaySummary prints the outcome table.
func (p *InteractiveUI) DisplaySummary(ctx context.Context, outcomes []m.Outcome) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := io.WriteString(p.cmd.OutOrStdout(), "\n"+renderSummaryTable(outcomes))

	return err
}

func (p *InteractiveUI) println(line string) {
	_, _ = fmt.Fprintln(p.cmd.OutOrStdout(), line)
}

func statusIcon(status m.Status) string {
	switch status {
	case m.Converted:
		return successStyle.Render("✓")
	case m.AlreadyConverted, m.Unchanged, m.Skipped:
		return mutedStyle.Render("○")
	case m.NotFound:
		return warningStyle.Render("⚠")
	default:
		return errorStyle.Render("✗")
	}
}

type candidateKeyMap struct {
	Quit     key.Binding
	Down     key.Binding
	Up       key.Binding
	Top      key.Binding
	Bottom   key.Binding
	PageDown key.Binding
	PageUp   key.Binding
}

var candidateKeys = candidateKeyMap{
	Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Top:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
	Bottom:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
	PageDown: key.NewBinding(key.WithKeys("d", "pgdown"), key.WithHelp("d", "page down")),
	PageUp:   key.NewBinding(key.WithKeys("u", "pgup"), key.WithHelp("u", "page up")),
}

// candidateListModel is the Bubble Tea model for paging through candidates.
type candidateListModel struct {
	candidates []CandidateView
	height     int
	width      int
	offset     int // Current scroll offset
	quitting   bool
}

func newCandidateListModel(candidates []CandidateView) candidateListModel {
	return candidateListModel{candidates: candidates}
}

func (clm candidateListModel) Init() tea.Cmd {
	return nil
}

func (clm candidateListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		clm.height = msg.Height
		clm.width = msg.Width

		return clm, nil

	case tea.KeyMsg:
		return clm.handleKeyPress(msg)
	}

	return clm, nil
}

func (clm candidateListModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, candidateKeys.Quit):
		clm.quitting = true
		return clm, tea.Quit
	case key.Matches(msg, candidateKeys.Down):
		clm.offset++
	case key.Matches(msg, candidateKeys.Up):
		clm.offset--
	case key.Matches(msg, candidateKeys.Top):
		clm.offset = 0
	case key.Matches(msg, candidateKeys.Bottom):
		clm.offset = clm.maxOffset()
	case key.Matches(msg, candidateKeys.PageDown):
		clm.offset += clm.itemsPerPage()
	case key.Matches(msg, candidateKeys.PageUp):
		clm.offset -= clm.itemsPerPage()
	}

	clm.offset = max(0, min(clm.offset, clm.maxOffset()))

	return clm, nil
}

// itemsPerPage calculates how many items can fit on screen.
func (clm candidateListModel) itemsPerPage() int {
	if clm.height == 0 {
		return 10 // Default
	}

	// Header, total line and the two-line footer.
	reserved := 7

	available := clm.height - reserved
	if available < 1 {
		return 1
	}

	return available
}

// maxOffset returns the maximum scroll offset.
func (clm candidateListModel) maxOffset() int {
	return max(0, len(clm.candidates)-clm.itemsPerPage())
}

// needsPagination returns true if the list is too large to fit on screen.
func (clm candidateListModel) needsPagination() bool {
	if len(clm.candidates) == 0 {
		return false
	}

	return len(clm.candidates) > clm.itemsPerPage() && clm.height > 0
}

func (clm candidateListModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("composify - node candidates"))
	b.WriteString("\n\n")

	if len(clm.candidates) == 0 {
		b.WriteString("  No node constructors found\n")
		return b.String()
	}

	total := len(clm.candidates)
	visible := clm.candidates
	start, end := 0, total

	if clm.needsPagination() {
		start = min(clm.offset, total-1)
		end = min(start+clm.itemsPerPage(), total)
		visible = clm.candidates[start:end]
	}

	for _, view := range visible {
		fmt.Fprintf(&b, "  %s %s\n", view.Qualified, mutedStyle.Render(string(view.Candidate.Path)))
	}

	fmt.Fprintf(&b, "\n  Total: %d node(s)\n", total)

	if clm.needsPagination() {
		fmt.Fprintf(&b, "\n  Showing %d-%d of %d\n", start+1, end, total)
		b.WriteString(mutedStyle.Render("  ↑/k: up | ↓/j: down | g: top | G: bottom | q: quit"))
		b.WriteString("\n")
	}

	return b.String()
}
