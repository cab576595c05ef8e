package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"composify.dev/pkg/composify/internal/adapter"
	"composify.dev/pkg/composify/internal/controller"
	m "composify.dev/pkg/composify/internal/model"
)

// ConvertArgs contains the arguments for a conversion run.
type ConvertArgs struct {
	Root    m.Path
	Exclude []string
	// Report is where the outcome report is written; empty disables it.
	Report m.Path
	DryRun bool
}

// ListArgs contains the arguments for listing candidates.
type ListArgs struct {
	Root    m.Path
	Exclude []string
}

// ViewArgs contains the arguments for viewing a saved report.
type ViewArgs struct {
	Report m.Path
}

// Workflow defines the conversion workflow.
type Workflow interface {
	Convert(ctx context.Context, args ConvertArgs) error
	List(ctx context.Context, args ListArgs) error
	View(ctx context.Context, args ViewArgs) error
}

type workflow struct {
	adapter.SourceFSAdapter
	adapter.ReportStore
	controller.UI
	Discoverer
	ConstructorRewriter
	HeaderSynchronizer
	CallSiteUpdater
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	reportStore adapter.ReportStore,
	ui controller.UI,
	discoverer Discoverer,
	constructors ConstructorRewriter,
	headers HeaderSynchronizer,
	callSites CallSiteUpdater,
) Workflow {
	return &workflow{
		SourceFSAdapter:     fsAdapter,
		ReportStore:         reportStore,
		UI:                  ui,
		Discoverer:          discoverer,
		ConstructorRewriter: constructors,
		HeaderSynchronizer:  headers,
		CallSiteUpdater:     callSites,
	}
}

// NewDefaultWorkflow wires the standard components around fsAdapter.
func NewDefaultWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	reportStore adapter.ReportStore,
	ui controller.UI,
	skipDirs []string,
) Workflow {
	return NewWorkflow(
		fsAdapter,
		reportStore,
		ui,
		NewDiscoverer(fsAdapter, skipDirs...),
		NewConstructorRewriter(fsAdapter),
		NewHeaderSynchronizer(fsAdapter),
		NewCallSiteUpdater(fsAdapter),
	)
}

// Convert discovers candidates, asks the operator to confirm each one and
// converts the confirmed ones. Per-file problems are reported as outcomes,
// never as errors.
func (w *workflow) Convert(ctx context.Context, args ConvertArgs) error {
	candidates, err := w.Discover(ctx, args.Root, args.Exclude)
	if err != nil {
		slog.Error("Failed to discover candidates", "root", args.Root, "error", err)
		return fmt.Errorf("discover candidates: %w", err)
	}

	if len(candidates) == 0 {
		w.DisplayMessage(ctx, "No ROS 2 node constructors found.")
		return nil
	}

	w.DisplayMessage(ctx, fmt.Sprintf("Found %d ROS 2 node constructors.", len(candidates)))

	confirmed, outcomes, err := w.confirmCandidates(ctx, candidates)
	if err != nil {
		return err
	}

	if len(confirmed) == 0 {
		w.DisplayMessage(ctx, "No nodes selected for composable conversion.")
		return w.saveReport(ctx, args, outcomes)
	}

	w.DisplayMessage(ctx, "Nodes marked for conversion:")

	for _, candidate := range confirmed {
		w.DisplayMessage(ctx, fmt.Sprintf("  - %s in %s", candidate.Class, candidate.Path))
	}

	for _, candidate := range confirmed {
		if err := ctx.Err(); err != nil {
			return w.interrupted(ctx, args, outcomes, err)
		}

		outcomes = append(outcomes, w.convertCandidate(ctx, candidate)...)
	}

	return w.finish(ctx, args, outcomes)
}

func (w *workflow) finish(ctx context.Context, args ConvertArgs, outcomes []m.Outcome) error {
	if err := w.DisplaySummary(ctx, outcomes); err != nil {
		slog.Error("Failed to display summary", "error", err)
		return fmt.Errorf("display summary: %w", err)
	}

	return w.saveReport(ctx, args, outcomes)
}

// interrupted still shows and records the outcomes collected before cause.
func (w *workflow) interrupted(ctx context.Context, args ConvertArgs, outcomes []m.Outcome, cause error) error {
	slog.Warn("Conversion interrupted", "outcomes", len(outcomes), "error", cause)

	flushCtx := context.WithoutCancel(ctx)
	w.DisplayMessage(flushCtx, "Conversion interrupted; remaining nodes were left unchanged.")

	if err := w.finish(flushCtx, args, outcomes); err != nil {
		return errors.Join(fmt.Errorf("convert: %w", cause), err)
	}

	return fmt.Errorf("convert: %w", cause)
}

// convertCandidate runs the constructor step, the call-site step when the
// constructor was rewritten, and the header step. Each step stands alone.
func (w *workflow) convertCandidate(ctx context.Context, candidate m.NodeCandidate) []m.Outcome {
	var outcomes []m.Outcome

	record := func(outcome m.Outcome) {
		w.DisplayOutcome(ctx, outcome)
		outcomes = append(outcomes, outcome)
	}

	constructor := w.Rewrite(ctx, candidate)
	record(constructor)

	if constructor.Status == m.Converted {
		for _, outcome := range w.Update(ctx, candidate) {
			record(outcome)
		}
	}

	record(w.Synchronize(ctx, candidate))

	return outcomes
}

func (w *workflow) confirmCandidates(
	ctx context.Context,
	candidates []m.NodeCandidate,
) ([]m.NodeCandidate, []m.Outcome, error) {
	var (
		confirmed []m.NodeCandidate
		skipped   []m.Outcome
	)

	for _, candidate := range candidates {
		ok, err := w.Confirm(ctx, candidate)
		if err != nil {
			slog.Error("Failed to confirm candidate", "class", candidate.Class, "error", err)
			return nil, nil, fmt.Errorf("confirm %s: %w", candidate.Class, err)
		}

		if !ok {
			skipped = append(skipped, m.Outcome{
				Step:      m.StepConstructor,
				Candidate: candidate,
				Path:      candidate.Path,
				Status:    m.Skipped,
				Message:   fmt.Sprintf("Skipped %s", candidate.Class),
			})

			continue
		}

		confirmed = append(confirmed, candidate)
	}

	return confirmed, skipped, nil
}

func (w *workflow) saveReport(ctx context.Context, args ConvertArgs, outcomes []m.Outcome) error {
	if args.Report == "" {
		return nil
	}

	report := m.Report{Root: args.Root, DryRun: args.DryRun, Outcomes: outcomes}
	if err := w.SaveReport(ctx, args.Report, report); err != nil {
		slog.Error("Failed to save report", "path", args.Report, "error", err)
		return fmt.Errorf("save report: %w", err)
	}

	return nil
}

// List runs discovery only and displays every candidate with the name it
// would be registered under.
func (w *workflow) List(ctx context.Context, args ListArgs) error {
	candidates, err := w.Discover(ctx, args.Root, args.Exclude)
	if err != nil {
		slog.Error("Failed to discover candidates", "root", args.Root, "error", err)
		return fmt.Errorf("discover candidates: %w", err)
	}

	if len(candidates) == 0 {
		w.DisplayMessage(ctx, "No ROS 2 node constructors found.")
		return nil
	}

	views := make([]controller.CandidateView, 0, len(candidates))

	for _, candidate := range candidates {
		qualified, err := w.qualifiedName(ctx, candidate)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}

			slog.Warn("Could not resolve namespace", "class", candidate.Class, "error", err)
		}

		views = append(views, controller.CandidateView{Candidate: candidate, Qualified: qualified})
	}

	if err := w.DisplayCandidates(ctx, views); err != nil {
		slog.Error("Failed to display candidates", "error", err)
		return fmt.Errorf("display candidates: %w", err)
	}

	return nil
}

// qualifiedName falls back to the bare class name when the file cannot be read.
func (w *workflow) qualifiedName(ctx context.Context, candidate m.NodeCandidate) (string, error) {
	file, err := w.ReadText(ctx, candidate.Path)
	if err != nil {
		return candidate.Class, err
	}

	return ResolveNamespace(file.Content, candidate.Class).Qualify(candidate.Class), nil
}

// View loads a report written by Convert and displays its outcomes.
func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	report, err := w.LoadReport(ctx, args.Report)
	if err != nil {
		slog.Error("Failed to load report", "path", args.Report, "error", err)
		return fmt.Errorf("load report: %w", err)
	}

	header := fmt.Sprintf("Conversion report for %s", report.Root)
	if report.DryRun {
		header += " (dry run)"
	}

	w.DisplayMessage(ctx, header)

	if len(report.Outcomes) == 0 {
		w.DisplayMessage(ctx, "The report holds no outcomes.")
		return nil
	}

	if err := w.DisplaySummary(ctx, report.Outcomes); err != nil {
		slog.Error("Failed to display summary", "error", err)
		return fmt.Errorf("display summary: %w", err)
	}

	return nil
}
