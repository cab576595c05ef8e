package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"composify.dev/pkg/composify/internal/adapter"
	"composify.dev/pkg/composify/internal/domain/recognizers"
	m "composify.dev/pkg/composify/internal/model"
)

// ConstructorRewriter converts the out-of-line constructor definition of a
// node into the composable shape and registers the component.
type ConstructorRewriter interface {
	Rewrite(ctx context.Context, candidate m.NodeCandidate) m.Outcome
}

type constructorRewriter struct {
	adapter.SourceFSAdapter
}

// NewConstructorRewriter creates a ConstructorRewriter backed by fsAdapter.
func NewConstructorRewriter(fsAdapter adapter.SourceFSAdapter) ConstructorRewriter {
	return &constructorRewriter{SourceFSAdapter: fsAdapter}
}

// Rewrite replaces the constructor parameters with NodeOptions, forwards the
// options to the base Node initializer and appends the registration macro.
// Files already mentioning NodeOptions for the class are left untouched.
func (r *constructorRewriter) Rewrite(ctx context.Context, candidate m.NodeCandidate) m.Outcome {
	outcome := m.Outcome{Step: m.StepConstructor, Candidate: candidate, Path: candidate.Path}

	file, err := r.ReadText(ctx, candidate.Path)
	if err != nil {
		return readFailure(outcome, err)
	}

	class := candidate.Class

	if recognizers.AlreadyTakesOptions(file.Content, class) {
		outcome.Status = m.AlreadyConverted
		outcome.Message = fmt.Sprintf("Skipping %s: already uses NodeOptions.", class)

		return outcome
	}

	match, ok := recognizers.FindConstructorDefinition(file.Content, class)
	if !ok {
		outcome.Status = m.NotFound
		outcome.Message = fmt.Sprintf("Constructor for %s not found in %s", class, candidate.Path)

		return outcome
	}

	qualified := ResolveNamespace(file.Content, class).Qualify(class)

	updated := file.Content[:match.Start] +
		recognizers.OptionsSignature(class) +
		recognizers.ForwardOptionsToBase(match.Initializer) +
		file.Content[match.End:]

	if !recognizers.HasRegistration(updated, qualified) {
		updated += recognizers.RegistrationBlock(qualified)
	}

	if err := r.WriteText(ctx, m.SourceFile{Path: candidate.Path, Content: updated}); err != nil {
		return writeFailure(outcome, err)
	}

	slog.Info("Constructor rewritten", "class", class, "registered", qualified, "path", candidate.Path)

	outcome.Status = m.Converted
	outcome.Message = fmt.Sprintf("Updated: %s in %s", class, candidate.Path)

	return outcome
}

// readFailure maps a ReadText error onto outcome.
func readFailure(outcome m.Outcome, err error) m.Outcome {
	if errors.Is(err, adapter.ErrNotText) {
		outcome.Status = m.DecodeFailed
		outcome.Message = fmt.Sprintf("Skipping non-UTF8 file: %s", outcome.Path)

		return outcome
	}

	slog.Error("Failed to read source", "path", outcome.Path, "error", err)

	outcome.Status = m.Failed
	outcome.Message = fmt.Sprintf("Failed to read %s: %v", outcome.Path, err)

	return outcome
}

func writeFailure(outcome m.Outcome, err error) m.Outcome {
	slog.Error("Failed to write source", "path", outcome.Path, "error", err)

	outcome.Status = m.Failed
	outcome.Message = fmt.Sprintf("Failed to write %s: %v", outcome.Path, err)

	return outcome
}
