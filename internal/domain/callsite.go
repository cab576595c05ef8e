package domain

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"composify.dev/pkg/composify/internal/adapter"
	"composify.dev/pkg/composify/internal/domain/recognizers"
	m "composify.dev/pkg/composify/internal/model"
)

const entryPointPattern = "main*.cpp"

// CallSiteUpdater passes default NodeOptions at construction sites that
// create the node with no arguments.
type CallSiteUpdater interface {
	// Update returns one outcome per inspected file.
	Update(ctx context.Context, candidate m.NodeCandidate) []m.Outcome
}

type callSiteUpdater struct {
	adapter.SourceFSAdapter
}

// NewCallSiteUpdater creates a CallSiteUpdater backed by fsAdapter.
func NewCallSiteUpdater(fsAdapter adapter.SourceFSAdapter) CallSiteUpdater {
	return &callSiteUpdater{SourceFSAdapter: fsAdapter}
}

func (u *callSiteUpdater) Update(ctx context.Context, candidate m.NodeCandidate) []m.Outcome {
	files := u.callSiteFiles(ctx, candidate.Path)
	outcomes := make([]m.Outcome, 0, len(files))

	for _, path := range files {
		if ctx.Err() != nil {
			break
		}

		outcomes = append(outcomes, u.updateFile(ctx, candidate, path))
	}

	return outcomes
}

func (u *callSiteUpdater) updateFile(ctx context.Context, candidate m.NodeCandidate, path m.Path) m.Outcome {
	outcome := m.Outcome{Step: m.StepCallSite, Candidate: candidate, Path: path}

	file, err := u.ReadText(ctx, path)
	if err != nil {
		return readFailure(outcome, err)
	}

	updated, count := recognizers.PassOptions(file.Content, candidate.Class)
	if count == 0 {
		outcome.Status = m.Unchanged
		outcome.Message = fmt.Sprintf("No constructor call to update in: %s", path)

		return outcome
	}

	if err := u.WriteText(ctx, m.SourceFile{Path: path, Content: updated}); err != nil {
		return writeFailure(outcome, err)
	}

	slog.Info("Call sites rewritten", "class", candidate.Class, "path", path, "count", count)

	outcome.Status = m.Converted
	outcome.Message = fmt.Sprintf("Updated constructor call in: %s", path)

	return outcome
}

// callSiteFiles lists every main*.cpp below the package directory (the
// parent of the implementation's directory) followed by the implementation
// file itself, without duplicates.
func (u *callSiteUpdater) callSiteFiles(ctx context.Context, impl m.Path) []m.Path {
	pkgDir := m.Path(filepath.Dir(filepath.Dir(string(impl))))

	seen := make(map[m.Path]struct{})

	var files []m.Path

	add := func(path m.Path) {
		key := m.Path(filepath.Clean(string(path)))
		if _, ok := seen[key]; ok {
			return
		}

		seen[key] = struct{}{}
		files = append(files, path)
	}

	err := u.Walk(ctx, pkgDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if info.IsDir() {
			return nil
		}

		if ok, _ := filepath.Match(entryPointPattern, info.Name()); ok {
			add(m.Path(path))
		}

		return nil
	})
	if err != nil {
		slog.Warn("Failed to scan for entry points", "dir", pkgDir, "error", err)
	}

	add(impl)

	return files
}
