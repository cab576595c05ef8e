package adapter

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/pmezard/go-difflib/difflib"

	m "composify.dev/pkg/composify/internal/model"
)

// DryRunSourceFSAdapter decorates a SourceFSAdapter so that writes are
// rendered as unified diffs instead of touching the disk.
type DryRunSourceFSAdapter struct {
	SourceFSAdapter
	out io.Writer
}

// NewDryRunSourceFSAdapter wraps inner; diffs are written to out.
func NewDryRunSourceFSAdapter(inner SourceFSAdapter, out io.Writer) *DryRunSourceFSAdapter {
	return &DryRunSourceFSAdapter{SourceFSAdapter: inner, out: out}
}

// WriteText prints the pending change as a unified diff.
func (a *DryRunSourceFSAdapter) WriteText(ctx context.Context, file m.SourceFile) error {
	current, err := a.ReadFile(ctx, file.Path)
	if err != nil {
		return err
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(current)),
		B:        difflib.SplitLines(file.Content),
		FromFile: "a/" + string(file.Path),
		ToFile:   "b/" + string(file.Path),
		Context:  3,
	})
	if err != nil {
		return fmt.Errorf("diff %s: %w", file.Path, err)
	}

	slog.Debug("dry run skipped write", "path", file.Path)

	_, err = io.WriteString(a.out, diff)

	return err
}
