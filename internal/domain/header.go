package domain

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"composify.dev/pkg/composify/internal/adapter"
	"composify.dev/pkg/composify/internal/domain/recognizers"
	m "composify.dev/pkg/composify/internal/model"
)

// HeaderSynchronizer updates the constructor declaration in the header that
// belongs to a converted implementation file.
type HeaderSynchronizer interface {
	Synchronize(ctx context.Context, candidate m.NodeCandidate) m.Outcome
}

type headerSynchronizer struct {
	adapter.SourceFSAdapter
}

// NewHeaderSynchronizer creates a HeaderSynchronizer backed by fsAdapter.
func NewHeaderSynchronizer(fsAdapter adapter.SourceFSAdapter) HeaderSynchronizer {
	return &headerSynchronizer{SourceFSAdapter: fsAdapter}
}

func (h *headerSynchronizer) Synchronize(ctx context.Context, candidate m.NodeCandidate) m.Outcome {
	outcome := m.Outcome{Step: m.StepHeader, Candidate: candidate}
	class := candidate.Class

	header, ok := h.locateHeader(ctx, candidate.Path)
	if !ok {
		outcome.Status = m.NotFound
		outcome.Message = fmt.Sprintf("Header for %s not found near %s", class, candidate.Path)

		return outcome
	}

	outcome.Path = header

	file, err := h.ReadText(ctx, header)
	if err != nil {
		return readFailure(outcome, err)
	}

	decl, ok := recognizers.FindHeaderDeclaration(file.Content, class)
	if !ok {
		outcome.Status = m.NotFound
		outcome.Message = fmt.Sprintf("Constructor declaration for %s not found in %s", class, header)

		return outcome
	}

	if strings.Contains(decl.Params, recognizers.OptionsMarker) {
		outcome.Status = m.AlreadyConverted
		outcome.Message = fmt.Sprintf("Header for %s already takes NodeOptions: %s", class, header)

		return outcome
	}

	updated := file.Content[:decl.Start] +
		recognizers.OptionsDeclaration(decl.Indent, class) +
		file.Content[decl.End:]

	if err := h.WriteText(ctx, m.SourceFile{Path: header, Content: updated}); err != nil {
		return writeFailure(outcome, err)
	}

	slog.Info("Header declaration rewritten", "class", class, "path", header)

	outcome.Status = m.Converted
	outcome.Message = fmt.Sprintf("Header updated: %s", header)

	return outcome
}

// locateHeader searches the implementation directory, then <pkg>/include,
// then <pkg>/include/<pkg-name> for "<stem>.h*". The lexically first match in
// the first directory that has one wins.
func (h *headerSynchronizer) locateHeader(ctx context.Context, impl m.Path) (m.Path, bool) {
	srcDir := filepath.Dir(string(impl))
	pkgDir := filepath.Dir(srcDir)
	stem := strings.TrimSuffix(filepath.Base(string(impl)), filepath.Ext(string(impl)))
	pattern := globEscape(stem) + ".h*"

	dirs := []string{
		srcDir,
		filepath.Join(pkgDir, "include"),
		filepath.Join(pkgDir, "include", filepath.Base(pkgDir)),
	}

	for _, dir := range dirs {
		matches, err := h.Glob(ctx, filepath.Join(globEscape(dir), pattern))
		if err != nil {
			slog.Debug("Header glob failed", "dir", dir, "error", err)
			continue
		}

		if len(matches) > 0 {
			return matches[0], true
		}
	}

	return "", false
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`)

func globEscape(s string) string {
	return globEscaper.Replace(s)
}
