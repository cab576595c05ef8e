// Package adapter contains infrastructure adapters for the composify CLI.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/google/renameio/v2"

	m "composify.dev/pkg/composify/internal/model"
)

// ErrNotText is returned by ReadText when a file is not valid UTF-8.
var ErrNotText = errors.New("file is not valid UTF-8 text")

// SourceFSAdapter abstracts filesystem-specific operations that the domain layer
// relies on when scanning and rewriting packages. It hides direct `os`
// access so the workflow logic can be tested without touching the disk.
//
//nolint:interfacebloat // A richer interface keeps workflow logic decoupled from os/fs.
type SourceFSAdapter interface {
	// Walk traverses the tree under root. Returning filepath.SkipDir from fn
	// prunes a directory.
	Walk(ctx context.Context, root m.Path, fn FilepathWalkFunc) error

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(ctx context.Context, path m.Path) ([]byte, error)

	// ReadText loads a file and checks that it decodes as UTF-8. Decoding
	// failures wrap ErrNotText.
	ReadText(ctx context.Context, path m.Path) (m.SourceFile, error)

	// WriteText replaces the content of an existing file atomically,
	// keeping its permissions.
	WriteText(ctx context.Context, file m.SourceFile) error

	// Glob returns the files matching pattern in lexical order.
	Glob(ctx context.Context, pattern string) ([]m.Path, error)

	// FileInfo returns metadata for a path so the domain can check existence or
	// distinguish between files and directories when necessary.
	FileInfo(ctx context.Context, path m.Path) (os.FileInfo, error)

	// RelPath returns the relative path from base to target.
	RelPath(ctx context.Context, base, target m.Path) (m.Path, error)
}

// FilepathWalkFunc mirrors the callback shape used by filepath.Walk. It is
// defined here to avoid leaking the standard-library type directly into the
// domain layer.
type FilepathWalkFunc func(path string, info os.FileInfo, err error) error

// LocalSourceFSAdapter is the concrete SourceFSAdapter backed by the local disk.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter instance ready to
// be wired into the workflow.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// Walk iterates over every file and directory under root in lexical order.
func (a *LocalSourceFSAdapter) Walk(ctx context.Context, root m.Path, fn FilepathWalkFunc) error {
	return filepath.Walk(string(root), func(path string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		return fn(path, info, err)
	})
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(ctx context.Context, path m.Path) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// #nosec G304 - path comes from the workspace being converted
	return os.ReadFile(string(path))
}

// ReadText loads a file and verifies it is UTF-8.
func (a *LocalSourceFSAdapter) ReadText(ctx context.Context, path m.Path) (m.SourceFile, error) {
	content, err := a.ReadFile(ctx, path)
	if err != nil {
		return m.SourceFile{}, err
	}

	if !utf8.Valid(content) {
		return m.SourceFile{}, fmt.Errorf("%s: %w", path, ErrNotText)
	}

	return m.SourceFile{Path: path, Content: string(content)}, nil
}

// WriteText replaces the target through a synced temporary file and an
// atomic rename. The target must already exist; its permissions are kept.
func (a *LocalSourceFSAdapter) WriteText(ctx context.Context, file m.SourceFile) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := string(file.Path)

	info, err := os.Stat(target)
	if err != nil {
		return err
	}

	if err := renameio.WriteFile(target, []byte(file.Content), info.Mode().Perm(), renameio.WithExistingPermissions()); err != nil {
		return fmt.Errorf("replace %s: %w", file.Path, err)
	}

	return nil
}

// Glob returns files matching pattern; filepath.Glob already sorts them.
func (a *LocalSourceFSAdapter) Glob(ctx context.Context, pattern string) ([]m.Path, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	paths := make([]m.Path, 0, len(matches))

	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}

		paths = append(paths, m.Path(match))
	}

	return paths, nil
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(ctx context.Context, path m.Path) (os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return os.Stat(string(path))
}

// RelPath returns the relative path from base to target.
func (a *LocalSourceFSAdapter) RelPath(_ context.Context, base, target m.Path) (m.Path, error) {
	rel, err := filepath.Rel(string(base), string(target))
	if err != nil {
		return "", err
	}

	return m.Path(rel), nil
}
