package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"composify.dev/pkg/composify/internal/adapter"
	"composify.dev/pkg/composify/internal/domain/recognizers"
	m "composify.dev/pkg/composify/internal/model"
)

// DefaultSkipDirs are directory names never descended during discovery.
var DefaultSkipDirs = []string{".git", "build", "install", "log"}

// Discoverer finds node classes whose constructors can be converted.
type Discoverer interface {
	// Discover walks root and returns one candidate per matching constructor
	// definition. Paths whose root-relative form matches any exclude regex
	// are ignored.
	Discover(ctx context.Context, root m.Path, exclude []string) ([]m.NodeCandidate, error)
}

type discoverer struct {
	adapter.SourceFSAdapter
	skipDirs map[string]struct{}
}

// NewDiscoverer creates a Discoverer that reads through fsAdapter and skips
// the named directories.
func NewDiscoverer(fsAdapter adapter.SourceFSAdapter, skipDirs ...string) Discoverer {
	skip := make(map[string]struct{}, len(skipDirs))
	for _, dir := range skipDirs {
		skip[dir] = struct{}{}
	}

	return &discoverer{SourceFSAdapter: fsAdapter, skipDirs: skip}
}

func (d *discoverer) Discover(ctx context.Context, root m.Path, exclude []string) ([]m.NodeCandidate, error) {
	info, err := d.FileInfo(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("root path error: %s is not a directory", root)
	}

	patterns, err := compileExcludes(exclude)
	if err != nil {
		return nil, err
	}

	var candidates []m.NodeCandidate

	err = d.Walk(ctx, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			slog.Warn("Skipping unreadable path", "path", path, "error", err)

			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if info.IsDir() {
			if _, skip := d.skipDirs[info.Name()]; skip && path != string(root) {
				return filepath.SkipDir
			}

			return nil
		}

		if filepath.Ext(path) != ".cpp" || d.excluded(ctx, root, m.Path(path), patterns) {
			return nil
		}

		candidates = append(candidates, d.scanFile(ctx, m.Path(path))...)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	slog.Debug("Discovery finished", "root", root, "candidates", len(candidates))

	return candidates, nil
}

func (d *discoverer) scanFile(ctx context.Context, path m.Path) []m.NodeCandidate {
	file, err := d.ReadText(ctx, path)
	if err != nil {
		if errors.Is(err, adapter.ErrNotText) {
			slog.Debug("Skipping non-UTF8 file", "path", path)
		} else {
			slog.Warn("Failed to read source", "path", path, "error", err)
		}

		return nil
	}

	var candidates []m.NodeCandidate

	for _, class := range recognizers.MatchNodeConstructors(file.Content) {
		if !recognizers.IsIdentifier(class) {
			continue
		}

		candidates = append(candidates, m.NodeCandidate{Class: class, Path: path})
	}

	return candidates
}

func (d *discoverer) excluded(ctx context.Context, root, path m.Path, patterns []*regexp.Regexp) bool {
	if len(patterns) == 0 {
		return false
	}

	rel, err := d.RelPath(ctx, root, path)
	if err != nil {
		rel = path
	}

	slashed := filepath.ToSlash(string(rel))

	for _, re := range patterns {
		if re.MatchString(slashed) {
			slog.Debug("Excluded by pattern", "path", path, "pattern", re.String())
			return true
		}
	}

	return false
}

func compileExcludes(exclude []string) ([]*regexp.Regexp, error) {
	patterns := make([]*regexp.Regexp, 0, len(exclude))

	for _, expr := range exclude {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", expr, err)
		}

		patterns = append(patterns, re)
	}

	return patterns, nil
}
