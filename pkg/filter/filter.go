// Package filter is a small host for per-file build stages. A Filter walks
// an input tree, asks its Transform for a cache key per file, reuses a
// memoized result when the key is known, and writes one output file per
// input. Stale outputs from earlier passes are pruned.
//
// The Transform decides what a result is; the Filter only moves bytes and
// results around.
package filter

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Transform is the per-file callback set a stage plugs into a Filter.
type Transform[R any] interface {
	// CacheKey must be deterministic for identical inputs.
	CacheKey(contents []byte, relPath string) string
	// ProcessFile computes the result for one file. Called only on cache miss.
	ProcessFile(contents []byte, relPath string) (R, error)
	// PostProcessFile runs for every file on every pass, cached or not.
	PostProcessFile(result R) R
	// Output is the content written for the file.
	Output(result R) string
}

// Options configures a Filter.
type Options struct {
	InputDir  string
	OutputDir string
	// Extensions selects input files, e.g. [".hbs"].
	Extensions []string
	// TargetExtension replaces the input extension on output files.
	TargetExtension string
	// Jobs bounds concurrent ProcessFile calls. Zero means GOMAXPROCS.
	Jobs int
	// Annotation labels log lines.
	Annotation string
	Logger     *slog.Logger
}

// Stats summarizes one Build.
type Stats struct {
	Files     int
	CacheHits int
	Removed   int
}

// Filter runs Transforms over a directory tree.
type Filter[R any] struct {
	opts  Options
	store Store[R]
}

// New returns a Filter. A nil store memoizes in memory only.
func New[R any](opts Options, store Store[R]) *Filter[R] {
	if store == nil {
		store = NewMemoryStore[R]()
	}
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.GOMAXPROCS(0)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Filter[R]{opts: opts, store: store}
}

// OutputPath maps an input-relative path to its output-relative path.
func (f *Filter[R]) OutputPath(relPath string) string {
	return strings.TrimSuffix(relPath, path.Ext(relPath)) + f.opts.TargetExtension
}

type entry[R any] struct {
	rel    string
	result R
	cached bool
}

// Build runs one pass: process every matching file (in parallel), then
// post-process and write outputs in sorted path order. When processing
// fails, the files that did complete are still post-processed (in sorted
// order, without writing outputs) before the error is returned.
func (f *Filter[R]) Build(ctx context.Context, t Transform[R]) (Stats, error) {
	log := f.opts.Logger.With("annotation", f.opts.Annotation)

	files, err := f.inputFiles()
	if err != nil {
		return Stats{}, err
	}

	entries := make([]entry[R], len(files))
	done := make([]bool, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.Jobs)
	for i, rel := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e, err := f.processOne(t, rel)
			if err != nil {
				return err
			}
			entries[i] = e
			done[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for i, e := range entries {
			if done[i] {
				t.PostProcessFile(e.result)
			}
		}
		return Stats{}, err
	}

	stats := Stats{Files: len(files)}
	produced := make(map[string]bool, len(files))
	for _, e := range entries {
		if e.cached {
			stats.CacheHits++
		}
		r := t.PostProcessFile(e.result)
		out := f.OutputPath(e.rel)
		produced[out] = true
		if err := writeFile(filepath.Join(f.opts.OutputDir, filepath.FromSlash(out)), t.Output(r)); err != nil {
			return stats, err
		}
		log.Debug("wrote output", "file", e.rel, "output", out, "cached", e.cached)
	}

	removed, err := f.prune(produced)
	stats.Removed = removed
	if err != nil {
		return stats, err
	}
	return stats, nil
}

func (f *Filter[R]) processOne(t Transform[R], rel string) (entry[R], error) {
	contents, err := os.ReadFile(filepath.Join(f.opts.InputDir, filepath.FromSlash(rel)))
	if err != nil {
		return entry[R]{}, fmt.Errorf("read %s: %w", rel, err)
	}

	key := t.CacheKey(contents, rel)
	if r, ok, err := f.store.Get(key); err != nil {
		f.opts.Logger.Warn("cache read failed", "file", rel, "error", err)
	} else if ok {
		return entry[R]{rel: rel, result: r, cached: true}, nil
	}

	r, err := t.ProcessFile(contents, rel)
	if err != nil {
		return entry[R]{}, fmt.Errorf("process %s: %w", rel, err)
	}
	if err := f.store.Put(key, r); err != nil {
		f.opts.Logger.Warn("cache write failed", "file", rel, "error", err)
	}
	return entry[R]{rel: rel, result: r}, nil
}

// inputFiles returns slash-separated relative paths of matching files, sorted.
func (f *Filter[R]) inputFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(f.opts.InputDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !f.matches(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(f.opts.InputDir, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list inputs: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

func (f *Filter[R]) matches(name string) bool {
	for _, ext := range f.opts.Extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// prune removes target files under OutputDir that this pass did not produce.
func (f *Filter[R]) prune(produced map[string]bool) (int, error) {
	removed := 0
	err := filepath.WalkDir(f.opts.OutputDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), f.opts.TargetExtension) {
			return nil
		}
		rel, err := filepath.Rel(f.opts.OutputDir, p)
		if err != nil {
			return err
		}
		if produced[filepath.ToSlash(rel)] {
			return nil
		}
		if err := os.Remove(p); err != nil {
			return err
		}
		removed++
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("prune outputs: %w", err)
	}
	return removed, nil
}

func writeFile(p, content string) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
