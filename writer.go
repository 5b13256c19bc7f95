package pgts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Writer persists one rendered file.
type Writer interface {
	WriteFile(ctx context.Context, path string, lines []string) error
}

// FSWriter writes files to the local filesystem, creating parent
// directories as needed.
type FSWriter struct{}

// WriteFile implements Writer.
func (FSWriter) WriteFile(_ context.Context, path string, lines []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// clearFolder removes everything inside dir but keeps dir itself, so the
// current directory can be used as the output folder. A missing dir is not
// an error.
func clearFolder(dir string) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// writeAll writes every file in parallel, bounded by workers.
func writeAll(ctx context.Context, w Writer, files []File, workers int) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for _, f := range files {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return w.WriteFile(ctx, f.Path, f.Lines)
			}
		})
	}
	return eg.Wait()
}
