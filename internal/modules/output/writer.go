package output

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/gofrs/flock"

	"github.com/gnzdotmx/vidscribe/internal/mod"
	"github.com/gnzdotmx/vidscribe/internal/utils"
)

// nonWord matches runs of anything that is not a letter, digit or combining mark.
// Underscores are included so repeated separators collapse.
var nonWord = regexp.MustCompile(`[^\p{L}\p{N}\p{M}]+`)

// fallbackName is used when nothing of the video name survives sanitizing
const fallbackName = "transcript"

// lockRetryDelay is how often a waiting run retries the output lock
const lockRetryDelay = 200 * time.Millisecond

// SanitizeName collapses every run of non-word characters in name to "_"
func SanitizeName(name string) string {
	safe := nonWord.ReplaceAllString(name, "_")
	if safe == "" || safe == "_" {
		return fallbackName
	}
	return safe
}

// Writer persists rendered documents into one directory, all or nothing
type Writer struct {
	dir string
}

// NewWriter creates a writer for dir
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

type staged struct {
	tmp   string
	final string
}

// Write stores every document as {safe}{suffix}. Contents are staged to
// temporary files and renamed into place only after all of them were written;
// on failure no document is left behind. Concurrent writers for the same name
// are serialized by an advisory lock.
func (w *Writer) Write(ctx context.Context, safe string, docs []mod.Document) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	lock := flock.New(filepath.Join(w.dir, "."+safe+".lock"))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("lock output: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("output for %s is locked by another run", safe)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			utils.LogWarning("Failed to release output lock: %v", err)
		}
	}()

	files := make([]staged, 0, len(docs))
	for _, doc := range docs {
		tmp, err := w.stage(safe, doc.Content)
		if err != nil {
			removeAll(files, false)
			return nil, err
		}
		files = append(files, staged{tmp: tmp, final: filepath.Join(w.dir, safe+doc.Suffix)})
	}

	paths := make([]string, 0, len(files))
	for i, f := range files {
		if err := os.Rename(f.tmp, f.final); err != nil {
			removeAll(files[:i], true)
			removeAll(files[i:], false)
			return nil, fmt.Errorf("move %s into place: %w", filepath.Base(f.final), err)
		}
		paths = append(paths, f.final)
	}
	return paths, nil
}

func (w *Writer) stage(safe, content string) (string, error) {
	f, err := os.CreateTemp(w.dir, "."+safe+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("stage output: %w", err)
	}
	_, writeErr := f.WriteString(content)
	syncErr := f.Sync()
	closeErr := f.Close()
	if err := errors.Join(writeErr, syncErr, closeErr); err != nil {
		if rmErr := os.Remove(f.Name()); rmErr != nil {
			utils.LogDebug("Failed to remove staged file %s: %v", f.Name(), rmErr)
		}
		return "", fmt.Errorf("write staged output: %w", err)
	}
	return f.Name(), nil
}

func removeAll(files []staged, renamed bool) {
	for _, f := range files {
		path := f.tmp
		if renamed {
			path = f.final
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			utils.LogDebug("Failed to remove %s: %v", path, err)
		}
	}
}
