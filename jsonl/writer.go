// Package jsonl appends records to a JSON Lines file, one marshalled value
// per line.
package jsonl

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// Writer appends to a JSONL file. The zero value (or a Writer with an empty
// path) discards everything, so callers can keep the audit log optional
// without nil checks.
type Writer struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

// NewWriter returns a writer for path. The file is created lazily on the
// first Append, so constructing a writer never touches the filesystem.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Append marshals v and writes it as a single line.
func (w *Writer) Append(v any) error {
	if w == nil || w.path == "" {
		return nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	b = append(b, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.f == nil {
		if dir := filepath.Dir(w.path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		w.f = f
	}
	_, err = w.f.Write(b)
	return err
}

// Close closes the underlying file if one was opened.
func (w *Writer) Close() error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f = nil
	return err
}
