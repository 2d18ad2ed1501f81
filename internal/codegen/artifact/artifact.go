// Package artifact models the generated files of one run: their skeleton
// templates, their rendered text and the write-once writer that puts them on
// disk.
package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/Alia5/apigen/internal/codegen/generror"
	"github.com/Alia5/apigen/internal/log"
)

// Kind is the role of a generated file.
type Kind string

const (
	KindForward               Kind = "forward"
	KindHeader                Kind = "header"
	KindImplementation        Kind = "implementation"
	KindCreatorForward        Kind = "creator-forward"
	KindCreatorHeader         Kind = "creator-header"
	KindCreatorImplementation Kind = "creator-implementation"
	KindRegistrationHeader    Kind = "registration-header"
	KindRegistrationSource    Kind = "registration-implementation"
)

// Artifact is one generated file. Path is slash-separated and relative to the output root.
type Artifact struct {
	Kind Kind
	Path string
	Text string
	// Class is the project class the artifact was generated for, if any.
	Class string
}

// Writer writes artifacts below a root directory, each path at most once per run.
type Writer struct {
	root    string
	logger  *slog.Logger
	trace   log.ArtifactLogger
	written map[string]Kind
	order   []string
	dryRun  bool
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithTrace records every written artifact on an artifact logger.
func WithTrace(t log.ArtifactLogger) WriterOption {
	return func(w *Writer) { w.trace = t }
}

// DryRun makes the writer record artifacts without touching the filesystem.
func DryRun() WriterOption {
	return func(w *Writer) { w.dryRun = true }
}

// NewWriter returns a writer rooted at root.
func NewWriter(root string, logger *slog.Logger, opts ...WriterOption) *Writer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	w := &Writer{
		root:    root,
		logger:  logger,
		trace:   log.NewArtifact(nil),
		written: make(map[string]Kind),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Write puts a on disk. Writing the same path twice in one run is an error.
func (w *Writer) Write(a *Artifact) error {
	rel := path.Clean(a.Path)
	if rel == "." || path.IsAbs(rel) || rel == ".." || len(rel) > 2 && rel[:3] == "../" {
		return generror.Configuration(a.Class, a.Path, "", "artifact path escapes the output root")
	}
	if prev, ok := w.written[rel]; ok {
		return generror.Configuration(a.Class, rel, "",
			fmt.Sprintf("artifact written twice in one run (%s, then %s)", prev, a.Kind))
	}

	full := filepath.Join(w.root, filepath.FromSlash(rel))
	if !w.dryRun {
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return generror.IO(full, "create output directory", err)
		}
		if err := os.WriteFile(full, []byte(a.Text), 0o644); err != nil {
			return generror.IO(full, "write artifact", err)
		}
	}
	w.written[rel] = a.Kind
	w.order = append(w.order, rel)
	w.trace.Log(rel, string(a.Kind), []byte(a.Text))
	w.logger.Debug("Wrote artifact", "path", rel, "kind", a.Kind, "bytes", len(a.Text))
	return nil
}

// Written returns the written paths in write order.
func (w *Writer) Written() []string {
	return append([]string(nil), w.order...)
}

// Count returns the number of artifacts written per kind.
func (w *Writer) Count() map[Kind]int {
	out := make(map[Kind]int)
	for _, k := range w.written {
		out[k]++
	}
	return out
}

// Stale lists files below the output root that this run did not write, sorted.
func (w *Writer) Stale() ([]string, error) {
	var stale []string
	err := filepath.WalkDir(w.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(w.root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if _, ok := w.written[rel]; !ok {
			stale = append(stale, rel)
		}
		return nil
	})
	if err != nil {
		return nil, generror.IO(w.root, "list output directory", err)
	}
	sort.Strings(stale)
	return stale, nil
}
