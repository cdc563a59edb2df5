// Package fileindex tracks cross-file metadata gathered while linting a
// batch of files, so rules that need to know about files OTHER than the one
// they're currently inspecting (existing-relative-link checks, cross-file
// anchor validation) can consult it instead of re-reading the filesystem.
//
// The index is append-only during the per-file linting phase: each worker
// records its own file's entry once linting completes, and Exists/Get calls
// made later (either by a subsequent pass over the same batch, or by a rule
// running concurrently on a different file) only ever read. That access
// pattern is what makes a sync.RWMutex-guarded map sufficient here instead of
// something more elaborate.
package fileindex

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/inkloom/inkloom/pkg/inlineconfig"
	"github.com/inkloom/inkloom/pkg/lint/refs"
)

// HeadingRef is a lightweight record of one heading in a linted file, kept
// in the index instead of the full AST so cross-file checks don't have to
// hold every batch file's parse tree in memory at once.
type HeadingRef struct {
	Level int
	Text  string
	Line  int
}

// Entry holds the per-file metadata recorded for one linted file.
type Entry struct {
	// ContentHash identifies the exact bytes the metadata below describes.
	ContentHash string

	// Headings lists the file's headings in document order. Reserved for
	// cross-file rules that need target structure beyond anchor existence
	// (e.g. validating a table of contents against another file's outline).
	Headings []HeadingRef

	// Anchors is the file's heading/anchor map, consulted by cross-file
	// fragment validation (e.g. "other.md#some-heading").
	Anchors *refs.AnchorMap

	// Suppressions is the file's inline markdownlint-disable state.
	Suppressions *inlineconfig.Suppressions
}

// Index is a thread-safe, append-only-during-linting registry of per-file
// metadata for one batch run.
type Index struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// New creates an empty Index.
func New() *Index {
	return &Index{entries: make(map[string]Entry)}
}

// normalize resolves path to the absolute, cleaned form used as the map key,
// so callers don't need to agree in advance on relative-vs-absolute or
// slash-vs-backslash spelling.
func normalize(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// Record stores metadata for path, overwriting any previous entry. Called
// once per file after that file's per-file lint pass completes.
func (idx *Index) Record(path string, contentHash string, headings []HeadingRef, anchors *refs.AnchorMap, suppressions *inlineconfig.Suppressions) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.entries[normalize(path)] = Entry{
		ContentHash:  contentHash,
		Headings:     headings,
		Anchors:      anchors,
		Suppressions: suppressions,
	}
}

// Get returns the recorded entry for path, if any.
func (idx *Index) Get(path string) (Entry, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	e, ok := idx.entries[normalize(path)]
	return e, ok
}

// Anchors returns the recorded anchor map for path, or nil if path was not
// part of this batch (or has no headings/anchors of its own).
func (idx *Index) Anchors(path string) *refs.AnchorMap {
	e, ok := idx.Get(path)
	if !ok {
		return nil
	}
	return e.Anchors
}

// Suppressions returns the recorded inline-config suppressions for path, or
// nil if path was not part of this batch.
func (idx *Index) Suppressions(path string) *inlineconfig.Suppressions {
	e, ok := idx.Get(path)
	if !ok {
		return nil
	}
	return e.Suppressions
}

// HeadingsFor returns the recorded headings for path, or nil if path was not
// part of this batch.
func (idx *Index) HeadingsFor(path string) []HeadingRef {
	e, ok := idx.Get(path)
	if !ok {
		return nil
	}
	return e.Headings
}

// Exists reports whether path refers to a file: either one that was part of
// this batch's linted set, or (when it wasn't linted — e.g. a non-Markdown
// asset, or a file excluded from the run) one that simply exists on disk.
// This dual check is what lets MD057 validate links to images and other
// non-Markdown targets, not just to other linted documents.
func (idx *Index) Exists(path string) bool {
	if _, ok := idx.Get(path); ok {
		return true
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
