// Package watchkind classifies filesystem change events for watch mode,
// distinguishing configuration-file changes (which require a config reload
// before the next lint run) from Markdown source changes, and debouncing
// bursts of events into a single re-run.
package watchkind

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Kind identifies why a watched event should trigger a re-run.
type Kind int

const (
	// KindNone means the event is not interesting (e.g. a Chmod, or a file
	// that is neither a config file nor a recognized Markdown extension).
	KindNone Kind = iota

	// KindSourceFile means a Markdown file was created, modified, or removed.
	KindSourceFile

	// KindConfiguration means a recognized configuration file changed, and
	// the watcher should reload configuration before the next run.
	KindConfiguration
)

// configFileNames lists the exact file names (not extensions) recognized as
// configuration: inkloom's own native YAML config, the TOML-based legacy
// inputs inkloom migrate accepts (pyproject.toml, .rumdl.toml), and
// markdownlint's own files for migration compatibility.
var configFileNames = map[string]bool{
	".inkloom.yaml":       true,
	".inkloom.yml":        true,
	"inkloom.yaml":        true,
	"inkloom.yml":         true,
	"pyproject.toml":      true,
	".rumdl.toml":         true,
	"rumdl.toml":          true,
	".markdownlint.json":  true,
	".markdownlint.jsonc": true,
	".markdownlint.yaml":  true,
	".markdownlint.yml":   true,
	"markdownlint.json":   true,
	"markdownlint.jsonc":  true,
	"markdownlint.yaml":   true,
	"markdownlint.yml":    true,
}

// sourceExtensions lists the file extensions (lowercase, with leading dot)
// recognized as Markdown source.
var sourceExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".mdown":    true,
	".mkd":      true,
	".mdx":      true,
}

// Classify reports what kind of change event occurred. Only Create, Write,
// and Remove operations are considered; Chmod and Rename-only events (with
// no accompanying Create/Write/Remove on the same path) are not, since they
// don't reflect a content change worth re-linting over.
func Classify(event fsnotify.Event) Kind {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Remove) {
		return KindNone
	}

	base := filepath.Base(event.Name)
	if configFileNames[base] {
		return KindConfiguration
	}

	ext := strings.ToLower(filepath.Ext(event.Name))
	if sourceExtensions[ext] {
		return KindSourceFile
	}

	return KindNone
}

// Debouncer collapses a burst of events arriving within Window into a
// single resulting Kind, with KindConfiguration taking precedence over
// KindSourceFile if any event in the window was a configuration change —
// reloading config is strictly more thorough than a plain re-lint, so
// whichever one a burst contains, the config reload always wins.
type Debouncer struct {
	// Window is the debounce duration. Zero means DefaultWindow.
	Window time.Duration

	mu      sync.Mutex
	pending Kind
	timer   *time.Timer
}

// DefaultWindow is the debounce window used when Debouncer.Window is zero,
// matching the original tool's 100ms debounce: short enough to feel
// responsive, long enough to coalesce the handful of events a single save
// typically produces (e.g. a temp-file-then-rename editor write pattern).
const DefaultWindow = 100 * time.Millisecond

// NewDebouncer creates a Debouncer using DefaultWindow.
func NewDebouncer() *Debouncer {
	return &Debouncer{Window: DefaultWindow}
}

// window returns the effective debounce window.
func (d *Debouncer) window() time.Duration {
	if d.Window <= 0 {
		return DefaultWindow
	}
	return d.Window
}

// Add records one classified event. If kind is KindNone it is ignored. fire
// is called at most once per debounce window, with the highest-precedence
// Kind seen during that window (KindConfiguration beats KindSourceFile).
func (d *Debouncer) Add(kind Kind, fire func(Kind)) {
	if kind == KindNone {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if kind == KindConfiguration || d.pending == KindNone {
		d.pending = kind
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window(), func() {
		d.mu.Lock()
		result := d.pending
		d.pending = KindNone
		d.mu.Unlock()
		if result != KindNone {
			fire(result)
		}
	})
}
