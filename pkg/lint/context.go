package lint

import (
	"context"

	"github.com/inkloom/inkloom/pkg/config"
	"github.com/inkloom/inkloom/pkg/fix"
	"github.com/inkloom/inkloom/pkg/inlineconfig"
	"github.com/inkloom/inkloom/pkg/lint/refs"
	"github.com/inkloom/inkloom/pkg/mdast"
)

// RuleContext provides all context needed by a rule to perform linting.
//
// Design note: RuleContext stores context.Context as a field (Ctx) rather than
// passing it as a method parameter. This is acceptable because RuleContext is
// a short-lived parameter object created per-rule-invocation, not a long-lived
// struct. This design simplifies the Rule interface (single Apply method) while
// still providing cancellation support via the Cancelled() helper.
type RuleContext struct {
	// Ctx is the context for cancellation and timeouts.
	Ctx context.Context

	// File is the parsed FileSnapshot.
	File *mdast.FileSnapshot

	// Root is the AST root node (convenience alias for File.Root).
	Root *mdast.Node

	// Config is the resolved configuration.
	Config *config.Config

	// RuleConfig is the rule-specific configuration (may be nil).
	RuleConfig *config.RuleConfig

	// Builder accumulates text edits for auto-fix.
	Builder *fix.EditBuilder

	// Registry provides access to the rule registry for name lookups.
	Registry *Registry

	// BaseDir is the directory relative-link targets are resolved against
	// (normally the directory containing File.Path). Used by cross-file
	// checks such as MD057.
	BaseDir string

	// FileIndex provides read access to the cross-file metadata (headings,
	// anchors, suppressions) of files already recorded in the current batch
	// run. It is set during per-file linting; nil outside batch runs.
	FileIndex CrossFileIndex

	// refCtx is the cached reference context, lazily initialized.
	refCtx *refs.Context
}

// CrossFileIndex is the read-only view of other linted files that
// cross-file rules (e.g. MD057) consult. Defined here, rather than
// importing pkg/fileindex directly, to avoid a dependency cycle between
// pkg/lint and pkg/fileindex (which itself depends on pkg/lint/refs).
type CrossFileIndex interface {
	// Exists reports whether a file at the given canonical absolute path
	// was part of the linted set (used to distinguish "file not linted"
	// from "file does not exist" when that distinction matters).
	Exists(path string) bool

	// Anchors returns the recorded heading/anchor map for the given
	// canonical absolute path, or nil if that file wasn't part of this
	// batch. Lets a cross-file rule validate a fragment like
	// "other.md#section" against the target file's actual headings
	// instead of only checking the file itself exists.
	Anchors(path string) *refs.AnchorMap

	// Suppressions returns the recorded inline-config suppression state
	// for the given canonical absolute path, or nil if that file wasn't
	// part of this batch. A cross-file warning about file B must honor
	// B's own suppressions, not the suppressions of the file that linked
	// to it.
	Suppressions(path string) *inlineconfig.Suppressions
}

// NewRuleContext creates a RuleContext for the given file and configuration.
func NewRuleContext(
	ctx context.Context,
	file *mdast.FileSnapshot,
	cfg *config.Config,
	ruleCfg *config.RuleConfig,
) *RuleContext {
	var root *mdast.Node
	if file != nil {
		root = file.Root
	}

	return &RuleContext{
		Ctx:        ctx,
		File:       file,
		Root:       root,
		Config:     cfg,
		RuleConfig: ruleCfg,
		Builder:    fix.NewEditBuilder(),
	}
}

// Cancelled returns true if the context has been cancelled.
func (rc *RuleContext) Cancelled() bool {
	select {
	case <-rc.Ctx.Done():
		return true
	default:
		return false
	}
}

// Option returns a rule-specific option value, or the default if not set.
func (rc *RuleContext) Option(key string, defaultValue any) any {
	if rc.RuleConfig == nil || rc.RuleConfig.Options == nil {
		return defaultValue
	}
	if v, ok := rc.RuleConfig.Options[key]; ok {
		return v
	}
	return defaultValue
}

// OptionInt returns a rule-specific integer option, or the default.
func (rc *RuleContext) OptionInt(key string, defaultValue int) int {
	v := rc.Option(key, defaultValue)
	switch val := v.(type) {
	case int:
		return val
	case float64:
		return int(val)
	default:
		return defaultValue
	}
}

// OptionString returns a rule-specific string option, or the default.
func (rc *RuleContext) OptionString(key string, defaultValue string) string {
	v := rc.Option(key, defaultValue)
	if s, ok := v.(string); ok {
		return s
	}
	return defaultValue
}

// OptionBool returns a rule-specific boolean option, or the default.
func (rc *RuleContext) OptionBool(key string, defaultValue bool) bool {
	v := rc.Option(key, defaultValue)
	if b, ok := v.(bool); ok {
		return b
	}
	return defaultValue
}

// OptionStringSlice returns a rule-specific string slice option, or the default.
func (rc *RuleContext) OptionStringSlice(key string, defaultValue []string) []string {
	v := rc.Option(key, defaultValue)
	if slice, ok := v.([]string); ok {
		return slice
	}
	// Handle []interface{} from YAML/JSON parsing
	if iface, ok := v.([]interface{}); ok {
		result := make([]string, 0, len(iface))
		for _, item := range iface {
			if s, ok := item.(string); ok {
				result = append(result, s)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// fileContent returns the current file's raw content, or nil if there is no file.
func (rc *RuleContext) fileContent() []byte {
	if rc.File == nil {
		return nil
	}
	return rc.File.Content
}

// IsLineInCodeBlock reports whether lineNum falls within a fenced or
// indented code block in the current file.
func (rc *RuleContext) IsLineInCodeBlock(lineNum int) bool {
	return IsLineInCodeBlock(rc.File, rc.Root, lineNum)
}

// RefContext returns the reference context for this file, building it lazily.
// The reference context contains all link/image usages, reference definitions,
// and document anchors needed by reference-tracking rules (MD051-MD054).
func (rc *RuleContext) RefContext() *refs.Context {
	if rc.refCtx == nil {
		style := config.AnchorStyleGitHub
		if rc.Config != nil && rc.Config.AnchorStyle != "" {
			style = rc.Config.AnchorStyle
		}
		rc.refCtx = refs.CollectWithStyle(rc.Root, rc.File, style)
	}
	return rc.refCtx
}
