package lint

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/inkloom/inkloom/pkg/config"
	"github.com/inkloom/inkloom/pkg/fix"
	"github.com/inkloom/inkloom/pkg/flavorsel"
	"github.com/inkloom/inkloom/pkg/inlineconfig"
	"github.com/inkloom/inkloom/pkg/lint/refs"
	"github.com/inkloom/inkloom/pkg/mdast"
)

// HeadingInfo is a lightweight record of one heading in a linted file. The
// engine collects these alongside a file's anchors and suppressions so a
// batch runner can populate a cross-file index without retaining the full
// parse tree for every file in the run.
type HeadingInfo struct {
	Level int
	Text  string
	Line  int
}

// FileResult contains the results of linting a single file.
type FileResult struct {
	// Snapshot is the parsed file.
	Snapshot *mdast.FileSnapshot

	// Diagnostics contains all issues found.
	Diagnostics []Diagnostic

	// Edits contains validated, sorted edits for auto-fix.
	// Empty if no fixes are available or --fix was not requested.
	Edits []fix.TextEdit

	// SkippedEdits contains edits that were skipped due to conflicts.
	// When multiple edits overlap, earlier edits (by start position) take precedence.
	SkippedEdits []fix.TextEdit

	// EditConflicts is true if any edits were skipped due to conflicts.
	EditConflicts bool

	// RuleErrors contains any errors from rule execution.
	RuleErrors map[string]error

	// Suppressions is this file's parsed inline markdownlint-disable state.
	// Exposed on the result (rather than kept local to LintFile) so a batch
	// runner can record it into a cross-file index: a warning about this
	// file raised while linting some OTHER file must still honor this
	// file's own suppressions.
	Suppressions *inlineconfig.Suppressions

	// Anchors is this file's heading/anchor map, used by cross-file rules
	// to validate fragments like "other.md#section" against the target
	// file's actual headings.
	Anchors *refs.AnchorMap

	// Headings lists this file's headings in document order, for cross-file
	// rules that need target structure beyond anchor existence.
	Headings []HeadingInfo
}

// HasIssues returns true if any diagnostics were found.
func (fr *FileResult) HasIssues() bool {
	return len(fr.Diagnostics) > 0
}

// HasFixes returns true if any fixes are available.
func (fr *FileResult) HasFixes() bool {
	return len(fr.Edits) > 0
}

// IssueCount returns the total number of diagnostics.
func (fr *FileResult) IssueCount() int {
	return len(fr.Diagnostics)
}

// FixableCount returns the number of diagnostics with fixes.
func (fr *FileResult) FixableCount() int {
	count := 0
	for _, d := range fr.Diagnostics {
		if d.HasFix() {
			count++
		}
	}
	return count
}

// Engine coordinates parsing and rule execution for linting.
type Engine struct {
	// Parser parses Markdown files into FileSnapshots. LintFile uses it only
	// when ParserFactory is nil.
	Parser Parser

	// ParserFactory, when set, resolves a flavor-specific Parser per file
	// based on the file's effective flavor (global default overridden by
	// cfg.PerFileFlavor, see pkg/flavorsel.Resolve). Takes precedence over
	// Parser when non-nil.
	ParserFactory ParserFactory

	// Registry holds all available rules.
	Registry *Registry

	// FileIndex, when set, is threaded into every RuleContext so cross-file
	// rules (e.g. MD057) can consult other files' linted metadata.
	FileIndex CrossFileIndex
}

// NewEngine creates a new Engine with the given parser and registry.
func NewEngine(parser Parser, registry *Registry) *Engine {
	return &Engine{
		Parser:   parser,
		Registry: registry,
	}
}

// LintFile parses and lints a single file.
func (e *Engine) LintFile(
	ctx context.Context,
	path string,
	content []byte,
	cfg *config.Config,
) (*FileResult, error) {
	// Resolve the effective parser for this file's flavor, falling back to
	// the Engine's static Parser when no factory is configured.
	p := e.Parser
	if e.ParserFactory != nil {
		p = e.ParserFactory.ForFlavor(flavorsel.Resolve(cfg, path))
	}

	// Parse the file.
	snapshot, err := p.Parse(ctx, path, content)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	// Resolve which rules to run.
	resolved := ResolveRules(e.Registry, cfg)

	// Parse inline markdownlint-disable/-enable control comments so their
	// suppressions can be applied to every rule's diagnostics below, without
	// each rule needing to be aware of them.
	suppressions := inlineconfig.Parse(snapshot)

	result := &FileResult{
		Snapshot:    snapshot,
		Diagnostics: nil,
		Edits:       nil,
		RuleErrors:  make(map[string]error),
	}

	// Collect all edits for validation.
	var allEdits []fix.TextEdit

	// Run each rule.
	for _, rr := range resolved {
		// Check for cancellation.
		select {
		case <-ctx.Done():
			return result, fmt.Errorf("linting cancelled: %w", ctx.Err())
		default:
		}

		// Create rule context.
		ruleCtx := NewRuleContext(ctx, snapshot, cfg, rr.Config)
		ruleCtx.Registry = e.Registry
		ruleCtx.BaseDir = filepath.Dir(path)
		ruleCtx.FileIndex = e.FileIndex

		// Execute rule.
		diags, err := rr.Rule.Apply(ruleCtx)
		if err != nil {
			result.RuleErrors[rr.Rule.ID()] = err
			continue
		}

		// Process diagnostics, dropping any suppressed by an inline
		// markdownlint-disable comment before they reach the caller.
		kept := diags[:0]
		for diagIdx := range diags {
			if !suppressions.Allows(rr.Rule.ID(), diags[diagIdx].StartLine) {
				continue
			}

			// Apply resolved severity.
			diags[diagIdx].Severity = rr.Severity

			// Ensure file path is set.
			if diags[diagIdx].FilePath == "" {
				diags[diagIdx].FilePath = path
			}

			// Ensure rule name is set for human-readable output.
			if diags[diagIdx].RuleName == "" {
				diags[diagIdx].RuleName = rr.Rule.Name()
			}

			// Collect edits if auto-fix is enabled for this rule.
			if rr.AutoFix && len(diags[diagIdx].FixEdits) > 0 {
				allEdits = append(allEdits, diags[diagIdx].FixEdits...)
			}

			kept = append(kept, diags[diagIdx])
		}

		result.Diagnostics = append(result.Diagnostics, kept...)
	}

	// Collect anchor/heading/suppression metadata for the cross-file index,
	// regardless of whether this particular run is part of a batch: it's
	// cheap relative to the rule passes above, and doing it unconditionally
	// means the runner never has to special-case "are we batching".
	result.Suppressions = suppressions
	style := config.AnchorStyleGitHub
	if cfg != nil && cfg.AnchorStyle != "" {
		style = cfg.AnchorStyle
	}
	refCtx := refs.CollectWithStyle(snapshot.Root, snapshot, style)
	result.Anchors = refCtx.Anchors
	result.Headings = collectHeadingInfo(snapshot.Root)

	// Validate and prepare edits, merging deletions and filtering conflicts.
	if len(allEdits) > 0 {
		accepted, skipped, _, err := fix.PrepareEditsFiltered(allEdits, len(content))
		if err != nil {
			// Validation error (not conflicts - those are filtered).
			// Still include diagnostics but clear edits.
			result.Edits = nil
			result.SkippedEdits = nil
			result.EditConflicts = true
		} else {
			result.Edits = accepted
			result.SkippedEdits = skipped
			result.EditConflicts = len(skipped) > 0
		}
	}

	return result, nil
}

// collectHeadingInfo walks root's headings in document order into the
// lightweight form stored on FileResult and recorded into the cross-file
// index, instead of keeping the AST nodes themselves alive past this file's
// own lint pass.
func collectHeadingInfo(root *mdast.Node) []HeadingInfo {
	nodes := Headings(root)
	if len(nodes) == 0 {
		return nil
	}
	out := make([]HeadingInfo, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, HeadingInfo{
			Level: HeadingLevel(n),
			Text:  HeadingText(n),
			Line:  n.SourcePosition().StartLine,
		})
	}
	return out
}
