package rules

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/inkloom/inkloom/pkg/config"
	"github.com/inkloom/inkloom/pkg/lint"
	"github.com/inkloom/inkloom/pkg/lint/refs"
)

// ExistingRelativeLinksRule checks that relative link/image destinations
// point at files that actually exist (MD057).
type ExistingRelativeLinksRule struct {
	lint.BaseRule
}

// NewExistingRelativeLinksRule creates a new existing-relative-links rule.
func NewExistingRelativeLinksRule() *ExistingRelativeLinksRule {
	return &ExistingRelativeLinksRule{
		BaseRule: lint.NewBaseRule(
			"MD057",
			"existing-relative-links",
			"Relative links should point to files that exist",
			[]string{"links"},
			false, // Not auto-fixable - we can't guess the intended target.
		),
	}
}

// DefaultEnabled returns false: this rule needs BaseDir to resolve correctly
// and can false-positive on excerpts/fragments linted without their
// surrounding project, so it opts in rather than running everywhere by default.
func (r *ExistingRelativeLinksRule) DefaultEnabled() bool {
	return false
}

// Apply checks every relative link/image destination against the
// filesystem (or, when available, the cross-file index built from the rest
// of the batch).
func (r *ExistingRelativeLinksRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Root == nil || ctx.File == nil {
		return nil, nil
	}

	refCtx := ctx.RefContext()
	var diags []lint.Diagnostic

	for _, usage := range refCtx.Usages {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}

		target := usage.Destination
		if target == "" {
			continue
		}

		// Fragment-only links ("#heading") are MD051's concern, not ours.
		if strings.HasPrefix(target, "#") {
			continue
		}

		if !isRelativeFileTarget(target) {
			continue
		}

		targetPath := stripQueryAndFragment(target)
		if targetPath == "" {
			// A bare "?query" or "#fragment" with nothing else resolves to
			// the current file, which obviously exists.
			continue
		}

		resolved := resolveTarget(ctx, targetPath)
		if !targetExists(ctx, resolved) {
			kind := "link"
			if usage.IsImage {
				kind = "image"
			}
			diag := lint.NewDiagnosticAt(r.ID(), ctx.File.Path, usage.Position,
				fmt.Sprintf("Relative %s target %q does not exist", kind, targetPath)).
				WithSeverity(config.SeverityWarning).
				WithSuggestion("Fix the path or remove the link").
				Build()
			diags = append(diags, diag)
			continue
		}

		if diag, ok := r.checkCrossFileFragment(ctx, target, targetPath, resolved, usage); ok {
			diags = append(diags, diag)
		}
	}

	return diags, nil
}

// checkCrossFileFragment validates a "path#fragment" link's fragment against
// the target file's recorded anchors, when the target was part of this
// batch and the cross-file index has its anchor data. The target file's own
// inline config is honored only where it disables MD057 through the end of
// that file (Suppressions.DisabledForFile); a suppression limited to some
// lines of the target is not consulted.
func (r *ExistingRelativeLinksRule) checkCrossFileFragment(
	ctx *lint.RuleContext,
	rawTarget, targetPath, resolved string,
	usage *refs.ReferenceUsage,
) (lint.Diagnostic, bool) {
	if ctx.FileIndex == nil {
		return lint.Diagnostic{}, false
	}

	fragIdx := strings.IndexByte(rawTarget, '#')
	if fragIdx < 0 {
		return lint.Diagnostic{}, false
	}
	fragment := rawTarget[fragIdx+1:]
	if fragment == "" {
		return lint.Diagnostic{}, false
	}

	anchors := ctx.FileIndex.Anchors(resolved)
	if anchors == nil {
		// Target wasn't linted in this batch (or has no headings/anchors);
		// nothing to validate against.
		return lint.Diagnostic{}, false
	}

	anchor := anchors.LookupIgnoreCase(fragment)
	if anchor != nil {
		return lint.Diagnostic{}, false
	}

	if suppressions := ctx.FileIndex.Suppressions(resolved); suppressions != nil {
		// This warning is about the target file as a whole, not one of its
		// lines, so only a file-wide suppression in the target applies —
		// per-line suppressions on a specific heading in the target aren't
		// addressable from here.
		if suppressions.DisabledForFile(r.ID()) {
			return lint.Diagnostic{}, false
		}
	}

	diag := lint.NewDiagnosticAt(r.ID(), ctx.File.Path, usage.Position,
		fmt.Sprintf("Relative link target %q has no heading anchor #%s", targetPath, fragment)).
		WithSeverity(config.SeverityWarning).
		WithSuggestion("Fix the fragment or remove it").
		Build()
	return diag, true
}

// resolveTarget resolves targetPath against ctx.BaseDir. Apply passes the
// result to both targetExists and checkCrossFileFragment, so the existence
// check and the fragment lookup use the same path.
func resolveTarget(ctx *lint.RuleContext, targetPath string) string {
	if filepath.IsAbs(targetPath) {
		return targetPath
	}
	return filepath.Join(ctx.BaseDir, filepath.FromSlash(targetPath))
}

// isRelativeFileTarget reports whether target looks like a filesystem-relative
// path rather than an absolute URL, a root-relative URL, a scheme-qualified
// URI (mailto:, tel:, etc.), or a bare fragment.
func isRelativeFileTarget(target string) bool {
	if target == "" || strings.HasPrefix(target, "#") {
		return false
	}
	// Root-relative paths ("/docs/x.md") are site-relative, not filesystem-
	// relative to the linting file; resolving them needs a site root this
	// rule doesn't have, so they're left unchecked.
	if strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return false
	}
	if u, err := url.Parse(target); err == nil && u.Scheme != "" {
		// Anything with an explicit scheme (http, https, mailto, tel, data,
		// ftp, ...) is not a filesystem path.
		return false
	}
	return true
}

// stripQueryAndFragment removes any "?query" or "#fragment" suffix from a
// relative path, so "image.png?raw=true" and "doc.md#section" resolve to the
// same filesystem target an existence check needs.
func stripQueryAndFragment(target string) string {
	if idx := strings.IndexAny(target, "?#"); idx >= 0 {
		target = target[:idx]
	}
	return target
}

// targetExists checks an already-resolved absolute path via the cross-file
// index when available, falling back to a direct filesystem stat otherwise.
func targetExists(ctx *lint.RuleContext, resolved string) bool {
	if ctx.FileIndex != nil {
		return ctx.FileIndex.Exists(resolved)
	}

	info, err := os.Stat(resolved)
	return err == nil && !info.IsDir()
}
