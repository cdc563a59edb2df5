// Package flavorsel resolves the effective Markdown flavor for a given file
// path, combining the configured global default with an optional
// per-file-flavor glob table.
package flavorsel

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/inkloom/inkloom/pkg/config"
)

// Resolve returns the effective flavor for path given cfg. It is a pure
// function of its two arguments: the same (cfg, path) pair always yields the
// same flavor, which is what lets the fix coordinator re-resolve it on every
// pass without risking drift between check and fix phases.
//
// When more than one glob in cfg.PerFileFlavor matches path, the glob with
// the longest literal (non-wildcard) prefix wins; ties are broken by the
// order in cfg.PerFileFlavorOrder. When PerFileFlavorOrder is empty (the
// config loader does not fill it), every pattern in cfg.PerFileFlavor is
// considered and ties are broken by lexical order of the patterns.
func Resolve(cfg *config.Config, path string) config.Flavor {
	if cfg == nil {
		return config.FlavorCommonMark
	}
	if len(cfg.PerFileFlavor) == 0 {
		return defaultFlavor(cfg)
	}

	rel := filepath.ToSlash(path)

	patterns := cfg.PerFileFlavorOrder
	if len(patterns) == 0 {
		patterns = make([]string, 0, len(cfg.PerFileFlavor))
		for pattern := range cfg.PerFileFlavor {
			patterns = append(patterns, pattern)
		}
		sort.Strings(patterns)
	}

	bestPrefixLen := -1
	bestOrder := -1
	best := config.Flavor("")

	for order, pattern := range patterns {
		flavor, ok := cfg.PerFileFlavor[pattern]
		if !ok {
			continue
		}
		if !MatchGlob(pattern, rel) {
			continue
		}
		prefixLen := literalPrefixLen(pattern)
		if prefixLen > bestPrefixLen || (prefixLen == bestPrefixLen && bestOrder == -1) {
			bestPrefixLen = prefixLen
			bestOrder = order
			best = flavor
		}
	}

	if best != "" {
		return config.ResolveFlavor(string(best))
	}
	return defaultFlavor(cfg)
}

func defaultFlavor(cfg *config.Config) config.Flavor {
	if cfg.Flavor == "" {
		return config.FlavorCommonMark
	}
	return config.ResolveFlavor(string(cfg.Flavor))
}

// MatchGlob reports whether path matches pattern, supporting "**" segments
// via doublestar. It tries the pattern against both the full relative path
// and the base filename, matching the permissive behavior callers expect
// from a simple ignore/include glob list.
func MatchGlob(pattern, path string) bool {
	pattern = filepath.ToSlash(pattern)
	path = filepath.ToSlash(path)

	if ok, err := doublestar.Match(pattern, path); err == nil && ok {
		return true
	}
	if ok, err := doublestar.Match(pattern, filepath.Base(path)); err == nil && ok {
		return true
	}
	return false
}

// literalPrefixLen returns the length of the longest literal (wildcard-free)
// prefix of a glob pattern, used to break ties among overlapping globs.
func literalPrefixLen(pattern string) int {
	idx := strings.IndexAny(pattern, "*?[{\\")
	if idx < 0 {
		return len(pattern)
	}
	return idx
}
