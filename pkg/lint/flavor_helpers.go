package lint

import (
	"regexp"

	"github.com/inkloom/inkloom/pkg/config"
)

// Flavor returns the flavor the current file was parsed under, falling back
// to the configured default when the parser did not record one.
func (rc *RuleContext) Flavor() config.Flavor {
	if rc.File != nil && rc.File.Flavor != "" {
		return config.ResolveFlavor(rc.File.Flavor)
	}
	if rc.Config != nil {
		return rc.Config.Flavor
	}
	return config.FlavorCommonMark
}

// obsidianTagPattern matches an Obsidian inline tag: a single '#' immediately
// followed by a tag token (letters, digits, '/', '-', '_'), with nothing else
// on the line but leading/trailing whitespace. A line that starts with two or
// more '#' characters is never a tag — it is left to the heading rules.
var obsidianTagPattern = regexp.MustCompile(`^\s*#[A-Za-z0-9/_-]+\s*$`)

// IsObsidianTag returns true when the flavor is Obsidian and the given
// 1-based line looks like a bare inline tag (e.g. "#todo") rather than a
// malformed ATX heading. Used by MD018 to avoid flagging tags.
func (rc *RuleContext) IsObsidianTag(lineNum int) bool {
	if rc.Flavor() != config.FlavorObsidian {
		return false
	}
	line := LineContent(rc.File, lineNum)
	if len(line) == 0 {
		return false
	}
	return obsidianTagPattern.Match(line)
}

// mkdocsAdmonitionOpener matches an MkDocs/Quarto admonition or callout block
// opener line: "!!! note" / "??? tip \"Title\"" (MkDocs) or ":::{.callout-*}"
// (Quarto fenced div syntax).
var (
	mkdocsAdmonitionOpener = regexp.MustCompile(`^\s*(!!!|\?\?\?\+?)\s+\S+`)
	quartoCalloutOpener    = regexp.MustCompile(`^:::+\s*\{[^}]*\.callout-\S+[^}]*\}`)
)

// AdmonitionBody returns true when lineNum is part of the indented body of
// an MkDocs or Quarto admonition/callout block, so line-length and
// indented-code-block rules can treat it as prose rather than code.
func (rc *RuleContext) AdmonitionBody(lineNum int) bool {
	flavor := rc.Flavor()
	if flavor != config.FlavorMkDocs && flavor != config.FlavorQuarto {
		return false
	}
	if rc.File == nil || lineNum < 2 {
		return false
	}

	switch flavor {
	case config.FlavorMkDocs:
		for ln := lineNum - 1; ln >= 1; ln-- {
			line := LineContent(rc.File, ln)
			if mkdocsAdmonitionOpener.Match(line) {
				return true
			}
			if len(line) > 0 && line[0] != ' ' && line[0] != '\t' {
				return false
			}
		}
	case config.FlavorQuarto:
		depth := 0
		for ln := lineNum - 1; ln >= 1; ln-- {
			line := LineContent(rc.File, ln)
			switch {
			case quartoCalloutOpener.Match(line):
				if depth == 0 {
					return true
				}
				depth--
			case isFenceCloser(line):
				depth++
			}
		}
	}
	return false
}

func isFenceCloser(line []byte) bool {
	trimmed := line
	for len(trimmed) > 0 && (trimmed[0] == ' ' || trimmed[0] == '\t') {
		trimmed = trimmed[1:]
	}
	for _, b := range trimmed {
		if b != ':' {
			return false
		}
	}
	return len(trimmed) >= 3
}

// mkdocsSnippetMarker matches an MkDocs snippet include marker line, e.g.
// "--8<-- \"path/to/file.md\"".
var mkdocsSnippetMarker = regexp.MustCompile(`^\s*--8<--`)

// SnippetSpan returns true when lineNum is an MkDocs snippet marker line,
// exempt from MD013/MD033 since its content is a file reference, not prose.
func (rc *RuleContext) SnippetSpan(lineNum int) bool {
	if rc.Flavor() != config.FlavorMkDocs {
		return false
	}
	return mkdocsSnippetMarker.Match(LineContent(rc.File, lineNum))
}

// jsxComponentOpener matches an MDX JSX element opener: '<' or '</' followed
// immediately by a capitalized identifier, e.g. "<Alert>" or "</Alert.Icon>".
// MDX authors use capitalization to distinguish component usage from literal
// HTML elements, which stay lowercase.
var jsxComponentOpener = regexp.MustCompile(`^\s*</?[A-Z][A-Za-z0-9.]*`)

// IsJSXComponentLine returns true when the flavor is MDX and lineNum opens
// with a capitalized JSX component tag. MD033 classifies such elements as
// part of the document's normal markup, widening its HTML allow-list rather
// than treating components as raw HTML to restrict.
func (rc *RuleContext) IsJSXComponentLine(lineNum int) bool {
	if rc.Flavor() != config.FlavorMDX {
		return false
	}
	return jsxComponentOpener.Match(LineContent(rc.File, lineNum))
}
