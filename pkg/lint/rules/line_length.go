package rules

import (
	"fmt"
	"strings"

	"github.com/inkloom/inkloom/pkg/config"
	"github.com/inkloom/inkloom/pkg/fix"
	"github.com/inkloom/inkloom/pkg/lint"
	"github.com/inkloom/inkloom/pkg/mdast"
)

// MaxLineLengthRule checks that lines do not exceed a maximum length.
type MaxLineLengthRule struct {
	lint.BaseRule
}

// NewMaxLineLengthRule creates a new max line length rule.
func NewMaxLineLengthRule() *MaxLineLengthRule {
	return &MaxLineLengthRule{
		BaseRule: lint.NewBaseRule(
			"MD013",
			"line-length",
			"Line length should not exceed the configured maximum",
			[]string{"line_length"},
			true, // Auto-fixable via line wrapping.
		),
	}
}

// defaultMaxLineLength is the default maximum line length.
const defaultMaxLineLength = 120

// Apply checks that no line exceeds the maximum length.
func (r *MaxLineLengthRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.File == nil || len(ctx.File.Lines) == 0 {
		return nil, nil
	}

	maxLength := ctx.OptionInt("max", defaultMaxLineLength)
	ignoreCodeBlocks := ctx.OptionBool("ignore_code_blocks", true)
	ignoreURLs := ctx.OptionBool("ignore_urls", true)

	var diags []lint.Diagnostic

	for lineNum := 1; lineNum <= len(ctx.File.Lines); lineNum++ {
		if ctx.Cancelled() {
			return diags, ctx.Ctx.Err()
		}

		// Skip lines in code blocks if configured, unless the line is really
		// the indented body of an MkDocs/Quarto admonition that the parser
		// misread as an indented code block - that's prose and still wraps.
		if ignoreCodeBlocks && ctx.IsLineInCodeBlock(lineNum) && !ctx.AdmonitionBody(lineNum) {
			continue
		}

		// Snippet include markers are file references, not prose; wrapping
		// them would corrupt the path they carry.
		if ctx.SnippetSpan(lineNum) {
			continue
		}

		length := lint.LineLength(ctx.File, lineNum)
		if length <= maxLength {
			continue
		}

		// Skip lines with URLs if configured.
		if ignoreURLs && lint.LineContainsURL(ctx.File, lineNum) {
			continue
		}

		pos := mdast.SourcePosition{
			StartLine:   lineNum,
			StartColumn: maxLength + 1,
			EndLine:     lineNum,
			EndColumn:   length,
		}

		diagBuilder := lint.NewDiagnosticAt(r.ID(), ctx.File.Path, pos,
			fmt.Sprintf("Line length %d exceeds maximum %d", length, maxLength)).
			WithSeverity(config.SeverityWarning).
			WithSuggestion(fmt.Sprintf("Shorten the line to at most %d characters", maxLength))

		// Add autofix if possible. In reflow mode, links, images, code spans,
		// and emphasis/strong runs wrap as atomic units instead of breaking
		// at any available space.
		reflow := ctx.OptionBool("reflow", false)
		var fixer *fix.EditBuilder
		if reflow {
			fixer = r.buildReflowFix(ctx.File, lineNum, maxLength)
		} else {
			fixer = r.buildWrapFix(ctx.File, lineNum, maxLength)
		}
		if fixer != nil {
			diagBuilder = diagBuilder.WithFix(fixer)
		}

		diags = append(diags, diagBuilder.Build())
	}

	return diags, nil
}

// buildWrapFix creates a fix to wrap a long line at word boundary.
func (r *MaxLineLengthRule) buildWrapFix(
	file *mdast.FileSnapshot,
	lineNum int,
	maxLen int,
) *fix.EditBuilder {
	if lineNum < 1 || lineNum > len(file.Lines) {
		return nil
	}

	lineInfo := file.Lines[lineNum-1]
	content := string(file.Content[lineInfo.StartOffset:lineInfo.NewlineStart])

	// Skip headings.
	if isHeading(content) {
		return nil
	}

	// Skip table lines.
	if isTableLine(content) {
		return nil
	}

	// Get prefix for continuation lines.
	prefix, contentStart := linePrefix(content)

	// Find wrap point (last space before maxLen).
	wrapPoint := findWrapPoint(content, maxLen)
	if wrapPoint <= contentStart {
		return nil // Can't wrap - no suitable break point.
	}

	out := []string{content[:wrapPoint]}
	rest := strings.TrimLeft(content[wrapPoint:], " ")

	// Keep wrapping the continuation word-by-word as long as it still
	// overflows and has a usable break point, so a line needing more than
	// one split (the autofix cases in line_length_test.go each need only
	// one) wraps correctly instead of leaving the remainder too long.
	for iterations := 0; iterations < maxWrapIterations; iterations++ {
		cur := prefix + rest
		if len(cur) <= maxLen {
			out = append(out, cur)
			break
		}
		wp := findWrapPoint(cur, maxLen)
		if wp <= len(prefix) {
			out = append(out, cur)
			break
		}
		out = append(out, cur[:wp])
		rest = strings.TrimLeft(cur[wp:], " ")
	}

	newContent := strings.Join(out, "\n")

	builder := fix.NewEditBuilder()
	builder.ReplaceRange(lineInfo.StartOffset, lineInfo.NewlineStart, newContent)
	return builder
}

// maxWrapIterations bounds the word-wrap loop in buildWrapFix. The loop
// always makes forward progress (each iteration's break point must fall
// after the prefix, shrinking rest), so this is a defensive cap rather than
// an expected limit.
const maxWrapIterations = 10000

// hardBreakSuffix reports the hard-break marker (two trailing spaces or a
// trailing backslash) at the end of content, if any, and the content with
// that marker stripped. An empty suffix means content has no hard break.
func hardBreakSuffix(content string) (body, suffix string) {
	if strings.HasSuffix(content, "  ") {
		return strings.TrimRight(content, " "), "  "
	}
	if strings.HasSuffix(content, `\`) && !strings.HasSuffix(content, `\\`) {
		return content[:len(content)-1], `\`
	}
	return content, ""
}

// buildReflowFix wraps a long line the same way buildWrapFix does for
// prefixes and structural exemptions (headings, tables), but fills each
// output line with atomic markdown elements via reflowLine instead of
// breaking at any space, and reattaches a hard-break marker present on the
// original line to the last output line so the break survives reflow.
func (r *MaxLineLengthRule) buildReflowFix(
	file *mdast.FileSnapshot,
	lineNum int,
	maxLen int,
) *fix.EditBuilder {
	if lineNum < 1 || lineNum > len(file.Lines) {
		return nil
	}

	lineInfo := file.Lines[lineNum-1]
	content := string(file.Content[lineInfo.StartOffset:lineInfo.NewlineStart])

	if isHeading(content) || isTableLine(content) {
		return nil
	}

	prefix, contentStart := linePrefix(content)
	body, breakSuffix := hardBreakSuffix(content[contentStart:])

	wrapped := reflowLine(body, maxLen-len([]rune(prefix)))
	if wrapped == nil {
		return nil
	}

	out := make([]string, len(wrapped))
	for i, w := range wrapped {
		if i == 0 {
			out[i] = content[:contentStart] + w
		} else {
			out[i] = prefix + w
		}
	}
	if breakSuffix != "" {
		out[len(out)-1] += breakSuffix
	}

	builder := fix.NewEditBuilder()
	builder.ReplaceRange(lineInfo.StartOffset, lineInfo.NewlineStart, strings.Join(out, "\n"))
	return builder
}

// linePrefix extracts the prefix for continuation lines.
// Returns the prefix string and the start position of actual content.
func linePrefix(line string) (string, int) {
	pos := 0
	lineLen := len(line)
	var prefixBuilder strings.Builder

	// Skip leading whitespace.
	for pos < lineLen && (line[pos] == ' ' || line[pos] == '\t') {
		_ = prefixBuilder.WriteByte(line[pos]) // strings.Builder.WriteByte never fails
		pos++
	}
	leadingSpace := prefixBuilder.String()
	prefixBuilder.Reset()
	prefixBuilder.WriteString(leadingSpace)

	// Check for blockquote prefix.
	if pos < lineLen && line[pos] == '>' {
		_ = prefixBuilder.WriteByte('>') // strings.Builder.WriteByte never fails
		pos++
		// Skip space after >.
		if pos < lineLen && line[pos] == ' ' {
			_ = prefixBuilder.WriteByte(' ') // strings.Builder.WriteByte never fails
			pos++
		}
		// Recursively check for nested structures.
		nestedPrefix, nestedStart := linePrefix(line[pos:])
		prefixBuilder.WriteString(nestedPrefix)
		return prefixBuilder.String(), pos + nestedStart
	}

	// Check for list markers (-, *, +, or number.).
	listStart := pos
	if pos < lineLen && (line[pos] == '-' || line[pos] == '*' || line[pos] == '+') {
		pos++
		if pos < lineLen && line[pos] == ' ' {
			// List item: continuation uses spaces to align.
			markerLen := pos - listStart + 1
			prefixBuilder.WriteString(strings.Repeat(" ", markerLen))
			pos++
			return prefixBuilder.String(), pos
		}
		pos = listStart // Not a list marker, reset.
	}

	// Check for numbered list (1. or 1)).
	if pos < lineLen && line[pos] >= '0' && line[pos] <= '9' {
		for pos < lineLen && line[pos] >= '0' && line[pos] <= '9' {
			pos++
		}
		if pos < lineLen && (line[pos] == '.' || line[pos] == ')') {
			pos++
			if pos < lineLen && line[pos] == ' ' {
				markerLen := pos - listStart + 1
				prefixBuilder.WriteString(strings.Repeat(" ", markerLen))
				pos++
				return prefixBuilder.String(), pos
			}
		}
		// Not a numbered list, fall through to return leading space.
	}

	// Plain paragraph - no special prefix needed for continuation.
	return leadingSpace, len(leadingSpace)
}

// findWrapPoint finds the last space before maxLen.
func findWrapPoint(line string, maxLen int) int {
	if len(line) <= maxLen {
		return -1
	}

	// Find last space before or at maxLen.
	lastSpace := -1
	for i := 0; i < len(line) && i <= maxLen; i++ {
		if line[i] == ' ' {
			lastSpace = i
		}
	}
	return lastSpace
}

// isHeading checks if a line is a heading.
func isHeading(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return len(trimmed) > 0 && trimmed[0] == '#'
}

// isTableLine checks if a line is part of a table.
func isTableLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return len(trimmed) > 0 && trimmed[0] == '|'
}
