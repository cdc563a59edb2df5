package rules

import (
	"strings"
)

// reflowElementKind distinguishes the atomic units text_reflow.rs tracks so
// that wrapping a long line never splits a link, image, code span, or
// emphasis run across two output lines.
type reflowElementKind int

const (
	reflowText reflowElementKind = iota
	reflowCode
	reflowLink
	reflowImage
	reflowStrong
	reflowEmphasis
)

// reflowElement is one atomic piece of a line: either wrappable plain text
// or a markdown construct that must stay intact.
type reflowElement struct {
	kind reflowElementKind
	raw  string // exact source text, reproduced verbatim in the output
}

// parseReflowElements splits text into atomic elements, preserving exact
// source syntax for links, images, code spans, and emphasis/strong runs so
// reflowElements can treat them as indivisible words. Mirrors
// parse_markdown_elements in text_reflow.rs; unterminated markers (no
// closing backtick/asterisk/paren) fall back to literal text rather than
// erroring, since a partial markdown construct is still valid line content.
func parseReflowElements(text string) []reflowElement {
	var elements []reflowElement
	remaining := text

	for len(remaining) > 0 {
		next := len(remaining)
		kind := reflowText

		if i := strings.IndexByte(remaining, '`'); i >= 0 && i < next {
			next, kind = i, reflowCode
		}
		if i := strings.Index(remaining, "**"); i >= 0 && i < next {
			next, kind = i, reflowStrong
		}
		if i := strings.IndexByte(remaining, '*'); i >= 0 && i < next && !strings.HasPrefix(remaining[i:], "**") {
			next, kind = i, reflowEmphasis
		}
		if i := strings.IndexByte(remaining, '!'); i >= 0 && i < next && strings.HasPrefix(remaining[i:], "![") {
			if strings.Contains(remaining[i:], "](") {
				next, kind = i, reflowImage
			}
		}
		if i := strings.IndexByte(remaining, '['); i >= 0 && i < next {
			next, kind = i, reflowLink
		}

		if next > 0 {
			elements = append(elements, reflowElement{kind: reflowText, raw: remaining[:next]})
			remaining = remaining[next:]
			if len(remaining) == 0 {
				break
			}
		}

		switch kind {
		case reflowCode:
			if end := strings.IndexByte(remaining[1:], '`'); end >= 0 {
				elements = append(elements, reflowElement{kind: reflowCode, raw: remaining[:end+2]})
				remaining = remaining[end+2:]
			} else {
				elements = append(elements, reflowElement{kind: reflowText, raw: remaining})
				remaining = ""
			}
		case reflowStrong:
			if end := strings.Index(remaining[2:], "**"); end >= 0 {
				elements = append(elements, reflowElement{kind: reflowStrong, raw: remaining[:end+4]})
				remaining = remaining[end+4:]
			} else {
				elements = append(elements, reflowElement{kind: reflowText, raw: "**"})
				remaining = remaining[2:]
			}
		case reflowEmphasis:
			if end := strings.IndexByte(remaining[1:], '*'); end >= 0 {
				elements = append(elements, reflowElement{kind: reflowEmphasis, raw: remaining[:end+2]})
				remaining = remaining[end+2:]
			} else {
				elements = append(elements, reflowElement{kind: reflowText, raw: "*"})
				remaining = remaining[1:]
			}
		case reflowImage, reflowLink:
			raw, rest, ok := parseReflowLinkLike(remaining, kind == reflowImage)
			if ok {
				elements = append(elements, reflowElement{kind: kind, raw: raw})
				remaining = rest
			} else {
				elements = append(elements, reflowElement{kind: reflowText, raw: remaining[:1]})
				remaining = remaining[1:]
			}
		default:
			elements = append(elements, reflowElement{kind: reflowText, raw: remaining})
			remaining = ""
		}
	}

	return elements
}

// parseReflowLinkLike parses a `[text](url)` or `![text](url)` construct
// starting at the head of s. Returns the raw matched text, the remainder of
// s after it, and whether a well-formed link/image was found.
func parseReflowLinkLike(s string, isImage bool) (raw, rest string, ok bool) {
	start := 0
	if isImage {
		start = 1
	}
	if start >= len(s) || s[start] != '[' {
		return "", s, false
	}

	closeBracket := strings.Index(s[start:], "](")
	if closeBracket < 0 {
		return "", s, false
	}
	urlStart := start + closeBracket + 2
	closeParen := strings.IndexByte(s[urlStart:], ')')
	if closeParen < 0 {
		return "", s, false
	}
	end := urlStart + closeParen + 1
	return s[:end], s[end:], true
}

// displayWidth returns the element's rendered length in runes, matching
// Element::len in text_reflow.rs: delimiters count toward line width since
// they occupy columns in the source.
func (e reflowElement) displayWidth() int {
	return len([]rune(e.raw))
}

// reflowElementsToLines packs elements word-by-word into lines no longer
// than maxLen, treating non-text elements as single indivisible words.
// Mirrors reflow_elements in text_reflow.rs.
func reflowElementsToLines(elements []reflowElement, maxLen int) []string {
	var lines []string
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if cur.Len() > 0 {
			lines = append(lines, strings.TrimRight(cur.String(), " "))
		}
		cur.Reset()
		curLen = 0
	}

	appendWord := func(word string, wordLen int) {
		if curLen > 0 && curLen+1+wordLen > maxLen {
			flush()
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(word)
		curLen += wordLen
	}

	for _, el := range elements {
		if el.kind == reflowText {
			for _, word := range strings.Fields(el.raw) {
				appendWord(word, len([]rune(word)))
			}
			continue
		}
		appendWord(el.raw, el.displayWidth())
	}

	flush()
	return lines
}

// reflowLine wraps a single logical line of markdown body text (no leading
// prefix) to maxLen, keeping links, images, code spans, and emphasis/strong
// runs intact. Returns nil if the line already fits.
func reflowLine(text string, maxLen int) []string {
	if len([]rune(text)) <= maxLen {
		return nil
	}
	return reflowElementsToLines(parseReflowElements(text), maxLen)
}
