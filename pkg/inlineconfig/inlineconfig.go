// Package inlineconfig parses markdownlint-style inline configuration
// comments (<!-- markdownlint-disable MDxxx --> and friends) out of a
// document and turns them into a per-line, per-rule suppression set that the
// lint engine consults after running each rule, so rules themselves stay
// unaware of suppression state.
package inlineconfig

import (
	"regexp"
	"strings"

	"github.com/inkloom/inkloom/pkg/mdast"
)

// wildcard is the internal key used for "every rule" in the disabled-rule map.
const wildcard = "*"

// commentPattern matches a single-line markdownlint control comment, e.g.
// "<!-- markdownlint-disable MD013 MD041 -->" or "<!-- markdownlint-enable -->".
var commentPattern = regexp.MustCompile(
	`<!--\s*markdownlint-(disable-next-line|disable-line|disable-file|disable|enable-file|enable)\s*([^>]*?)\s*-->`,
)

// Suppressions holds the per-line, per-rule suppression state for one file.
type Suppressions struct {
	// lines[line] is the set of rule IDs suppressed for that line, with
	// wildcard meaning "every rule".
	lines map[int]map[string]bool
}

// Allows reports whether ruleID is allowed to report a diagnostic on the
// given 1-based line.
func (s *Suppressions) Allows(ruleID string, line int) bool {
	if s == nil || s.lines == nil {
		return true
	}
	set, ok := s.lines[line]
	if !ok {
		return true
	}
	if set[wildcard] {
		return false
	}
	return !set[ruleID]
}

// DisabledForFile reports whether ruleID (or every rule, via the wildcard)
// is suppressed from some point in the file through EOF by a bare
// "markdownlint-disable"/"disable-file" directive that is never re-enabled.
// Cross-file rules use this to honor a target file's own suppression state
// when they have no single line to check Allows against (the warning is
// about the target file as a whole, not one of its lines).
func (s *Suppressions) DisabledForFile(ruleID string) bool {
	if s == nil || len(s.lines) == 0 {
		return false
	}
	maxLine := 0
	for line := range s.lines {
		if line > maxLine {
			maxLine = line
		}
	}
	return !s.Allows(ruleID, maxLine)
}

// Parse scans a file's raw lines for markdownlint control comments and
// builds the resulting Suppressions. Multi-line or block comments spanning
// more than one physical line are not recognized — control comments are
// expected to live on a single line, matching every flavor's convention.
func Parse(file *mdast.FileSnapshot) *Suppressions {
	s := &Suppressions{lines: make(map[int]map[string]bool)}
	if file == nil {
		return s
	}

	// disabledGlobal and disabledRules track the running toggle state applied
	// to every line AFTER the comment that set it (the comment's own line is
	// never suppressed by its own directive).
	disabledGlobal := false
	disabledRules := make(map[string]bool)

	totalLines := len(file.Lines)
	for lineNum := 1; lineNum <= totalLines; lineNum++ {
		line := string(lineContent(file, lineNum))

		// Apply the running state to this line before processing any
		// directive that appears ON this line (the directive changes state
		// for lines AFTER itself).
		s.applyRunningState(lineNum, disabledGlobal, disabledRules)

		matches := commentPattern.FindAllStringSubmatch(line, -1)
		for _, m := range matches {
			directive := m[1]
			ruleArgs := fieldsUpper(m[2])

			switch directive {
			case "disable-line":
				s.suppressLine(lineNum, ruleArgs)
			case "disable-next-line":
				if lineNum+1 <= totalLines {
					s.suppressLine(lineNum+1, ruleArgs)
				}
			case "disable", "disable-file":
				if len(ruleArgs) == 0 {
					disabledGlobal = true
				} else {
					for _, r := range ruleArgs {
						disabledRules[r] = true
					}
				}
			case "enable", "enable-file":
				if len(ruleArgs) == 0 {
					disabledGlobal = false
					disabledRules = make(map[string]bool)
				} else {
					for _, r := range ruleArgs {
						delete(disabledRules, r)
					}
				}
			}
		}
	}

	return s
}

// applyRunningState marks lineNum as suppressed per the current toggle state.
func (s *Suppressions) applyRunningState(lineNum int, disabledGlobal bool, disabledRules map[string]bool) {
	if !disabledGlobal && len(disabledRules) == 0 {
		return
	}
	set := s.lineSet(lineNum)
	if disabledGlobal {
		set[wildcard] = true
		return
	}
	for r := range disabledRules {
		set[r] = true
	}
}

// suppressLine marks lineNum as suppressed for the given rule IDs (or every
// rule, when ruleArgs is empty), used for -line/-next-line directives.
func (s *Suppressions) suppressLine(lineNum int, ruleArgs []string) {
	set := s.lineSet(lineNum)
	if len(ruleArgs) == 0 {
		set[wildcard] = true
		return
	}
	for _, r := range ruleArgs {
		set[r] = true
	}
}

func (s *Suppressions) lineSet(lineNum int) map[string]bool {
	set, ok := s.lines[lineNum]
	if !ok {
		set = make(map[string]bool)
		s.lines[lineNum] = set
	}
	return set
}

// fieldsUpper splits whitespace/comma-separated rule tokens and upper-cases
// them, so both "MD013" and "md013" match the canonical rule ID.
func fieldsUpper(s string) []string {
	s = strings.ReplaceAll(s, ",", " ")
	fields := strings.Fields(s)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, strings.ToUpper(f))
	}
	return out
}

func lineContent(file *mdast.FileSnapshot, lineNum int) []byte {
	if lineNum < 1 || lineNum > len(file.Lines) {
		return nil
	}
	li := file.Lines[lineNum-1]
	return file.Content[li.StartOffset:li.NewlineStart]
}
