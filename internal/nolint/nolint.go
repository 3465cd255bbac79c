package nolint

import (
	"bufio"
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/gnolang/tealer/internal/teal"
	tt "github.com/gnolang/tealer/internal/types"
)

const nolintPrefix = "//nolint"

// Manager manages nolint scopes of one TEAL file and checks if a line is nolinted.
type Manager struct {
	scopes []nolintScope
}

// nolintScope represents a line range in the code where nolint applies.
type nolintScope struct {
	rules map[string]struct{}
	start int
	end   int
}

type sourceLine struct {
	number  int
	hasCode bool
	comment string
}

// ParseSource scans TEAL source for nolint comments and returns a Manager.
//
//   - a nolint comment after an instruction applies to that line
//   - a nolint comment on its own line applies up to the next instruction
//   - a nolint comment before the first instruction applies to the whole file
func ParseSource(src []byte) *Manager {
	lines := scanLines(src)
	manager := &Manager{}
	seenCode := false

	for i, line := range lines {
		if line.comment != "" {
			ns, err := parseComment(line.comment)
			if err == nil {
				switch {
				case line.hasCode:
					ns.start, ns.end = line.number, line.number
				case !seenCode:
					ns.start, ns.end = 1, math.MaxInt
				default:
					ns.start = line.number
					ns.end = nextCodeLine(lines[i+1:], line.number)
				}
				manager.scopes = append(manager.scopes, ns)
			}
		}
		if line.hasCode {
			seenCode = true
		}
	}
	return manager
}

func scanLines(src []byte) []sourceLine {
	var lines []sourceLine
	scanner := bufio.NewScanner(bytes.NewReader(src))
	scanner.Buffer(make([]byte, 0, 64*1024), len(src)+1)
	n := 0
	for scanner.Scan() {
		n++
		text := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(text, "#pragma") {
			continue
		}
		fields, comment := teal.SplitComment(text)
		lines = append(lines, sourceLine{
			number:  n,
			hasCode: isCode(fields),
			comment: comment,
		})
	}
	return lines
}

// isCode reports whether fields hold an instruction; a bare label does not count.
func isCode(fields []string) bool {
	if len(fields) == 0 {
		return false
	}
	if len(fields) == 1 && strings.HasSuffix(fields[0], ":") {
		return false
	}
	return true
}

func nextCodeLine(rest []sourceLine, fallback int) int {
	for _, l := range rest {
		if l.hasCode {
			return l.number
		}
	}
	return fallback
}

// parseComment parses a single nolint comment.
func parseComment(text string) (nolintScope, error) {
	var ns nolintScope
	if !strings.HasPrefix(text, nolintPrefix) {
		return ns, fmt.Errorf("invalid nolint comment")
	}

	rest := text[len(nolintPrefix):]

	// A nolint comment can either have a list of detectors after a colon (:)
	// or if none are specified, it applies to all detectors
	if len(rest) > 0 && rest[0] != ':' {
		return ns, fmt.Errorf("invalid nolint comment format")
	}

	if len(rest) > 0 && rest[0] == ':' {
		rest = strings.TrimSpace(rest[1:])
		if rest == "" {
			return ns, fmt.Errorf("invalid nolint comment: no detectors specified after colon")
		}
	}
	ns.rules = parseIgnoreRuleNames(rest)
	return ns, nil
}

// parseIgnoreRuleNames parses the detector list from the nolint comment.
func parseIgnoreRuleNames(text string) map[string]struct{} {
	rulesMap := make(map[string]struct{})
	if text == "" {
		return rulesMap
	}
	for _, rule := range strings.Split(text, ",") {
		rule = strings.TrimSpace(rule)
		if rule != "" {
			rulesMap[rule] = struct{}{}
		}
	}
	return rulesMap
}

// IsNolint checks if a given line and detector are nolinted.
func (m *Manager) IsNolint(line int, detector string) bool {
	for _, ns := range m.scopes {
		if line < ns.start || line > ns.end {
			continue
		}
		// If the rules list is empty, nolint applies to all detectors
		if len(ns.rules) == 0 {
			return true
		}
		if _, exists := ns.rules[detector]; exists {
			return true
		}
	}
	return false
}

// Filter drops findings whose every implicated block and instruction starts
// on a nolinted line. Findings are never rewritten.
func (m *Manager) Filter(findings []tt.Finding) []tt.Finding {
	if m == nil || len(m.scopes) == 0 {
		return findings
	}
	filtered := make([]tt.Finding, 0, len(findings))
	for _, f := range findings {
		if !m.suppressed(f) {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

func (m *Manager) suppressed(f tt.Finding) bool {
	var lines []int
	for _, b := range f.Blocks {
		lines = append(lines, b.Entry().Line())
	}
	for _, ins := range f.Instructions {
		lines = append(lines, ins.Line())
	}
	if len(lines) == 0 {
		return false
	}
	for _, line := range lines {
		if !m.IsNolint(line, f.Detector) {
			return false
		}
	}
	return true
}
