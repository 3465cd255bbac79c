package formatter

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode"

	"github.com/fatih/color"

	"github.com/gnolang/tealer/internal"
	"github.com/gnolang/tealer/internal/detectors"
	tt "github.com/gnolang/tealer/internal/types"
)

const tabWidth = 8

var (
	errorStyle      = color.New(color.FgRed, color.Bold)
	warningStyle    = color.New(color.FgHiYellow, color.Bold)
	infoStyle       = color.New(color.FgHiCyan, color.Bold)
	ruleStyle       = color.New(color.FgYellow, color.Bold)
	fileStyle       = color.New(color.FgCyan, color.Bold)
	lineStyle       = color.New(color.FgHiBlue, color.Bold)
	messageStyle    = color.New(color.FgRed, color.Bold)
	suggestionStyle = color.New(color.FgGreen, color.Bold)
)

// findingFormatter is the interface that wraps the FindingTemplate method.
// Implementations are responsible for the layout of one detector's findings.
type findingFormatter interface {
	FindingTemplate() string
}

// getFindingFormatter returns the formatter registered for detector, or a
// GeneralFindingFormatter when the detector has no dedicated layout.
func getFindingFormatter(detector string) findingFormatter {
	switch detector {
	case detectors.HighComplexityName:
		return &HighComplexityFormatter{}
	default:
		return &GeneralFindingFormatter{}
	}
}

// GenerateFormattedFinding formats findings into a human-readable string.
// snippet holds the lines of the analyzed program and exports maps a detector
// name to the graph file written for its finding.
func GenerateFormattedFinding(findings []tt.Finding, snippet *internal.SourceCode, exports map[string]string) string {
	var builder strings.Builder
	for _, f := range findings {
		formatter := getFindingFormatter(f.Detector)
		builder.WriteString(buildFinding(f, snippet, exports[f.Detector], formatter))
	}
	return builder.String()
}

/***** Finding Formatter Builder *****/

// lineRange is an inclusive range of source lines shown in one snippet.
type lineRange struct {
	Start int
	End   int
}

type FindingData struct {
	Detector        string
	Impact          string
	Confidence      string
	Filename        string
	Padding         string
	StartLine       int
	MaxLineNumWidth int
	Ranges          []lineRange
	Message         string
	Suggestion      string
	Note            string
	Metrics         map[string]int
	SnippetLines    []string
	CommonIndent    string
}

func buildFinding(f tt.Finding, snippet *internal.SourceCode, export string, formatter findingFormatter) string {
	if snippet == nil {
		snippet = &internal.SourceCode{}
	}
	ranges := findingRanges(f)

	endLine := f.StartLine()
	for _, r := range ranges {
		if r.End > endLine {
			endLine = r.End
		}
	}
	maxLineNumWidth := calculateMaxLineNumWidth(endLine)

	var shown []string
	for _, r := range ranges {
		if isValidLineRange(r.Start, r.End, snippet.Lines) {
			shown = append(shown, snippet.Lines[r.Start-1:r.End]...)
		}
	}

	data := FindingData{
		Detector:        f.Detector,
		Impact:          f.Impact.String(),
		Confidence:      f.Confidence.String(),
		Filename:        f.Filename,
		StartLine:       f.StartLine(),
		MaxLineNumWidth: maxLineNumWidth,
		Padding:         strings.Repeat(" ", maxLineNumWidth+1),
		Ranges:          ranges,
		Message:         f.Message,
		Suggestion:      f.Suggestion,
		Note:            exportNote(export),
		Metrics:         f.Metrics,
		SnippetLines:    snippet.Lines,
		CommonIndent:    findCommonIndent(shown),
	}

	funcMap := template.FuncMap{
		"header":         header,
		"snippet":        codeSnippet,
		"message":        message,
		"suggestion":     suggestion,
		"note":           note,
		"complexityInfo": complexityInfo,
	}

	tmpl := template.Must(template.New("finding").Funcs(funcMap).Parse(formatter.FindingTemplate()))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting finding: %v", err)
	}
	return buf.String()
}

// findingRanges returns one range per implicated block, then one per
// implicated instruction.
func findingRanges(f tt.Finding) []lineRange {
	var ranges []lineRange
	for _, b := range f.Blocks {
		start, end := b.Lines()
		ranges = append(ranges, lineRange{Start: start, End: end})
	}
	for _, ins := range f.Instructions {
		ranges = append(ranges, lineRange{Start: ins.Line(), End: ins.Line()})
	}
	return ranges
}

// exportNote points at the written graph file, if any.
func exportNote(path string) string {
	if path == "" {
		return ""
	}
	return "implicated blocks are highlighted in " + path
}

// utils functions used in the text templates

func header(detector, impact, confidence string, maxLineNumWidth int, filename string, startLine int) string {
	var endString string
	switch impact {
	case tt.ImpactHigh.String(), tt.ImpactMedium.String():
		endString = errorStyle.Sprint("error: ")
	case tt.ImpactLow.String(), tt.ImpactOptimization.String():
		endString = warningStyle.Sprint("warning: ")
	default:
		endString = infoStyle.Sprint("info: ")
	}

	endString += ruleStyle.Sprintf("%s", detector)
	endString += fmt.Sprintf(" (impact: %s, confidence: %s)\n", impact, confidence)

	padding := strings.Repeat(" ", maxLineNumWidth)
	endString += lineStyle.Sprintf("%s--> ", padding)
	if startLine > 0 {
		endString += fileStyle.Sprintf("%s:%d\n", filename, startLine)
	} else {
		endString += fileStyle.Sprintf("%s\n", filename)
	}
	return endString
}

func codeSnippet(snippetLines []string, ranges []lineRange, maxLineNumWidth int, commonIndent string, padding string) string {
	var endString string
	for i, r := range ranges {
		if !isValidLineRange(r.Start, r.End, snippetLines) {
			continue
		}
		if i == 0 {
			endString += lineStyle.Sprintf("%s|\n", padding)
		} else {
			endString += lineStyle.Sprintf("%s:\n", padding)
		}
		for line := r.Start; line <= r.End; line++ {
			text := expandTabs(strings.TrimPrefix(snippetLines[line-1], commonIndent))
			lineNum := fmt.Sprintf("%*d", maxLineNumWidth, line)
			endString += lineStyle.Sprintf("%s | ", lineNum) + text + "\n"
		}
	}
	return endString
}

func message(msg string, padding string) string {
	return lineStyle.Sprintf("%s= ", padding) + messageStyle.Sprintf("%s\n", msg)
}

func suggestion(suggestion string, padding string) string {
	if suggestion == "" {
		return ""
	}

	endString := suggestionStyle.Sprint("Suggestion:\n")
	for _, line := range strings.Split(suggestion, "\n") {
		endString += lineStyle.Sprintf("%s| ", padding) + line + "\n"
	}
	return endString
}

func note(note string) string {
	if note == "" {
		return ""
	}
	return suggestionStyle.Sprint("Note: ") + lineStyle.Sprintf("%s\n", note)
}

func isValidLineRange(startLine int, endLine int, snippetLines []string) bool {
	return startLine > 0 &&
		endLine > 0 &&
		startLine <= endLine &&
		startLine <= len(snippetLines) &&
		endLine <= len(snippetLines)
}

func calculateMaxLineNumWidth(endLine int) int {
	return len(fmt.Sprintf("%d", endLine))
}

// expandTabs replaces tabs with spaces up to the next tab stop.
func expandTabs(line string) string {
	var sb strings.Builder
	col := 0
	for _, ch := range line {
		if ch == '\t' {
			n := tabWidth - col%tabWidth
			sb.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		sb.WriteRune(ch)
		col++
	}
	return sb.String()
}

// findCommonIndent finds the common indent in the code snippet.
func findCommonIndent(lines []string) string {
	if len(lines) == 0 {
		return ""
	}

	// find first non-empty line's indent
	firstIndent := make([]rune, 0)
	for _, line := range lines {
		trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
		if trimmed != "" {
			firstIndent = []rune(line[:len(line)-len(trimmed)])
			break
		}
	}

	if len(firstIndent) == 0 {
		return ""
	}

	for _, line := range lines {
		trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
		if trimmed == "" {
			continue
		}

		currentIndent := []rune(line[:len(line)-len(trimmed)])
		firstIndent = commonPrefix(firstIndent, currentIndent)

		if len(firstIndent) == 0 {
			break
		}
	}

	return string(firstIndent)
}

// commonPrefix finds the common prefix of two strings.
func commonPrefix(a, b []rune) []rune {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:minLen]
}
