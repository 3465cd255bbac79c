package formatter

import (
	tt "github.com/gnolang/tealer/internal/types"
)

type HighComplexityFormatter struct{}

func (f *HighComplexityFormatter) FindingTemplate() string {
	return `{{header .Detector .Impact .Confidence .MaxLineNumWidth .Filename .StartLine -}}
{{snippet .SnippetLines .Ranges .MaxLineNumWidth .CommonIndent .Padding -}}
{{message .Message .Padding}}
{{- complexityInfo .Padding .Metrics }}

{{- if .Suggestion }}
{{suggestion .Suggestion .Padding}}
{{- end }}

{{- if .Note }}
{{note .Note}}
{{- end }}
`
}

func complexityInfo(padding string, metrics map[string]int) string {
	complexity, ok := metrics[tt.MetricComplexity]
	if !ok {
		return ""
	}
	return lineStyle.Sprintf("%s| ", padding) + messageStyle.Sprintf("Cyclomatic Complexity: %d\n", complexity)
}
