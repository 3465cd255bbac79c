package formatter

type GeneralFindingFormatter struct{}

func (f *GeneralFindingFormatter) FindingTemplate() string {
	return `{{header .Detector .Impact .Confidence .MaxLineNumWidth .Filename .StartLine -}}
{{snippet .SnippetLines .Ranges .MaxLineNumWidth .CommonIndent .Padding -}}
{{message .Message .Padding}}

{{- if .Suggestion }}
{{suggestion .Suggestion .Padding}}
{{- end }}

{{- if .Note }}
{{note .Note}}
{{- end }}
`
}
