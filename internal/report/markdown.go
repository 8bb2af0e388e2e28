package report

import (
	"fmt"
	"io"
	"text/template"
)

// MarkdownFormatter renders a report as markdown with YAML frontmatter.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a markdown formatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format writes the report as markdown.
func (mf *MarkdownFormatter) Format(w io.Writer, r *Report) error {
	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"pct": func(f float64) string { return fmt.Sprintf("%.1f", f) },
		"conf": func(f float64) string {
			return fmt.Sprintf("%.2f", f)
		},
	}).Parse(markdownTemplate)
	if err != nil {
		return fmt.Errorf("parse template: %w", err)
	}
	return tmpl.Execute(w, r)
}

// Extension returns the file extension for markdown.
func (mf *MarkdownFormatter) Extension() string {
	return ".md"
}

const markdownTemplate = `---
run_id: {{ .RunID }}
suite: {{ .Suite }}
generated_at: {{ .GeneratedAt.Format "2006-01-02T15:04:05Z07:00" }}
score: {{ pct .Score }}
grade: {{ .Grade }}
health: {{ .Health }}
---

# Verification Report: {{ .Suite }}

**Run:** {{ .RunID }}
**Score:** {{ pct .Score }}/100 ({{ .Grade }})
**Health:** {{ .Health }}

## Cases

| Case | Verdict | Confidence |
|------|---------|------------|
{{- range .Cases }}
| {{ .Case }} | {{ .Verdict }} | {{ conf .Confidence }} |
{{- end }}

{{- if .Findings }}

## Findings

{{- range .Findings }}
- **{{ .Severity }}** [{{ .Category }}] {{ .Message }}
{{- end }}
{{- end }}

## Checks

{{- range .Cases }}

### {{ .Case }}

{{- range .Checks }}
- {{ .Name }}: {{ conf .Confidence }}{{ if not .Passed }} (failed: {{ .Message }}){{ end }}
{{- end }}
{{- end }}
`
