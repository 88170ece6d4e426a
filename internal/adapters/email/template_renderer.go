package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"
	"unicode"

	"eventhub/internal/domain"
)

//go:embed templates/*
var templateFS embed.FS

var templateFuncs = map[string]any{
	"label": variantLabel,
	"title": capitalize,
}

func variantLabel(v domain.Variant) string {
	switch v {
	case domain.VariantPrivate:
		return "private event"
	case domain.VariantPaid:
		return "paid event"
	}
	return "event"
}

func capitalize(s string) string {
	for i, r := range s {
		return string(unicode.ToUpper(r)) + s[i+len(string(r)):]
	}
	return s
}

// templateRenderer implements domain.EmailTemplateRenderer using embedded template files.
// For a template name it renders name_subject.txt, name.html and name.txt.
type templateRenderer struct {
	html *template.Template
	text *texttemplate.Template
}

// NewTemplateRenderer parses the embedded templates. It panics if they do not parse.
func NewTemplateRenderer() domain.EmailTemplateRenderer {
	return &templateRenderer{
		html: template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")),
		text: texttemplate.Must(texttemplate.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.txt")),
	}
}

func (r *templateRenderer) Render(templateName string, data any) (subject, htmlBody, textBody string, err error) {
	var buf bytes.Buffer
	if err = r.text.ExecuteTemplate(&buf, templateName+"_subject.txt", data); err != nil {
		return "", "", "", fmt.Errorf("render subject: %w", err)
	}
	subject = strings.Join(strings.Fields(buf.String()), " ")

	buf.Reset()
	if err = r.html.ExecuteTemplate(&buf, templateName+".html", data); err != nil {
		return "", "", "", fmt.Errorf("render html: %w", err)
	}
	htmlBody = buf.String()

	buf.Reset()
	if err = r.text.ExecuteTemplate(&buf, templateName+".txt", data); err != nil {
		return "", "", "", fmt.Errorf("render text: %w", err)
	}
	return subject, htmlBody, buf.String(), nil
}
