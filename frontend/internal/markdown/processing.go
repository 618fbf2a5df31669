// Package markdown renders the portal notice and reduces backend-provided
// messages to plain text.
package markdown

import (
	"bytes"
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldhtml "github.com/yuin/goldmark/renderer/html"
)

type TextProcessor struct {
	md     goldmark.Markdown
	notice *bluemonday.Policy
	strict *bluemonday.Policy
}

func New() *TextProcessor {
	md := goldmark.New(
		goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
		goldmark.WithRendererOptions(goldhtml.WithHardWraps()),
	)

	notice := bluemonday.UGCPolicy()
	notice.RequireNoFollowOnLinks(true)
	notice.AddTargetBlankToFullyQualifiedLinks(true)
	notice.AllowRelativeURLs(true)

	return &TextProcessor{md: md, notice: notice, strict: bluemonday.StrictPolicy()}
}

// RenderNotice turns the configured Markdown notice into safe HTML. Raw HTML
// in the source is dropped by goldmark; the sanitiser guards the links.
func (tp *TextProcessor) RenderNotice(source string) (template.HTML, error) {
	if strings.TrimSpace(source) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := tp.md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return template.HTML(strings.TrimSpace(tp.notice.Sanitize(buf.String()))), nil
}

// PlainText strips every tag from s and collapses whitespace. The result is
// unescaped text; templates escape it again on output.
func (tp *TextProcessor) PlainText(s string) string {
	stripped := html.UnescapeString(tp.strict.Sanitize(s))
	return strings.Join(strings.Fields(stripped), " ")
}
