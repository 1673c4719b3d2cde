// Package markdown renders work-item and module descriptions to HTML.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Raw HTML in the source is dropped (goldmark's default, unsafe mode stays off).
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

func Render(src string) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "<p>Error rendering markdown</p>"
	}
	return buf.String()
}

// RenderPtr is Render for optional columns.
func RenderPtr(src *string) *string {
	if src == nil {
		return nil
	}
	out := Render(*src)
	return &out
}
