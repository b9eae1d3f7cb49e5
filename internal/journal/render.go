// ABOUTME: Markdown rendering for generated augmentations
// ABOUTME: Raw HTML in the source is escaped, never passed through

package journal

import (
	"bytes"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
)

// RenderAugmentation converts augmentation markdown to HTML.
// If conversion fails the escaped plain text is returned instead.
func RenderAugmentation(augmentation string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(augmentation), &buf); err != nil {
		return "<p>" + html.EscapeString(augmentation) + "</p>"
	}
	return buf.String()
}
