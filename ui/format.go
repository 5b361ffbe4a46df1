package ui

import (
	"strings"

	"github.com/fatih/color"
)

var boldSprint = color.New(color.Bold).Sprint

// FormatReply post-processes the light markup replies may contain:
// "**bold**" spans become terminal bold and literal "\n" sequences
// become real newlines. Everything else passes through untouched.
func FormatReply(text string) string {
	text = strings.ReplaceAll(text, "\\n", "\n")

	var b strings.Builder
	for {
		start := strings.Index(text, "**")
		if start < 0 {
			b.WriteString(text)
			break
		}
		end := strings.Index(text[start+2:], "**")
		if end < 0 {
			b.WriteString(text)
			break
		}
		b.WriteString(text[:start])
		b.WriteString(boldSprint(text[start+2 : start+2+end]))
		text = text[start+2+end+2:]
	}
	return b.String()
}
