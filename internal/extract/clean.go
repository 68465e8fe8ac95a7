package extract

import "strings"

// StripFences removes literal ```json and ``` tokens anywhere in the text and
// trims surrounding whitespace. It does not parse markdown.
func StripFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}
