package transform

import (
	"strings"
	"unicode"
)

func SmartTruncate(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}

	truncated := text[:maxLen]

	for i := len(truncated) - 1; i >= 0; i-- {
		if unicode.IsSpace(rune(truncated[i])) {
			return truncated[:i]
		}
	}

	return truncated
}

// TitleFromContent derives a conversation title from the first user message:
// the first maxLen runes trimmed, with an ellipsis only when content was cut.
func TitleFromContent(content string, maxLen int) string {
	trimmed := strings.TrimSpace(content)
	runes := []rune(trimmed)
	if len(runes) <= maxLen {
		return trimmed
	}
	return strings.TrimSpace(string(runes[:maxLen])) + "..."
}
