package agentdriver

import "strings"

// StripMarkdownCodeBlock removes a wrapping triple-backtick fence (with an
// optional language tag on the opening fence) from s, returning its inner
// lines joined back together. Unfenced input passes through unchanged.
func StripMarkdownCodeBlock(s string) string {
	trimmed := strings.TrimSpace(s)

	if strings.HasPrefix(trimmed, "```") && strings.HasSuffix(trimmed, "```") {
		lines := strings.Split(trimmed, "\n")
		if len(lines) >= 2 {
			return strings.Join(lines[1:len(lines)-1], "\n")
		}
	}

	return s
}
