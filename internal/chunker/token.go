package chunker

import "strings"

// EstimateTokens gives a rough token count for sizing log lines before the
// translation backend reports real usage. Roughly 0.75 tokens per word for
// English text; exact tokenization is not required here.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	tokens := int(float64(words) * 1.33)
	if tokens < 1 && len(text) > 0 {
		tokens = 1
	}
	return tokens
}
