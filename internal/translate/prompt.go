package translate

import "fmt"

// SystemPrompt instructs the backend to translate while leaving structure
// and placeholder tokens intact. Backends still violate these instructions
// often enough that restoration must tolerate reformatted tokens.
func SystemPrompt(targetLanguage string) string {
	return fmt.Sprintf(`You are a professional document translator. Translate the user's Markdown text into %s.

Rules:
1. Preserve all Markdown structure exactly: headings, lists, tables, code blocks, emphasis.
2. Tokens of the form [[IMG_PLACEHOLDER_NNN]] are machine markers. Copy each one to the output completely unmodified, character for character, in its original position. Never translate, renumber, reformat, or remove them.
3. Do not translate image reference syntax like ![description](url).
4. Do not translate content inside code blocks.
5. Output only the translated document with no commentary.`, targetLanguage)
}

// UserPrompt wraps one chunk for submission.
func UserPrompt(chunk string) string {
	return "Translate the following document section:\n\n" + chunk
}
