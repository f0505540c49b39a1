package llm

import "strings"

// CleanJSONBlock removes markdown code fences from a JSON response.
// Models wrap JSON in ```json blocks even when asked not to.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	start := strings.Index(text, "```json")
	if start != -1 {
		text = text[start+len("```json"):]
		if end := strings.LastIndex(text, "```"); end != -1 {
			text = text[:end]
		}
		return strings.TrimSpace(text)
	}

	start = strings.Index(text, "```")
	if start != -1 {
		text = text[start+len("```"):]
		if end := strings.LastIndex(text, "```"); end != -1 {
			text = text[:end]
		}
		return strings.TrimSpace(text)
	}

	return text
}
