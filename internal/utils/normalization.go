package utils

import "strings"

// NormalizeContent canonicalizes extracted document text before
// fingerprinting: CRLF to LF plus trimmed surrounding whitespace, so the
// same document extracted twice hashes identically.
func NormalizeContent(content string) string {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	return strings.TrimSpace(normalized)
}

func NormalizeEntityType(entityType string) string {
	return strings.ToLower(strings.TrimSpace(entityType))
}

// StripFences removes a surrounding markdown code fence from an LLM reply.
func StripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return trimmed
	}

	// drop the opening fence (possibly with a language tag) and closing fence
	lines = lines[1:]
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}
