package knowledge

import "strings"

const (
	// snippetBefore is how many characters of context precede the match.
	snippetBefore = 50

	// snippetLength is how many characters follow the end of the match.
	snippetLength = 200

	// snippetSuffix marks every snippet as an excerpt.
	snippetSuffix = "..."
)

// extractSnippet returns a window of content around the first occurrence
// of the query's first token, case-insensitive: up to snippetBefore
// characters before the match and snippetLength after it. When the token
// does not occur, the first snippetLength characters are returned
// instead. Snippets always carry the excerpt suffix.
func extractSnippet(content, query string) string {
	if content == "" {
		return ""
	}

	token := firstToken(query)
	if token == "" {
		return clampPrefix(content, snippetLength) + snippetSuffix
	}

	idx := strings.Index(strings.ToLower(content), strings.ToLower(token))
	if idx < 0 {
		return clampPrefix(content, snippetLength) + snippetSuffix
	}

	start := idx - snippetBefore
	if start < 0 {
		start = 0
	}
	end := idx + len(token) + snippetLength
	if end > len(content) {
		end = len(content)
	}
	return content[start:end] + snippetSuffix
}

func firstToken(query string) string {
	for _, f := range strings.Fields(query) {
		return f
	}
	return ""
}

func clampPrefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
