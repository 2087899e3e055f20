package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

// ResponseCleaner normalizes malformed judge responses into parseable JSON.
// Models wrap output in code fences, prepend prose, or leave trailing commas;
// cleaning handles the common cases without a second model round-trip.
type ResponseCleaner struct{}

// NewResponseCleaner creates a response cleaner.
func NewResponseCleaner() *ResponseCleaner { return &ResponseCleaner{} }

var trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)

// Clean strips fences and surrounding prose, extracts the outermost JSON
// object, and repairs trailing commas.
func (rc *ResponseCleaner) Clean(response string) string {
	response = rc.removeMarkdownFences(response)
	response = rc.extractJSONObject(response)
	if !rc.IsValidJSON(response) {
		response = trailingCommaRe.ReplaceAllString(response, "$1")
	}
	return response
}

func (rc *ResponseCleaner) removeMarkdownFences(response string) string {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	return strings.TrimSpace(response)
}

// extractJSONObject returns the substring from the first '{' to its matching
// closing brace, falling back to the last '}' when braces are unbalanced.
func (rc *ResponseCleaner) extractJSONObject(response string) string {
	start := strings.Index(response, "{")
	if start == -1 {
		return response
	}
	depth := 0
	for i := start; i < len(response); i++ {
		switch response[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return response[start : i+1]
			}
		}
	}
	if end := strings.LastIndex(response, "}"); end > start {
		return response[start : end+1]
	}
	return response[start:]
}

// IsValidJSON reports whether a string parses as JSON.
func (rc *ResponseCleaner) IsValidJSON(response string) bool {
	var tmp any
	return json.Unmarshal([]byte(response), &tmp) == nil
}
