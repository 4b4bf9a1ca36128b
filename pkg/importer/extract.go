package importer

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencedJSON = regexp.MustCompile("(?s)```json\\s*(.*?)```")

// ExtractJSON locates a JSON value inside free text.
//
// Three strategies are tried in order:
//
//  1. The whole trimmed text parses as JSON.
//  2. A fenced code block tagged "json" whose body parses as JSON.
//  3. The greedy brace-to-brace substring (first '{' through last '}'),
//     when it parses as JSON.
//
// The same extraction serves both the text importer and the
// generation-collaborator response scanner.
func ExtractJSON(text string) ([]byte, bool) {
	trimmed := strings.TrimSpace(text)
	if json.Valid([]byte(trimmed)) {
		return []byte(trimmed), true
	}

	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		body := strings.TrimSpace(m[1])
		if json.Valid([]byte(body)) {
			return []byte(body), true
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		body := text[start : end+1]
		if json.Valid([]byte(body)) {
			return []byte(body), true
		}
	}

	return nil, false
}
