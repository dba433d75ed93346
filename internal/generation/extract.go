package generation

import (
	"encoding/json"
	"errors"
	"strings"
)

const previewLimit = 300

var (
	// ErrEmptyResponse is returned for blank model output.
	ErrEmptyResponse = errors.New("empty response")
	// ErrNoJSON is returned when no parseable JSON value is present.
	ErrNoJSON = errors.New("no JSON value found")
)

// ExtractJSON pulls the first JSON array or object out of model output.
// Markdown fences and surrounding prose are ignored. An array is preferred
// unless it sits inside the first object.
func ExtractJSON(text string) (json.RawMessage, error) {
	body := strings.TrimSpace(stripFences(text))
	if body == "" {
		return nil, ErrEmptyResponse
	}
	if json.Valid([]byte(body)) && (body[0] == '{' || body[0] == '[') {
		return json.RawMessage(body), nil
	}

	objStart, objEnd := findValue(body, '{', '}')
	arrStart, arrEnd := findValue(body, '[', ']')

	switch {
	case arrStart >= 0 && (objStart < 0 || arrStart < objStart || arrStart > objEnd):
		return json.RawMessage(body[arrStart : arrEnd+1]), nil
	case objStart >= 0:
		return json.RawMessage(body[objStart : objEnd+1]), nil
	}
	return nil, ErrNoJSON
}

// Preview shortens model output for error messages.
func Preview(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= previewLimit {
		return text
	}
	return string(runes[:previewLimit]) + "..."
}

func stripFences(text string) string {
	start := strings.Index(text, "```")
	if start < 0 {
		return text
	}
	rest := text[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:]
	} else {
		rest = strings.TrimPrefix(rest, "json")
	}
	if end := strings.Index(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return rest
}

// findValue returns the bounds of the first balanced, valid JSON value that
// opens with open, or -1, -1.
func findValue(s string, open, close byte) (int, int) {
	for from := 0; from < len(s); {
		idx := strings.IndexByte(s[from:], open)
		if idx < 0 {
			return -1, -1
		}
		start := from + idx
		if end := matchClose(s, start, open, close); end > 0 && json.Valid([]byte(s[start:end+1])) {
			return start, end
		}
		from = start + 1
	}
	return -1, -1
}

func matchClose(s string, start int, open, close byte) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
