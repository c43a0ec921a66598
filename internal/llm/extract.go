package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

const snippetLimit = 500

// ExtractJSON pulls a JSON object or array out of raw model output.
// Markdown code fences are stripped first; if the remainder still is
// not valid JSON, the greedy span from the first opener to the last
// matching closer is tried before giving up.
func ExtractJSON(raw string) (json.RawMessage, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, &MalformedOutputError{Snippet: "", Err: fmt.Errorf("empty response")}
	}

	text = stripFences(text)

	if json.Valid([]byte(text)) {
		return json.RawMessage(text), nil
	}

	if span := greedySpan(text); span != "" && json.Valid([]byte(span)) {
		return json.RawMessage(span), nil
	}

	return nil, &MalformedOutputError{
		Snippet: snippet(raw),
		Err:     fmt.Errorf("invalid JSON"),
	}
}

// stripFences removes a surrounding markdown code fence, tolerating a
// language tag on the opening line.
func stripFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return text
	}
	lines = lines[1:]
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// greedySpan returns the widest substring from the first { or [ to the
// last } or ], matching opener to closer kind.
func greedySpan(text string) string {
	objStart := strings.IndexByte(text, '{')
	arrStart := strings.IndexByte(text, '[')

	start, closer := -1, byte(0)
	switch {
	case objStart == -1 && arrStart == -1:
		return ""
	case arrStart == -1 || (objStart != -1 && objStart < arrStart):
		start, closer = objStart, '}'
	default:
		start, closer = arrStart, ']'
	}

	end := strings.LastIndexByte(text, closer)
	if end <= start {
		return ""
	}
	return text[start : end+1]
}

func snippet(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) > snippetLimit {
		return s[:snippetLimit]
	}
	return s
}
