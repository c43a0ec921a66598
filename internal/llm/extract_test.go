package llm

import (
	"errors"
	"strings"
	"testing"
)

func TestExtractJSON_PlainObject(t *testing.T) {
	raw, err := ExtractJSON(`{"a": 1, "b": [2, 3]}`)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if string(raw) != `{"a": 1, "b": [2, 3]}` {
		t.Errorf("unexpected extraction: %s", raw)
	}
}

func TestExtractJSON_PlainArray(t *testing.T) {
	raw, err := ExtractJSON(`[{"id":"t_001"},{"id":"t_002"}]`)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !strings.HasPrefix(string(raw), "[") {
		t.Errorf("expected array extraction, got: %s", raw)
	}
}

func TestExtractJSON_MarkdownFences(t *testing.T) {
	input := "```json\n{\"topics\": []}\n```"

	raw, err := ExtractJSON(input)
	if err != nil {
		t.Fatalf("expected no error with markdown fences, got: %v", err)
	}
	if string(raw) != `{"topics": []}` {
		t.Errorf("unexpected extraction: %s", raw)
	}
}

func TestExtractJSON_FenceWithoutLanguageTag(t *testing.T) {
	input := "```\n[1, 2, 3]\n```"

	raw, err := ExtractJSON(input)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if string(raw) != "[1, 2, 3]" {
		t.Errorf("unexpected extraction: %s", raw)
	}
}

func TestExtractJSON_SurroundingProse(t *testing.T) {
	input := "Here are the topics you asked for:\n\n{\"id\": \"t_001\", \"name\": \"Algebra\"}\n\nLet me know if you need more."

	raw, err := ExtractJSON(input)
	if err != nil {
		t.Fatalf("expected span extraction from prose, got: %v", err)
	}
	if string(raw) != `{"id": "t_001", "name": "Algebra"}` {
		t.Errorf("unexpected extraction: %s", raw)
	}
}

func TestExtractJSON_ArrayBeforeObject(t *testing.T) {
	input := `The list [{"id":"t_001"}] covers everything.`

	raw, err := ExtractJSON(input)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if string(raw) != `[{"id":"t_001"}]` {
		t.Errorf("unexpected extraction: %s", raw)
	}
}

func TestExtractJSON_NoJSON(t *testing.T) {
	_, err := ExtractJSON("I could not produce any structured output for this request.")
	if err == nil {
		t.Fatal("expected error for prose-only response")
	}

	var malformed *MalformedOutputError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedOutputError, got %T", err)
	}
}

func TestExtractJSON_TruncatedJSON(t *testing.T) {
	_, err := ExtractJSON(`{"topics": [{"id": "t_001", "name": "Alg`)
	if err == nil {
		t.Fatal("expected error for truncated JSON")
	}
}

func TestExtractJSON_Empty(t *testing.T) {
	_, err := ExtractJSON("   \n  ")
	if err == nil {
		t.Fatal("expected error for empty response")
	}
}

func TestExtractJSON_SnippetCapped(t *testing.T) {
	_, err := ExtractJSON(strings.Repeat("garbage ", 200))
	var malformed *MalformedOutputError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedOutputError, got %v", err)
	}
	if len(malformed.Snippet) > snippetLimit {
		t.Errorf("snippet not capped: %d chars", len(malformed.Snippet))
	}
}
