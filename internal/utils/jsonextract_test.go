package utils

import (
	"encoding/json"
	"testing"
)

func TestExtractJSONObjectPlain(t *testing.T) {
	got, err := ExtractJSONObject(`{"a":1}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"a":1}` {
		t.Fatalf("got %q", got)
	}
}

func TestExtractJSONObjectWithPreamble(t *testing.T) {
	in := "Here is the evaluation you asked for:\n{\"score\": 82, \"verdict\": \"HIRE\"}\nLet me know if you need anything else."
	got, err := ExtractJSONObject(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(got), &m); err != nil {
		t.Fatalf("extracted text is not valid JSON: %v", err)
	}
	if m["verdict"] != "HIRE" {
		t.Fatalf("unexpected payload: %v", m)
	}
}

func TestExtractJSONObjectCodeFences(t *testing.T) {
	in := "```json\n{\"a\": {\"b\": 2}}\n```"
	got, err := ExtractJSONObject(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"a": {"b": 2}}` {
		t.Fatalf("got %q", got)
	}
}

func TestExtractJSONObjectNestedAndStrings(t *testing.T) {
	// braces inside strings must not affect the balance scan
	in := `noise {"text": "use { and } freely", "nested": {"x": "\"}"}} trailing`
	got, err := ExtractJSONObject(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(got), &m); err != nil {
		t.Fatalf("extracted text is not valid JSON: %v\n%s", err, got)
	}
}

func TestExtractJSONObjectTruncatedFallsBack(t *testing.T) {
	in := `{"a": {"b": 1}` // outer object never closes
	got, err := ExtractJSONObject(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"a": {"b": 1}` {
		t.Fatalf("got %q", got)
	}
}

func TestExtractJSONObjectNone(t *testing.T) {
	if _, err := ExtractJSONObject("no json here"); err == nil {
		t.Fatal("expected error")
	}
	if _, err := ExtractJSONObject("open only {"); err == nil {
		t.Fatal("expected error for object with no closing brace")
	}
}
