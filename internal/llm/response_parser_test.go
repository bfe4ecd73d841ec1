package llm

import (
	"testing"
)

func TestParseEntityBag(t *testing.T) {
	jsonStr := `{
		"people": ["Sarah Johnson", " John Smith "],
		"dates": ["next Friday"],
		"topics": ["budget proposal", ""],
		"locations": [],
		"organizations": ["Acme Corp"]
	}`

	bag, err := ParseEntityBag(jsonStr)
	if err != nil {
		t.Fatalf("ParseEntityBag failed: %v", err)
	}
	if len(bag.People) != 2 || bag.People[1] != "John Smith" {
		t.Errorf("expected trimmed people, got %v", bag.People)
	}
	if len(bag.Topics) != 1 {
		t.Errorf("blank topics must be dropped, got %v", bag.Topics)
	}
	if len(bag.Locations) != 0 {
		t.Errorf("expected empty locations, got %v", bag.Locations)
	}
}

func TestParseEntityBagWithMarkdownFences(t *testing.T) {
	jsonStr := "```json\n{\"people\": [\"Ada\"], \"dates\": [], \"topics\": [], \"locations\": [], \"organizations\": []}\n```"

	bag, err := ParseEntityBag(jsonStr)
	if err != nil {
		t.Fatalf("ParseEntityBag failed on fenced JSON: %v", err)
	}
	if len(bag.People) != 1 || bag.People[0] != "Ada" {
		t.Errorf("expected Ada, got %v", bag.People)
	}
}

func TestParseEntityBagWithSurroundingProse(t *testing.T) {
	jsonStr := `Here are the entities you asked for:
{"people": ["Bob"], "dates": [], "topics": ["q3"], "locations": [], "organizations": []}
Hope that helps!`

	bag, err := ParseEntityBag(jsonStr)
	if err != nil {
		t.Fatalf("ParseEntityBag failed on prose-wrapped JSON: %v", err)
	}
	if len(bag.People) != 1 || len(bag.Topics) != 1 {
		t.Errorf("unexpected bag: %+v", bag)
	}
}

func TestParseEntityBagMalformed(t *testing.T) {
	if _, err := ParseEntityBag("not json at all"); err == nil {
		t.Error("expected error for malformed output")
	}
	if _, err := ParseEntityBag(`{"people": [{"name": "nested"}]}`); err == nil {
		t.Error("expected error for nested objects in arrays")
	}
}

func TestParseEntityBagMissingKeys(t *testing.T) {
	bag, err := ParseEntityBag(`{"people": ["Eve"]}`)
	if err != nil {
		t.Fatalf("missing keys must not be an error: %v", err)
	}
	if len(bag.People) != 1 || len(bag.Dates) != 0 {
		t.Errorf("unexpected bag: %+v", bag)
	}
}

func TestParseActionItems(t *testing.T) {
	items, err := ParseActionItems(`{"action_items": ["Send the proposal", "  Review budget  ", ""]}`)
	if err != nil {
		t.Fatalf("ParseActionItems failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %v", items)
	}
	if items[0] != "Send the proposal" || items[1] != "Review budget" {
		t.Errorf("order or trimming wrong: %v", items)
	}
}

func TestParseActionItemsEmpty(t *testing.T) {
	items, err := ParseActionItems(`{"action_items": []}`)
	if err != nil {
		t.Fatalf("ParseActionItems failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected no items, got %v", items)
	}
}

func TestExtractJSONBraceMatching(t *testing.T) {
	input := `prefix {"a": "value with } brace", "b": {"nested": true}} suffix`
	got := extractJSON(input)
	want := `{"a": "value with } brace", "b": {"nested": true}}`
	if got != want {
		t.Errorf("extractJSON() = %q, want %q", got, want)
	}
}

func TestExtractJSONEscapedQuotes(t *testing.T) {
	input := `{"a": "quote \" and } inside"}`
	if got := extractJSON(input); got != input {
		t.Errorf("extractJSON() = %q, want %q", got, input)
	}
}
