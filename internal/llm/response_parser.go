package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/loomknot/loom/pkg/types"
)

// actionItemResponse is the expected shape of the action-item extraction response.
type actionItemResponse struct {
	ActionItems []string `json:"action_items"`
}

// extractJSON extracts the first valid JSON object from a string that may
// contain extra text. This handles cases where LLMs add explanations before or
// after the JSON despite instructions.
func extractJSON(text string) string {
	// Remove common markdown code block markers
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	if start == -1 {
		return text // no JSON found, return as-is and let the parser fail
	}

	// Find the matching closing brace, skipping braces inside strings
	braceCount := 0
	inString := false
	escape := false

	for i := start; i < len(text); i++ {
		char := text[i]

		if escape {
			escape = false
			continue
		}
		if char == '\\' {
			escape = true
			continue
		}
		if char == '"' {
			inString = !inString
			continue
		}

		if !inString {
			switch char {
			case '{':
				braceCount++
			case '}':
				braceCount--
				if braceCount == 0 {
					return text[start : i+1]
				}
			}
		}
	}

	return text // no complete JSON found
}

// ParseEntityBag parses entity extraction output into an EntityBag.
// Blank entries are dropped and surrounding whitespace trimmed; missing keys
// simply yield empty slices. It returns an error only if the JSON itself is
// malformed — callers treat that as a recoverable extraction failure, not a
// crash.
func ParseEntityBag(jsonStr string) (types.EntityBag, error) {
	cleanJSON := extractJSON(jsonStr)

	var bag types.EntityBag
	if err := json.Unmarshal([]byte(cleanJSON), &bag); err != nil {
		return types.EntityBag{}, fmt.Errorf("failed to parse entity JSON: %w", err)
	}

	bag.People = cleanStrings(bag.People)
	bag.Dates = cleanStrings(bag.Dates)
	bag.Topics = cleanStrings(bag.Topics)
	bag.Locations = cleanStrings(bag.Locations)
	bag.Organizations = cleanStrings(bag.Organizations)
	return bag, nil
}

// ParseActionItems parses action-item extraction output into an ordered list
// of short actionable statements. Blank entries are dropped; order is
// preserved. Returns an error only if the JSON itself is malformed.
func ParseActionItems(jsonStr string) ([]string, error) {
	cleanJSON := extractJSON(jsonStr)

	var resp actionItemResponse
	if err := json.Unmarshal([]byte(cleanJSON), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse action item JSON: %w", err)
	}

	return cleanStrings(resp.ActionItems), nil
}

// cleanStrings trims each entry and drops blanks, preserving order.
func cleanStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
