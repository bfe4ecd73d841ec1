// Package llm provides language-model integration for entity extraction,
// action-item derivation, and summarization. It includes strict JSON-only
// prompt templates and response parsers that work with Ollama and OpenAI
// models.
package llm

import "fmt"

// EntityExtractionPrompt generates a strict JSON-only prompt for entity
// extraction. The prompt instructs the LLM to pull people, dates, topics,
// locations, and organizations out of free text and return a single JSON
// object with exactly those five keys.
func EntityExtractionPrompt(content string) string {
	return fmt.Sprintf(`TASK: Extract entities from text.
OUTPUT: ONLY valid JSON. NO markdown. NO code blocks. NO backticks.

REQUIRED JSON STRUCTURE:
Your response MUST start with { and end with }
Your response MUST have exactly these five keys, each an array of strings:
people, dates, topics, locations, organizations

Example structure (EXACT FORMAT REQUIRED):
{
  "people": ["Sarah Johnson"],
  "dates": ["next Friday"],
  "topics": ["budget proposal"],
  "locations": ["Berlin"],
  "organizations": ["Acme Corp"]
}

VALIDATION (STRICT):
1. Start with { - End with }
2. All five keys present, even when empty ([])
3. Array elements are plain strings, no nested objects
4. No extra keys
5. No trailing commas
6. Valid JSON syntax

TEXT TO EXTRACT FROM:
%s

RESPOND WITH ONLY THE JSON OBJECT (nothing else):`, content)
}

// ActionItemPrompt generates a strict JSON-only prompt that pulls discrete
// actionable statements out of meeting text. Each item should be a short,
// self-contained statement of work.
func ActionItemPrompt(content string) string {
	return fmt.Sprintf(`TASK: Extract actionable tasks from meeting notes.
OUTPUT: ONLY valid JSON. NO markdown. NO code blocks. NO explanation.

REQUIRED JSON STRUCTURE:
{"action_items": ["Send the proposal by Friday", "Review budget"]}

RULES:
1. Each item is one short, action-oriented statement
2. Keep the original wording where possible
3. Preserve the order items appear in the text
4. If no tasks are found, return {"action_items": []}

MEETING NOTES:
%s

RESPOND WITH ONLY THE JSON OBJECT (nothing else):`, content)
}

// SummarizationPrompt generates a prompt that produces a brief prose summary
// of an activity outline. Unlike the extraction prompts the response is plain
// text, not JSON.
func SummarizationPrompt(content string) string {
	return fmt.Sprintf(`Provide a brief 2-3 sentence summary of the following activity log.
Mention the main topics, people, and any follow-ups. Respond with plain prose only.

%s`, content)
}
