package prompts

import (
	"fmt"
	"strings"

	"github.com/savetree-1/docflow/internal/providers"
	"github.com/savetree-1/docflow/internal/taxonomy"
)

const outputSpec = `Respond with a JSON object matching this exact structure:

{
  "summary": ["<sentence>", "<sentence>"],
  "key_details": {
    "subject": "<short subject line>",
    "urgency": "<%[1]s>",
    "deadline": "<YYYY-MM-DD or null>"
  },
  "classification": {
    "category": "<%[2]s>",
    "confidence": <number between 0 and 1>
  },
  "routing": {
    "primary_department": "<department>",
    "cc_departments": ["<department>"],
    "reason": "<one sentence>"
  }
}

Field constraints:
- summary: 1 to %[3]d short factual sentences, most important first.
- key_details.urgency: exactly one of %[1]s.
- key_details.deadline: the earliest explicit deadline in the text, or null.
- classification.category: exactly one of %[2]s.
- classification.confidence: your certainty in the category and department.
- routing.cc_departments: may be empty; never repeat the primary department.

Behavioral constraints:
- Always respond with valid JSON only, no markdown fencing and no commentary
- Do not add fields that are not listed above`

// Spec returns the fixed output specification appended to every stage's
// instructions. Overrides can change instructions but never the output contract.
func Spec(stage Stage) (string, error) {
	if _, err := ParseStage(string(stage)); err != nil {
		return "", err
	}

	urgencies := make([]string, 0, 3)
	for _, u := range taxonomy.Urgencies() {
		urgencies = append(urgencies, string(u))
	}
	categories := make([]string, 0, 8)
	for _, c := range taxonomy.Categories() {
		categories = append(categories, string(c))
	}

	return fmt.Sprintf(
		outputSpec,
		strings.Join(urgencies, "|"),
		strings.Join(categories, "|"),
		providers.MaxSummaryItems,
	), nil
}
