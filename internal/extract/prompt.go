package extract

import (
	"strings"

	"github.com/sells-group/leadcrm/internal/model"
)

// SystemPrompt instructs the model to answer with one bare JSON object.
var SystemPrompt = buildSystemPrompt()

func buildSystemPrompt() string {
	statuses := make([]string, len(model.KnownStatuses))
	for i, s := range model.KnownStatuses {
		statuses[i] = string(s)
	}

	var b strings.Builder
	b.WriteString("You are a CRM assistant that turns free-form notes about a sales contact into a structured lead record.\n")
	b.WriteString("Respond with exactly one JSON object and nothing else: no prose, no explanation, no markdown code fences.\n")
	b.WriteString("The object must have exactly these keys:\n")
	b.WriteString(`  "name": string, the contact's name` + "\n")
	b.WriteString(`  "company": string, the contact's organization` + "\n")
	b.WriteString(`  "status": one of ` + strings.Join(statuses, ", ") + "\n")
	b.WriteString(`  "summary": string, a short summary of the interaction history` + "\n")
	b.WriteString(`  "score": number from 0 to 100, how likely the deal is to close` + "\n")
	b.WriteString(`  "value": number, the estimated deal value` + "\n")
	b.WriteString("Use an empty string or 0 when a value is not mentioned. Do not add other keys.")
	return b.String()
}
