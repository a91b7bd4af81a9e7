package llm

import (
	"strings"

	"github.com/abreton/candidoc/internal/schema"
)

// maxPromptChars caps the document text embedded in the user prompt.
const maxPromptChars = 8000

// BuildSystemPrompt composes the system instruction describing the target
// schema field by field, including enumerated value sets and defaults.
func BuildSystemPrompt(s *schema.Schema) string {
	var b strings.Builder
	b.WriteString("You are a document parser for a recruiting platform. ")
	b.WriteString("Extract the fields below from the input document and return ONLY a JSON object. ")
	b.WriteString("No explanatory prose, no markdown, no code fences.\n\nFields:\n")

	for _, f := range s.Fields {
		b.WriteString("- ")
		b.WriteString(f.Name)
		b.WriteString(" (")
		b.WriteString(string(f.Type))
		b.WriteString("): ")
		b.WriteString(f.Description)
		if len(f.Enum) > 0 {
			b.WriteString(". Must be exactly one of: ")
			b.WriteString(strings.Join(f.Enum, ", "))
		}
		b.WriteString(".\n")
	}

	b.WriteString("\nEvery field is optional: if a value is not present in the document, OMIT the key entirely. ")
	b.WriteString("Never output null, never invent data. ")
	b.WriteString("Array fields must be JSON arrays of strings.")
	return b.String()
}

// BuildRetryPrompt appends the validation failures to the original system
// instruction for the single corrective round.
func BuildRetryPrompt(systemPrompt string, errs []schema.FieldError) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\nYour previous answer did not match the expected schema. Errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		if e.Path != "" {
			b.WriteString(e.Path)
			b.WriteString(": ")
		}
		b.WriteString(e.Message)
		b.WriteString("\n")
	}
	b.WriteString("\nReturn a corrected JSON object. Never emit null: omit unknown fields instead.")
	return b.String()
}

// BuildUserPrompt packages the document text, truncated to keep prompt cost
// bounded.
func BuildUserPrompt(text string) string {
	text = strings.TrimSpace(text)
	var b strings.Builder
	b.WriteString("Document text:\n")
	if len(text) > maxPromptChars {
		b.WriteString(text[:maxPromptChars])
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(text)
	}
	return b.String()
}

// BuildVisionUserText is the text part accompanying the image in a vision
// request.
func BuildVisionUserText() string {
	return "An image of the document is attached. Read it and extract the fields described in the system instruction. Return ONLY JSON."
}
