package generation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"assessment-backend/internal/shared/util"
)

const systemPrompt = `You write multiple-choice quiz questions for students, using only the study material you are given.
Respond with a single JSON object and nothing else. Do not wrap it in markdown.`

const outputInstruction = `Return JSON matching exactly this shape:
{
  "title": "short descriptive quiz title",
  "questions": [
    {
      "prompt": "question text",
      "options": ["option A", "option B", "option C", "option D"],
      "correctIndex": 0,
      "explanation": "why the correct option is right"
    }
  ]
}
Rules:
- "options" holds between 2 and 6 distinct, non-empty strings.
- "correctIndex" is the zero-based index of the single correct option.
- Every question must be answerable from the material alone.`

const truncationMarker = "\n[material truncated]"

// BuildPrompt renders the prompt for req. The same request always yields the
// same prompt. Text longer than maxChars runes is cut at a word boundary.
func BuildPrompt(req Request, maxChars int) Prompt {
	material := truncate(strings.TrimSpace(req.Text), maxChars)

	var b strings.Builder
	fmt.Fprintf(&b, "Write exactly %d multiple-choice questions about the study material below.\n\n", req.QuestionCount)
	b.WriteString(outputInstruction)
	b.WriteString("\n\nStudy material:\n<<<\n")
	b.WriteString(material)
	b.WriteString("\n>>>\n")

	return Prompt{System: systemPrompt, User: b.String()}
}

// Hash identifies a prompt in logs without exposing its content.
func (p Prompt) Hash() string {
	return util.ShortHash(p.System, p.User)
}

func truncate(text string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:maxChars])
	if idx := strings.LastIndexAny(cut, " \n\t"); idx > len(cut)/2 {
		cut = cut[:idx]
	}
	return cut + truncationMarker
}
