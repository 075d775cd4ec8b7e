package analyzer

import (
	"fmt"
	"strings"

	"sigment-be/internal/entity"
)

// buildPrompt renders the single-shot judgment prompt. The pillar set is the
// tenant's whole taxonomy; the provider must pick from it and is told so
// explicitly, since repairs downstream can only map back onto this list.
func (a *Analyzer) buildPrompt(rawText string, author *entity.User, pillars []*entity.Pillar) string {
	var sb strings.Builder

	sb.WriteString("You are an analyst for an internal knowledge system. An employee submitted a raw note. ")
	sb.WriteString("Clarify it, give it a short title, assign it to exactly one of the organization's pillars, and score its strategic relevance.\n\n")

	sb.WriteString("Available pillars (you MUST choose one of these, never invent a new one):\n")
	for _, p := range pillars {
		sb.WriteString(fmt.Sprintf("- id: %s | name: %s", p.Id, p.Name))
		if p.Description != "" {
			sb.WriteString(" | " + p.Description)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	if author != nil {
		sb.WriteString("Author context (weigh the note's relevance accordingly):\n")
		if author.Department != "" {
			sb.WriteString(fmt.Sprintf("- department: %s\n", author.Department))
		}
		if author.Seniority != "" {
			sb.WriteString(fmt.Sprintf("- seniority: %s\n", author.Seniority))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Scoring guidance: score is a float from 1 to 10. ")
	sb.WriteString(fmt.Sprintf("%.1f or above means exceptional, act-on-it-now insight. ", a.highBar))
	sb.WriteString(fmt.Sprintf("Below %.1f means the note is noise or off-topic for every pillar. ", a.viabilityBar))
	sb.WriteString("A senior leader flagging a risk in their own domain scores higher than the same words from an unrelated department.\n\n")

	sb.WriteString("Raw note:\n\"\"\"\n")
	sb.WriteString(rawText)
	sb.WriteString("\n\"\"\"\n\n")

	sb.WriteString("Respond with ONLY a JSON object, no prose, exactly these keys:\n")
	sb.WriteString(`{"title": "...", "clarified_text": "...", "pillar_id": "...", "pillar_name": "...", "score": 0.0, "reasoning": "..."}`)
	sb.WriteString("\n")

	return sb.String()
}
