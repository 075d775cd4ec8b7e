package snapshot

import (
	"context"
	"fmt"
	"strings"

	"sigment-be/internal/entity"
	"sigment-be/pkg/llm"
)

// maxSynthesisNotes caps how many clarified texts go into one prompt so a
// very large cluster cannot blow the provider's context window.
const maxSynthesisNotes = 50

// LLMSynthesizer implements Synthesizer on top of a chat provider.
type LLMSynthesizer struct {
	provider llm.LLMProvider
}

func NewLLMSynthesizer(provider llm.LLMProvider) *LLMSynthesizer {
	return &LLMSynthesizer{provider: provider}
}

// SummarizeCluster condenses the cluster's active notes into a summary of at
// most 200 words.
func (s *LLMSynthesizer) SummarizeCluster(ctx context.Context, notes []*entity.Note) (string, error) {
	var sb strings.Builder
	sb.WriteString("The following employee notes were grouped together because they describe the same underlying theme. ")
	sb.WriteString("Write a summary of the theme in at most 200 words. Mention recurring specifics, not generalities. ")
	sb.WriteString("Respond with the summary text only, no preamble.\n\n")
	writeNoteList(&sb, notes)

	out, err := s.provider.Generate(ctx, sb.String(), llm.WithTemperature(0.3))
	if err != nil {
		return "", fmt.Errorf("summarize cluster: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// TitleCluster names the theme in a short headline.
func (s *LLMSynthesizer) TitleCluster(ctx context.Context, notes []*entity.Note) (string, error) {
	var sb strings.Builder
	sb.WriteString("The following employee notes describe one underlying theme. ")
	sb.WriteString("Name the theme in a single headline of at most 8 words. ")
	sb.WriteString("Respond with the headline only, no quotes, no punctuation at the end.\n\n")
	writeNoteList(&sb, notes)

	out, err := s.provider.Generate(ctx, sb.String(), llm.WithTemperature(0.3))
	if err != nil {
		return "", fmt.Errorf("title cluster: %w", err)
	}
	return strings.Trim(strings.TrimSpace(out), `"`), nil
}

func writeNoteList(sb *strings.Builder, notes []*entity.Note) {
	limit := len(notes)
	if limit > maxSynthesisNotes {
		limit = maxSynthesisNotes
	}
	for i := 0; i < limit; i++ {
		n := notes[i]
		text := n.RawContent
		if n.ClarifiedContent != nil && *n.ClarifiedContent != "" {
			text = *n.ClarifiedContent
		}
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, text))
	}
}
