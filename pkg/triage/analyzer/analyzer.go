package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"sigment-be/internal/entity"
	"sigment-be/internal/repository/contract"
	"sigment-be/internal/repository/specification"
	"sigment-be/pkg/llm"

	"github.com/google/uuid"
)

var (
	// ErrNoPillars means the tenant has no taxonomy at all. No analysis is
	// possible until an operator seeds pillars; callers must not default.
	ErrNoPillars = errors.New("organization has no pillars configured")

	// ErrMalformedResponse means the judgment provider returned something we
	// could not parse or validate. The whole job is retried; partially
	// populated judgments are never propagated.
	ErrMalformedResponse = errors.New("malformed judgment response")
)

// Judgment is the validated, repaired outcome of analyzing one note. The
// pillar is always resolved against the tenant's taxonomy: either one of the
// supplied pillars or the reserved Uncategorized fallback.
type Judgment struct {
	Title         string
	ClarifiedText string
	PillarId      uuid.UUID
	PillarName    string
	Score         float64
	Reasoning     string
	UsedFallback  bool
}

// Analyzer orchestrates one judgment call and repairs the response against
// the tenant's fixed taxonomy.
type Analyzer struct {
	provider     llm.LLMProvider
	pillars      contract.PillarRepository
	viabilityBar float64 // below this, the nominated pillar is overridden
	highBar      float64 // communicated to the provider as the exceptional bar
}

func New(provider llm.LLMProvider, pillars contract.PillarRepository, viabilityBar, highBar float64) *Analyzer {
	return &Analyzer{
		provider:     provider,
		pillars:      pillars,
		viabilityBar: viabilityBar,
		highBar:      highBar,
	}
}

// judgmentPayload is the raw provider response, before validation.
type judgmentPayload struct {
	Title         string   `json:"title"`
	ClarifiedText string   `json:"clarified_text"`
	PillarId      *string  `json:"pillar_id"`
	PillarName    string   `json:"pillar_name"`
	Score         *float64 `json:"score"`
	Reasoning     string   `json:"reasoning"`
}

// Analyze derives a structured judgment for rawText. The available pillar
// set must be non-empty; the provider is forbidden from inventing new
// pillars and any nomination that cannot be mapped back onto the set falls
// through to the Uncategorized fallback.
func (a *Analyzer) Analyze(ctx context.Context, rawText string, author *entity.User, pillars []*entity.Pillar) (*Judgment, error) {
	if len(pillars) == 0 {
		return nil, ErrNoPillars
	}

	prompt := a.buildPrompt(rawText, author, pillars)

	raw, err := a.provider.Generate(ctx, prompt, llm.WithTemperature(0.2))
	if err != nil {
		return nil, fmt.Errorf("judgment provider: %w", err)
	}

	payload, err := parseJudgment(raw)
	if err != nil {
		return nil, err
	}

	judgment := &Judgment{
		Title:         strings.TrimSpace(payload.Title),
		ClarifiedText: strings.TrimSpace(payload.ClarifiedText),
		Score:         *payload.Score,
		Reasoning:     strings.TrimSpace(payload.Reasoning),
	}

	// Repair: resolve the nominated pillar against the fixed set. Pillar id
	// first, exact name second, reserved fallback last. The low-score
	// override applies regardless of what the provider nominated.
	resolved := resolvePillar(payload, pillars)
	if resolved == nil || judgment.Score < a.viabilityBar {
		fallback, err := a.ensureFallback(ctx, pillars[0].OrganizationId)
		if err != nil {
			return nil, fmt.Errorf("ensure fallback pillar: %w", err)
		}
		judgment.PillarId = fallback.Id
		judgment.PillarName = fallback.Name
		judgment.UsedFallback = true
		return judgment, nil
	}

	judgment.PillarId = resolved.Id
	judgment.PillarName = resolved.Name
	return judgment, nil
}

func resolvePillar(payload *judgmentPayload, pillars []*entity.Pillar) *entity.Pillar {
	if payload.PillarId != nil {
		if id, err := uuid.Parse(*payload.PillarId); err == nil {
			for _, p := range pillars {
				if p.Id == id {
					return p
				}
			}
		}
	}

	name := strings.TrimSpace(payload.PillarName)
	if name == "" {
		return nil
	}
	for _, p := range pillars {
		if p.Name == name {
			return p
		}
	}
	for _, p := range pillars {
		if strings.EqualFold(p.Name, name) {
			return p
		}
	}
	return nil
}

// ensureFallback returns the tenant's reserved Uncategorized pillar,
// creating it on first use.
func (a *Analyzer) ensureFallback(ctx context.Context, organizationId uuid.UUID) (*entity.Pillar, error) {
	existing, err := a.pillars.FindOne(ctx,
		specification.ByOrganization{OrganizationID: organizationId},
		specification.ByName{Name: entity.FallbackPillarName},
	)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	fallback := &entity.Pillar{
		Id:             uuid.New(),
		OrganizationId: organizationId,
		Name:           entity.FallbackPillarName,
		Description:    "Notes that do not fit any strategic pillar.",
		Color:          "#9ca3af",
	}
	if err := a.pillars.Create(ctx, fallback); err != nil {
		return nil, err
	}
	return fallback, nil
}

// parseJudgment applies the strict schema: required fields present, score in
// [1,10]. Anything else is a malformed response and feeds the retry path.
func parseJudgment(raw string) (*judgmentPayload, error) {
	jsonText := extractJSON(raw)
	if jsonText == "" {
		return nil, fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
	}

	var payload judgmentPayload
	decoder := json.NewDecoder(strings.NewReader(jsonText))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if strings.TrimSpace(payload.Title) == "" {
		return nil, fmt.Errorf("%w: missing title", ErrMalformedResponse)
	}
	if strings.TrimSpace(payload.ClarifiedText) == "" {
		return nil, fmt.Errorf("%w: missing clarified_text", ErrMalformedResponse)
	}
	if payload.Score == nil {
		return nil, fmt.Errorf("%w: missing score", ErrMalformedResponse)
	}
	if *payload.Score < 1 || *payload.Score > 10 {
		return nil, fmt.Errorf("%w: score %.2f out of range", ErrMalformedResponse, *payload.Score)
	}

	return &payload, nil
}

// extractJSON pulls the first JSON object out of a model response, tolerating
// markdown code fences around it.
func extractJSON(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return cleaned[start : end+1]
}
