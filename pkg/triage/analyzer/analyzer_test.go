package analyzer

import (
	"context"
	"fmt"
	"testing"

	"sigment-be/internal/entity"
	"sigment-be/internal/repository/specification"
	"sigment-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	response string
	err      error
	prompts  []string
}

func (s *stubProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return s.response, s.err
}

func (s *stubProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.response, s.err
}

type fakePillarRepo struct {
	pillars []*entity.Pillar
	created []*entity.Pillar
}

func (f *fakePillarRepo) Create(ctx context.Context, pillar *entity.Pillar) error {
	f.pillars = append(f.pillars, pillar)
	f.created = append(f.created, pillar)
	return nil
}

func (f *fakePillarRepo) Update(ctx context.Context, pillar *entity.Pillar) error { return nil }
func (f *fakePillarRepo) Delete(ctx context.Context, id uuid.UUID) error          { return nil }

func (f *fakePillarRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Pillar, error) {
	var name string
	var org uuid.UUID
	for _, s := range specs {
		switch spec := s.(type) {
		case specification.ByName:
			name = spec.Name
		case specification.ByOrganization:
			org = spec.OrganizationID
		}
	}
	for _, p := range f.pillars {
		if p.Name == name && p.OrganizationId == org {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakePillarRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Pillar, error) {
	return f.pillars, nil
}

func (f *fakePillarRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(f.pillars)), nil
}

func testPillars(org uuid.UUID) []*entity.Pillar {
	return []*entity.Pillar{
		{Id: uuid.New(), OrganizationId: org, Name: "Customer Experience", Description: "Everything touching the customer journey"},
		{Id: uuid.New(), OrganizationId: org, Name: "Operational Excellence"},
	}
}

func judgmentJSON(pillarID, pillarName string, score float64) string {
	return fmt.Sprintf(`{"title": "Checkout latency", "clarified_text": "Checkout page takes 8 seconds to load on mobile.", "pillar_id": %s, "pillar_name": "%s", "score": %.1f, "reasoning": "Direct customer impact."}`,
		pillarID, pillarName, score)
}

func TestAnalyze_ResolvesPillarById(t *testing.T) {
	org := uuid.New()
	pillars := testPillars(org)
	provider := &stubProvider{response: judgmentJSON(`"`+pillars[0].Id.String()+`"`, "Customer Experience", 7.5)}
	repo := &fakePillarRepo{pillars: pillars}

	a := New(provider, repo, 5.0, 8.5)
	judgment, err := a.Analyze(context.Background(), "checkout is slow", nil, pillars)

	require.NoError(t, err)
	assert.Equal(t, pillars[0].Id, judgment.PillarId)
	assert.Equal(t, "Customer Experience", judgment.PillarName)
	assert.Equal(t, 7.5, judgment.Score)
	assert.False(t, judgment.UsedFallback)
}

func TestAnalyze_RepairsByExactName(t *testing.T) {
	org := uuid.New()
	pillars := testPillars(org)
	// Provider nominated a pillar id that is not in the tenant's set.
	provider := &stubProvider{response: judgmentJSON(`"`+uuid.NewString()+`"`, "Operational Excellence", 6.0)}
	repo := &fakePillarRepo{pillars: pillars}

	a := New(provider, repo, 5.0, 8.5)
	judgment, err := a.Analyze(context.Background(), "warehouse picking errors", nil, pillars)

	require.NoError(t, err)
	assert.Equal(t, pillars[1].Id, judgment.PillarId)
	assert.False(t, judgment.UsedFallback)
}

func TestAnalyze_UnknownPillarFallsBack(t *testing.T) {
	org := uuid.New()
	pillars := testPillars(org)
	provider := &stubProvider{response: judgmentJSON("null", "Invented Pillar", 7.0)}
	repo := &fakePillarRepo{pillars: pillars}

	a := New(provider, repo, 5.0, 8.5)
	judgment, err := a.Analyze(context.Background(), "misc thought", nil, pillars)

	require.NoError(t, err)
	assert.True(t, judgment.UsedFallback)
	assert.Equal(t, entity.FallbackPillarName, judgment.PillarName)
	require.Len(t, repo.created, 1, "fallback pillar should be created lazily")
	assert.Equal(t, org, repo.created[0].OrganizationId)
}

func TestAnalyze_LowScoreOverridesNomination(t *testing.T) {
	org := uuid.New()
	pillars := testPillars(org)
	// Valid nomination, but the score is below the viability bar.
	provider := &stubProvider{response: judgmentJSON(`"`+pillars[0].Id.String()+`"`, "Customer Experience", 3.2)}
	repo := &fakePillarRepo{pillars: pillars}

	a := New(provider, repo, 5.0, 8.5)
	judgment, err := a.Analyze(context.Background(), "lunch was ok", nil, pillars)

	require.NoError(t, err)
	assert.True(t, judgment.UsedFallback)
	assert.Equal(t, entity.FallbackPillarName, judgment.PillarName)
	assert.Equal(t, 3.2, judgment.Score, "score is preserved even when overridden")
}

func TestAnalyze_FallbackReusedOnSecondMiss(t *testing.T) {
	org := uuid.New()
	pillars := testPillars(org)
	provider := &stubProvider{response: judgmentJSON("null", "Invented", 2.0)}
	repo := &fakePillarRepo{pillars: pillars}

	a := New(provider, repo, 5.0, 8.5)
	first, err := a.Analyze(context.Background(), "noise one", nil, pillars)
	require.NoError(t, err)
	second, err := a.Analyze(context.Background(), "noise two", nil, pillars)
	require.NoError(t, err)

	assert.Equal(t, first.PillarId, second.PillarId)
	assert.Len(t, repo.created, 1, "fallback is created once per tenant")
}

func TestAnalyze_EmptyPillarSet(t *testing.T) {
	a := New(&stubProvider{}, &fakePillarRepo{}, 5.0, 8.5)
	_, err := a.Analyze(context.Background(), "anything", nil, nil)
	assert.ErrorIs(t, err, ErrNoPillars)
}

func TestAnalyze_MalformedResponses(t *testing.T) {
	org := uuid.New()
	pillars := testPillars(org)

	cases := map[string]string{
		"not json":      "I think this belongs to Customer Experience.",
		"missing title": `{"clarified_text": "x", "pillar_name": "Customer Experience", "score": 6.0, "reasoning": "r"}`,
		"missing score": `{"title": "t", "clarified_text": "x", "pillar_name": "Customer Experience", "reasoning": "r"}`,
		"score too big": `{"title": "t", "clarified_text": "x", "pillar_name": "Customer Experience", "score": 42, "reasoning": "r"}`,
	}

	for name, response := range cases {
		t.Run(name, func(t *testing.T) {
			a := New(&stubProvider{response: response}, &fakePillarRepo{pillars: pillars}, 5.0, 8.5)
			_, err := a.Analyze(context.Background(), "raw", nil, pillars)
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestAnalyze_ParsesFencedJSON(t *testing.T) {
	org := uuid.New()
	pillars := testPillars(org)
	fenced := "```json\n" + judgmentJSON(`"`+pillars[0].Id.String()+`"`, "Customer Experience", 9.0) + "\n```"
	a := New(&stubProvider{response: fenced}, &fakePillarRepo{pillars: pillars}, 5.0, 8.5)

	judgment, err := a.Analyze(context.Background(), "raw", nil, pillars)
	require.NoError(t, err)
	assert.Equal(t, 9.0, judgment.Score)
}

func TestBuildPrompt_IncludesAuthorContext(t *testing.T) {
	org := uuid.New()
	pillars := testPillars(org)
	a := New(&stubProvider{}, &fakePillarRepo{}, 5.0, 8.5)

	author := &entity.User{Department: "Logistics", Seniority: "VP"}
	prompt := a.buildPrompt("trucks idle too long", author, pillars)

	assert.Contains(t, prompt, "Logistics")
	assert.Contains(t, prompt, "VP")
	assert.Contains(t, prompt, "Customer Experience")
	assert.Contains(t, prompt, pillars[0].Id.String())
	assert.Contains(t, prompt, "trucks idle too long")
}
